package main

import (
	"os"

	"github.com/example/go-gpu-tour/tour"
	"github.com/spf13/cobra"
)

func newMatMulCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "matmul",
		Short: "Tiled matrix multiplication checked against its closed form",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.MatMul(c, tour.MatMulOptions{N: n}, os.Stdout)
			if err != nil {
				return err
			}
			return finishOutcome("matmul", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Square matrix dimension (0 = default)")

	return cmd
}
