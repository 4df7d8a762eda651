package main

import (
	"fmt"
	"os"

	"github.com/example/go-gpu-tour/tour"
	"github.com/spf13/cobra"
)

func newVecAddCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "vecadd",
		Short: "Element-wise vector addition with exhaustive verification",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.VecAdd(c, tour.VecAddOptions{N: n}, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%d elements in %v (%.2f GB/s)\n", res.N, res.Elapsed, res.GBps)
			return finishOutcome("vecadd", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Element count (0 = default)")

	return cmd
}
