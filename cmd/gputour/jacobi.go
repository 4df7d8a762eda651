package main

import (
	"fmt"
	"os"

	"github.com/example/go-gpu-tour/tour"
	"github.com/spf13/cobra"
)

func newJacobiCmd() *cobra.Command {
	var (
		n          int
		iterations int
		eps        float64
	)

	cmd := &cobra.Command{
		Use:   "jacobi",
		Short: "Jacobi iteration on a tridiagonal system with residual check",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.Jacobi(c, tour.JacobiOptions{
				N:           n,
				Iterations:  iterations,
				ResidualEps: eps,
			}, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "final norm: %v  max residual: %v\n", res.FinalNorm, res.MaxResidual)
			return finishOutcome("jacobi", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Unknown count (0 = default)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Sweep count (0 = default)")
	cmd.Flags().Float64Var(&eps, "eps", 0, "Residual tolerance (0 = default)")

	return cmd
}
