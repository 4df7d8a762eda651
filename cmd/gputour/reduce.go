package main

import (
	"fmt"
	"os"

	"github.com/example/go-gpu-tour/tour"
	"github.com/spf13/cobra"
)

func newReduceCmd() *cobra.Command {
	var (
		n         int
		groupSize int
	)

	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Sum 1..N with per-group tree reductions",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.GroupReduce(c, tour.GroupReduceOptions{N: n, GroupSize: groupSize}, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "sum over %d groups: %v (expected %v)\n", res.Groups, res.Sum, res.Expected)
			return finishOutcome("reduce", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Element count (0 = default)")
	cmd.Flags().IntVar(&groupSize, "group-size", 0, "Work group size (0 = default)")

	return cmd
}

func newScopedCmd() *cobra.Command {
	var (
		n         int
		groupSize int
	)

	cmd := &cobra.Command{
		Use:   "scoped",
		Short: "Per-group integer sums checked exactly against closed forms",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.ScopedReduce(c, tour.ScopedReduceOptions{N: n, GroupSize: groupSize})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%d group sums computed\n", res.Groups)
			return finishOutcome("scoped", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Element count (0 = default)")
	cmd.Flags().IntVar(&groupSize, "group-size", 0, "Work group size (0 = default)")

	return cmd
}
