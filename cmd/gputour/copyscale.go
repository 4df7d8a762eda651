package main

import (
	"github.com/example/go-gpu-tour/tour"
	"github.com/spf13/cobra"
)

func newCopyScaleCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "copyscale",
		Short: "Copy and double an integer sequence on the device",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.CopyScale(c, tour.CopyScaleOptions{N: n})
			if err != nil {
				return err
			}
			return finishOutcome("copyscale", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Element count (0 = default)")

	return cmd
}

func newSpecializeCmd() *cobra.Command {
	var (
		n     int
		scale float32
	)

	cmd := &cobra.Command{
		Use:   "specialize",
		Short: "Scale a buffer by a uniform parameter set at dispatch time",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.Specialize(c, tour.SpecializeOptions{N: n, Scale: scale})
			if err != nil {
				return err
			}
			return finishOutcome("specialize", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Element count (0 = default)")
	cmd.Flags().Float32Var(&scale, "scale", 0, "Scale factor (0 = default)")

	return cmd
}
