package main

import (
	"fmt"
	"os"

	"github.com/example/go-gpu-tour/tour"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		n       int
		runs    int
		format  string
		minGBps float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark streaming memory bandwidth",
		RunE: func(_ *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.Bandwidth(c, tour.BandwidthOptions{
				N:       n,
				Runs:    runs,
				MinGBps: minGBps,
				JSON:    format == "json",
			}, os.Stdout)
			if err != nil {
				return err
			}
			if !res.Outcome.OK {
				return finishOutcome("bench warmup", res.Outcome)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Element count (0 = default)")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of timed runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&minGBps, "min-gbps", 0, "Exit non-zero if mean bandwidth falls below this (0 = disabled)")

	return cmd
}
