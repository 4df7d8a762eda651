package main

import (
	"fmt"
	"os"

	"github.com/example/go-gpu-tour/tour"
	"github.com/spf13/cobra"
)

func newBuffersCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "buffers",
		Short: "Exercise device-internal, writeback and read-only buffer patterns",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			patterns, err := tour.BufferPatterns(c, tour.BufferPatternsOptions{N: n})
			if err != nil {
				return err
			}

			var firstErr error
			for _, p := range patterns {
				if err := finishOutcome(p.Name, p.Outcome); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			if firstErr == nil {
				fmt.Fprintf(os.Stdout, "all %d patterns passed\n", len(patterns))
			}
			return firstErr
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Element count (0 = default)")

	return cmd
}
