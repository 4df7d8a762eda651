package main

import (
	"fmt"
	"os"

	"github.com/example/go-gpu-tour/tour"
	"github.com/spf13/cobra"
)

func newAtomicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atomics",
		Short: "Atomic update exercises",
	}

	cmd.AddCommand(newAtomicsCounterCmd())
	cmd.AddCommand(newAtomicsFPSumCmd())
	cmd.AddCommand(newAtomicsMaxCmd())
	cmd.AddCommand(newAtomicsFenceCmd())

	return cmd
}

func newAtomicsCounterCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Contrast a racy counter with an atomic one",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.AtomicCounter(c, tour.AtomicCounterOptions{N: n}, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "racy: %d  atomic: %d  (expected %d)\n", res.Racy, res.Atomic, res.N)
			return finishOutcome("atomics counter", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Increment count (0 = default)")

	return cmd
}

func newAtomicsFPSumCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "fpsum",
		Short: "Sum floats into one accumulator via compare-exchange",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.FloatAtomicSum(c, tour.FloatAtomicSumOptions{N: n}, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "sum: %v (expected %v)\n", res.Sum, float32(res.N))
			return finishOutcome("atomics fpsum", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Addend count (0 = default)")

	return cmd
}

func newAtomicsMaxCmd() *cobra.Command {
	var (
		n      int
		modulo int
	)

	cmd := &cobra.Command{
		Use:   "max",
		Short: "Fold a float maximum via compare-exchange",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.AtomicMax(c, tour.AtomicMaxOptions{N: n, Modulo: modulo}, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "max: %v\n", res.Max)
			return finishOutcome("atomics max", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Element count (0 = default)")
	cmd.Flags().IntVar(&modulo, "modulo", 0, "Value range modulus (0 = default)")

	return cmd
}

func newAtomicsFenceCmd() *cobra.Command {
	var producers int

	cmd := &cobra.Command{
		Use:   "fence",
		Short: "Producer/consumer handoff ordered by a storage barrier",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newComputeContext()
			if err != nil {
				return err
			}
			defer c.Release()

			res, err := tour.FenceOrdering(c, tour.FenceOrderingOptions{Producers: producers}, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "consumed total: %d from %d producers\n", res.Total, res.Producers)
			return finishOutcome("atomics fence", res.Outcome)
		},
	}

	cmd.Flags().IntVar(&producers, "producers", 0, "Producer count (0 = default)")

	return cmd
}
