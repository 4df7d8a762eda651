package main

import (
	"fmt"
	"os"

	"github.com/example/go-gpu-tour/detector"
	"github.com/spf13/cobra"
)

func newDevicesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List available adapters with limits and recommendations",
		RunE: func(_ *cobra.Command, _ []string) error {
			if jsonOut {
				s, err := detector.EnumerateJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, s)
				return nil
			}

			reps, err := detector.Enumerate()
			if err != nil {
				return err
			}
			for _, r := range reps {
				fmt.Fprintf(os.Stdout, "[%d] %s (%s, %s)\n", r.Index, r.Name, r.Backend, r.AdapterType)
				fmt.Fprintf(os.Stdout, "    vendor: %s  driver: %s\n", r.Vendor, r.Driver)
				fmt.Fprintf(os.Stdout, "    max invocations/workgroup: %d  max workgroup x: %d\n",
					r.Limits.MaxComputeInvocationsPerWorkgroup, r.Limits.MaxComputeWorkgroupSizeX)
				fmt.Fprintf(os.Stdout, "    recommended workgroup: %dx%d\n",
					r.Recommended.WorkgroupX, r.Recommended.WorkgroupY)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the full report as JSON")

	return cmd
}
