package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-gpu-tour/compute"
	"github.com/example/go-gpu-tour/internal/config"
	"github.com/example/go-gpu-tour/verify"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "gputour",
		Short:         "GPU compute exercises with verified results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.Log.Level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newDevicesCmd())
	cmd.AddCommand(newVecAddCmd())
	cmd.AddCommand(newBuffersCmd())
	cmd.AddCommand(newReduceCmd())
	cmd.AddCommand(newScopedCmd())
	cmd.AddCommand(newCopyScaleCmd())
	cmd.AddCommand(newSpecializeCmd())
	cmd.AddCommand(newAtomicsCmd())
	cmd.AddCommand(newMatMulCmd())
	cmd.AddCommand(newJacobiCmd())
	cmd.AddCommand(newBenchCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

// newComputeContext opens a device per the loaded configuration. The
// caller owns the context and must Release it.
func newComputeContext() (*compute.Context, error) {
	c, err := compute.New(compute.Options{
		AdapterName:   activeCfg.Adapter.Name,
		Power:         compute.PowerPreference(activeCfg.Adapter.Power),
		ForceFallback: activeCfg.Adapter.ForceFallback,
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("adapter selected", "name", c.DeviceName())
	return c, nil
}

// finishOutcome reports a verification outcome on stdout and converts a
// failed one into the error that drives the exit status.
func finishOutcome(name string, o verify.Outcome) error {
	if o.OK {
		fmt.Fprintf(os.Stdout, "%s: PASSED (%d values checked)\n", name, o.Checked)
		return nil
	}
	fmt.Fprintf(os.Stdout, "%s: FAILED\n", name)
	return o.Err()
}
