package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AneteZepa/HappyBees/configs"
	"github.com/AneteZepa/HappyBees/internal/app"
	"github.com/AneteZepa/HappyBees/internal/session"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the long-lived monitoring loop",
	Long: `Run capture cycles against the acquisition device at a fixed interval.

Each cycle records audio, runs the filter and spectral chain, assembles the
seasonal feature vector and classifies it. Rolling density and temperature
histories carry across cycles. Interrupt with Ctrl-C.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().String("device", "", "serial device path")
	monitorCmd.Flags().String("mode", "", "feature mode (summer, winter)")
	monitorCmd.Flags().Int("seconds", 0, "capture duration per cycle (1-6)")
	monitorCmd.Flags().Float64("gain", 0, "software gain applied before filtering")
	monitorCmd.Flags().Duration("interval", 0, "pause between cycles")
	monitorCmd.Flags().Int("cycles", 0, "stop after this many cycles (0 = run forever)")
	monitorCmd.Flags().String("artifact-dir", "", "write one WAV per cycle into this directory")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	applyMonitorFlags(cmd, config)
	if err := configs.ValidateConfig(config); err != nil {
		return err
	}

	monitor, err := app.NewMonitor(config, nil)
	if err != nil {
		return err
	}
	monitor.OnCycle = func(result *session.CycleResult) {
		fmt.Println(app.Describe(result))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := monitor.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func applyMonitorFlags(cmd *cobra.Command, config *configs.Config) {
	if v, _ := cmd.Flags().GetString("device"); v != "" {
		config.Link.Device = v
	}
	if v, _ := cmd.Flags().GetString("mode"); v != "" {
		config.Classifier.Mode = v
	}
	if v, _ := cmd.Flags().GetInt("seconds"); v != 0 {
		config.Audio.CaptureSeconds = v
	}
	if v, _ := cmd.Flags().GetFloat64("gain"); v != 0 {
		config.Audio.Gain = v
	}
	if v, _ := cmd.Flags().GetDuration("interval"); v != 0 {
		config.Monitor.Interval = v
	}
	if v, _ := cmd.Flags().GetInt("cycles"); v != 0 {
		config.Monitor.Cycles = v
	}
	if v, _ := cmd.Flags().GetString("artifact-dir"); v != "" {
		config.Monitor.ArtifactDir = v
	}
}
