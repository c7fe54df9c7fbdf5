package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AneteZepa/HappyBees/pkg/dsp"
	"github.com/AneteZepa/HappyBees/pkg/link"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record one capture and save it as a WAV file",
	Long: `Request a single recording from the device, run it through the filter
chain and persist the result as 16-bit mono WAV. The device's reported
standard deviation is printed next to the host-side density so a drifting
pipeline is visible immediately.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().String("device", "", "serial device path")
	captureCmd.Flags().Int("seconds", 0, "capture duration (1-6)")
	captureCmd.Flags().Float64("gain", 0, "software gain applied before filtering")
	captureCmd.Flags().String("wav", "", "output WAV path (required)")
	captureCmd.MarkFlagRequired("wav")
}

func runCapture(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("device"); v != "" {
		config.Link.Device = v
	}
	if v, _ := cmd.Flags().GetInt("seconds"); v != 0 {
		config.Audio.CaptureSeconds = v
	}
	if v, _ := cmd.Flags().GetFloat64("gain"); v != 0 {
		config.Audio.Gain = v
	}
	wavPath, _ := cmd.Flags().GetString("wav")

	transport, err := link.OpenSerial(&link.SerialConfig{
		Device:      config.Link.Device,
		BaudRate:    config.Link.BaudRate,
		ReadTimeout: config.Link.ReadTimeout,
	})
	if err != nil {
		return err
	}
	defer transport.Close()

	device := link.NewDevice(transport, config.Link.Device, config.Link.ReadTimeout)
	capture, err := device.Capture(cmd.Context(), config.Audio.CaptureSeconds)
	if err != nil {
		return err
	}

	signal := dsp.ConvertADC(capture.Samples)
	filtered := dsp.NewFilterChain(dsp.SampleRate).Process(signal, config.Audio.Gain)
	if err := dsp.WriteWAV(wavPath, filtered, dsp.SampleRate); err != nil {
		return err
	}

	fmt.Printf("Captured %d samples (%.2fs)\n", len(capture.Samples),
		float64(len(capture.Samples))/float64(dsp.SampleRate))
	fmt.Printf("Device std dev:  %.5f\n", capture.ReportedStdDev)
	fmt.Printf("Host density:    %.5f\n", dsp.RMSDensity(filtered))
	if capture.Short {
		fmt.Println("Warning: capture was truncated")
	}
	fmt.Printf("Wrote %s\n", wavPath)
	return nil
}
