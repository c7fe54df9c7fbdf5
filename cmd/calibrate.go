package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AneteZepa/HappyBees/internal/calibrate"
	"github.com/AneteZepa/HappyBees/pkg/dsp"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate <recording.wav>",
	Short: "Find the software gain matching the trained spectral target",
	Long: `Replay a reference recording through the filter chain at a ladder of
candidate gains and report which one lands the low-band spectral level
closest to the level the models were trained on.

With --gain set, only that single gain is measured.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalibrate,
}

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().Float64("gain", 0, "measure a single gain instead of searching")
	calibrateCmd.Flags().Bool("search", false, "search the full candidate ladder even when --gain is set")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	signal, sampleRate, err := dsp.ReadWAV(args[0])
	if err != nil {
		return err
	}
	if sampleRate != dsp.SampleRate {
		return fmt.Errorf("recording is %d Hz, pipeline expects %d Hz", sampleRate, dsp.SampleRate)
	}

	calibrator := calibrate.NewCalibrator(nil)

	search, _ := cmd.Flags().GetBool("search")
	if gain, _ := cmd.Flags().GetFloat64("gain"); gain != 0 && !search {
		m, err := calibrator.Measure(signal, gain)
		if err != nil {
			return err
		}
		fmt.Printf("gain %.2f: metric %.5f (distance %+.5f, in band: %v)\n",
			m.Gain, m.Metric, m.Distance, m.InBand)
		return nil
	}

	report, err := calibrator.Search(args[0], signal)
	if err != nil {
		return err
	}

	if viper.GetString("output_format") == "yaml" {
		out, err := report.YAML()
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}
	fmt.Print(report.Text())
	return nil
}
