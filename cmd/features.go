package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/AneteZepa/HappyBees/pkg/dsp"
	"github.com/AneteZepa/HappyBees/pkg/features"
)

var featuresCmd = &cobra.Command{
	Use:   "features <recording.wav>",
	Short: "Compute one feature vector from a recording",
	Long: `Run the full extraction chain on a saved recording and dump the
resulting feature vector, for comparing host output against device-side
ground truth. Histories start empty, so the spike ratio uses the 1.0
baseline and the temperature variance is zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().String("mode", "", "feature mode (summer, winter)")
	featuresCmd.Flags().Float64("gain", 0, "software gain applied before filtering")
	featuresCmd.Flags().Float64("temp", 34.5, "temperature input")
	featuresCmd.Flags().Float64("humidity", 60, "humidity input")
	featuresCmd.Flags().Float64("hour", 12, "hour-of-day input (0-23)")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	mode := features.Mode(config.Classifier.Mode)
	if v, _ := cmd.Flags().GetString("mode"); v != "" {
		mode = features.Mode(v)
	}
	gain := config.Audio.Gain
	if v, _ := cmd.Flags().GetFloat64("gain"); v != 0 {
		gain = v
	}
	temp, _ := cmd.Flags().GetFloat64("temp")
	humidity, _ := cmd.Flags().GetFloat64("humidity")
	hour, _ := cmd.Flags().GetFloat64("hour")

	signal, sampleRate, err := dsp.ReadWAV(args[0])
	if err != nil {
		return err
	}
	if sampleRate != dsp.SampleRate {
		return fmt.Errorf("recording is %d Hz, pipeline expects %d Hz", sampleRate, dsp.SampleRate)
	}

	filtered := dsp.NewFilterChain(dsp.SampleRate).Process(signal, gain)
	frame, err := dsp.NewSpectralAnalyzer(dsp.SampleRate).AverageSpectrum(filtered)
	if err != nil {
		return err
	}
	density := dsp.RMSDensity(filtered)

	builder, err := features.NewBuilder(mode, mode.VectorWidth())
	if err != nil {
		return err
	}
	vector, err := builder.Build(features.Inputs{
		Reading:     features.SensorReading{Temperature: temp, Humidity: humidity, Hour: hour},
		Frame:       frame,
		Density:     density,
		DensityMean: features.NewHistory().Mean(),
	})
	if err != nil {
		return err
	}

	if viper.GetString("output_format") == "yaml" {
		out, err := yaml.Marshal(map[string]any{
			"mode":    string(mode),
			"density": density,
			"windows": frame.Windows,
			"vector":  vector,
		})
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	fmt.Printf("Mode: %s   density=%.5f   windows=%d\n\n", mode, density, frame.Windows)
	for i, v := range vector {
		fmt.Printf("  [%2d]  %12.6f\n", i, v)
	}
	return nil
}
