package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective merged configuration",
	Long: `Print the configuration after merging defaults, the config file,
environment variables and flags, in YAML.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
