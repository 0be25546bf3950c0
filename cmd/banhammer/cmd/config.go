package cmd

import (
	"github.com/spf13/cobra"

	"github.com/relayguard/banhammer/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	config.InitializeFlags(configCmd.Flags(), defaultConfig())
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out, err := loader.Render()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
