package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/relayguard/banhammer/config"
	"github.com/relayguard/banhammer/utils/logging"
)

var (
	flagConfigFile string
	flagPretty     bool
)

var rootCmd = &cobra.Command{
	Use:          "banhammer",
	Short:        "Ban abusive clients, senders and tokens of a transaction relayer",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", "", "path to a YAML config file merged over the defaults")
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "human readable log output instead of JSON")
}

// loadConfig layers the user config file, the environment and the flags of cmd over the defaults.
func loadConfig(cmd *cobra.Command) (*config.Loader, *config.Config, error) {
	loader, err := config.NewLoader()
	if err != nil {
		return nil, nil, err
	}
	if flagConfigFile != "" {
		if err := loader.MergeFile(flagConfigFile); err != nil {
			return nil, nil, err
		}
	}
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return nil, nil, err
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loader, cfg, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	return logging.NewLogger(os.Stderr, level, flagPretty)
}

// defaultConfig returns the embedded defaults used for flag help. A failure means the embedded
// document itself is broken.
func defaultConfig() *config.Config {
	cfg, err := config.DefaultConfig()
	if err != nil {
		panic(fmt.Sprintf("invalid embedded default config: %v", err))
	}
	return cfg
}
