package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// All constant strings are CLI flag names.
	// banhammer thresholds
	timeframe               = "timeframe"
	incorrectNonceThreshold = "incorrect-nonce-threshold"
	maxGasThreshold         = "max-gas-threshold"
	revertThreshold         = "revert-threshold"
	excessiveGasThreshold   = "excessive-gas-threshold"
	tokenMultiplier         = "token-multiplier"
	// engine
	queueCapacity = "queue-capacity"
	// kafka ingest
	kafkaEnabled = "kafka-enabled"
	kafkaBrokers = "kafka-brokers"
	kafkaGroup   = "kafka-group"
	kafkaTopic   = "kafka-topic"
	// ban journal
	journalEnabled = "journal-enabled"
	journalDir     = "journal-dir"
	// metrics
	metricsEnabled = "metrics-enabled"
	metricsPort    = "metrics-port"
	// logging
	logLevel = "log-level"
)

// flagKeys maps every flag name to the configuration key it overrides.
var flagKeys = map[string]string{
	timeframe:               "banhammer.timeframe",
	incorrectNonceThreshold: "banhammer.incorrect-nonce-threshold",
	maxGasThreshold:         "banhammer.max-gas-threshold",
	revertThreshold:         "banhammer.revert-threshold",
	excessiveGasThreshold:   "banhammer.excessive-gas-threshold",
	tokenMultiplier:         "banhammer.token-multiplier",
	queueCapacity:           "engine.queue-capacity",
	kafkaEnabled:            "kafka.enabled",
	kafkaBrokers:            "kafka.brokers",
	kafkaGroup:              "kafka.group",
	kafkaTopic:              "kafka.topic",
	journalEnabled:          "journal.enabled",
	journalDir:              "journal.dir",
	metricsEnabled:          "metrics.enabled",
	metricsPort:             "metrics.port",
	logLevel:                "log.level",
}

func AllFlagNames() []string {
	return []string{
		timeframe, incorrectNonceThreshold, maxGasThreshold, revertThreshold, excessiveGasThreshold, tokenMultiplier,
		queueCapacity, kafkaEnabled, kafkaBrokers, kafkaGroup, kafkaTopic, journalEnabled, journalDir,
		metricsEnabled, metricsPort, logLevel,
	}
}

// InitializeFlags registers the configuration override flags on flags, using config for the
// defaults shown in the help output.
func InitializeFlags(flags *pflag.FlagSet, config *Config) {
	flags.Duration(timeframe, config.Banhammer.DecayInterval, "interval between two resets of the client ban progress")
	flags.Uint32(incorrectNonceThreshold, config.Banhammer.IncorrectNonceThreshold, "incorrect nonce errors that ban an identity, 0 disables")
	flags.Uint32(maxGasThreshold, config.Banhammer.MaxGasThreshold, "gas ceiling errors that ban an identity, 0 disables")
	flags.Uint32(revertThreshold, config.Banhammer.RevertThreshold, "max gas count at which a revert bans an identity, 0 disables")
	flags.Uint32(excessiveGasThreshold, config.Banhammer.ExcessiveGasThreshold, "excessive gas threshold, currently never triggers")
	flags.Uint32(tokenMultiplier, config.Banhammer.TokenMultiplier, "factor applied to every threshold when a token is present")
	flags.Int(queueCapacity, config.Engine.QueueCapacity, "capacity of the inbound input queue, inputs are dropped when full")
	flags.Bool(kafkaEnabled, config.Kafka.Enabled, "consume inputs from kafka instead of stdin")
	flags.StringSlice(kafkaBrokers, config.Kafka.Brokers, "kafka broker addresses")
	flags.String(kafkaGroup, config.Kafka.Group, "kafka consumer group")
	flags.String(kafkaTopic, config.Kafka.Topic, "kafka topic carrying relayer inputs")
	flags.Bool(journalEnabled, config.Journal.Enabled, "journal every ban to disk")
	flags.String(journalDir, config.Journal.Dir, "directory of the ban journal database")
	flags.Bool(metricsEnabled, config.Metrics.Enabled, "serve prometheus metrics")
	flags.Uint(metricsPort, config.Metrics.Port, "port of the prometheus metrics server")
	flags.String(logLevel, config.Log.Level, "log level (trace, debug, info, warn, error)")
}

// BindFlags binds each flag registered by InitializeFlags to its nested configuration key, so a
// flag set on the command line overrides the value from files and environment. Flags that were not
// registered on flags are skipped.
func BindFlags(conf *viper.Viper, flags *pflag.FlagSet) error {
	for _, name := range AllFlagNames() {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		key := flagKeys[name]
		if !conf.IsSet(key) {
			return fmt.Errorf("invalid configuration missing configuration key %s for flag %s", key, name)
		}
		if err := conf.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("could not bind flag %s to %s: %w", name, key, err)
		}
	}
	return nil
}
