package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/buckets"
	engine "github.com/relayguard/banhammer/engine/banhammer"
	"github.com/relayguard/banhammer/engine/ingest"
)

const envPrefix = "BANHAMMER"

var (
	//go:embed default-config.yml
	defaultConfig string

	validate = validator.New()
)

// Config is the complete configuration of a banhammer deployment.
type Config struct {
	Banhammer banhammer.Config      `mapstructure:"banhammer"`
	Buckets   buckets.BucketsConfig `mapstructure:"buckets"`
	Engine    engine.Config         `mapstructure:"engine"`
	Kafka     ingest.Config         `mapstructure:"kafka"`
	Journal   JournalConfig         `mapstructure:"journal"`
	Metrics   MetricsConfig         `mapstructure:"metrics"`
	Log       LogConfig             `mapstructure:"log"`
}

// JournalConfig configures the on-disk ban journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir" validate:"required_if=Enabled true"`
}

// MetricsConfig configures the prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    uint `mapstructure:"port" validate:"required_if=Enabled true,lte=65535"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
}

// Loader reads the layered configuration: the embedded defaults, an optional user file,
// BANHAMMER_ environment variables and CLI flags, in increasing order of precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader initialized with the embedded default configuration.
func NewLoader() (*Loader, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(defaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}, nil
}

// MergeFile merges the YAML file at path over the current configuration.
func (l *Loader) MergeFile(path string) error {
	l.v.SetConfigFile(path)
	if err := l.v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to merge config file %s: %w", path, err)
	}
	return nil
}

// BindFlags binds the flags registered by InitializeFlags to their configuration keys.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	return BindFlags(l.v, flags)
}

// Load decodes and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg, decoderOptions); err != nil {
		return nil, NewInvalidConfigErr("<root>", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Render returns the effective configuration as a YAML document, with keys sorted.
func (l *Loader) Render() ([]byte, error) {
	keys := l.v.AllKeys()
	sort.Strings(keys)

	doc := make(map[string]interface{})
	for _, key := range keys {
		path := strings.Split(key, ".")
		if len(path) < 2 {
			// flag names, bound to nested keys
			continue
		}
		section := doc
		for _, p := range path[:len(path)-1] {
			next, ok := section[p].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				section[p] = next
			}
			section = next
		}
		value := l.v.Get(key)
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		section[path[len(path)-1]] = value
	}

	var buf bytes.Buffer
	if err := yaml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaultConfig returns the decoded embedded default configuration.
func DefaultConfig() (*Config, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}
	return l.Load()
}

// Validate checks the struct tags of every section and the constraints spanning several fields.
// All problems are reported at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate config: %w", err)
		}
		for _, fe := range verrs {
			result = multierror.Append(result, NewInvalidConfigErr(fe.Namespace(), fmt.Errorf("failed on the %q rule with value %v", fe.Tag(), fe.Value())))
		}
	}

	if c.Kafka.Enabled {
		for i, broker := range c.Kafka.Brokers {
			if strings.TrimSpace(broker) == "" {
				result = multierror.Append(result, NewInvalidConfigErr(fmt.Sprintf("kafka.brokers[%d]", i), errors.New("broker address must not be empty")))
			}
		}
	}

	return result.ErrorOrNil()
}
