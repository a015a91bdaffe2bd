// Package config provides configuration management for the producer.
//
// Values are layered, later sources winning: built-in defaults, the optional
// settings file, .env files, then process environment variables. Command
// line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"kafka-producer/src/contracts"
)

// DefaultSettingsFile is read from the working directory when present.
const DefaultSettingsFile = "appsettings.json"

// Config holds the application configuration. It is built once at startup
// and passed by value to the components that need it.
type Config struct {
	// Brokers are the seed broker addresses (e.g. ["localhost:9092"]).
	Brokers []string `env:"PRODUCER_BROKERS" envSeparator:","`
	// Topic receives every published message.
	Topic string `env:"PRODUCER_TOPIC"`
	// SchemaRegistryURL is the base URL of the schema registry.
	SchemaRegistryURL string `env:"PRODUCER_SCHEMA_REGISTRY_URL"`
	// ClientID identifies this producer to the brokers.
	ClientID string `env:"PRODUCER_CLIENT_ID"`
	// Acks is one of all, leader or none.
	Acks string `env:"PRODUCER_ACKS"`
	// DeliveryTimeout bounds how long a single publish waits for its ack.
	DeliveryTimeout time.Duration `env:"PRODUCER_DELIVERY_TIMEOUT"`
	// LogLevel is a logrus level name.
	LogLevel string `env:"PRODUCER_LOG_LEVEL"`
	// StrictKeys aborts the session on a malformed key instead of reporting it.
	StrictKeys bool `env:"PRODUCER_STRICT_KEYS"`
	// Local runs against the in-memory broker and schema registry.
	Local bool
}

// Options controls where Load looks for configuration.
type Options struct {
	// SettingsFile is a JSON or YAML file with a ProducerOptions section.
	// Missing files are ignored unless Required is set.
	SettingsFile string
	Required     bool
	// EnvFiles are dotenv files loaded into the process environment.
	// Variables already set in the environment are not overwritten.
	EnvFiles []string
}

// DefaultOptions mirrors what the binary uses when no flags are given.
func DefaultOptions() Options {
	return Options{
		SettingsFile: DefaultSettingsFile,
		EnvFiles:     []string{".env", ".env.local"},
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Topic:           contracts.DefaultTopic,
		ClientID:        "kafka-producer",
		Acks:            "all",
		DeliveryTimeout: 30 * time.Second,
		LogLevel:        "info",
	}
}

// settingsFile is the on-disk layout, compatible with appsettings.json.
type settingsFile struct {
	ProducerOptions struct {
		Brokers           string        `yaml:"Brokers"`
		RawTopic          string        `yaml:"RawTopic"`
		SchemaRegistryURL string        `yaml:"SchemaRegistryUrl"`
		ClientID          string        `yaml:"ClientId"`
		Acks              string        `yaml:"Acks"`
		DeliveryTimeout   time.Duration `yaml:"DeliveryTimeout"`
	} `yaml:"ProducerOptions"`
}

// Load builds the configuration from every layer and validates it.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.SettingsFile != "" {
		if err := cfg.mergeFile(opts.SettingsFile, opts.Required); err != nil {
			return Config{}, err
		}
	}

	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return Config{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.Brokers = SplitBrokers(strings.Join(cfg.Brokers, ","))

	return cfg, nil
}

// LoadFromEnv loads configuration from defaults and environment variables only.
func LoadFromEnv() (Config, error) {
	cfg, err := Load(Options{})
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	// JSON is valid YAML, so one decoder covers both formats.
	var sf settingsFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	po := sf.ProducerOptions
	if po.Brokers != "" {
		c.Brokers = SplitBrokers(po.Brokers)
	}
	if po.RawTopic != "" {
		c.Topic = po.RawTopic
	}
	if po.SchemaRegistryURL != "" {
		c.SchemaRegistryURL = po.SchemaRegistryURL
	}
	if po.ClientID != "" {
		c.ClientID = po.ClientID
	}
	if po.Acks != "" {
		c.Acks = po.Acks
	}
	if po.DeliveryTimeout > 0 {
		c.DeliveryTimeout = po.DeliveryTimeout
	}
	return nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// SplitBrokers parses a comma-separated broker list, dropping empty entries.
func SplitBrokers(list string) []string {
	var brokers []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.Topic == "" {
		return errors.New("topic is required (PRODUCER_TOPIC)")
	}
	if !c.Local {
		if len(c.Brokers) == 0 {
			return errors.New("at least one broker is required (PRODUCER_BROKERS)")
		}
		if c.SchemaRegistryURL == "" {
			return errors.New("schema registry URL is required (PRODUCER_SCHEMA_REGISTRY_URL)")
		}
	}
	switch strings.ToLower(c.Acks) {
	case "all", "leader", "none":
	default:
		return fmt.Errorf("acks must be all, leader or none, got %q", c.Acks)
	}
	if c.DeliveryTimeout <= 0 {
		return fmt.Errorf("delivery timeout must be positive, got %s", c.DeliveryTimeout)
	}
	return nil
}
