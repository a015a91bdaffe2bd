// Package main provides the interactive producer.
//
// Each line typed at the prompt is published synchronously to the configured
// topic, its payload serialized through the schema registry:
//
//	> 42 hello world     key 42, message "hello world"
//	> hello              key 0, message "hello"
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kafka-producer/src/broker"
	"kafka-producer/src/codec"
	"kafka-producer/src/config"
	"kafka-producer/src/contracts"
	"kafka-producer/src/input"
	"kafka-producer/src/lifecycle"
	"kafka-producer/src/logger"
	"kafka-producer/src/producer"
)

// sessionPublisher is a publisher that can describe itself in the banner.
type sessionPublisher interface {
	contracts.Publisher
	Name() string
	Brokers() []string
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "producer",
		Short: "Interactively publish schema-registry encoded messages to Kafka",
		Long: `Reads "key value" lines from standard input and publishes each one
synchronously, waiting for the broker's acknowledgement before prompting
again. The value is serialized with the Avro schema registered for it in
the schema registry.

Configuration is read from appsettings.json, .env files and PRODUCER_*
environment variables; flags override all of them.

Example:
  PRODUCER_BROKERS=localhost:9092 PRODUCER_SCHEMA_REGISTRY_URL=http://localhost:8081 producer
  producer --local`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	flags := cmd.Flags()
	flags.String("config", config.DefaultSettingsFile, "settings file (JSON or YAML)")
	flags.String("brokers", "", "comma-separated seed brokers")
	flags.String("topic", "", "topic to publish to")
	flags.String("schema-registry", "", "schema registry URL")
	flags.String("client-id", "", "client id reported to the brokers")
	flags.String("acks", "", "required acks: all, leader or none")
	flags.Duration("delivery-timeout", 0, "how long to wait for each acknowledgement")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("strict-keys", false, "exit on a malformed key instead of reporting it")
	flags.Bool("local", false, "use the in-memory broker and schema registry")

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	log = log.WithField("topic", cfg.Topic)

	pub, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}

	lr, err := input.NewLineReader(os.Stdin)
	if err != nil {
		return closeOnError(fmt.Errorf("failed to open input: %w", err), pub)
	}
	defer lr.Close()

	ctrl := lifecycle.WithInterrupt(cmd.Context(), log)
	defer ctrl.Stop()

	return producer.Serve(ctrl.Context(), lr, cmd.OutOrStdout(), pub, producer.Options{
		Topic:           cfg.Topic,
		StrictKeys:      cfg.StrictKeys,
		DeliveryTimeout: cfg.DeliveryTimeout,
		ProducerName:    pub.Name(),
		Brokers:         pub.Brokers(),
	}, log)
}

// loadConfig layers flags over the file and environment configuration.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	opts := config.DefaultOptions()
	opts.SettingsFile, _ = flags.GetString("config")
	opts.Required = flags.Changed("config")

	cfg, err := config.Load(opts)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("brokers") {
		v, _ := flags.GetString("brokers")
		cfg.Brokers = config.SplitBrokers(v)
	}
	if flags.Changed("topic") {
		cfg.Topic, _ = flags.GetString("topic")
	}
	if flags.Changed("schema-registry") {
		cfg.SchemaRegistryURL, _ = flags.GetString("schema-registry")
	}
	if flags.Changed("client-id") {
		cfg.ClientID, _ = flags.GetString("client-id")
	}
	if flags.Changed("acks") {
		cfg.Acks, _ = flags.GetString("acks")
	}
	if flags.Changed("delivery-timeout") {
		cfg.DeliveryTimeout, _ = flags.GetDuration("delivery-timeout")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("strict-keys") {
		cfg.StrictKeys, _ = flags.GetBool("strict-keys")
	}
	cfg.Local, _ = flags.GetBool("local")
	cfg.Acks = strings.ToLower(cfg.Acks)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// closeOnError releases c after a setup failure, keeping both errors.
func closeOnError(err error, c io.Closer) error {
	return errors.Join(err, c.Close())
}

// newPublisher wires the schema codec into a broker client.
func newPublisher(cfg config.Config, log *logger.ConsoleLogger) (sessionPublisher, error) {
	subject := codec.SubjectForTopic(cfg.Topic)

	if cfg.Local {
		log.Info("Local mode: using in-memory broker and schema registry")
		enc := codec.New(codec.NewMemoryRegistry(), subject, log)
		return broker.NewInMemoryBroker(enc), nil
	}

	registry, err := codec.NewRemoteRegistry(cfg.SchemaRegistryURL)
	if err != nil {
		return nil, err
	}
	enc := codec.New(registry, subject, log)

	brk, err := broker.NewKafkaBroker(broker.Options{
		Brokers:         cfg.Brokers,
		ClientID:        cfg.ClientID,
		Acks:            cfg.Acks,
		DeliveryTimeout: cfg.DeliveryTimeout,
		LogLevel:        logger.KgoLevel(cfg.LogLevel),
	}, enc, log)
	if err != nil {
		enc.Close()
		return nil, err
	}

	log.Info("Producing to brokers %v, schema registry %s", cfg.Brokers, cfg.SchemaRegistryURL)
	return brk, nil
}
