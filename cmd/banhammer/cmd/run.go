package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/config"
	engine "github.com/relayguard/banhammer/engine/banhammer"
	"github.com/relayguard/banhammer/engine/ingest"
	"github.com/relayguard/banhammer/module"
	"github.com/relayguard/banhammer/module/component"
	"github.com/relayguard/banhammer/module/irrecoverable"
	"github.com/relayguard/banhammer/module/metrics"
	bstorage "github.com/relayguard/banhammer/storage/badger"
)

func init() {
	rootCmd.AddCommand(runCmd)
	config.InitializeFlags(runCmd.Flags(), defaultConfig())
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "consume relayer inputs and ban abusive identities",
	Long: `Consumes relayer inputs from the configured Kafka topic, or JSON lines from stdin when
Kafka is disabled, and bans clients, senders and tokens that repeatedly cause violations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return run(ctx, log, cfg)
	},
}

// node holds the collectors of one run.
type node struct {
	banhammerMetrics module.BanhammerMetrics
	engineMetrics    module.EngineMetrics
	journalMetrics   module.JournalMetrics
	server           *metrics.Server
}

func newNode(log zerolog.Logger, cfg *config.Config) *node {
	if !cfg.Metrics.Enabled {
		noop := metrics.NewNoopCollector()
		return &node{banhammerMetrics: noop, engineMetrics: noop, journalMetrics: noop}
	}
	return &node{
		banhammerMetrics: metrics.NewBanhammerCollector(),
		engineMetrics:    metrics.NewEngineCollector(),
		journalMetrics:   metrics.NewJournalCollector(),
		server:           metrics.NewServer(log, cfg.Metrics.Port, prometheus.DefaultGatherer),
	}
}

func run(ctx context.Context, log zerolog.Logger, cfg *config.Config) error {
	n := newNode(log, cfg)

	distributor := banhammer.NewDistributor()
	var db *badger.DB
	if cfg.Journal.Enabled {
		var err error
		db, err = bstorage.Open(log, cfg.Journal.Dir)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error().Err(err).Msg("could not close ban journal")
			}
		}()
		distributor.AddConsumer(bstorage.NewBans(log, n.journalMetrics, db))
	}

	log.Info().
		Dur("decay_interval", cfg.Banhammer.DecayInterval).
		Int("buckets", cfg.Buckets.Len()).
		Bool("kafka", cfg.Kafka.Enabled).
		Bool("journal", cfg.Journal.Enabled).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("starting banhammer")

	var eng *engine.Engine
	factory := func() (component.Component, error) {
		hammer, err := banhammer.New(log, cfg.Banhammer, time.Now(),
			banhammer.WithMetrics(n.banhammerMetrics),
			banhammer.WithBanConsumer(distributor),
		)
		if err != nil {
			return nil, err
		}
		eng, err = engine.New(log, n.engineMetrics, hammer, cfg.Engine)
		if err != nil {
			return nil, err
		}

		builder := component.NewComponentManagerBuilder().
			AddWorker(componentWorker(eng))
		if n.server != nil {
			builder.AddWorker(readyDoneWorker(n.server))
		}
		if cfg.Kafka.Enabled {
			consumer, err := ingest.NewConsumer(log, cfg.Kafka, ingest.NewHandler(log, n.engineMetrics, eng))
			if err != nil {
				return nil, err
			}
			builder.AddWorker(componentWorker(consumer))
		} else {
			builder.AddWorker(stdinWorker(log, n.engineMetrics, eng))
		}
		return builder.Build(), nil
	}

	err := component.RunComponent(ctx, factory, func(err error) component.ErrorHandlingResult {
		log.Error().Err(err).Msg("banhammer encountered an irrecoverable error")
		return component.ErrorHandlingStop
	})

	if eng != nil {
		list := eng.BanList()
		log.Info().
			Int("banned_clients", len(list.Clients)).
			Int("banned_senders", len(list.Senders)).
			Int("banned_tokens", len(list.Tokens)).
			Msg("banhammer stopped")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("banhammer failed: %w", err)
	}
	return nil
}

// componentWorker runs c as a worker of the enclosing component manager.
func componentWorker(c component.Component) component.ComponentWorker {
	return func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
		c.Start(ctx)
		<-c.Ready()
		ready()
		<-c.Done()
	}
}

// readyDoneWorker runs a component that is started by Ready and stopped by Done.
func readyDoneWorker(c module.ReadyDoneAware) component.ComponentWorker {
	return func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
		<-c.Ready()
		ready()
		<-ctx.Done()
		<-c.Done()
	}
}

// stdinWorker submits JSON lines read from stdin. Reading happens in its own goroutine since a
// blocked read cannot be interrupted; after EOF the node keeps running until it is stopped.
func stdinWorker(log zerolog.Logger, engineMetrics module.EngineMetrics, eng *engine.Engine) component.ComponentWorker {
	return func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
		ready()
		<-eng.Ready()

		reader := ingest.NewLineReader(log, engineMetrics, eng)
		finished := make(chan error, 1)
		go func() {
			submitted, err := reader.Run(ctx.Done(), os.Stdin)
			log.Info().Int("submitted", submitted).Msg("finished reading inputs from stdin")
			finished <- err
		}()

		select {
		case <-ctx.Done():
		case err := <-finished:
			if err != nil {
				ctx.Throw(err)
			}
		}
	}
}
