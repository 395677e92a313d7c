package main

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river/riverdriver"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"go.uber.org/zap"

	"github.com/neomorfeo/franchiseapi/internal/adapter/fsm"
	"github.com/neomorfeo/franchiseapi/internal/adapter/kafka"
	"github.com/neomorfeo/franchiseapi/internal/adapter/otel"
	"github.com/neomorfeo/franchiseapi/internal/adapter/postgres"
	riveradapter "github.com/neomorfeo/franchiseapi/internal/adapter/river"
	"github.com/neomorfeo/franchiseapi/internal/adapter/sqlite"
	"github.com/neomorfeo/franchiseapi/internal/config"
	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// store is the selected persistence backend. Exactly one of sqliteStore
// and pgStore is set.
type store struct {
	franchises domain.FranchiseRepository
	branches   domain.BranchRepository
	products   domain.ProductRepository

	sqliteStore *sqlite.Store
	pgStore     *postgres.Store
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return &store{
			franchises: s.Franchises(),
			branches:   s.Branches(),
			products:   s.Products(),
			pgStore:    s,
		}, nil
	default:
		db, err := otel.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		s, err := sqlite.NewFromDB(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &store{
			franchises:  s.Franchises(),
			branches:    s.Branches(),
			products:    s.Products(),
			sqliteStore: s,
		}, nil
	}
}

func (s *store) close() {
	if s.pgStore != nil {
		s.pgStore.Close()
	}
	if s.sqliteStore != nil {
		_ = s.sqliteStore.Close()
	}
}

// newPublisher builds the configured event publisher. The returned func
// releases it and must run before the store is closed.
func newPublisher(ctx context.Context, cfg *config.Config, s *store, log *zap.Logger) (domain.EventPublisher, func(), error) {
	switch cfg.Events.Publisher {
	case config.PublisherKafka:
		k, err := newKafka(ctx, cfg.Kafka)
		if err != nil {
			return nil, nil, err
		}
		return k, k.Close, nil

	case config.PublisherRiver:
		var sink riveradapter.Sink = riveradapter.NewLogSink(log)
		closeSink := func() {}
		if len(cfg.Kafka.Brokers) > 0 {
			k, err := newKafka(ctx, cfg.Kafka)
			if err != nil {
				return nil, nil, err
			}
			sink, closeSink = k, k.Close
		}

		var (
			pub       domain.EventPublisher
			stopQueue func()
			err       error
		)
		if s.pgStore != nil {
			pub, stopQueue, err = startQueue(ctx, riverpgxv5.New(s.pgStore.Pool()), sink, log)
		} else {
			pub, stopQueue, err = startQueue(ctx, riversqlite.New(s.sqliteStore.DB()), sink, log)
		}
		if err != nil {
			closeSink()
			return nil, nil, err
		}
		return pub, func() { stopQueue(); closeSink() }, nil

	default:
		return riveradapter.NewLogSink(log), func() {}, nil
	}
}

func newKafka(ctx context.Context, cfg config.KafkaConfig) (*kafka.Publisher, error) {
	k, err := kafka.New(cfg.Brokers)
	if err != nil {
		return nil, err
	}
	if cfg.CreateTopics {
		setupCtx, cancel := context.WithTimeout(ctx, cfg.SetupTimeout)
		defer cancel()
		if err := k.EnsureTopics(setupCtx, domain.Topics...); err != nil {
			k.Close()
			return nil, fmt.Errorf("creating kafka topics: %w", err)
		}
	}
	return k, nil
}

// startQueue runs the River relay on driver until the returned stop func
// is called. Jobs outlive request cancellation, so the client runs on a
// detached context.
func startQueue[TTx any](ctx context.Context, driver riverdriver.Driver[TTx], sink riveradapter.Sink, log *zap.Logger) (domain.EventPublisher, func(), error) {
	client, err := riveradapter.Setup(ctx, driver, sink, fsm.New(), log)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, nil, fmt.Errorf("starting river: %w", err)
	}

	stop := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			log.Warn("river stop failed", zap.Error(err))
		}
	}
	return riveradapter.NewPublisher(client), stop, nil
}
