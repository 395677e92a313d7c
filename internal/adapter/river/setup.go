package river

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver"
	"github.com/riverqueue/river/rivermigrate"
	"go.uber.org/zap"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Setup creates a River client with the relay worker registered and runs
// River's internal migrations. The caller must call client.Start() to begin
// processing jobs and client.Stop() for graceful shutdown.
//
// The driver decides where jobs live: riversqlite.New(db) shares the SQLite
// file with the repositories, riverpgxv5.New(pool) shares the PostgreSQL pool.
func Setup[TTx any](
	ctx context.Context,
	driver riverdriver.Driver[TTx],
	sink Sink,
	validator domain.LifecycleValidator,
	logger *zap.Logger,
) (*river.Client[TTx], error) {
	// River's own tables (river_job, river_leader, ...) are versioned
	// separately from the app's goose migrations.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRelayWorker(sink, validator, logger))

	// One worker on the relay queue keeps events for a key in the order
	// they were published.
	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueEvents: {MaxWorkers: 1},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
