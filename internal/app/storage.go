package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/orders/internal/domain/order"
	"github.com/xenking/orders/internal/storage/memory"
	"github.com/xenking/orders/internal/storage/mongo"
	"github.com/xenking/orders/internal/storage/postgres"
	"github.com/xenking/orders/pkg/health"
)

// Store is an opened order repository with its readiness probe.
type Store struct {
	Orders order.Repository
	// Ping is nil for stores without a connection.
	Ping  health.CheckFunc
	Close func()
}

// OpenRepository connects to the store selected by cfg.Driver.
func OpenRepository(ctx context.Context, lg *zap.Logger, cfg StorageConfig) (*Store, error) {
	lg = lg.With(zap.String("driver", cfg.Driver))
	switch cfg.Driver {
	case "memory":
		lg.Warn("Using in-memory store, orders are lost on restart")
		return &Store{Orders: memory.NewOrderRepository(), Close: func() {}}, nil
	case "mongo":
		client, err := mongo.Connect(ctx, cfg.MongoURL, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		lg.Info("Connected to MongoDB",
			zap.String("database", cfg.MongoDatabase),
			zap.String("collection", cfg.MongoCollection),
		)
		return &Store{
			Orders: mongo.NewOrderRepository(coll, cfg.Timeout),
			Ping:   mongo.Ping(client),
			Close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					lg.Warn("Disconnect", zap.Error(err))
				}
			},
		}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		lg.Info("Connected to PostgreSQL")
		return &Store{
			Orders: postgres.NewOrderRepository(pool),
			Ping:   pool.Ping,
			Close:  pool.Close,
		}, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
