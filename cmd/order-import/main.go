// Command order-import loads gzip'ed NDJSON order snapshots into the
// configured order store, skipping ids that are already stored.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/orders/internal/app"
)

func main() {
	var (
		dataDir string
		pattern string
		workers int
		storage app.StorageConfig
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing order dumps")
	flag.StringVar(&pattern, "pattern", "*.ndjson.gz", "glob of dump files inside data-dir")
	flag.IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "files processed concurrently")
	flag.StringVar(&storage.Driver, "storage", "mongo", "order store: mongo or postgres")
	flag.StringVar(&storage.MongoURL, "mongo-url", "mongodb://localhost:27017", "MongoDB URL (or MONGODB_URL env)")
	flag.StringVar(&storage.MongoDatabase, "mongo-database", "db_orders", "MongoDB database")
	flag.StringVar(&storage.MongoCollection, "mongo-collection", "orders", "MongoDB collection")
	flag.StringVar(&storage.DatabaseURL, "database-url", "", "PostgreSQL URL (or DATABASE_URL env)")
	flag.DurationVar(&storage.Timeout, "timeout", 30*time.Second, "per-operation store timeout")
	flag.Parse()

	if v := os.Getenv("MONGODB_URL"); v != "" && storage.MongoURL == "mongodb://localhost:27017" {
		storage.MongoURL = v
	}
	if storage.DatabaseURL == "" {
		storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, storage, filepath.Join(dataDir, pattern), workers); err != nil {
		lg.Error("Order import failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *zap.Logger, cfg app.StorageConfig, glob string, workers int) error {
	if cfg.Driver == "memory" {
		return errors.New("importing into the memory store has no effect")
	}
	files, err := filepath.Glob(glob)
	if err != nil {
		return errors.Wrap(err, "glob dump files")
	}
	if len(files) == 0 {
		return errors.Errorf("no files match %q", glob)
	}

	store, err := app.OpenRepository(ctx, lg, cfg)
	if err != nil {
		return errors.Wrap(err, "open repository")
	}
	defer store.Close()

	imp, err := newImporter(ctx, lg, store.Orders)
	if err != nil {
		return err
	}
	stats, err := imp.importFiles(ctx, files, workers)
	lg.Info("Import finished",
		zap.Int64("imported", stats.Imported),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("invalid", stats.Invalid),
	)
	return err
}
