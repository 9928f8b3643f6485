package cmd

import (
	"context"
	"fmt"
	"time"

	"customer-sync/core/config"
	"customer-sync/core/database"
	"customer-sync/core/directory"
	"customer-sync/core/lock"
	"customer-sync/core/logger"
	"customer-sync/core/metrics"
	"customer-sync/core/reconcile"
	"customer-sync/core/storage"
	"customer-sync/feature/customers"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// application holds the collaborators shared by the commands.
type application struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
	service *customers.Service
	db      *gorm.DB
	storage storage.Client
	dir     directory.Directory
	closers []func() error
}

// bootstrapOptions selects the optional collaborators a command needs.
type bootstrapOptions struct {
	database bool
	archive  bool
}

// bootstrap loads configuration and wires the customers service. Optional
// collaborators that fail to connect are logged and left out.
func bootstrap(ctx context.Context, opts bootstrapOptions) (*application, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &application{cfg: cfg, log: logg, metrics: metrics.New()}

	if !cfg.Directory.IsValidDriver() {
		return nil, fmt.Errorf("invalid directory driver %q", cfg.Directory.Driver)
	}
	dir, err := directory.New(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory client: %w", err)
	}
	rt.dir = dir

	locker, err := lock.New(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to create run lock: %w", err)
	}
	if r, ok := locker.(*lock.Redis); ok {
		rt.closers = append(rt.closers, r.Close)
	}

	var source reconcile.Source
	if opts.database {
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			rt.db = conn
			logg.Info("Connected to company database", zap.String("driver", cfg.Database.Driver))
		}
		source = customers.NewDBSource(rt.db, cfg.Customers)
	}

	var archive *customers.Archive
	if opts.archive {
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Storage client unavailable", zap.Error(err))
		} else {
			rt.storage = client
			archive, err = openArchive(ctx, client, cfg)
			if err != nil {
				logg.Warn("Report archive unavailable", zap.Error(err))
				archive = nil
			}
		}
	}

	rt.service = customers.NewService(customers.Deps{
		Engine:    reconcile.NewEngine(logger.WithComponent(logg, "reconcile")),
		Source:    source,
		Directory: dir,
		Locker:    locker,
		Archive:   archive,
		Metrics:   rt.metrics,
		Logger:    logger.WithComponent(logg, "customers"),
		Config:    cfg.Customers,
	})
	return rt, nil
}

func openArchive(ctx context.Context, client storage.Client, cfg *config.Config) (*customers.Archive, error) {
	archive := customers.NewArchive(client, cfg.Storage.Bucket, cfg.Customers.ArchivePrefix, cfg.Customers.ArchiveRetain)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := archive.EnsureBucket(ctx, cfg.Storage.Region); err != nil {
		return nil, err
	}
	return archive, nil
}

// Close releases external connections and flushes the logger.
func (rt *application) Close() {
	for _, c := range rt.closers {
		if err := c(); err != nil {
			rt.log.Warn("Failed to close resource", zap.Error(err))
		}
	}
	_ = rt.log.Sync()
}
