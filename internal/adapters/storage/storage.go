package storage

import (
	"context"
	"fmt"

	"permit-history/internal/adapters/remote/postgrest"
	"permit-history/internal/adapters/storage/memory"
	"permit-history/internal/adapters/storage/postgres"
	s3store "permit-history/internal/adapters/storage/s3"
	"permit-history/internal/adapters/storage/sqlite"
	"permit-history/internal/platform/config"
	"permit-history/internal/ports/snapshots"
)

// Open construye el snapshot store del driver configurado.
// closeFn libera conexiones (no-op para drivers sin estado).
func Open(ctx context.Context, cfg config.StoreConfig) (store snapshots.Store, closeFn func() error, err error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewSnapshotRepo(), noop, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewSnapshotRepo(db, cfg.PageSize), db.Close, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.PageSize)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.DriverS3:
		s, err := s3store.New(ctx, s3store.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,

			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open s3: %w", err)
		}
		return s, noop, nil

	case config.DriverPostgREST:
		s, err := postgrest.New(postgrest.Config{
			URL:      cfg.PostgREST.URL,
			APIKey:   cfg.PostgREST.APIKey,
			Table:    cfg.PostgREST.Table,
			PageSize: cfg.PageSize,
		}, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgrest: %w", err)
		}
		return s, noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported snapshot store %q", cfg.Driver)
	}
}
