package builder

import (
	"context"
	"fmt"

	"github.com/futig/study-helper/internal/config"
	"github.com/futig/study-helper/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// setupStore connects to the configured database and runs migrations when
// DB_AUTO_MIGRATE is set.
func setupStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	if cfg.Database.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()
	}

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return setupSQLite(cfg.Database, logger)
	default:
		return setupPostgres(ctx, cfg.Database, logger)
	}
}

func setupPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.Store, error) {
	if cfg.AutoMigrate {
		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.URL); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Debug("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
		zap.Duration("max_conn_idle_time", poolConfig.MaxConnIdleTime),
	)

	return repository.NewPostgres(pool), nil
}

func setupSQLite(cfg config.DatabaseConfig, logger *zap.Logger) (repository.Store, error) {
	if cfg.AutoMigrate {
		// The migrate driver closes the handle it is given.
		migrateDB, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite for migrations: %w", err)
		}
		if err := repository.RunSQLiteMigrations(migrateDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")
	}

	db, err := repository.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	logger.Debug("sqlite database opened", zap.String("path", cfg.SQLitePath))

	return repository.NewSQLite(db), nil
}
