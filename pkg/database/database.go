package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"PetPal/models"
)

type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Tracing         bool
	Attempts        int
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	}
	return nil, errors.Errorf("unsupported db driver %q", driver)
}

// Open connects with exponential backoff, applies pool settings and
// registers the tracing plugin when asked.
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	d, err := dialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var (
		db   *gorm.DB
		last error
	)
	sleep := time.Second
	for i := 1; i <= attempts; i++ {
		db, last = gorm.Open(d, &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if last == nil {
			last = ping(ctx, db)
		}
		if last == nil {
			break
		}
		if i == attempts {
			return nil, errors.Wrapf(last, "open %s after %d attempts", opts.Driver, attempts)
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "open db")
		case <-time.After(sleep):
		}
		if sleep < 8*time.Second {
			sleep *= 2
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "sql db")
	}
	if opts.Driver == "sqlite" || opts.Driver == "" {
		// sqlite allows one writer; a single connection also keeps :memory: shared.
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if opts.Tracing {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, errors.Wrap(err, "register tracing plugin")
		}
	}
	return db, nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(pctx)
}

// Ping reports whether the database answers within the caller's deadline.
func Ping(ctx context.Context, db *gorm.DB) error {
	return ping(ctx, db)
}

// Migrate creates or updates the schema. The participants join table is
// registered first so it carries its own CreatedAt column.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Conversation{}, "Participants", &models.ConversationParticipant{}); err != nil {
		return errors.Wrap(err, "setup join table")
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
	); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}
