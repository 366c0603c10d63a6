package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// connectPingTimeout bounds the startup ping so a wrong DSN
// fails fast instead of hanging the bootstrap.
const connectPingTimeout = 5 * time.Second

// Postgres holds the shared gorm handle the engine repositories attach to.
type Postgres struct {
	DB *gorm.DB
}

// Connect opens the database and verifies it answers before any engine
// starts writing outbox rows through it.
func Connect(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	handle, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := handle.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap postgres handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Postgres{DB: handle}, nil
}

// Close releases the underlying connection pool. Safe on a nil receiver so
// in-memory deployments can defer it unconditionally.
func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
