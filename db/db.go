package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PoolConfig tunes the database/sql pool. Zero fields fall back to defaults
// sized for the API server; portalctl opens a much smaller pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

var DefaultPool = PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    10,
	ConnMaxLifetime: 5 * time.Minute,
	ConnMaxIdleTime: time.Minute,
}

var CLIPool = PoolConfig{
	MaxOpenConns:    4,
	MaxIdleConns:    2,
	ConnMaxLifetime: time.Minute,
	ConnMaxIdleTime: 30 * time.Second,
}

// Connect opens the portal database with DefaultPool and pings it within timeout.
func Connect(dsn string, timeout time.Duration) (*sqlx.DB, error) {
	return ConnectWithPool(dsn, timeout, DefaultPool)
}

func ConnectWithPool(dsn string, timeout time.Duration, pool PoolConfig) (*sqlx.DB, error) {
	conn, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}
	pool.apply(conn)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return conn, nil
}

func (p PoolConfig) apply(conn *sqlx.DB) {
	if p.MaxOpenConns <= 0 {
		p.MaxOpenConns = DefaultPool.MaxOpenConns
	}
	if p.MaxIdleConns <= 0 || p.MaxIdleConns > p.MaxOpenConns {
		p.MaxIdleConns = min(DefaultPool.MaxIdleConns, p.MaxOpenConns)
	}
	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = DefaultPool.ConnMaxLifetime
	}
	if p.ConnMaxIdleTime <= 0 {
		p.ConnMaxIdleTime = DefaultPool.ConnMaxIdleTime
	}

	conn.SetMaxOpenConns(p.MaxOpenConns)
	conn.SetMaxIdleConns(p.MaxIdleConns)
	conn.SetConnMaxLifetime(p.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(p.ConnMaxIdleTime)
}
