package db

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	usersTable = `CREATE TABLE IF NOT EXISTS users (
        id                  BIGINT PRIMARY KEY,
        first_name          TEXT NOT NULL DEFAULT '',
        username            TEXT UNIQUE,
        description         TEXT NOT NULL DEFAULT '',
        channel_url         TEXT NOT NULL DEFAULT '',
        channel_name        TEXT,
        profile_img_url     TEXT NOT NULL DEFAULT '',
        banner_img_url      TEXT NOT NULL DEFAULT '',
        role                TEXT NOT NULL DEFAULT 'UNREGISTERED'
                            CHECK (role IN ('UNREGISTERED', 'STREAMER', 'ADMIN')),
        api_key             UUID NOT NULL,
        online              BOOLEAN NOT NULL DEFAULT FALSE,
        enabled             BOOLEAN NOT NULL DEFAULT FALSE,
        balance             NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
        min_donation_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
        last_online_at      TIMESTAMPTZ,
        full_registered_at  TIMESTAMPTZ,
        created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW())`

	donationsTable = `CREATE TABLE IF NOT EXISTS donations (
        id           BIGSERIAL PRIMARY KEY,
        streamer_id  BIGINT NOT NULL REFERENCES users (id),
        donor_name   TEXT NOT NULL DEFAULT 'Anonymous',
        message      TEXT NOT NULL DEFAULT '',
        amount       NUMERIC(14,2) NOT NULL CHECK (amount > 0),
        method       TEXT NOT NULL CHECK (method IN ('CLICK', 'MIRPAY')),
        external_ref TEXT NOT NULL UNIQUE,
        status       TEXT NOT NULL DEFAULT 'PENDING'
                     CHECK (status IN ('PENDING', 'COMPLETED', 'FAILED')),
        created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW())`

	withdrawalsTable = `CREATE TABLE IF NOT EXISTS withdrawals (
        id          BIGSERIAL PRIMARY KEY,
        streamer_id BIGINT NOT NULL REFERENCES users (id),
        amount      NUMERIC(14,2) NOT NULL CHECK (amount > 0),
        card_number TEXT NOT NULL,
        status      TEXT NOT NULL DEFAULT 'PENDING'
                    CHECK (status IN ('PENDING', 'COMPLETED', 'CANCELED')),
        created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW())`

	indexes = []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_channel_name_lower
            ON users (LOWER(channel_name)) WHERE channel_name IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_api_key ON users (api_key)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_streamer_created
            ON donations (streamer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_status_created
            ON donations (status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_withdrawals_status_created
            ON withdrawals (status, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_withdrawals_streamer_created
            ON withdrawals (streamer_id, created_at DESC)`,
	}
)

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = int32(runtime.NumCPU() * 2)
	cfg.MinConns = 1
	cfg.ConnConfig.RuntimeParams["application_name"] = "donatehub"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

// CreateTables ensures the schema exists. Safe to run on every start.
func CreateTables(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, stmt := range []string{usersTable, donationsTable, withdrawalsTable} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, stmt := range indexes {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
