package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/config"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database = config.DatabaseConfig{
		Driver:        "postgres",
		Host:          "localhost",
		Port:          "5432",
		Username:      "wingo",
		Password:      "secret",
		Database:      "wingo",
		MaxOpenConns:  10,
		MaxIdleConns:  5,
		QueryTimeout:  5 * time.Second,
		RetryAttempts: 0,
	}
	cfg.Logger.Level = "warn"
	return cfg
}

func TestFromAppConfig(t *testing.T) {
	c, err := FromAppConfig(appConfig())
	require.NoError(t, err)

	assert.Equal(t, 5432, c.Port)
	assert.Equal(t, "disable", c.SSLMode)
	assert.Equal(t, 1, c.RetryAttempts)
	assert.Equal(t, "host=localhost port=5432 user=wingo password=secret dbname=wingo sslmode=disable", c.DSN())
}

func TestFromAppConfig_Rejections(t *testing.T) {
	cfg := appConfig()
	cfg.Database.Port = "postgres"
	_, err := FromAppConfig(cfg)
	assert.Error(t, err)

	cfg = appConfig()
	cfg.Database.Host = ""
	_, err = FromAppConfig(cfg)
	assert.ErrorContains(t, err, "host")

	cfg = appConfig()
	cfg.Database.SSLMode = "sometimes"
	_, err = FromAppConfig(cfg)
	assert.ErrorContains(t, err, "SSL")
}

func TestExtractQueryParts(t *testing.T) {
	testCases := []struct {
		sql       string
		queryType string
		table     string
	}{
		{`SELECT * FROM "users" WHERE id = 1`, "SELECT", "users"},
		{`INSERT INTO "ledger_entries" ("id") VALUES ($1)`, "INSERT", "ledger_entries"},
		{`UPDATE "wagers" SET "status"=$1`, "UPDATE", "wagers"},
		{`BEGIN`, "", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.queryType, extractQueryType(tc.sql), tc.sql)
		assert.Equal(t, tc.table, extractTableName(tc.sql), tc.sql)
	}
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 5, RetryInterval: 100 * time.Millisecond, MaxInterval: time.Second}

	assert.Equal(t, 100*time.Millisecond, calculateBackoffWithJitter(0, cfg))
	assert.Equal(t, 400*time.Millisecond, calculateBackoffWithJitter(2, cfg))
	assert.Equal(t, time.Second, calculateBackoffWithJitter(8, cfg))

	cfg.JitterFactor = 0.5
	got := calculateBackoffWithJitter(0, cfg)
	assert.GreaterOrEqual(t, got, 100*time.Millisecond)
	assert.LessOrEqual(t, got, 150*time.Millisecond)
}

func TestRetryOnTransientError(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, RetryInterval: time.Millisecond, MaxInterval: time.Millisecond}
	log := logger.NewNoopLogger()

	t.Run("RetriesDeadlock", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), cfg, func() error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: "40P01"}
			}
			return nil
		}, log)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("StopsOnPermanentError", func(t *testing.T) {
		calls := 0
		permanent := errors.New("syntax error")
		err := RetryOnTransientError(context.Background(), cfg, func() error {
			calls++
			return permanent
		}, log)
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("GivesUp", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), cfg, func() error {
			calls++
			return &pgconn.PgError{Code: "40001"}
		}, log)
		assert.Error(t, err)
		assert.Equal(t, 3, calls)
	})
}
