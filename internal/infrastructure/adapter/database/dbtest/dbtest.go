// Package dbtest starts a throwaway PostgreSQL for integration tests.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/time"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// EnvIntegration enables the container-backed tests
const EnvIntegration = "WG_INTEGRATION"

// TestDatabase is a migrated database in a disposable container
type TestDatabase struct {
	Container *postgres.PostgresContainer
	Manager   *database.Manager
	UoW       *database.UnitOfWork
}

// Setup starts PostgreSQL, connects and migrates. The test is skipped
// unless WG_INTEGRATION=1.
func Setup(t *testing.T) *TestDatabase {
	t.Helper()
	if os.Getenv(EnvIntegration) != "1" {
		t.Skipf("set %s=1 to run database integration tests", EnvIntegration)
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("wingo_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{
			"test":      "wingo-repository",
			"test-name": t.Name(),
		}),
	)
	require.NoError(t, err)

	td := &TestDatabase{Container: container}
	t.Cleanup(func() { td.cleanup(t) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &database.Config{
		Host:            host,
		Port:            port.Int(),
		Username:        "test_user",
		Password:        "test_password",
		Database:        "wingo_test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    5 * time.Second,
		LogLevel:        "silent",
		RetryAttempts:   3,
		RetryDelay:      time.Second,
	}
	require.NoError(t, cfg.Validate())

	tp := timeprovider.NewRealTimeProvider()
	td.Manager = database.NewManager(cfg, logger.NewNoopLogger(), tp)
	_, err = td.Manager.Connect(ctx)
	require.NoError(t, err)
	require.NoError(t, td.Manager.Migrate(ctx))

	td.UoW = td.Manager.CreateUnitOfWork()
	return td
}

func (td *TestDatabase) cleanup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if td.Manager != nil {
		if err := td.Manager.Close(); err != nil {
			t.Logf("closing test database: %v", err)
		}
	}
	if err := td.Container.Terminate(ctx); err != nil {
		t.Logf("Warning: failed to terminate test container: %v", err)
	}
}
