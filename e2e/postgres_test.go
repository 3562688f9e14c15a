package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	pgOnce      sync.Once
	pgErr       error
	testCleanup func()
	testDSN     string
)

// getSharedPostgresDatabase returns the DSN of a PostgreSQL container shared
// by all tests in the package.
func getSharedPostgresDatabase(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres e2e test in short mode")
	}

	pgOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			pgErr = err
			return
		}

		testCleanup = func() {
			_ = testcontainers.TerminateContainer(pgContainer)
		}

		testDSN, pgErr = pgContainer.ConnectionString(ctx, "sslmode=disable")
	})

	if pgErr != nil {
		t.Fatalf("failed to start postgres container: %v", pgErr)
	}
	return testDSN
}
