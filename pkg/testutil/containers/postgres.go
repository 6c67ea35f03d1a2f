//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// companiesSchema is applied to every fresh Postgres container. The unique
// index on the normalized domain backs the reconciler's idempotence guarantee
// under concurrent batches.
const companiesSchema = `
CREATE TABLE IF NOT EXISTS companies (
    id           UUID PRIMARY KEY,
    workspace_id UUID NOT NULL,
    domain       TEXT NOT NULL,
    name         TEXT NOT NULL,
    city         TEXT NOT NULL DEFAULT '',
    position     BIGINT NOT NULL,
    source       TEXT NOT NULL,
    created_by   UUID,
    attribution  JSONB,
    created_at   TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS companies_workspace_domain
    ON companies (workspace_id, lower(trim(TRAILING '/' FROM domain)));
CREATE UNIQUE INDEX IF NOT EXISTS companies_workspace_position
    ON companies (workspace_id, position);
`

// PostgresContainer wraps a testcontainers Postgres instance with an open
// database handle and the orgbook schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("orgbook_test"),
		tcpostgres.WithUsername("orgbook"),
		tcpostgres.WithPassword("orgbook"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, companiesSchema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	// Note: no t.Cleanup here; the container is managed by the singleton
	// Manager and shared across test suites. Ryuk handles cleanup.

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// TruncateTables empties the given tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
