package company

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"orgbook/internal/company/models"

	id "orgbook/pkg/domain"
	"orgbook/pkg/platform/sentinel"
)

// PostgresStore persists companies in PostgreSQL.
//
// Schema expectations:
//
//	CREATE TABLE companies (
//	    id           UUID PRIMARY KEY,
//	    workspace_id UUID NOT NULL,
//	    domain       TEXT NOT NULL,
//	    name         TEXT NOT NULL,
//	    city         TEXT NOT NULL DEFAULT '',
//	    position     BIGINT NOT NULL,
//	    source       TEXT NOT NULL,
//	    created_by   UUID,
//	    attribution  JSONB,
//	    created_at   TIMESTAMPTZ NOT NULL
//	);
//	CREATE UNIQUE INDEX companies_workspace_domain ON companies (workspace_id, lower(trim(TRAILING '/' FROM domain)));
//	CREATE UNIQUE INDEX companies_workspace_position ON companies (workspace_id, position);
//
// The unique index on the normalized domain closes the race where two
// concurrent reconciles both miss the existence check for the same new key:
// the second BulkCreate fails with sentinel.ErrConflict instead of producing a
// duplicate.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed company store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByDomains matches stored rows by normalized domain. Normalization is
// applied on the stored value inside the query because older rows may carry
// raw domains; the input domains are already normalized.
func (s *PostgresStore) FindByDomains(ctx context.Context, workspaceID id.WorkspaceID, domains []string) ([]*models.Company, error) {
	if len(domains) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(domains))
	args := make([]any, 0, len(domains)+1)
	args = append(args, uuid.UUID(workspaceID))
	for i, d := range domains {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, d)
	}

	query := fmt.Sprintf(`
		SELECT id, workspace_id, domain, name, city, position, source, created_by, attribution, created_at
		FROM companies
		WHERE workspace_id = $1
		  AND lower(trim(TRAILING '/' FROM domain)) IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find companies by domain: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

// MaxPosition returns the highest ordering position in the workspace, 0 when
// the workspace is empty.
func (s *PostgresStore) MaxPosition(ctx context.Context, workspaceID id.WorkspaceID) (int64, error) {
	var max int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM companies WHERE workspace_id = $1`,
		uuid.UUID(workspaceID),
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max company position: %w", err)
	}
	return max, nil
}

// BulkCreate inserts all companies in a single transaction, assigning each a
// fresh ID. A unique-index violation rolls the whole batch back and surfaces
// as sentinel.ErrConflict.
func (s *PostgresStore) BulkCreate(ctx context.Context, companies []*models.Company) ([]*models.Company, error) {
	if len(companies) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insert = `
		INSERT INTO companies (id, workspace_id, domain, name, city, position, source, created_by, attribution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	created := make([]*models.Company, len(companies))
	for i, c := range companies {
		copied := *c
		copied.ID = id.CompanyID(uuid.New())

		var attribution []byte
		if len(copied.Attribution) > 0 {
			attribution, err = json.Marshal(copied.Attribution)
			if err != nil {
				return nil, fmt.Errorf("marshal attribution: %w", err)
			}
		}

		createdBy := uuid.NullUUID{UUID: uuid.UUID(copied.CreatedBy), Valid: !copied.CreatedBy.IsNil()}

		_, err = tx.ExecContext(ctx, insert,
			uuid.UUID(copied.ID),
			uuid.UUID(copied.WorkspaceID),
			copied.Domain,
			copied.Name,
			copied.City,
			copied.Position,
			string(copied.Source),
			createdBy,
			attribution,
			copied.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("bulk create companies: %w", sentinel.ErrConflict)
			}
			return nil, fmt.Errorf("bulk create companies: %w", err)
		}
		created[i] = &copied
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk create: %w", err)
	}
	return created, nil
}

// Count returns the number of companies in the workspace. Used by tests.
func (s *PostgresStore) Count(ctx context.Context, workspaceID id.WorkspaceID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM companies WHERE workspace_id = $1`,
		uuid.UUID(workspaceID),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return n, nil
}

func scanCompany(rows *sql.Rows) (*models.Company, error) {
	var (
		c           models.Company
		companyID   uuid.UUID
		workspaceID uuid.UUID
		source      string
		createdBy   uuid.NullUUID
		attribution []byte
	)
	if err := rows.Scan(&companyID, &workspaceID, &c.Domain, &c.Name, &c.City, &c.Position, &source, &createdBy, &attribution, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.ID = id.CompanyID(companyID)
	c.WorkspaceID = id.WorkspaceID(workspaceID)
	c.Source = models.CreationSource(source)
	if createdBy.Valid {
		c.CreatedBy = id.ContactID(createdBy.UUID)
	}
	if len(attribution) > 0 {
		if err := json.Unmarshal(attribution, &c.Attribution); err != nil {
			return nil, fmt.Errorf("unmarshal attribution: %w", err)
		}
	}
	return &c, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
