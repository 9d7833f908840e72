package claim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresRepository is a PostgreSQL implementation of Repository. Each claim
// kind maps to its own table with an identical column layout.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL claim repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// tableFor returns the table name for a claim kind.
func tableFor(kind Kind) (string, error) {
	switch kind {
	case KindCitizen:
		return "citizen_claims", nil
	case KindCompany:
		return "company_claims", nil
	case KindOrganization:
		return "organization_claims", nil
	}
	return "", ErrInvalidKind
}

const claimColumns = `
	id, reference_number, identity, email, display_name, language,
	content, files, status, answer, answered_at,
	created_at, updated_at, deleted_at
`

// Get retrieves a claim by kind and ID.
func (r *PostgresRepository) Get(ctx context.Context, kind Kind, id string) (*Claim, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, claimColumns, table)

	c, err := r.scanClaim(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	c.Kind = kind
	return c, nil
}

// scanClaim scans a claim from a single query row.
func (r *PostgresRepository) scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(
		&c.ID,
		&c.ReferenceNumber,
		&c.Identity,
		&c.Email,
		&c.DisplayName,
		&c.Language,
		&c.Content,
		&c.Files,
		&c.Status,
		&c.Answer,
		&c.AnsweredAt,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List retrieves claims of one kind ordered by creation time descending.
func (r *PostgresRepository) List(ctx context.Context, kind Kind, opts ListOptions) (*ListResult, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	where := "deleted_at IS NULL"
	args := []interface{}{}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, table, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	args = append(args, limit, opts.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, claimColumns, table, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims, err := r.collectClaims(rows, kind)
	if err != nil {
		return nil, err
	}

	return &ListResult{Items: claims, Total: total}, nil
}

// collectClaims scans all rows into claims of the given kind.
func (r *PostgresRepository) collectClaims(rows pgx.Rows, kind Kind) ([]*Claim, error) {
	var claims []*Claim
	for rows.Next() {
		c, err := r.scanClaim(rows)
		if err != nil {
			return nil, err
		}
		c.Kind = kind
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return claims, nil
}

// Create inserts a new claim.
func (r *PostgresRepository) Create(ctx context.Context, c *Claim) error {
	table, err := tableFor(c.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, reference_number, identity, email, display_name, language,
			content, files, status, answer, answered_at,
			created_at, updated_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, table)

	_, err = r.pool.Exec(ctx, query,
		c.ID,
		c.ReferenceNumber,
		c.Identity,
		c.Email,
		c.DisplayName,
		c.Language,
		c.Content,
		c.Files,
		c.Status,
		c.Answer,
		c.AnsweredAt,
		c.CreatedAt,
		c.UpdatedAt,
		c.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// Update persists mutable claim fields.
func (r *PostgresRepository) Update(ctx context.Context, c *Claim) error {
	table, err := tableFor(c.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			identity = $2,
			email = $3,
			display_name = $4,
			files = $5,
			status = $6,
			answer = $7,
			answered_at = $8,
			updated_at = $9,
			deleted_at = $10
		WHERE id = $1
	`, table)

	result, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Identity,
		c.Email,
		c.DisplayName,
		c.Files,
		c.Status,
		c.Answer,
		c.AnsweredAt,
		c.UpdatedAt,
		c.DeletedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrClaimNotFound
	}
	return nil
}

// Delete hard-deletes a claim row, bypassing soft delete.
func (r *PostgresRepository) Delete(ctx context.Context, kind Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrClaimNotFound
	}
	return nil
}

// CountByIdentity counts live claims of one kind for one identity.
func (r *PostgresRepository) CountByIdentity(ctx context.Context, kind Kind, identity string) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		SELECT count(*) FROM %s
		WHERE identity = $1 AND deleted_at IS NULL
	`, table)

	var count int
	if err := r.pool.QueryRow(ctx, query, identity).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ArchiveOlderThan archives all rows created at or before cutoff.
func (r *PostgresRepository) ArchiveOlderThan(ctx context.Context, kind Kind, cutoff time.Time) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET status = $1, updated_at = now()
		WHERE created_at <= $2 AND deleted_at IS NULL
	`, table)

	result, err := r.pool.Exec(ctx, query, StatusArchived, cutoff)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

// ListAnsweredBefore returns answered claims with answeredAt at or before cutoff.
func (r *PostgresRepository) ListAnsweredBefore(ctx context.Context, kind Kind, cutoff time.Time, withFiles bool) ([]*Claim, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	where := "status = 'answered' AND answered_at <= $1"
	if withFiles {
		where += " AND files IS NOT NULL AND array_length(files, 1) > 0"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY answered_at ASC
	`, claimColumns, table, where)

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectClaims(rows, kind)
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
