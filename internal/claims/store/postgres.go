package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"claimsight/internal/claims/models"
	"claimsight/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Schema creates the claims table. seq orders claims by insertion.
const Schema = `
CREATE TABLE IF NOT EXISTS claims (
	seq          BIGSERIAL PRIMARY KEY,
	id           TEXT NOT NULL UNIQUE,
	policy_no    TEXT NOT NULL,
	amount       DOUBLE PRECISION NOT NULL,
	description  TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	status       TEXT NOT NULL,
	risk_score   INTEGER NOT NULL CHECK (risk_score BETWEEN 0 AND 100),
	risk_label   TEXT NOT NULL,
	documents    JSONB NOT NULL DEFAULT '[]',
	claimant     JSONB NOT NULL,
	location     JSONB NOT NULL,
	comments     JSONB NOT NULL DEFAULT '[]'
)`

// PostgresStore is the durable claim store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the claims schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("claims: migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, claim *models.Claim) error {
	docs, claimant, location, comments, err := encodeNested(claim)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO claims (id, policy_no, amount, description, submitted_at, status,
			risk_score, risk_label, documents, claimant, location, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.pool.Exec(ctx, query,
		claim.ID, claim.PolicyNo, claim.Amount, claim.Description, claim.SubmittedAt.UTC(),
		string(claim.Status), claim.RiskScore, string(claim.RiskLabel),
		docs, claimant, location, comments,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("claim %s: %w", claim.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("claims: add: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a claim.
func (s *PostgresStore) Update(ctx context.Context, claim *models.Claim) error {
	comments, err := json.Marshal(nonNilComments(claim.Comments))
	if err != nil {
		return fmt.Errorf("claims: encode comments: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE claims SET status = $2, comments = $3 WHERE id = $1`,
		claim.ID, string(claim.Status), comments,
	)
	if err != nil {
		return fmt.Errorf("claims: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("claim %s: %w", claim.ID, sentinel.ErrNotFound)
	}
	return nil
}

const selectColumns = `
	SELECT id, policy_no, amount, description, submitted_at, status,
		risk_score, risk_label, documents, claimant, location, comments
	FROM claims`

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Claim, error) {
	row := s.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("claim %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("claims: find: %w", err)
	}
	return claim, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Claim, error) {
	rows, err := s.pool.Query(ctx, selectColumns+` ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("claims: list: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Claim, 0, 16)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("claims: scan: %w", err)
		}
		out = append(out, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claims: iterate: %w", err)
	}
	return out, nil
}

func scanClaim(row pgx.Row) (*models.Claim, error) {
	var (
		c                                  models.Claim
		status, label                      string
		submittedAt                        time.Time
		docs, claimant, location, comments []byte
	)
	if err := row.Scan(&c.ID, &c.PolicyNo, &c.Amount, &c.Description, &submittedAt, &status,
		&c.RiskScore, &label, &docs, &claimant, &location, &comments); err != nil {
		return nil, err
	}
	c.SubmittedAt = submittedAt.UTC()
	c.Status = models.Status(status)
	c.RiskLabel = models.RiskLabel(label)
	if err := json.Unmarshal(docs, &c.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if err := json.Unmarshal(claimant, &c.Claimant); err != nil {
		return nil, fmt.Errorf("decode claimant: %w", err)
	}
	if err := json.Unmarshal(location, &c.Location); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	if err := json.Unmarshal(comments, &c.Comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	if c.Documents == nil {
		c.Documents = []models.Document{}
	}
	c.Comments = nonNilComments(c.Comments)
	return &c, nil
}

func encodeNested(c *models.Claim) (docs, claimant, location, comments []byte, err error) {
	documents := c.Documents
	if documents == nil {
		documents = []models.Document{}
	}
	if docs, err = json.Marshal(documents); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("claims: encode documents: %w", err)
	}
	if claimant, err = json.Marshal(c.Claimant); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("claims: encode claimant: %w", err)
	}
	if location, err = json.Marshal(c.Location); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("claims: encode location: %w", err)
	}
	if comments, err = json.Marshal(nonNilComments(c.Comments)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("claims: encode comments: %w", err)
	}
	return docs, claimant, location, comments, nil
}

func nonNilComments(in []models.Comment) []models.Comment {
	if in == nil {
		return []models.Comment{}
	}
	return in
}
