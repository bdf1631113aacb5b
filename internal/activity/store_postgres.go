package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// Schema creates the activity journal table.
const Schema = `
CREATE TABLE IF NOT EXISTS claim_activity (
	seq         BIGSERIAL PRIMARY KEY,
	id          TEXT NOT NULL UNIQUE,
	claim_id    TEXT NOT NULL,
	action      TEXT NOT NULL,
	actor       TEXT NOT NULL,
	request_id  TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	details     JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS claim_activity_claim_idx ON claim_activity (claim_id, seq)`

// PostgresStore persists the activity journal in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("activity: migrate: %w", err)
	}
	return nil
}

// Append is idempotent on event id.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	details := []byte("{}")
	if len(event.Details) > 0 {
		var err error
		if details, err = json.Marshal(event.Details); err != nil {
			return fmt.Errorf("marshal activity details: %w", err)
		}
	}
	query := `
		INSERT INTO claim_activity (id, claim_id, action, actor, request_id, occurred_at, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.ClaimID, string(event.Action), event.Actor, event.RequestID, event.Timestamp, details,
	)
	if err != nil {
		return fmt.Errorf("insert activity event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByClaim(ctx context.Context, claimID string, actions ...Action) ([]Event, error) {
	query := `
		SELECT id, claim_id, action, actor, request_id, occurred_at, details
		FROM claim_activity
		WHERE claim_id = $1
	`
	args := []any{claimID}
	if len(actions) > 0 {
		names := make([]string, len(actions))
		for i, a := range actions {
			names[i] = string(a)
		}
		query += ` AND action = ANY($2)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	out := make([]Event, 0, 8)
	for rows.Next() {
		var (
			e       Event
			action  string
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.ClaimID, &action, &e.Actor, &e.RequestID, &e.Timestamp, &details); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.Action = Action(action)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("decode activity details: %w", err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return out, nil
}
