package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const attemptsSchema = `
CREATE TABLE IF NOT EXISTS submission_attempts (
	id               TEXT PRIMARY KEY,
	sender           TEXT NOT NULL,
	receiver         TEXT NOT NULL,
	product_id       BIGINT NOT NULL,
	price_wei        TEXT NOT NULL,
	memo             TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	authorization_id BIGINT NOT NULL DEFAULT 0,
	authorization_tx TEXT NOT NULL DEFAULT '',
	transfer_ref     TEXT NOT NULL DEFAULT '',
	last_error       TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS submission_attempts_status_idx ON submission_attempts (status);
`

// PostgresStore is the pgx-backed journal.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// poolConfig parses the DSN and applies the pool bounds.
func poolConfig(dsn string, minConns, maxConns int) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	poolCfg.MinConns = int32(minConns)
	poolCfg.MaxConns = int32(maxConns)
	return poolCfg, nil
}

// NewPostgresStore connects a pooled journal and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string, minConns, maxConns int, logger *log.Logger) (*PostgresStore, error) {
	poolCfg, err := poolConfig(dsn, minConns, maxConns)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := pool.Exec(ctx, attemptsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure journal schema: %w", err)
	}

	logger.Printf("Attempt journal connected (pool %d-%d)", minConns, maxConns)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) InsertAttempt(ctx context.Context, a *Attempt) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO submission_attempts (
			id, sender, receiver, product_id, price_wei, memo,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		a.ID, a.Sender, a.Receiver, a.ProductID, a.PriceWei, a.Memo,
		string(a.Status), a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert attempt %s: %w", a.ID, err)
	}
	return nil
}

func (s *PostgresStore) setStatus(ctx context.Context, id string, status AttemptStatus, set string, args ...any) error {
	query := fmt.Sprintf(`
		UPDATE submission_attempts
		SET status = $1, updated_at = $2%s
		WHERE id = $3`, set)
	allArgs := append([]any{string(status), time.Now().UTC(), id}, args...)

	tag, err := s.pool.Exec(ctx, query, allArgs...)
	if err != nil {
		return fmt.Errorf("failed to mark attempt %s as %s: %w", id, status, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

func (s *PostgresStore) MarkAuthorized(ctx context.Context, id string, authorizationID uint64, authorizationTx string) error {
	return s.setStatus(ctx, id, StatusAuthorized,
		", authorization_id = $4, authorization_tx = $5", authorizationID, authorizationTx)
}

func (s *PostgresStore) MarkRejected(ctx context.Context, id, reason string) error {
	return s.setStatus(ctx, id, StatusRejected, ", last_error = $4", reason)
}

func (s *PostgresStore) MarkUnknown(ctx context.Context, id, reason string) error {
	return s.setStatus(ctx, id, StatusUnknown, ", last_error = $4", reason)
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, id, transferRef string) error {
	return s.setStatus(ctx, id, StatusCompleted, ", transfer_ref = $4", transferRef)
}

func (s *PostgresStore) MarkTransferFailed(ctx context.Context, id, reason string) error {
	return s.setStatus(ctx, id, StatusTransferFailed, ", last_error = $4", reason)
}

const attemptColumns = `
	id, sender, receiver, product_id, price_wei, memo, status,
	authorization_id, authorization_tx, transfer_ref, last_error,
	created_at, updated_at`

func scanAttempt(row pgx.Row) (*Attempt, error) {
	var a Attempt
	var status string
	err := row.Scan(&a.ID, &a.Sender, &a.Receiver, &a.ProductID, &a.PriceWei, &a.Memo,
		&status, &a.AuthorizationID, &a.AuthorizationTx, &a.TransferRef, &a.LastError,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = AttemptStatus(status)
	return &a, nil
}

func (s *PostgresStore) GetAttempt(ctx context.Context, id string) (*Attempt, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+attemptColumns+`
		FROM submission_attempts WHERE id = $1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt %s: %w", id, err)
	}
	return a, nil
}

func (s *PostgresStore) ListUnreconciled(ctx context.Context) ([]*Attempt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+attemptColumns+`
		FROM submission_attempts
		WHERE status IN ($1, $2)
		ORDER BY created_at`, string(StatusTransferFailed), string(StatusUnknown))
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attempt rows: %w", err)
	}
	return attempts, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

var _ Store = (*PostgresStore)(nil)
