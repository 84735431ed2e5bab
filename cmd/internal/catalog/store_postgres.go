package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (deals).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed catalog store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// GetByID loads a deal inside a read-only transaction.
func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (Deal, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return Deal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var d Deal
	err = tx.QueryRow(ctx, `
		SELECT uuid, name, image, price, description
		FROM deals
		WHERE uuid = $1
	`, id).Scan(&d.UUID, &d.Name, &d.Image, &d.Price, &d.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrNotFound
	}
	if err != nil {
		return Deal{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Deal{}, err
	}
	return d, nil
}

// List returns a page of deals.
func (s *PostgresStore) List(ctx context.Context, page Page) ([]Deal, error) {
	page = page.Clamp()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT uuid, name, image, price, description
		FROM deals
		ORDER BY uuid
		LIMIT $1 OFFSET $2
	`, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := make([]Deal, 0, page.Limit)
	for rows.Next() {
		var d Deal
		if err := rows.Scan(&d.UUID, &d.Name, &d.Image, &d.Price, &d.Description); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return deals, nil
}

// Create inserts a new deal.
func (s *PostgresStore) Create(ctx context.Context, d Deal) (Deal, error) {
	d.UUID = uuid.New()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return Deal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO deals (uuid, name, image, price, description)
		VALUES ($1, $2, $3, $4, $5)
	`, d.UUID, d.Name, d.Image, d.Price, d.Description)
	if err != nil {
		return Deal{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Deal{}, err
	}
	return d, nil
}
