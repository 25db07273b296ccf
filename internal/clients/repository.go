package clients

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("clients: not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c Client) error {
	const q = `
INSERT INTO clients (id, user_id, business_name, webhook_token, virtual_number, created_at)
VALUES ($1, NULLIF($2,''), $3, $4, $5, $6)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.UserID,
		c.BusinessName,
		c.WebhookToken,
		c.VirtualNumber,
		c.CreatedAt,
	)
	return err
}

// FindByToken resolves the tenant owning a webhook credential.
// This runs on every webhook delivery; keep it a single indexed lookup.
func (r *Repository) FindByToken(ctx context.Context, token string) (Client, error) {
	const q = `
SELECT id, COALESCE(user_id, ''), business_name, webhook_token, virtual_number, created_at
FROM clients
WHERE webhook_token = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, token))
}

func (r *Repository) FindByUser(ctx context.Context, userID string) (Client, error) {
	const q = `
SELECT id, COALESCE(user_id, ''), business_name, webhook_token, virtual_number, created_at
FROM clients
WHERE user_id = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, userID))
}

func (r *Repository) FindByID(ctx context.Context, id string) (Client, error) {
	const q = `
SELECT id, COALESCE(user_id, ''), business_name, webhook_token, virtual_number, created_at
FROM clients
WHERE id = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// List returns all clients, newest first. Admin surface only; the webhook
// token is intentionally not selected.
func (r *Repository) List(ctx context.Context) ([]Client, error) {
	const q = `
SELECT id, COALESCE(user_id, ''), business_name, virtual_number, created_at
FROM clients
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Client, 0)
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.BusinessName, &c.VirtualNumber, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateProfile mutates the admin-editable fields. The webhook token is
// immutable and never part of an UPDATE.
func (r *Repository) UpdateProfile(ctx context.Context, id, businessName, virtualNumber string) (Client, error) {
	const q = `
UPDATE clients
SET business_name = COALESCE(NULLIF($2,''), business_name),
    virtual_number = COALESCE(NULLIF($3,''), virtual_number)
WHERE id = $1
RETURNING id, COALESCE(user_id, ''), business_name, webhook_token, virtual_number, created_at
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, businessName, virtualNumber))
}

func (r *Repository) scanOne(row *sql.Row) (Client, error) {
	var c Client
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.BusinessName,
		&c.WebhookToken,
		&c.VirtualNumber,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return c, nil
}
