package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends audit events. Insert-only; the table carries no
// update path in this codebase.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (id, client_id, type, actor_user_id, actor_role, ip_address, lead_id, message, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), $8, $9, $10)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.ClientID,
		e.Type,
		e.ActorUserID,
		e.ActorRole,
		e.IPAddress,
		e.LeadID,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}
