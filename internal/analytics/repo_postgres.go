package analytics

import (
	"context"
	"database/sql"
	"errors"

	"leadcapture-platform/internal/leads"
)

// PostgresRepo reads a tenant's leads for aggregation.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListLeads(ctx context.Context, clientID string) ([]leads.Lead, error) {
	if clientID == "" {
		return nil, errors.New("client_id required")
	}
	const q = `
SELECT id, client_id, customer_number, status, notes, created_at, call_timestamp, call_duration, COALESCE(recording_url, ''), first_contacted_at
FROM leads
WHERE client_id = $1
`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]leads.Lead, 0)
	for rows.Next() {
		var l leads.Lead
		if err := rows.Scan(
			&l.ID,
			&l.ClientID,
			&l.CustomerNumber,
			&l.Status,
			&l.Notes,
			&l.CreatedAt,
			&l.CallTimestamp,
			&l.CallDuration,
			&l.RecordingURL,
			&l.FirstContactedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
