package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("leads: not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const leadCols = `id, client_id, customer_number, status, notes, created_at, call_timestamp, call_duration, COALESCE(recording_url, ''), first_contacted_at`

// UpsertParams carries the webhook-derived fields for one call event.
type UpsertParams struct {
	ClientID       string
	CustomerNumber string
	Status         Status
	CallTimestamp  time.Time
	CallDuration   int
	RecordingURL   string
	ReceivedAt     time.Time
}

// Upsert reconciles a call event against the natural key
// (client_id, customer_number, call_timestamp) in one statement.
// Duplicate deliveries update status and duration in place; the recording
// URL is only overwritten by a non-empty value. The returned bool reports
// whether a new row was inserted.
//
// xmax = 0 distinguishes a fresh insert from a conflict-update: updated rows
// carry the deleting-transaction id of their previous version.
func (r *Repository) Upsert(ctx context.Context, p UpsertParams) (Lead, bool, error) {
	const q = `
INSERT INTO leads (id, client_id, customer_number, status, notes, created_at, call_timestamp, call_duration, recording_url)
VALUES ($1, $2, $3, $4, '', $5, $6, $7, NULLIF($8, ''))
ON CONFLICT (client_id, customer_number, call_timestamp)
DO UPDATE SET status = EXCLUDED.status,
              call_duration = EXCLUDED.call_duration,
              recording_url = COALESCE(EXCLUDED.recording_url, leads.recording_url)
RETURNING ` + leadCols + `, (xmax = 0)
`
	var (
		l       Lead
		created bool
	)
	err := r.db.QueryRowContext(ctx, q,
		uuid.NewString(),
		p.ClientID,
		p.CustomerNumber,
		p.Status,
		p.ReceivedAt,
		p.CallTimestamp,
		p.CallDuration,
		p.RecordingURL,
	).Scan(
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
		&created,
	)
	if err != nil {
		return Lead{}, false, err
	}
	return l, created, nil
}

// FindByNaturalKey looks up the lead for one exact call event.
func (r *Repository) FindByNaturalKey(ctx context.Context, clientID, customerNumber string, callTimestamp time.Time) (Lead, error) {
	q := `
SELECT ` + leadCols + `
FROM leads
WHERE client_id = $1 AND customer_number = $2 AND call_timestamp = $3
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, clientID, customerNumber, callTimestamp))
}

// Get returns a lead scoped to its owning client. Tenant isolation is
// enforced here, not in the handler.
func (r *Repository) Get(ctx context.Context, clientID, id string) (Lead, error) {
	q := `
SELECT ` + leadCols + `
FROM leads
WHERE client_id = $1 AND id = $2
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, clientID, id))
}

// UpdateStatusNotes applies a dashboard edit. first_contacted_at is stamped
// in the same statement the first time status becomes "contacted" and is
// never overwritten afterwards.
func (r *Repository) UpdateStatusNotes(ctx context.Context, clientID, id string, status Status, notes string, now time.Time) (Lead, error) {
	q := `
UPDATE leads
SET status = $3,
    notes = $4,
    first_contacted_at = CASE
        WHEN $3 = 'contacted' AND first_contacted_at IS NULL THEN $5
        ELSE first_contacted_at
    END
WHERE client_id = $1 AND id = $2
RETURNING ` + leadCols
	return r.scanOne(r.db.QueryRowContext(ctx, q, clientID, id, status, notes, now))
}

// ListFilter narrows a tenant's lead listing. Zero values mean "no filter".
type ListFilter struct {
	Status Status

	// DurationBucket is one of "", "0", "1-30", "31-120", "121+" (seconds).
	DurationBucket string

	// Search matches a customer number substring.
	Search string

	// Since bounds call_timestamp from below.
	Since time.Time
}

// List returns a tenant's leads ordered by call time, newest first.
func (r *Repository) List(ctx context.Context, clientID string, f ListFilter) ([]Lead, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + leadCols + ` FROM leads WHERE client_id = $1`)
	args := []any{clientID}

	if f.Status != "" {
		args = append(args, f.Status)
		fmt.Fprintf(&b, " AND status = $%d", len(args))
	}
	switch f.DurationBucket {
	case "":
	case "0":
		b.WriteString(" AND call_duration = 0")
	case "1-30":
		b.WriteString(" AND call_duration BETWEEN 1 AND 30")
	case "31-120":
		b.WriteString(" AND call_duration BETWEEN 31 AND 120")
	case "121+":
		b.WriteString(" AND call_duration > 120")
	default:
		return nil, fmt.Errorf("leads: unknown duration bucket %q", f.DurationBucket)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		fmt.Fprintf(&b, " AND customer_number ILIKE $%d", len(args))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		fmt.Fprintf(&b, " AND call_timestamp >= $%d", len(args))
	}
	b.WriteString(" ORDER BY call_timestamp DESC")

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Lead, 0)
	for rows.Next() {
		var l Lead
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

func (r *Repository) scanOne(row *sql.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
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
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return l, nil
}
