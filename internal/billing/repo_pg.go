package billing

import (
	"context"
	"database/sql"
)

// PGEventsRepo implements EventsRepo using Postgres.
type PGEventsRepo struct {
	DB *sql.DB
}

func (r *PGEventsRepo) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	const query = `
INSERT INTO billing_events (event_id, event_type, processed_at)
VALUES ($1, $2, now())
ON CONFLICT (event_id) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query, eventID, eventType)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

var _ EventsRepo = (*PGEventsRepo)(nil)
