package billing

import "context"

// EventsRepo records processed webhook events so redeliveries are no-ops.
type EventsRepo interface {
	// MarkProcessed returns false when the event was already recorded.
	MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error)
}
