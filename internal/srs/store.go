package srs

import "context"

// RecordStore is the durable mapping from (user, question) to a Record.
// Implementations must make Put a full-record replacement so the service's
// read-modify-write stays last-write-wins with no partial state.
type RecordStore interface {
	// Get returns the record for the pair, or nil when none exists.
	Get(ctx context.Context, userID, questionID string) (*Record, error)
	// Put stores the record, replacing any previous version.
	Put(ctx context.Context, record Record) error
	// ListByUser returns every record belonging to the user.
	ListByUser(ctx context.Context, userID string) ([]Record, error)
}
