package domain

import (
	"context"

	"github.com/google/uuid"
)

// Snapshot is a saved Document paired with the version the store minted for it.
// Version 0 means the trip has never been saved.
type Snapshot struct {
	Data    Document `json:"data"`
	Version int64    `json:"version"`
}

// Notification is the change broadcast the store fans out after every
// successful save.
type Notification struct {
	TripID    uuid.UUID `json:"tripId"`
	Data      Document  `json:"data"`
	Version   int64     `json:"version"`
	UpdatedBy string    `json:"updatedBy"`
}

// Store is the schedule store contract consumed by client sessions.
// The store is the sole sequencer: Save returns a strictly increasing version
// per trip, and every successful Save is broadcast to Subscribe callbacks.
type Store interface {
	// Load returns the latest snapshot for a trip.
	Load(ctx context.Context, tripID uuid.UUID) (Snapshot, error)

	// Save persists a full document snapshot on behalf of clientID and
	// returns the version minted for it.
	Save(ctx context.Context, tripID uuid.UUID, clientID string, doc Document) (int64, error)

	// Subscribe registers onChange for every notification of the trip.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, tripID uuid.UUID, onChange func(Notification)) (func(), error)
}
