// Package service contains the business logic of the schedule store.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hwang1401/travel-planner/internal/domain"
	"github.com/hwang1401/travel-planner/internal/repo"
)

// Publisher fans a change notification out to every subscriber of its trip,
// possibly on other server instances.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// Subscriber registers local callbacks for a trip's notifications.
type Subscriber interface {
	Subscribe(ctx context.Context, tripID uuid.UUID, fn func(domain.Notification)) (func(), error)
}

// ScheduleService is the sequencing store for trip schedules. It validates
// and persists full document snapshots, and broadcasts every successful save.
// It satisfies domain.Store, so in-process sessions can use it directly.
type ScheduleService struct {
	repo repo.ScheduleRepo
	pub  Publisher
	sub  Subscriber
	log  *slog.Logger
}

var _ domain.Store = (*ScheduleService)(nil)

// NewScheduleService constructs a ScheduleService. pub and sub may be nil
// when saves need not be broadcast.
func NewScheduleService(r repo.ScheduleRepo, pub Publisher, sub Subscriber, log *slog.Logger) *ScheduleService {
	if log == nil {
		log = slog.Default()
	}
	return &ScheduleService{repo: r, pub: pub, sub: sub, log: log}
}

// Load returns the latest snapshot of a trip's schedule. A trip that has
// never been saved yields an empty document at version 0; a deleted one
// yields an empty document at its tombstone version.
func (s *ScheduleService) Load(ctx context.Context, tripID uuid.UUID) (domain.Snapshot, error) {
	rec, err := s.repo.Get(ctx, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("service.ScheduleService.Load: %w", err)
	}
	return domain.Snapshot{Data: rec.Data, Version: rec.Version}, nil
}

// Save validates and persists doc on behalf of clientID, then broadcasts the
// change. Returns domain.ErrValidation if the document is malformed.
//
// A failed broadcast does not fail the save: the write is durable and
// subscribers catch up with the next change.
func (s *ScheduleService) Save(ctx context.Context, tripID uuid.UUID, clientID string, doc domain.Document) (int64, error) {
	if clientID == "" {
		return 0, fmt.Errorf("%w: client id is required", domain.ErrValidation)
	}
	if err := doc.Validate(); err != nil {
		return 0, err
	}

	rec, err := s.repo.Save(ctx, tripID, clientID, doc)
	if err != nil {
		return 0, fmt.Errorf("service.ScheduleService.Save: %w", err)
	}
	s.log.InfoContext(ctx, "schedule saved",
		"trip_id", tripID.String(),
		"version", rec.Version,
		"updated_by", clientID,
	)

	s.publish(ctx, domain.Notification{
		TripID:    tripID,
		Data:      rec.Data,
		Version:   rec.Version,
		UpdatedBy: clientID,
	})
	return rec.Version, nil
}

// Subscribe registers fn for every change notification of the trip.
func (s *ScheduleService) Subscribe(ctx context.Context, tripID uuid.UUID, fn func(domain.Notification)) (func(), error) {
	if s.sub == nil {
		return nil, fmt.Errorf("service.ScheduleService.Subscribe: %w", domain.ErrUnavailable)
	}
	cancel, err := s.sub.Subscribe(ctx, tripID, fn)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.Subscribe: %w", err)
	}
	return cancel, nil
}

// Delete replaces a trip's schedule with an empty tombstone and broadcasts
// it, so open sessions see the deletion as a newer version. Returns
// domain.ErrNotFound if there is no live schedule.
func (s *ScheduleService) Delete(ctx context.Context, tripID uuid.UUID) error {
	rec, err := s.repo.Delete(ctx, tripID, "")
	if err != nil {
		return fmt.Errorf("service.ScheduleService.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "schedule deleted",
		"trip_id", tripID.String(),
		"version", rec.Version,
	)
	s.publish(ctx, domain.Notification{TripID: tripID, Data: rec.Data, Version: rec.Version})
	return nil
}

// publish broadcasts n if a publisher is configured. A failed broadcast is
// logged only: the write is durable and subscribers catch up with the next
// change.
func (s *ScheduleService) publish(ctx context.Context, n domain.Notification) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, n); err != nil {
		s.log.WarnContext(ctx, "schedule broadcast failed",
			"trip_id", n.TripID.String(),
			"version", n.Version,
			"error", err,
		)
	}
}
