package handler_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/hwang1401/travel-planner/internal/domain"
	"github.com/hwang1401/travel-planner/internal/handler"
)

// mockScheduleServicer is a hand-written test double for
// handler.ScheduleServicer. Each method is a function field; set only the
// ones your test needs.
type mockScheduleServicer struct {
	load      func(ctx context.Context, tripID uuid.UUID) (domain.Snapshot, error)
	save      func(ctx context.Context, tripID uuid.UUID, clientID string, doc domain.Document) (int64, error)
	subscribe func(ctx context.Context, tripID uuid.UUID, fn func(domain.Notification)) (func(), error)
	delete    func(ctx context.Context, tripID uuid.UUID) error
}

func (m *mockScheduleServicer) Load(ctx context.Context, tripID uuid.UUID) (domain.Snapshot, error) {
	return m.load(ctx, tripID)
}
func (m *mockScheduleServicer) Save(ctx context.Context, tripID uuid.UUID, clientID string, doc domain.Document) (int64, error) {
	return m.save(ctx, tripID, clientID, doc)
}
func (m *mockScheduleServicer) Subscribe(ctx context.Context, tripID uuid.UUID, fn func(domain.Notification)) (func(), error) {
	return m.subscribe(ctx, tripID, fn)
}
func (m *mockScheduleServicer) Delete(ctx context.Context, tripID uuid.UUID) error {
	return m.delete(ctx, tripID)
}

// compile-time check: mockScheduleServicer must satisfy handler.ScheduleServicer.
var _ handler.ScheduleServicer = (*mockScheduleServicer)(nil)
