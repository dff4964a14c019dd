package realtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwang1401/travel-planner/internal/domain"
	"github.com/hwang1401/travel-planner/internal/realtime"
	"github.com/hwang1401/travel-planner/testutil"
)

func TestChannel(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-3b7d-4c1e-9a55-0d2f8e7b4c11")

	assert.Equal(t, "schedule:6f1c2a9e-3b7d-4c1e-9a55-0d2f8e7b4c11", realtime.Channel(id))
}

// TestRedisBroker_RelaysAcrossInstances runs two brokers against one Redis,
// as two server instances would, and checks a save published by one reaches
// subscribers of the other.
func TestRedisBroker_RelaysAcrossInstances(t *testing.T) {
	rdb := testutil.NewRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hubA, hubB := realtime.NewHub(nil), realtime.NewHub(nil)
	go hubA.Run(ctx)
	go hubB.Run(ctx)
	brokerA := realtime.NewRedisBroker(rdb, hubA, nil)
	brokerB := realtime.NewRedisBroker(rdb, hubB, nil)
	go func() { _ = brokerA.Run(ctx) }()
	go func() { _ = brokerB.Run(ctx) }()

	trip := uuid.New()
	received := make(chan domain.Notification, 1)
	_, err := hubB.Subscribe(ctx, trip, func(n domain.Notification) {
		select {
		case received <- n:
		default:
		}
	})
	require.NoError(t, err)

	doc := domain.Document{Standalone: true}
	// PSubscribe confirmation is asynchronous; publish until the relay is live.
	require.Eventually(t, func() bool {
		if err := brokerA.Publish(ctx, domain.Notification{TripID: trip, Data: doc, Version: 3, UpdatedBy: "client-a"}); err != nil {
			return false
		}
		select {
		case n := <-received:
			assert.Equal(t, int64(3), n.Version)
			assert.Equal(t, "client-a", n.UpdatedBy)
			assert.Equal(t, doc, n.Data)
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
