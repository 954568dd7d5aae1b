package queue

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T, visibilityTTL time.Duration) *AnalysisQueue {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewAnalysisQueue(client, visibilityTTL)
}

func TestDequeueWithLeaseReturnsOldestFirst(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t, time.Minute)

	require.NoError(t, q.Enqueue(ctx, "TRU-202601010930-412"))
	require.NoError(t, q.Enqueue(ctx, "TRU-202601010931-115"))

	first, err := q.DequeueWithLease(ctx)
	require.NoError(t, err)
	require.Equal(t, "TRU-202601010930-412", first)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), depth)
}

func TestDequeueWithLeaseEmptyQueue(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t, time.Minute)

	ticketID, err := q.DequeueWithLease(ctx)
	require.NoError(t, err)
	require.Empty(t, ticketID)
}

func TestAckRemovesInflightEntry(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t, time.Minute)

	require.NoError(t, q.Enqueue(ctx, "TRU-202601010930-412"))
	ticketID, err := q.DequeueWithLease(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Ack(ctx, ticketID))

	// Nothing left to reclaim even far past the lease deadline.
	reclaimed, err := q.RequeueExpired(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Empty(t, reclaimed)
}

func TestRequeueExpiredReclaimsTimedOutLeases(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t, time.Minute)

	require.NoError(t, q.Enqueue(ctx, "TRU-202601010930-412"))
	_, err := q.DequeueWithLease(ctx)
	require.NoError(t, err)

	// Before the deadline the lease still holds.
	reclaimed, err := q.RequeueExpired(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Empty(t, reclaimed)

	reclaimed, err = q.RequeueExpired(ctx, time.Now().Add(2*time.Minute), 10)
	require.NoError(t, err)
	require.Equal(t, []string{"TRU-202601010930-412"}, reclaimed)

	// The reclaimed ticket is available for another worker.
	ticketID, err := q.DequeueWithLease(ctx)
	require.NoError(t, err)
	require.Equal(t, "TRU-202601010930-412", ticketID)
}
