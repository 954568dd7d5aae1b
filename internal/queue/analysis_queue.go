package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	readyKey    = "triage:analysis:ready"
	inflightKey = "triage:analysis:inflight"
)

// AnalysisQueue coordinates the ready and in-flight sets of tickets awaiting
// analysis. Submission enqueues and returns; a worker leases entries with a
// visibility timeout so a crashed worker's tickets get re-queued.
type AnalysisQueue struct {
	client        *redis.Client
	visibilityTTL time.Duration
}

// NewAnalysisQueue builds a queue over an existing Redis client.
func NewAnalysisQueue(client *redis.Client, visibilityTTL time.Duration) *AnalysisQueue {
	if visibilityTTL == 0 {
		visibilityTTL = 5 * time.Minute
	}
	return &AnalysisQueue{client: client, visibilityTTL: visibilityTTL}
}

// Enqueue appends a ticket to the ready queue.
func (q *AnalysisQueue) Enqueue(ctx context.Context, ticketID string) error {
	return q.client.RPush(ctx, readyKey, ticketID).Err()
}

// DequeueWithLease pops the oldest ready ticket and places it in-flight with
// a visibility deadline. Returns "" when the queue is empty.
func (q *AnalysisQueue) DequeueWithLease(ctx context.Context) (string, error) {
	deadline := time.Now().Add(q.visibilityTTL).UnixMilli()
	res, err := dequeueScript.Run(ctx, q.client, []string{readyKey, inflightKey}, deadline).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	ticketID, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("unexpected type from dequeue script: %T", res)
	}
	return ticketID, nil
}

// Ack removes a ticket from in-flight tracking once its run finished.
func (q *AnalysisQueue) Ack(ctx context.Context, ticketID string) error {
	return q.client.ZRem(ctx, inflightKey, ticketID).Err()
}

// RequeueExpired reclaims leases that timed out, re-enqueuing the tickets.
func (q *AnalysisQueue) RequeueExpired(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	ids, err := q.client.ZRangeByScore(ctx, inflightKey, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    fmt.Sprintf("%d", now.UnixMilli()),
		Offset: 0,
		Count:  limit,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := q.client.TxPipeline()
	for _, id := range ids {
		pipe.ZRem(ctx, inflightKey, id)
		pipe.RPush(ctx, readyKey, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

// Depth returns the number of tickets waiting for analysis.
func (q *AnalysisQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, readyKey).Result()
}

var dequeueScript = redis.NewScript(`
local ticket = redis.call('LPOP', KEYS[1])
if ticket then
  redis.call('ZADD', KEYS[2], ARGV[1], ticket)
  return ticket
end
return nil
`)
