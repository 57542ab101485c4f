package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/domain/model"
)

// DefaultQueueName is the base key used by RedisWorkQueue.
const DefaultQueueName = "prreview:queue"

// RedisQueueConfig configures RedisWorkQueue.
type RedisQueueConfig struct {
	// Name is the key prefix; the pending and in-flight lists are Name+":pending" and Name+":inflight".
	Name   string
	Logger *slog.Logger
}

// RedisWorkQueue is a reliable FIFO queue of review tasks. Dequeue atomically moves a
// message from the pending list to the in-flight list; Ack removes it from in-flight.
// Messages whose worker died before Ack stay in-flight until RequeueInflight runs.
type RedisWorkQueue struct {
	client      redis.UniversalClient
	pendingKey  string
	inflightKey string
	logger      *slog.Logger
}

var _ core.WorkQueue = (*RedisWorkQueue)(nil)

// NewRedisWorkQueue creates a queue over the given Redis client.
func NewRedisWorkQueue(client redis.UniversalClient, cfg RedisQueueConfig) *RedisWorkQueue {
	name := cfg.Name
	if name == "" {
		name = DefaultQueueName
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisWorkQueue{
		client:      client,
		pendingKey:  name + ":pending",
		inflightKey: name + ":inflight",
		logger:      logger.With("component", "work_queue", "queue", name),
	}
}

// Enqueue appends a task to the pending list.
func (q *RedisWorkQueue) Enqueue(ctx context.Context, task *model.ReviewTask) error {
	if task == nil {
		return errors.New("task is required")
	}
	if err := task.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.pendingKey, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush: %w", err)
	}
	q.logger.DebugContext(ctx, "task enqueued", "job_id", task.JobID)
	return nil
}

// Dequeue blocks up to wait for the oldest pending task. It returns model.ErrQueueEmpty
// when nothing arrived in time. A message that cannot be decoded is dropped from
// in-flight and reported as an error.
func (q *RedisWorkQueue) Dequeue(ctx context.Context, wait time.Duration) (*core.Delivery, error) {
	raw, err := q.client.BLMove(ctx, q.pendingKey, q.inflightKey, "RIGHT", "LEFT", wait).Result()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("redis blmove: %w", err)
	}

	var task model.ReviewTask
	if decodeErr := json.Unmarshal([]byte(raw), &task); decodeErr != nil {
		if remErr := q.client.LRem(ctx, q.inflightKey, 1, raw).Err(); remErr != nil {
			q.logger.WarnContext(ctx, "failed to drop undecodable message", "error", remErr)
		}
		return nil, fmt.Errorf("decode task: %w", decodeErr)
	}
	return &core.Delivery{Task: task, Receipt: raw}, nil
}

// Ack removes a delivered message from the in-flight list.
func (q *RedisWorkQueue) Ack(ctx context.Context, d *core.Delivery) error {
	if d == nil || d.Receipt == "" {
		return errors.New("delivery receipt is required")
	}
	if err := q.client.LRem(ctx, q.inflightKey, 1, d.Receipt).Err(); err != nil {
		return fmt.Errorf("redis lrem: %w", err)
	}
	return nil
}

// RequeueInflight moves every in-flight message back to the pending list and
// reports how many were moved. Run it only while no workers are consuming.
func (q *RedisWorkQueue) RequeueInflight(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, q.inflightKey, q.pendingKey, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("redis lmove: %w", err)
		}
		moved++
	}
	if moved > 0 {
		q.logger.InfoContext(ctx, "requeued in-flight tasks", "count", moved)
	}
	return moved, nil
}

// Depth reports the pending and in-flight list lengths.
func (q *RedisWorkQueue) Depth(ctx context.Context) (pending, inflight int64, err error) {
	pipe := q.client.Pipeline()
	p := pipe.LLen(ctx, q.pendingKey)
	f := pipe.LLen(ctx, q.inflightKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("redis llen: %w", err)
	}
	return p.Val(), f.Val(), nil
}
