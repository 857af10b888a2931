package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"siteintel/internal/models"
)

// One list per priority. BLPOP checks keys in argument order, so higher
// priorities always drain first.
const (
	QueueHigh   = "siteintel:jobs:high"
	QueueNormal = "siteintel:jobs:normal"
	QueueLow    = "siteintel:jobs:low"
)

var queueOrder = []string{QueueHigh, QueueNormal, QueueLow}

// ErrEmpty is returned by Dequeue when nothing arrived before the timeout.
var ErrEmpty = errors.New("queue empty")

// Task points the worker at a job stored in Postgres.
type Task struct {
	JobID      string    `json:"job_id"`
	Priority   int       `json:"priority"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type Queue struct {
	client *redis.Client
}

// New connects to Redis and pings it to ensure it's alive.
func New(addr string) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Queue{client: client}, nil
}

func (q *Queue) Close() error { return q.client.Close() }

func (q *Queue) Ping(ctx context.Context) error { return q.client.Ping(ctx).Err() }

// NameFor maps a job priority to its list.
func NameFor(priority int) string {
	switch priority {
	case models.PriorityHigh:
		return QueueHigh
	case models.PriorityNormal:
		return QueueNormal
	default:
		return QueueLow
	}
}

func (q *Queue) Enqueue(ctx context.Context, t Task) error {
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	if err := q.client.RPush(ctx, NameFor(t.Priority), raw).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", t.JobID, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next task, highest priority first.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (Task, error) {
	res, err := q.client.BLPop(ctx, timeout, queueOrder...).Result()
	if errors.Is(err, redis.Nil) {
		return Task{}, ErrEmpty
	}
	if err != nil {
		return Task{}, err
	}
	return DecodeTask(res[1])
}

func DecodeTask(raw string) (Task, error) {
	var t Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Task{}, fmt.Errorf("malformed task %q: %w", raw, err)
	}
	if t.JobID == "" {
		return Task{}, fmt.Errorf("malformed task %q: missing job_id", raw)
	}
	return t, nil
}

// Lengths returns the pending task count per queue.
func (q *Queue) Lengths(ctx context.Context) (map[string]int64, error) {
	pipe := q.client.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(queueOrder))
	for _, name := range queueOrder {
		cmds[name] = pipe.LLen(ctx, name)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("queue lengths: %w", err)
	}
	out := make(map[string]int64, len(cmds))
	for name, cmd := range cmds {
		out[name] = cmd.Val()
	}
	return out, nil
}
