package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

// ErrQueueClosed signals that the queue accepts no further work.
var ErrQueueClosed = errors.New("jobs: queue is closed")

const defaultQueueCapacity = 64

// MemoryQueue is a process-local job queue. Messages carrying an idempotency
// key are dropped while an identical key is still pending.
type MemoryQueue struct {
	mu      sync.Mutex
	closed  bool
	pending map[string]struct{}
	ch      chan *job.ExecutionMessage
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &MemoryQueue{
		pending: map[string]struct{}{},
		ch:      make(chan *job.ExecutionMessage, capacity),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	if q == nil {
		return jobsInternal("jobs: memory queue is not configured", nil)
	}
	if msg == nil {
		return jobsInternal("jobs: execution message is required", nil)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	key := strings.TrimSpace(msg.IdempotencyKey)
	if key != "" {
		if _, exists := q.pending[key]; exists {
			return nil
		}
	}

	select {
	case q.ch <- msg:
		if key != "" {
			q.pending[key] = struct{}{}
		}
		return nil
	default:
		return jobsInternal("jobs: memory queue is full", map[string]any{
			"job_id": msg.JobID,
		})
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (queue.Delivery, error) {
	if q == nil {
		return nil, jobsInternal("jobs: memory queue is not configured", nil)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-q.ch:
		if !ok {
			return nil, ErrQueueClosed
		}
		q.release(msg)
		return &memoryDelivery{queue: q, msg: msg}, nil
	}
}

// Close stops the queue. Pending messages already dequeued can still be acked
// or nacked; nack requeues fail once closed.
func (q *MemoryQueue) Close() {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

func (q *MemoryQueue) release(msg *job.ExecutionMessage) {
	if msg == nil {
		return
	}
	key := strings.TrimSpace(msg.IdempotencyKey)
	if key == "" {
		return
	}
	q.mu.Lock()
	delete(q.pending, key)
	q.mu.Unlock()
}

type memoryDelivery struct {
	queue *MemoryQueue
	msg   *job.ExecutionMessage
}

func (d *memoryDelivery) Message() *job.ExecutionMessage {
	if d == nil {
		return nil
	}
	return d.msg
}

func (d *memoryDelivery) Ack(context.Context) error {
	return nil
}

func (d *memoryDelivery) Nack(ctx context.Context, opts queue.NackOptions) error {
	if d == nil || d.queue == nil {
		return jobsInternal("jobs: delivery is not configured", nil)
	}
	if !opts.Requeue || opts.DeadLetter {
		return nil
	}
	return d.queue.Enqueue(ctx, d.msg)
}

var (
	_ queue.Enqueuer = (*MemoryQueue)(nil)
	_ queue.Dequeuer = (*MemoryQueue)(nil)
	_ queue.Delivery = (*memoryDelivery)(nil)
)
