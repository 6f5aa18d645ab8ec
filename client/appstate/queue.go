package appstate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OperationStatus is the observable lifecycle of a queued reconciliation.
type OperationStatus string

const (
	OperationPending   OperationStatus = "pending"
	OperationSucceeded OperationStatus = "succeeded"
	OperationFailed    OperationStatus = "failed"
)

// Operation is a snapshot of one queued remote call.
type Operation struct {
	ID         int64
	Name       string
	Status     OperationStatus
	Err        error
	EnqueuedAt time.Time
	FinishedAt time.Time
}

// ReconcileQueue pushes optimistic local mutations to the backend in
// dispatch order. Failures are recorded and logged, never retried, and
// the local state is not rolled back.
type ReconcileQueue struct {
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	nextID  int64
	ops     map[int64]*Operation
	order   []int64
	pending []queuedCall
	busy    bool
	wake    chan struct{}

	stop chan struct{}
	done chan struct{}
}

func NewReconcileQueue(logger *zap.Logger, timeout time.Duration) *ReconcileQueue {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	q := &ReconcileQueue{
		logger:  logger,
		timeout: timeout,
		ops:     make(map[int64]*Operation),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

type queuedCall struct {
	id int64
	fn func(ctx context.Context) error
}

// Enqueue registers a remote call and returns its operation id for
// status observation. The call runs on the queue's worker goroutine.
func (q *ReconcileQueue) Enqueue(name string, fn func(ctx context.Context) error) int64 {
	q.mu.Lock()
	q.nextID++
	id := q.nextID
	q.ops[id] = &Operation{
		ID:         id,
		Name:       name,
		Status:     OperationPending,
		EnqueuedAt: time.Now(),
	}
	q.order = append(q.order, id)
	q.pending = append(q.pending, queuedCall{id: id, fn: fn})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return id
}

// Status returns the current snapshot of one operation.
func (q *ReconcileQueue) Status(id int64) (Operation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	op, ok := q.ops[id]
	if !ok {
		return Operation{}, false
	}
	return *op, true
}

// Operations returns all known operations in enqueue order.
func (q *ReconcileQueue) Operations() []Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Operation, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, *q.ops[id])
	}
	return out
}

// Wait blocks until every operation enqueued so far has finished or the
// context expires. Intended for tests and shutdown.
func (q *ReconcileQueue) Wait(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		q.mu.Lock()
		idle := len(q.pending) == 0 && !q.busy
		q.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close stops the worker after the in-flight operation finishes. Pending
// operations that never ran stay pending.
func (q *ReconcileQueue) Close() {
	close(q.stop)
	<-q.done
}

func (q *ReconcileQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		var call queuedCall
		has := false
		if len(q.pending) > 0 {
			call = q.pending[0]
			q.pending = q.pending[1:]
			q.busy = true
			has = true
		}
		q.mu.Unlock()

		if !has {
			select {
			case <-q.stop:
				return
			case <-q.wake:
				continue
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := call.fn(ctx)
		cancel()

		q.mu.Lock()
		op := q.ops[call.id]
		op.FinishedAt = time.Now()
		if err != nil {
			op.Status = OperationFailed
			op.Err = err
		} else {
			op.Status = OperationSucceeded
		}
		q.busy = false
		q.mu.Unlock()

		if err != nil {
			q.logger.Warn("Reconciliation failed, keeping local state",
				zap.String("operation", op.Name),
				zap.Error(err),
			)
		}
	}
}
