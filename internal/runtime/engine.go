package runtime

import (
	"context"
	"log/slog"
	"sync"
)

// Result is what Engine.Submit delivers once a call has been dispatched.
type Result struct {
	Receipt Receipt
	Err     error
}

type pending struct {
	call  Call
	reply chan Result
}

// Engine is the single-writer loop in front of a Runtime.
//
// Calls are dispatched one at a time in submission order.
//
// Thread-safety model:
//   - Submit(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Engine struct {
	rt     *Runtime
	queue  *callQueue
	logger *slog.Logger
}

// NewEngine creates an engine over rt.
func NewEngine(rt *Runtime) *Engine {
	return &Engine{rt: rt, queue: newCallQueue(), logger: rt.logger}
}

// Submit queues call for dispatch. The returned channel receives exactly one
// Result. ok is false once the engine has stopped.
func (e *Engine) Submit(call Call) (result <-chan Result, ok bool) {
	reply := make(chan Result, 1)
	if !e.queue.Enqueue(pending{call: call, reply: reply}) {
		return nil, false
	}
	return reply, true
}

// Run dispatches queued calls until ctx is cancelled or Stop is called.
//
// After Stop, calls already queued are still dispatched. After cancellation
// they are answered with ctx.Err() instead.
//
// A failed call is reported to its submitter and logged; the loop continues.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		if err := ctx.Err(); err != nil {
			return e.cancel(err)
		}

		p, ok := e.queue.TryDequeue()
		if ok {
			receipt, err := e.rt.Dispatch(ctx, p.call)
			if err != nil {
				e.logger.Debug("call failed",
					"module", p.call.Module,
					"function", p.call.Function,
					"outcome", receipt.Outcome,
					"error", err,
				)
			}
			p.reply <- Result{Receipt: receipt, Err: err}
			continue
		}

		select {
		case <-ctx.Done():
			return e.cancel(ctx.Err())

		case <-e.queue.Wait():
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue; Run returns once it is empty.
func (e *Engine) Stop() {
	e.queue.Close()
}

// cancel refuses new calls and answers every queued one with err.
func (e *Engine) cancel(err error) error {
	e.logger.Info("engine stopping: context cancelled")
	e.queue.Close()
	e.drain(err)
	return err
}

func (e *Engine) drain(err error) {
	for {
		p, ok := e.queue.TryDequeue()
		if !ok {
			return
		}
		p.reply <- Result{Err: err}
	}
}

// callQueue is an unbounded FIFO with a coalescing wake-up signal, so the
// Run loop can wait on it and on ctx in one select.
type callQueue struct {
	mu     sync.Mutex
	items  []pending
	closed bool
	signal chan struct{} // Buffered, size 1; closed on Close
}

func newCallQueue() *callQueue {
	return &callQueue{
		items:  make([]pending, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds p at the back. Returns false if the queue is closed.
func (q *callQueue) Enqueue(p pending) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, p)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front item without blocking.
func (q *callQueue) TryDequeue() (pending, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return pending{}, false
	}
	p := q.items[0]
	q.items[0] = pending{} // release the reply channel for GC
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return p, true
}

// Wait returns a channel that fires when items may be available.
func (q *callQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *callQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Closed reports whether Close has been called.
func (q *callQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops further enqueues and wakes the waiter.
func (q *callQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
