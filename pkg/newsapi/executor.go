package newsapi

import "sync"

// Executor decides where continuations run.
type Executor interface {
	Execute(fn func())
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(fn func())

func (f ExecutorFunc) Execute(fn func()) { f(fn) }

// Inline runs continuations on the goroutine that completed the call.
var Inline Executor = ExecutorFunc(func(fn func()) { fn() })

// SerialExecutor runs continuations one at a time, in submission order, on a single
// goroutine. Code running inside its continuations needs no extra locking against
// other continuations on the same executor.
type SerialExecutor struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// NewSerialExecutor starts the executor's goroutine. Close stops it.
func NewSerialExecutor() *SerialExecutor {
	e := &SerialExecutor{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go e.loop()
	return e
}

// Execute enqueues fn. It never blocks. After Close, fn runs inline on the caller's
// goroutine so a late continuation is still delivered.
func (e *SerialExecutor) Execute(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		fn()
		return
	}
	e.queue = append(e.queue, fn)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Close drains already queued work, then stops the goroutine. Safe to call twice.
func (e *SerialExecutor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	<-e.done
}

func (e *SerialExecutor) loop() {
	defer close(e.done)
	for range e.wake {
		for {
			e.mu.Lock()
			if len(e.queue) == 0 {
				closed := e.closed
				e.mu.Unlock()
				if closed {
					return
				}
				break
			}
			fn := e.queue[0]
			e.queue[0] = nil
			e.queue = e.queue[1:]
			e.mu.Unlock()

			fn()
		}
	}
}
