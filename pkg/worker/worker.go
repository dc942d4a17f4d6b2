// Package worker provides semaphore-bounded concurrent execution with panic
// recovery for the per-window extraction fan-out.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// PanicError wraps a recovered panic value as an error.
type PanicError struct {
	Value      interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Task is a unit of work executed by a Pool.
type Task func(ctx context.Context) error

// Pool runs submitted tasks concurrently, at most maxConcurrency at a time.
// Tasks may be submitted until Wait is called; Wait blocks until all tasks
// finish and returns the joined errors. A panicking task is recovered and
// reported as a PanicError instead of crashing the process.
type Pool struct {
	semaphore chan struct{}
	logger    *slog.Logger

	mu    sync.Mutex
	tasks []Task
}

// NewPool creates a Pool with the given concurrency limit. Limits below one
// are clamped to one. A nil logger falls back to slog.Default().
func NewPool(maxConcurrency int, logger *slog.Logger) *Pool {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		semaphore: make(chan struct{}, maxConcurrency),
		logger:    logger,
	}
}

// Submit queues a task for execution. Submitting after Wait has started is a
// programming error and the task is ignored.
func (p *Pool) Submit(task Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
}

// Wait runs all submitted tasks and blocks until they complete. Tasks that
// have not yet acquired a slot when ctx is cancelled fail with ctx.Err().
// All task errors are joined into the returned error.
func (p *Pool) Wait(ctx context.Context) error {
	p.mu.Lock()
	tasks := p.tasks
	p.tasks = nil
	p.mu.Unlock()

	if len(tasks) == 0 {
		return nil
	}

	results := make([]error, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(index int, task Task) {
			defer wg.Done()
			defer p.recoverInto(&results[index])

			select {
			case p.semaphore <- struct{}{}:
				defer func() { <-p.semaphore }()
			case <-ctx.Done():
				results[index] = ctx.Err()
				return
			}

			results[index] = task(ctx)
		}(i, task)
	}

	wg.Wait()
	return errors.Join(results...)
}

func (p *Pool) recoverInto(errPtr *error) {
	if r := recover(); r != nil {
		stack := string(debug.Stack())
		*errPtr = &PanicError{Value: r, StackTrace: stack}
		p.logger.Error("recovered from panic in worker task", "panic", r, "stack", stack)
	}
}

// SafeGo runs a function in a goroutine with panic recovery. A recovered
// panic is passed to onError as a PanicError.
func SafeGo(fn func(), onError func(error)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				err := &PanicError{Value: r, StackTrace: string(debug.Stack())}
				if onError != nil {
					onError(err)
				}
			}
		}()
		fn()
	}()
}
