// Package serial runs tasks one at a time on a dedicated goroutine.
package serial

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("serial executor is closed")

// Executor is a single-writer task queue. Every task submitted to it runs on
// the same goroutine in submission order.
type Executor struct {
	tasks chan func()
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func New(buffer int) *Executor {
	e := &Executor{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *Executor) loop() {
	defer close(e.done)
	for task := range e.tasks {
		task()
	}
}

// Go enqueues fn without waiting for it.
func (e *Executor) Go(fn func()) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	e.tasks <- fn
	return nil
}

// Do enqueues fn and waits until it has run.
func (e *Executor) Do(fn func()) error {
	finished := make(chan struct{})
	if err := e.Go(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	<-finished
	return nil
}

// Close stops accepting tasks and waits for queued ones to drain.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	close(e.tasks)
	e.mu.Unlock()
	<-e.done
}
