// Package task runs background work strictly one job at a time. Batch
// audits and exports go through a Runner so there is never more than one
// in-flight request, ordering stays deterministic, and a failing job never
// rolls back or cancels the ones already completed.
package task

import (
	"log"
	"sync"
)

type job struct {
	name string
	run  func() error
}

// Runner executes submitted jobs sequentially on a single worker goroutine.
type Runner struct {
	mu     sync.Mutex
	queue  []job
	wake   chan struct{}
	closed bool
	done   chan struct{}
}

// NewRunner starts a runner with an unbounded FIFO queue.
func NewRunner() *Runner {
	r := &Runner{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go r.loop()
	return r
}

// Submit queues a job. Jobs run in submission order; a returned error is
// logged and the runner moves on to the next job.
func (r *Runner) Submit(name string, run func() error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		log.Printf("Task %s dropped: runner closed", name)
		return
	}
	r.queue = append(r.queue, job{name: name, run: run})
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of jobs waiting or running.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Close stops the runner after draining the queue.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	<-r.done
}

func (r *Runner) loop() {
	defer close(r.done)
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			if r.closed {
				r.mu.Unlock()
				return
			}
			r.mu.Unlock()
			<-r.wake
			continue
		}
		next := r.queue[0]
		r.mu.Unlock()

		if err := next.run(); err != nil {
			log.Printf("Task %s failed: %v", next.name, err)
		}

		r.mu.Lock()
		r.queue = r.queue[1:]
		r.mu.Unlock()
	}
}
