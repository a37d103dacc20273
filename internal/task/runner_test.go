package task

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestJobsRunInSubmissionOrder(t *testing.T) {
	r := NewRunner()
	var mu sync.Mutex
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		r.Submit("job", func() error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}
	r.Close()

	if len(order) != 10 {
		t.Fatalf("ran %d jobs, want 10", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestExactlyOneJobInFlight(t *testing.T) {
	r := NewRunner()
	var inFlight, maxInFlight int32
	for i := 0; i < 8; i++ {
		r.Submit("job", func() error {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				m := atomic.LoadInt32(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return nil
		})
	}
	r.Close()

	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Fatalf("max concurrent jobs = %d, want 1", got)
	}
}

func TestFailureDoesNotStopLaterJobs(t *testing.T) {
	r := NewRunner()
	var ran []string
	var mu sync.Mutex
	record := func(name string, err error) func() error {
		return func() error {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
			return err
		}
	}
	r.Submit("first", record("first", nil))
	r.Submit("failing", record("failing", errors.New("boom")))
	r.Submit("last", record("last", nil))
	r.Close()

	if len(ran) != 3 || ran[2] != "last" {
		t.Fatalf("ran = %v, want all three in order", ran)
	}
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	r := NewRunner()
	r.Close()
	ran := false
	r.Submit("late", func() error { ran = true; return nil })
	if ran {
		t.Fatalf("job ran after Close")
	}
}
