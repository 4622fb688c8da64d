package worker

import (
	"sync"
	"testing"
	"time"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	p := NewPool(2)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		p.Submit(func() {
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	if ran != 10 {
		t.Fatalf("ran = %d, want 10", ran)
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	p := NewPool(1)
	p.Stop()

	// must neither panic nor block
	p.Submit(func() { t.Error("job ran after stop") })
	p.Stop() // idempotent
}

func TestPoolFullQueueDoesNotBlock(t *testing.T) {
	// no workers, so nothing drains the queue
	p := NewPool(0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2048; i++ {
			p.Submit(func() {})
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
	p.Stop()
}

func TestPoolStopRacesSubmit(t *testing.T) {
	p := NewPool(1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Submit(func() {})
			}
		}()
	}
	p.Stop()
	wg.Wait()
}
