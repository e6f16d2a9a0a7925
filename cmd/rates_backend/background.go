package main

import (
	"context"
	"sync"
)

// backgroundTasks tracks goroutines started outside the HTTP server and scheduler.
type backgroundTasks struct {
	wg sync.WaitGroup
}

// Go runs fn in a tracked goroutine.
func (b *backgroundTasks) Go(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
}

// Wait blocks until every tracked goroutine returns or ctx is done.
func (b *backgroundTasks) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
