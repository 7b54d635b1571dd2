package ocr

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Extractor is what the upload pipeline depends on; satisfied by both
// Client and Dispatcher, and by stubs in tests.
type Extractor interface {
	Extract(ctx context.Context, fileName, contentType string, r io.Reader) (Result, error)
}

// Dispatcher runs extraction calls on a bounded worker pool so a burst of
// OCR-eligible uploads cannot pin every handler goroutine on a slow
// worker. Submission blocks when the pool is saturated.
type Dispatcher struct {
	client  Extractor
	pool    *ants.Pool
	timeout time.Duration
}

// NewDispatcher creates a dispatcher over client with poolSize concurrent
// extractions. poolSize <= 0 defaults to half the CPUs, minimum 2.
func NewDispatcher(client Extractor, poolSize int, timeout time.Duration) (*Dispatcher, error) {
	if poolSize <= 0 {
		poolSize = runtime.NumCPU() / 2
		if poolSize < 2 {
			poolSize = 2
		}
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create ocr pool: %w", err)
	}
	return &Dispatcher{client: client, pool: pool, timeout: timeout}, nil
}

type extractOutcome struct {
	result Result
	err    error
}

// Extract runs one extraction on the pool and waits for it. The task gets
// its own timeout context detached from the caller's: once dispatched, an
// extraction runs to completion even if the client disconnects.
func (d *Dispatcher) Extract(_ context.Context, fileName, contentType string, r io.Reader) (Result, error) {
	done := make(chan extractOutcome, 1)

	submitErr := d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		result, err := d.client.Extract(ctx, fileName, contentType, r)
		done <- extractOutcome{result: result, err: err}
	})
	if submitErr != nil {
		return Result{}, fmt.Errorf("submit ocr task: %w", submitErr)
	}

	outcome := <-done
	return outcome.result, outcome.err
}

// Release shuts the pool down. In-flight tasks finish first.
func (d *Dispatcher) Release() {
	d.pool.Release()
}

var (
	_ Extractor = (*Client)(nil)
	_ Extractor = (*Dispatcher)(nil)
)
