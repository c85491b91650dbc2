// Package stream turns a callback-style producer into a pull-style fragment
// sequence that an HTTP handler can drain.
package stream

import (
	"context"
	"io"
	"sync"
	"time"

	app_errors "neptune-ai/backend/internal/errors"
	"neptune-ai/backend/internal/metrics"
)

const (
	DefaultBufferSize  = 16
	DefaultIdleTimeout = 60 * time.Second
)

// Producer generates fragments and hands each to emit in order. It must stop
// when emit returns an error or ctx is done.
type Producer func(ctx context.Context, emit func(fragment string) error) error

type Options struct {
	BufferSize  int
	IdleTimeout time.Duration
}

// Bridge runs a Producer on its own goroutine and buffers at most BufferSize
// fragments. A full buffer blocks the producer; nothing is dropped.
type Bridge struct {
	ctx       context.Context
	cancel    context.CancelFunc
	fragments chan string
	done      chan struct{}
	idle      time.Duration

	// err is written before fragments is closed.
	err       error
	closeOnce sync.Once
}

// Start launches produce. The producer's context is cancelled when ctx is
// done, on idle timeout, or on Close.
func Start(ctx context.Context, produce Producer, opts Options) *Bridge {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	pctx, cancel := context.WithCancel(ctx)
	b := &Bridge{
		ctx:       pctx,
		cancel:    cancel,
		fragments: make(chan string, opts.BufferSize),
		done:      make(chan struct{}),
		idle:      opts.IdleTimeout,
	}
	metrics.ActiveStreams.Inc()
	go b.run(produce)
	return b
}

func (b *Bridge) run(produce Producer) {
	defer close(b.done)
	defer metrics.ActiveStreams.Dec()
	err := produce(b.ctx, func(fragment string) error {
		select {
		case b.fragments <- fragment:
			return nil
		case <-b.ctx.Done():
			return b.ctx.Err()
		}
	})
	b.err = err
	close(b.fragments)
}

// Next returns the next fragment in production order. After the last fragment
// it returns io.EOF, or the producer's error if it failed. If nothing arrives
// within the idle window it returns ErrStreamTimeout and cancels the producer.
func (b *Bridge) Next(ctx context.Context) (string, error) {
	timer := time.NewTimer(b.idle)
	defer timer.Stop()

	select {
	case fragment, ok := <-b.fragments:
		if !ok {
			if b.err != nil {
				return "", b.err
			}
			return "", io.EOF
		}
		metrics.StreamFragmentsTotal.Inc()
		return fragment, nil
	case <-timer.C:
		metrics.StreamTimeoutsTotal.Inc()
		b.Close()
		return "", app_errors.ErrStreamTimeout
	case <-ctx.Done():
		b.Close()
		return "", ctx.Err()
	}
}

// Pipe writes every fragment to w until the stream ends, flushing after each
// write when w supports it. A clean end returns nil.
func (b *Bridge) Pipe(w io.Writer) error {
	defer b.Close()
	flusher, _ := w.(interface{ Flush() })
	for {
		fragment, err := b.Next(b.ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, fragment); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// Close cancels the producer. It does not wait for it to return.
func (b *Bridge) Close() {
	b.closeOnce.Do(b.cancel)
}

// Done is closed once the producer has returned.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}
