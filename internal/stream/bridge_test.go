package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "neptune-ai/backend/internal/errors"
)

func fragments(items ...string) Producer {
	return func(ctx context.Context, emit func(string) error) error {
		for _, f := range items {
			if err := emit(f); err != nil {
				return err
			}
		}
		return nil
	}
}

func drain(t *testing.T, b *Bridge) ([]string, error) {
	t.Helper()
	var got []string
	for {
		f, err := b.Next(context.Background())
		if err != nil {
			return got, err
		}
		got = append(got, f)
	}
}

func TestBridge_DeliversInOrder(t *testing.T) {
	b := Start(context.Background(), fragments("He", "llo"), Options{})
	got, err := drain(t, b)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"He", "llo"}, got)
}

func TestBridge_EmptyProducer(t *testing.T) {
	b := Start(context.Background(), fragments(), Options{})
	got, err := drain(t, b)
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, got)
}

func TestBridge_ProducerErrorAfterFragments(t *testing.T) {
	boom := errors.New("boom")
	b := Start(context.Background(), func(ctx context.Context, emit func(string) error) error {
		if err := emit("partial"); err != nil {
			return err
		}
		return boom
	}, Options{})

	got, err := drain(t, b)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"partial"}, got)
}

func TestBridge_Backpressure(t *testing.T) {
	emitted := make(chan int, 10)
	b := Start(context.Background(), func(ctx context.Context, emit func(string) error) error {
		for i := 0; i < 5; i++ {
			if err := emit("x"); err != nil {
				return err
			}
			emitted <- i
		}
		return nil
	}, Options{BufferSize: 1})

	// One fragment fits in the buffer; the second emit blocks until a read.
	require.Eventually(t, func() bool { return len(emitted) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, emitted, 1)

	got, err := drain(t, b)
	assert.ErrorIs(t, err, io.EOF)
	assert.Len(t, got, 5)
}

func TestBridge_IdleTimeoutCancelsProducer(t *testing.T) {
	stopped := make(chan error, 1)
	b := Start(context.Background(), func(ctx context.Context, emit func(string) error) error {
		<-ctx.Done()
		stopped <- ctx.Err()
		return ctx.Err()
	}, Options{IdleTimeout: 20 * time.Millisecond})

	_, err := b.Next(context.Background())
	assert.ErrorIs(t, err, app_errors.ErrStreamTimeout)

	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("producer was not cancelled")
	}
}

func TestBridge_ConsumerCancelStopsProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := Start(ctx, func(ctx context.Context, emit func(string) error) error {
		for {
			if err := emit("tick"); err != nil {
				return err
			}
		}
	}, Options{BufferSize: 1})

	_, err := b.Next(context.Background())
	require.NoError(t, err)
	cancel()

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("producer kept running after cancel")
	}
}

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

func TestBridge_Pipe(t *testing.T) {
	t.Run("writes and flushes each fragment", func(t *testing.T) {
		var w flushRecorder
		b := Start(context.Background(), fragments("He", "llo", " world"), Options{})

		require.NoError(t, b.Pipe(&w))
		assert.Equal(t, "Hello world", w.String())
		assert.Equal(t, 3, w.flushes)
	})

	t.Run("returns the producer error", func(t *testing.T) {
		var w bytes.Buffer
		b := Start(context.Background(), func(ctx context.Context, emit func(string) error) error {
			_ = emit("a")
			return app_errors.ErrEngine
		}, Options{})

		err := b.Pipe(&w)
		assert.ErrorIs(t, err, app_errors.ErrEngine)
		assert.Equal(t, "a", w.String())
	})
}
