package trigger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mosaictile/internal/logger"
)

// fakeInputs is a trigger source driven by an atomic flag.
type fakeInputs struct {
	active atomic.Bool
	err    atomic.Value
}

func (f *fakeInputs) Active() (bool, error) {
	if err, ok := f.err.Load().(error); ok && err != nil {
		return false, err
	}
	return f.active.Load(), nil
}

func TestWatch_InactiveLinesNeverInvokePlayback(t *testing.T) {
	inputs := &fakeInputs{}
	var runs atomic.Int32
	w := NewWatcher(inputs, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, logger.Nop{})
	w.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	err := w.Watch(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(0), runs.Load(), "All lines inactive: playback must never start")
}

func TestWatch_ActiveLineStartsRun(t *testing.T) {
	inputs := &fakeInputs{}
	inputs.active.Store(true)

	started := make(chan struct{})
	w := NewWatcher(inputs, func(ctx context.Context) error {
		// Deactivate so the watcher goes back to idle polling.
		inputs.active.Store(false)
		close(started)
		return nil
	}, logger.Nop{})
	w.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("Trigger never started a playback run")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_RunsAreNeverConcurrent(t *testing.T) {
	inputs := &fakeInputs{}
	inputs.active.Store(true)

	var inRun atomic.Int32
	var overlapped atomic.Bool
	var runs atomic.Int32
	w := NewWatcher(inputs, func(ctx context.Context) error {
		if inRun.Add(1) > 1 {
			overlapped.Store(true)
		}
		defer inRun.Add(-1)
		runs.Add(1)
		time.Sleep(15 * time.Millisecond) // several poll intervals long
		return nil
	}, logger.Nop{})
	w.Interval = 2 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	w.Watch(ctx)

	assert.False(t, overlapped.Load(), "A held trigger must not start overlapping runs")
	assert.GreaterOrEqual(t, runs.Load(), int32(2), "Polling resumes after each run while the line stays active")
}

func TestWatch_InputErrorsKeepPolling(t *testing.T) {
	inputs := &fakeInputs{}
	inputs.err.Store(errors.New("line read failed"))

	var runs atomic.Int32
	w := NewWatcher(inputs, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, logger.Nop{})
	w.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	err := w.Watch(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded, "Read errors are logged, not fatal")
	assert.Equal(t, int32(0), runs.Load())
}

func TestWatch_PlaybackErrorResumesPolling(t *testing.T) {
	inputs := &fakeInputs{}
	inputs.active.Store(true)

	var runs atomic.Int32
	w := NewWatcher(inputs, func(ctx context.Context) error {
		if runs.Add(1) == 2 {
			inputs.active.Store(false)
		}
		return errors.New("segment 1 unplayable")
	}, logger.Nop{})
	w.Interval = 2 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	w.Watch(ctx)

	assert.GreaterOrEqual(t, runs.Load(), int32(2), "A failed run returns the watcher to polling")
}
