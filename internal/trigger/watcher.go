package trigger

import (
	"context"
	"time"

	"mosaictile/internal/logger"
)

// PollInterval is how often the trigger lines are sampled.
const PollInterval = 100 * time.Millisecond

// Inputs reads the external trigger lines. Active reports true when any
// line is high.
type Inputs interface {
	Active() (bool, error)
}

// RunFunc is one full playback run.
type RunFunc func(ctx context.Context) error

// Watcher polls the trigger inputs and starts a playback run on activation.
// The run executes on the watcher's own goroutine, so a second activation
// cannot overlap a run in progress; polling resumes once the run ends.
type Watcher struct {
	inputs Inputs
	run    RunFunc
	logger logger.Logger

	// Interval between polls of the trigger lines.
	Interval time.Duration
}

// NewWatcher creates a watcher that invokes run when any input goes active.
func NewWatcher(inputs Inputs, run RunFunc, log logger.Logger) *Watcher {
	return &Watcher{
		inputs:   inputs,
		run:      run,
		logger:   log,
		Interval: PollInterval,
	}
}

// Watch polls until ctx is cancelled. Input read errors are logged and
// polling continues; a failed playback run likewise returns the watcher to
// polling, never crashes it.
func (w *Watcher) Watch(ctx context.Context) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.logger.Infof("Watching trigger lines every %v", w.Interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Trigger watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			active, err := w.inputs.Active()
			if err != nil {
				w.logger.Warnf("Failed to read trigger lines: %v", err)
				continue
			}
			if !active {
				continue
			}

			w.logger.Infof("Trigger active, starting playback run")
			if err := w.run(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Errorf("Playback run ended with error: %v", err)
			} else {
				w.logger.Infof("Playback run finished")
			}
		}
	}
}
