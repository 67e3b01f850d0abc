package playback

import (
	"context"
	"fmt"
	"time"

	"mosaictile/internal/fetch"
	"mosaictile/internal/logger"
	"mosaictile/internal/pace"
	"mosaictile/internal/render"
	"mosaictile/internal/segment"
)

// Controller orchestrates one playback run: fetch, fetch-ahead, decode,
// paced render, segment transition. One instance per unit; a run holds no
// state that outlives it except the overwritten slot files.
type Controller struct {
	store    *segment.Store
	fetcher  *fetch.Fetcher
	renderer render.Renderer
	pacer    *pace.Pacer
	logger   logger.Logger

	now func() time.Time
}

// NewController wires a controller from its collaborators.
func NewController(store *segment.Store, fetcher *fetch.Fetcher, renderer render.Renderer, pacer *pace.Pacer, log logger.Logger) *Controller {
	return &Controller{
		store:    store,
		fetcher:  fetcher,
		renderer: renderer,
		pacer:    pacer,
		logger:   log,
		now:      time.Now,
	}
}

// Run plays the stream from segment 1 until the fetch chain ends. A missing
// first segment and a missing later segment both end the run cleanly; only
// a decode failure is reported as an error. The run owns the renderer's
// frame cache and resets it on entry.
func (c *Controller) Run(ctx context.Context) error {
	c.renderer.Reset()

	index := 1
	timeline := NewTimeline(c.now())

	cur := c.fetcher.Fetch(ctx, index, c.store.CurrentPath())
	if !cur.OK {
		c.logger.Infof("No segments available (%s), ending run: %v", cur.Reason, cur.Err)
		return nil
	}
	fetchDuration := cur.Duration

	for {
		// Fetch-ahead starts before the first frame of the current
		// segment is drawn, so its completion never gates the
		// transition.
		ahead := c.fetcher.FetchAsync(ctx, index+1, c.store.NextPath())

		seg, err := c.store.Load(c.store.CurrentPath(), index)
		if err != nil {
			c.store.Remove(c.store.CurrentPath())
			c.abortFetchAhead(ahead)
			return fmt.Errorf("segment %d unplayable: %w", index, err)
		}

		if err := c.playSegment(ctx, seg, timeline, fetchDuration); err != nil {
			c.store.Remove(c.store.CurrentPath())
			c.abortFetchAhead(ahead)
			return err
		}

		if err := c.store.Remove(c.store.CurrentPath()); err != nil {
			c.logger.Warnf("Failed to clean up segment %d: %v", index, err)
		}

		if ctx.Err() != nil {
			c.abortFetchAhead(ahead)
			return ctx.Err()
		}

		next := <-ahead
		if !next.OK {
			c.logger.Infof("End of stream after segment %d (%s): %v", index, next.Reason, next.Err)
			return nil
		}

		if err := c.store.Promote(); err != nil {
			return err
		}
		index++
		fetchDuration = next.Duration
		c.logger.Infof("Transition to segment %d, start %v", index, timeline.StartFor(index))
	}
}

// abortFetchAhead joins an in-flight fetch-ahead and clears its slot. Runs
// that end early must not leave next.seg behind, or a goroutine still
// writing it when the watcher starts the next run.
func (c *Controller) abortFetchAhead(ahead <-chan fetch.Result) {
	<-ahead
	if err := c.store.Remove(c.store.NextPath()); err != nil {
		c.logger.Warnf("Failed to clean up fetch-ahead slot: %v", err)
	}
}

// playSegment renders seg's frames at the fixed cadence until the frames
// run out or the segment's wall-clock deadline passes, whichever comes
// first.
func (c *Controller) playSegment(ctx context.Context, seg *segment.Segment, timeline Timeline, fetchDuration time.Duration) error {
	end := timeline.EndFor(seg.Index)
	frames := seg.FrameCount()
	c.logger.Infof("Playing segment %d: %d frames of %dx%d, deadline %v",
		seg.Index, frames, seg.Width, seg.Height, end)

	for i := 0; i < frames; i++ {
		if !c.now().Before(end) {
			c.logger.Warnf("Segment %d deadline reached at frame %d of %d, truncating", seg.Index, i, frames)
			return nil
		}

		frameStart := c.now()
		if err := c.renderer.Draw(seg.Frame(i), seg.Width, seg.Height); err != nil {
			return fmt.Errorf("segment %d frame %d: %w", seg.Index, i, err)
		}

		sleep := c.pacer.NextSleep(c.now().Sub(frameStart), fetchDuration, frames)
		if sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}
