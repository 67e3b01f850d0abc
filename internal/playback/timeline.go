package playback

import "time"

const (
	// FirstSegmentDuration is how long segment 1 plays.
	FirstSegmentDuration = 38000 * time.Millisecond
	// SegmentDuration is how long every later segment plays.
	SegmentDuration = 45000 * time.Millisecond
)

// Timeline derives every segment's playback window from a single clock
// sample taken when the run began. All four quadrant units compute the same
// table from their own t0, so tiles stay aligned by elapsed time alone,
// with no handshake. Start times are never resampled from the clock once a
// run has begun; doing so would let per-segment jitter accumulate into
// drift between tiles.
type Timeline struct {
	t0 time.Time
}

// NewTimeline anchors a timeline at t0, the moment the run started fetching
// segment 1.
func NewTimeline(t0 time.Time) Timeline {
	return Timeline{t0: t0}
}

// StartFor returns the synchronized start timestamp for segment index:
// t0 for segment 1, then t0 + D1 + (index-2)*D2.
func (tl Timeline) StartFor(index int) time.Time {
	if index <= 1 {
		return tl.t0
	}
	return tl.t0.Add(FirstSegmentDuration + time.Duration(index-2)*SegmentDuration)
}

// DurationFor returns the playback duration of segment index.
func (tl Timeline) DurationFor(index int) time.Duration {
	if index <= 1 {
		return FirstSegmentDuration
	}
	return SegmentDuration
}

// EndFor returns the wall-clock deadline for segment index. The deadline is
// authoritative: a segment encoded with too many frames is truncated at it.
func (tl Timeline) EndFor(index int) time.Time {
	return tl.StartFor(index).Add(tl.DurationFor(index))
}
