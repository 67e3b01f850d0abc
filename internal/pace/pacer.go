package pace

import "time"

// DefaultFrameInterval is the fixed cadence frames are drawn at.
const DefaultFrameInterval = 200 * time.Millisecond

// Pacer computes the per-frame sleep that holds a fixed frame interval.
type Pacer struct {
	// Interval is the target time between frame starts.
	Interval time.Duration
}

// New creates a pacer at the default frame interval.
func New() *Pacer {
	return &Pacer{Interval: DefaultFrameInterval}
}

// NextSleep returns how long to sleep after a frame so the next one starts
// on cadence. processing is the time the frame took to extract and draw.
// fetchDuration is the previous fetch's wall-clock time, spread evenly over
// framesPerSegment so a slow download is absorbed a sliver per frame instead
// of as one long stall. A frame that already overran its slot gets a zero
// sleep; the underrun is absorbed, never surfaced.
func (p *Pacer) NextSleep(processing, fetchDuration time.Duration, framesPerSegment int) time.Duration {
	sleep := p.Interval - processing
	if framesPerSegment > 0 {
		sleep -= fetchDuration / time.Duration(framesPerSegment)
	}
	if sleep < 0 {
		return 0
	}
	return sleep
}
