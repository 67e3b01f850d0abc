package render

import (
	"fmt"
	"strconv"
	"strings"

	"mosaictile/internal/display"
	"mosaictile/internal/logger"
)

// Renderer draws one frame's worth of lines onto the display surface. The
// raw and diff strategies are interchangeable behind this contract.
type Renderer interface {
	Draw(frame []string, width, height int) error
	// Reset clears any state carried between frames. Called once at the
	// start of every playback run.
	Reset()
}

// Raw blits each pre-encoded row straight onto its display line. No
// decoding, no state.
type Raw struct {
	surface display.Surface
}

// NewRaw creates a raw line-blit renderer on surface.
func NewRaw(surface display.Surface) *Raw {
	return &Raw{surface: surface}
}

// Draw writes rows 1..height of the frame directly to the surface.
func (r *Raw) Draw(frame []string, width, height int) error {
	r.surface.Begin(width, height)
	defer r.surface.End()

	for y := 0; y < height && y < len(frame); y++ {
		r.surface.WriteRow(y, frame[y])
	}
	return nil
}

// Reset is a no-op; the raw strategy carries no state between frames.
func (r *Raw) Reset() {}

// Diff decodes each frame into a pixel color grid and writes only the
// pixels that changed since the previous frame. Most of a frame is usually
// static background, so skipping unchanged pixels cuts write volume and the
// flicker that comes with it.
type Diff struct {
	surface display.Surface
	logger  logger.Logger

	// previous is the last fully rendered grid, nil after Reset. It always
	// has the dimensions of the current segment's resolution.
	previous [][]int
}

// NewDiff creates a diff renderer on surface.
func NewDiff(surface display.Surface, log logger.Logger) *Diff {
	return &Diff{surface: surface, logger: log}
}

// Draw decodes the frame, writes the pixels that differ from the cached
// previous frame, then replaces the cache with the new grid. The first draw
// after Reset paints every pixel.
func (d *Diff) Draw(frame []string, width, height int) error {
	grid, err := decodeGrid(frame, width, height)
	if err != nil {
		return err
	}

	// A cache with different dimensions cannot be compared against; a
	// mid-stream resolution change repaints in full, like the first frame
	// after Reset.
	previous := d.previous
	if previous != nil && (len(previous) != height || len(previous) == 0 || len(previous[0]) != width) {
		previous = nil
	}

	d.surface.Begin(width, height)
	defer d.surface.End()

	writes := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if previous != nil && previous[y][x] == grid[y][x] {
				continue
			}
			d.surface.SetPixel(x, y, grid[y][x])
			writes++
		}
	}
	d.previous = grid

	d.logger.Debugf("Diff draw: %d of %d pixels written", writes, width*height)
	return nil
}

// Reset drops the previous-frame cache.
func (d *Diff) Reset() {
	d.previous = nil
}

// decodeGrid parses height rows of width space-separated pixel color
// values.
func decodeGrid(frame []string, width, height int) ([][]int, error) {
	if len(frame) < height {
		return nil, fmt.Errorf("frame has %d rows, expected %d", len(frame), height)
	}

	grid := make([][]int, height)
	for y := 0; y < height; y++ {
		fields := strings.Fields(frame[y])
		if len(fields) != width {
			return nil, fmt.Errorf("row %d has %d pixels, expected %d", y, len(fields), width)
		}
		row := make([]int, width)
		for x, field := range fields {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("row %d pixel %d: %w", y, x, err)
			}
			row[x] = v
		}
		grid[y] = row
	}
	return grid, nil
}
