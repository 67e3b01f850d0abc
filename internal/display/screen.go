package display

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Screen is a tcell-backed Surface occupying one quadrant of the 2x2
// mosaic. The quadrant index fixes the tile's origin: 0 and 1 are the top
// row, 2 and 3 the bottom row.
type Screen struct {
	screen   tcell.Screen
	quadrant int

	// tileWidth/tileHeight size the quadrant grid, latched from the frame
	// dimensions at each draw call.
	tileWidth  int
	tileHeight int
}

// NewScreen initializes the terminal screen for the given quadrant.
func NewScreen(quadrant int) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	s.Clear()
	return &Screen{screen: s, quadrant: quadrant}, nil
}

// origin returns the top-left screen cell of this quadrant.
func (s *Screen) origin() (int, int) {
	return (s.quadrant % 2) * s.tileWidth, (s.quadrant / 2) * s.tileHeight
}

// Begin takes ownership of the output for one draw call and latches the
// tile size from the frame dimensions. Resolution is constant within a run,
// but the Screen outlives runs, so a new resolution re-anchors the quadrant
// origin.
func (s *Screen) Begin(width, height int) {
	if s.tileWidth != width || s.tileHeight != height {
		s.tileWidth = width
		s.tileHeight = height
	}
}

// WriteRow places a pre-encoded row on display row y of the quadrant.
func (s *Screen) WriteRow(y int, row string) {
	ox, oy := s.origin()
	x := 0
	for _, ch := range row {
		s.screen.SetContent(ox+x, oy+y, ch, nil, tcell.StyleDefault)
		x++
	}
}

// SetPixel paints one cell of the quadrant in the given palette color.
func (s *Screen) SetPixel(x, y int, color int) {
	ox, oy := s.origin()
	style := tcell.StyleDefault.Background(tcell.PaletteColor(color & 0xff))
	s.screen.SetContent(ox+x, oy+y, ' ', nil, style)
}

// End flushes the draw call to the terminal and releases the output.
func (s *Screen) End() {
	s.screen.Show()
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.screen.Fini()
}
