package display

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimScreen(t *testing.T, quadrant int) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, sim.Init())
	sim.SetSize(40, 20)
	t.Cleanup(sim.Fini)
	return &Screen{screen: sim, quadrant: quadrant}, sim
}

func TestScreen_QuadrantOrigins(t *testing.T) {
	cases := []struct {
		quadrant     int
		wantX, wantY int
	}{
		{quadrant: 0, wantX: 0, wantY: 0},
		{quadrant: 1, wantX: 4, wantY: 0},
		{quadrant: 2, wantX: 0, wantY: 2},
		{quadrant: 3, wantX: 4, wantY: 2},
	}
	for _, tc := range cases {
		s, sim := newSimScreen(t, tc.quadrant)

		s.Begin(4, 2)
		s.WriteRow(0, "X")
		s.End()

		ch, _, _, _ := sim.GetContent(tc.wantX, tc.wantY)
		assert.Equal(t, 'X', ch, "quadrant %d", tc.quadrant)
	}
}

func TestScreen_RelatchesTileSizeAcrossRuns(t *testing.T) {
	s, sim := newSimScreen(t, 1)

	// First run: 4x2 tiles put quadrant 1 at column 4.
	s.Begin(4, 2)
	s.WriteRow(0, "A")
	s.End()

	// A later run with a wider resolution must re-anchor the origin.
	s.Begin(8, 3)
	s.WriteRow(0, "B")
	s.End()

	ch, _, _, _ := sim.GetContent(8, 0)
	assert.Equal(t, 'B', ch, "New resolution moves quadrant 1 to column 8")
}

func TestScreen_SetPixelUsesPaletteBackground(t *testing.T) {
	s, sim := newSimScreen(t, 0)

	s.Begin(2, 2)
	s.SetPixel(1, 1, 3)
	s.End()

	ch, _, style, _ := sim.GetContent(1, 1)
	assert.Equal(t, ' ', ch)
	_, bg, _ := style.Decompose()
	assert.Equal(t, tcell.PaletteColor(3), bg)
}
