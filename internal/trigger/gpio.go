package trigger

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"mosaictile/internal/logger"
)

// GPIOInputs reads a set of named GPIO lines as the trigger source.
type GPIOInputs struct {
	lines  []*gpiocdev.Line
	names  []string
	logger logger.Logger
}

// NewGPIOInputs resolves each named line to its chip and offset and
// requests it as an input. Failing to claim any line is fatal; the unit
// cannot be triggered without its lines.
func NewGPIOInputs(names []string, log logger.Logger) (*GPIOInputs, error) {
	g := &GPIOInputs{names: names, logger: log}
	for _, name := range names {
		chip, offset, err := gpiocdev.FindLine(name)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("failed to find trigger line %q: %w", name, err)
		}
		line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsInput)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("failed to request trigger line %q (%s:%d): %w", name, chip, offset, err)
		}
		log.Debugf("Claimed trigger line %q at %s:%d", name, chip, offset)
		g.lines = append(g.lines, line)
	}
	return g, nil
}

// Active reports whether any trigger line reads high.
func (g *GPIOInputs) Active() (bool, error) {
	for i, line := range g.lines {
		v, err := line.Value()
		if err != nil {
			return false, fmt.Errorf("failed to read trigger line %q: %w", g.names[i], err)
		}
		if v != 0 {
			return true, nil
		}
	}
	return false, nil
}

// Close releases every claimed line.
func (g *GPIOInputs) Close() error {
	var firstErr error
	for _, line := range g.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	g.lines = nil
	return firstErr
}
