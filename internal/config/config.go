package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrQuadrantRange is returned when a quadrant index falls outside 0-3.
var ErrQuadrantRange = errors.New("quadrant index must be between 0 and 3")

// Config holds the fully processed unit configuration.
type Config struct {
	Name string
	// BaseURL is the segment URL prefix; the fetcher appends
	// "<index>_q<quadrant>.<ext>".
	BaseURL   string
	Extension string
	UserAgent string
	// Quadrant is this unit's tile index on the 2x2 mosaic,
	// resolved from the raw label.
	Quadrant int
	// ExpectedWidth/ExpectedHeight, when non-zero, are validated against
	// every segment header. Zero disables the check.
	ExpectedWidth  int
	ExpectedHeight int
	// TriggerLines are the GPIO line names polled for playback activation.
	TriggerLines []string
	StorageDir   string
	// Renderer selects the draw strategy: "raw" or "diff".
	Renderer string
}

// rawConfig is the intermediate structure that maps directly to the JSON
// file. The quadrant arrives as a free-form device label and is resolved
// into an index during processing.
type rawConfig struct {
	Name           string   `json:"Name"`
	BaseURL        string   `json:"BaseURL"`
	Extension      string   `json:"Extension"`
	UserAgent      string   `json:"UserAgent"`
	QuadrantLabel  string   `json:"Quadrant"`
	ExpectedWidth  int      `json:"Width"`
	ExpectedHeight int      `json:"Height"`
	TriggerLines   []string `json:"TriggerLines"`
	StorageDir     string   `json:"StorageDir"`
	Renderer       string   `json:"Renderer"`
}

// ResolveQuadrant extracts the quadrant index from a device label. The label
// is either a bare integer ("2") or carries a "q<digit>" suffix the way the
// units are labelled on the wall ("wall-left-q2"). Indices outside 0-3 are a
// configuration error.
func ResolveQuadrant(label string) (int, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return 0, fmt.Errorf("empty quadrant label")
	}

	if i := strings.LastIndex(strings.ToLower(s), "q"); i >= 0 && i < len(s)-1 {
		s = s[i+1:]
	}

	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("cannot resolve quadrant from label %q: %w", label, err)
	}
	if q < 0 || q > 3 {
		return 0, fmt.Errorf("label %q: %w", label, ErrQuadrantRange)
	}
	return q, nil
}

// Load reads and parses the configuration file from the given path,
// resolving the quadrant label and validating the renderer selection.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config JSON: %w", err)
	}

	quadrant, err := ResolveQuadrant(raw.QuadrantLabel)
	if err != nil {
		return nil, err
	}

	if raw.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL must be set")
	}

	ext := raw.Extension
	if ext == "" {
		ext = "seg"
	}

	renderer := raw.Renderer
	switch renderer {
	case "":
		renderer = "raw"
	case "raw", "diff":
	default:
		return nil, fmt.Errorf("unknown renderer %q: expected \"raw\" or \"diff\"", raw.Renderer)
	}

	storageDir := raw.StorageDir
	if storageDir == "" {
		storageDir = os.TempDir()
	}

	return &Config{
		Name:           raw.Name,
		BaseURL:        raw.BaseURL,
		Extension:      ext,
		UserAgent:      raw.UserAgent,
		Quadrant:       quadrant,
		ExpectedWidth:  raw.ExpectedWidth,
		ExpectedHeight: raw.ExpectedHeight,
		TriggerLines:   raw.TriggerLines,
		StorageDir:     storageDir,
		Renderer:       renderer,
	}, nil
}
