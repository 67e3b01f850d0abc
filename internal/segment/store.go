package segment

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mosaictile/internal/logger"
)

var (
	// ErrMalformedHeader is returned when the first line of a segment file
	// does not match the "<width> <height>" pattern.
	ErrMalformedHeader = errors.New("segment header is not \"<width> <height>\"")
	// ErrResolutionMismatch is returned when a segment's parsed resolution
	// differs from the unit's configured one.
	ErrResolutionMismatch = errors.New("segment resolution does not match expected resolution")
)

// DecodeError reports a segment file that could not be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Store manages the two transient segment slots on local storage. The slot
// paths are fixed and overwritten across playback runs; nothing persists.
type Store struct {
	dir    string
	logger logger.Logger

	// expectedWidth/expectedHeight, when non-zero, are enforced on load.
	expectedWidth  int
	expectedHeight int
}

// NewStore creates a store rooted at dir. expectedWidth/expectedHeight of
// zero disable resolution validation.
func NewStore(dir string, expectedWidth, expectedHeight int, log logger.Logger) *Store {
	return &Store{
		dir:            dir,
		logger:         log,
		expectedWidth:  expectedWidth,
		expectedHeight: expectedHeight,
	}
}

// CurrentPath returns the slot holding the segment being played.
func (st *Store) CurrentPath() string {
	return filepath.Join(st.dir, "current.seg")
}

// NextPath returns the fetch-ahead slot.
func (st *Store) NextPath() string {
	return filepath.Join(st.dir, "next.seg")
}

// Write replaces the file at path with data. The write completes before
// Write returns, so a subsequent Load always sees the full segment.
func (st *Store) Write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write segment to %s: %w", path, err)
	}
	st.logger.Debugf("Wrote segment file %s (%d bytes)", path, len(data))
	return nil
}

// Load reads and decodes the segment file at path. The first line must be
// the "<width> <height>" header; the remaining lines become the body.
func (st *Store) Load(path string, index int) (*Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read segment header from %s: %w", path, err)
		}
		return nil, &DecodeError{Path: path, Err: ErrMalformedHeader}
	}

	header := scanner.Text()
	width, height, err := parseHeader(header)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if width <= 0 || height <= 0 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: non-positive dimensions %dx%d", ErrMalformedHeader, width, height)}
	}

	if st.expectedWidth > 0 && st.expectedHeight > 0 &&
		(width != st.expectedWidth || height != st.expectedHeight) {
		return nil, &DecodeError{
			Path: path,
			Err: fmt.Errorf("%w: got %dx%d, expected %dx%d",
				ErrResolutionMismatch, width, height, st.expectedWidth, st.expectedHeight),
		}
	}

	var body []string
	for scanner.Scan() {
		body = append(body, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segment body from %s: %w", path, err)
	}

	seg := &Segment{Index: index, Width: width, Height: height, Body: body}
	st.logger.Debugf("Loaded segment %d: %dx%d, %d body lines, %d frames",
		index, width, height, len(body), seg.FrameCount())
	return seg, nil
}

// parseHeader matches the "<width> <height>" pattern: exactly two ASCII
// integers separated by a single space.
func parseHeader(header string) (int, int, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: got %q", ErrMalformedHeader, header)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: got %q", ErrMalformedHeader, header)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: got %q", ErrMalformedHeader, header)
	}
	return width, height, nil
}

// Remove deletes the segment file at path. A missing file is not an error;
// cleanup runs after every segment whether or not a next one exists.
func (st *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove segment file %s: %w", path, err)
	}
	return nil
}

// Promote moves the fetch-ahead slot into the current slot at a segment
// transition.
func (st *Store) Promote() error {
	if err := os.Rename(st.NextPath(), st.CurrentPath()); err != nil {
		return fmt.Errorf("failed to promote next segment: %w", err)
	}
	return nil
}
