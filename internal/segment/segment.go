package segment

// Segment is one decoded chunk of the stream: the parsed header resolution
// plus the raw body lines. It lives only while that chunk is being played.
type Segment struct {
	// Index is the segment's position in the stream, starting at 1.
	Index int
	// Width and Height are the frame dimensions parsed from the header.
	Width  int
	Height int
	// Body holds every line after the header, in file order.
	Body []string
}

// FrameCount returns the number of complete frames in the body. A trailing
// block shorter than Height is not a frame and is never rendered.
func (s *Segment) FrameCount() int {
	if s.Height <= 0 {
		return 0
	}
	return len(s.Body) / s.Height
}

// Frame returns the i-th block of Height consecutive body lines.
func (s *Segment) Frame(i int) []string {
	start := i * s.Height
	return s.Body[start : start+s.Height]
}
