package display

// Surface is one quadrant's drawing target. Begin and End bracket a single
// draw call: output is directed at the surface between them and released
// (flushed to the device) by End.
type Surface interface {
	// Begin directs output to the surface for one draw call of the given
	// frame dimensions.
	Begin(width, height int)
	// WriteRow blits a pre-encoded row onto display row y, starting at the
	// first column. The row is written as-is, without decoding.
	WriteRow(y int, row string)
	// SetPixel draws a single pixel at (x, y) in the given palette color.
	SetPixel(x, y int, color int)
	// End flushes pending writes and restores the default output target.
	End()
}
