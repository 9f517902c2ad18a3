package mount

// Viewport is a scrollable window over content, in any consistent unit
// (pixels for a browser, lines for a terminal).
type Viewport struct {
	Offset        int
	Height        int
	ContentHeight int
}

// NearBottom reports whether the window is within threshold of the end.
func (v Viewport) NearBottom(threshold int) bool {
	return v.ContentHeight-(v.Offset+v.Height) <= threshold
}

// KeepScroll returns the offset to use after content grows to
// newContentHeight. A window near the bottom follows the new bottom;
// otherwise the offset is kept.
func KeepScroll(v Viewport, newContentHeight, threshold int) int {
	if !v.NearBottom(threshold) {
		return v.Offset
	}
	bottom := newContentHeight - v.Height
	if bottom < 0 {
		return 0
	}
	return bottom
}
