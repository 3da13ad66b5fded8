package models

// Anchor represents a two-cell anchored picture in a drawing part.
type Anchor struct {
	// Index is the position of the anchor among the drawing's picture anchors.
	Index int `json:"index"`
	// From is the top-left corner marker.
	From Cell `json:"from"`
	// To is the bottom-right corner marker.
	To Cell `json:"to"`
	// Name is the picture name from its non-visual properties.
	Name string `json:"name,omitempty"`
	// Descr is the alternative text of the picture.
	Descr string `json:"descr,omitempty"`
	// EmbedID is the relationship id of the embedded image ("" if the blip is linked or missing).
	EmbedID string `json:"embed_id,omitempty"`
	// W is the picture width in pixels (0 if the drawing carries no extent).
	W int `json:"w,omitempty"`
	// H is the picture height in pixels (0 if the drawing carries no extent).
	H int `json:"h,omitempty"`
}

// Contains reports whether cell lies inside the closed rectangle spanned by
// the anchor corners. Corners are normalized per axis first, so an anchor
// whose from/to are swapped still covers the same cells.
func (a Anchor) Contains(cell Cell) bool {
	minRow, maxRow := ordered(a.From.Row, a.To.Row)
	minCol, maxCol := ordered(a.From.Col, a.To.Col)
	return minRow <= cell.Row && cell.Row <= maxRow &&
		minCol <= cell.Col && cell.Col <= maxCol
}

// Inverted reports whether from lies after to on either axis.
func (a Anchor) Inverted() bool {
	return a.From.Row > a.To.Row || a.From.Col > a.To.Col
}

func ordered(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// Picture is a picture anchor together with its resolved media part.
type Picture struct {
	Anchor
	// MediaPath is the package-relative path of the image part ("" if unresolved).
	MediaPath string `json:"media_path,omitempty"`
	// Format is the native image format inferred from MediaPath.
	Format Format `json:"format,omitempty"`
}
