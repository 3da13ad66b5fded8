// Package parser walks the relationship graph of an OOXML spreadsheet
// package, from workbook to worksheet to drawing to image part, and matches
// picture anchors against worksheet cells.
package parser

// EMUPerPixel converts DrawingML picture extents (a:ext cx/cy) to screen
// pixels at 96 DPI.
const EMUPerPixel = 9525

// EMUToPixels converts a DrawingML extent in EMU to pixels at 96 DPI,
// truncating toward zero.
func EMUToPixels(emu int64) int {
	return int(emu / EMUPerPixel)
}
