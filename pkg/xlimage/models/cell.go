// Package models defines data structures for picture extraction.
package models

import "fmt"

// Cell is a zero-based (row, column) worksheet coordinate, the OOXML
// drawing convention.
type Cell struct {
	// Row is the row index (0-based).
	Row int `json:"row"`
	// Col is the column index (0-based).
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}
