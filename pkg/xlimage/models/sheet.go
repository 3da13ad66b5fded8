package models

// SheetPictures lists the pictures placed on a single sheet.
type SheetPictures struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// SheetName is the sheet the pictures belong to.
	SheetName string `json:"sheet_name"`
	// SheetPart is the package-relative worksheet part.
	SheetPart string `json:"sheet_part"`
	// DrawingPart is the package-relative drawing part ("" if the sheet has none).
	DrawingPart string `json:"drawing_part,omitempty"`
	// Pictures contains picture anchors in document order.
	Pictures []Picture `json:"pictures"`
}
