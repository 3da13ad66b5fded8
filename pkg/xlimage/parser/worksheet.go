package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
)

// FindDrawingPart returns the drawing part referenced by a worksheet. A
// worksheet has at most one drawing element; sheets without one fail with
// KindNoDrawing.
func FindDrawingPart(pkg *Package, worksheetPart string) (string, error) {
	const op = "worksheet.drawing"

	data, err := pkg.ReadPart(worksheetPart)
	if err != nil {
		return "", err
	}

	rID, found, err := findDrawingID(data)
	if err != nil {
		return "", newError(op, KindCorruptPackage, worksheetPart, err)
	}
	if !found {
		return "", newError(op, KindNoDrawing, worksheetPart, errors.New("worksheet has no drawing element"))
	}
	if rID == "" {
		return "", corrupt(op, worksheetPart, "drawing element has no relationship id")
	}

	return ResolveRelationship(pkg, worksheetPart, rID)
}

// findDrawingID scans a worksheet for its drawing element. Cell data is
// skipped without being tokenized further.
func findDrawingID(data []byte) (rID string, found bool, err error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}

		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case spreadsheetML.is(se.Name, "sheetData"):
			if err := decoder.Skip(); err != nil {
				return "", false, err
			}
		case spreadsheetML.is(se.Name, "drawing"):
			id, _ := attr(se, officeRels, "id")
			return id, true, nil
		}
	}
}
