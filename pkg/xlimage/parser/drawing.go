package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ukaji3/xlimage-go/pkg/xlimage/models"
)

// anchorParseResult holds an anchor while its subtree is being walked.
type anchorParseResult struct {
	anchor  models.Anchor
	hasFrom bool
	hasTo   bool
	isPic   bool
}

// ReadDrawing reads and parses the picture anchors of a drawing part.
func ReadDrawing(pkg *Package, drawingPart string) ([]models.Anchor, error) {
	data, err := pkg.ReadPart(drawingPart)
	if err != nil {
		return nil, err
	}
	anchors, err := ParseAnchors(data)
	if err != nil {
		return nil, newError("drawing.parse", KindCorruptPackage, drawingPart, err)
	}
	return anchors, nil
}

// ParseAnchors returns the two-cell picture anchors of a drawing part in
// document order. One-cell and absolute anchors, charts and plain shapes are
// not pictures and are left out. Of an mc:AlternateContent block only one
// branch is read.
func ParseAnchors(data []byte) ([]models.Anchor, error) {
	var anchors []models.Anchor

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if se, ok := token.(xml.StartElement); ok {
			if _, err := parseDrawingElement(decoder, se, &anchors); err != nil {
				return nil, err
			}
		}
	}

	return anchors, nil
}

// parseDrawingElement handles a start element met while walking drawing
// content. It reports whether the element was consumed through its end tag;
// unconsumed elements are walked into by the caller.
func parseDrawingElement(decoder *xml.Decoder, se xml.StartElement, anchors *[]models.Anchor) (bool, error) {
	switch {
	case spreadsheetDrawing.is(se.Name, "twoCellAnchor"):
		pr, err := parseTwoCellAnchor(decoder)
		if err != nil {
			return true, err
		}
		if !pr.isPic {
			return true, nil
		}
		if !pr.hasFrom || !pr.hasTo {
			return true, fmt.Errorf("picture anchor %d lacks a from or to marker", len(*anchors))
		}
		pr.anchor.Index = len(*anchors)
		*anchors = append(*anchors, pr.anchor)
		return true, nil
	case spreadsheetDrawing.is(se.Name, "oneCellAnchor"), spreadsheetDrawing.is(se.Name, "absoluteAnchor"):
		return true, decoder.Skip()
	case markupCompat.is(se.Name, "AlternateContent"):
		return true, parseAlternateContent(decoder, anchors)
	}
	return false, nil
}

// parseAlternateContent reads the first mc:Choice, or mc:Fallback when no
// choice precedes it, and skips every other branch.
func parseAlternateContent(decoder *xml.Decoder, anchors *[]models.Anchor) error {
	chosen := false
	for {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			isBranch := markupCompat.is(t.Name, "Choice") || markupCompat.is(t.Name, "Fallback")
			if isBranch && !chosen {
				chosen = true
				if err := parseBranch(decoder, anchors); err != nil {
					return err
				}
			} else if err := decoder.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// parseBranch walks the content of an mc:Choice or mc:Fallback element.
func parseBranch(decoder *xml.Decoder, anchors *[]models.Anchor) error {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			consumed, err := parseDrawingElement(decoder, t, anchors)
			if err != nil {
				return err
			}
			if !consumed {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// FindAnchor returns the first picture anchor, in document order, whose
// rectangle contains cell. Overlapping anchors are resolved by that order,
// not by which picture is drawn on top.
func FindAnchor(data []byte, cell models.Cell) (models.Anchor, error) {
	anchors, err := ParseAnchors(data)
	if err != nil {
		return models.Anchor{}, newError("drawing.parse", KindCorruptPackage, "", err)
	}
	return MatchAnchor(anchors, cell)
}

// MatchAnchor applies the containment test of FindAnchor to parsed anchors.
func MatchAnchor(anchors []models.Anchor, cell models.Cell) (models.Anchor, error) {
	const op = "drawing.match"

	for _, a := range anchors {
		if !a.Contains(cell) {
			continue
		}
		if a.EmbedID == "" {
			return models.Anchor{}, newError(op, KindNoPictureAtCell, "",
				fmt.Errorf("picture %q at cell %s has no embedded image", a.Name, cell))
		}
		return a, nil
	}

	return models.Anchor{}, newError(op, KindNoPictureAtCell, "", fmt.Errorf("no picture covers cell %s", cell))
}

// parseTwoCellAnchor walks a twoCellAnchor element. Only the first picture
// of the anchor is read, including pictures nested in group shapes.
func parseTwoCellAnchor(decoder *xml.Decoder) (anchorParseResult, error) {
	var pr anchorParseResult
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return pr, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch {
			case spreadsheetDrawing.is(t.Name, "from"):
				cell, err := parseMarker(decoder)
				if err != nil {
					return pr, fmt.Errorf("from marker: %w", err)
				}
				pr.anchor.From, pr.hasFrom = cell, true
				depth--
			case spreadsheetDrawing.is(t.Name, "to"):
				cell, err := parseMarker(decoder)
				if err != nil {
					return pr, fmt.Errorf("to marker: %w", err)
				}
				pr.anchor.To, pr.hasTo = cell, true
				depth--
			case spreadsheetDrawing.is(t.Name, "pic"):
				if pr.isPic {
					if err := decoder.Skip(); err != nil {
						return pr, err
					}
				} else if err := parsePicture(decoder, &pr.anchor); err != nil {
					return pr, err
				}
				pr.isPic = true
				depth--
			case spreadsheetDrawing.is(t.Name, "sp"),
				spreadsheetDrawing.is(t.Name, "cxnSp"),
				spreadsheetDrawing.is(t.Name, "graphicFrame"):
				if err := decoder.Skip(); err != nil {
					return pr, err
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return pr, nil
}

// parseMarker parses a from/to marker into a cell. Offsets within the cell
// are ignored.
func parseMarker(decoder *xml.Decoder) (models.Cell, error) {
	var cell models.Cell
	var hasCol, hasRow bool
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return cell, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch {
			case spreadsheetDrawing.is(t.Name, "col"):
				v, err := readElementInt(decoder)
				if err != nil {
					return cell, fmt.Errorf("col: %w", err)
				}
				cell.Col, hasCol = v, true
				depth--
			case spreadsheetDrawing.is(t.Name, "row"):
				v, err := readElementInt(decoder)
				if err != nil {
					return cell, fmt.Errorf("row: %w", err)
				}
				cell.Row, hasRow = v, true
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	if !hasCol || !hasRow {
		return cell, errors.New("marker lacks col or row")
	}
	return cell, nil
}

// parsePicture reads name, alternative text, embed id and extent of a pic
// element.
func parsePicture(decoder *xml.Decoder, anchor *models.Anchor) error {
	var seenNvPr, seenBlip, seenExt bool
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch {
			case spreadsheetDrawing.is(t.Name, "cNvPr") && !seenNvPr:
				seenNvPr = true
				anchor.Name, _ = attr(t, unqualified, "name")
				anchor.Descr, _ = attr(t, unqualified, "descr")
			case drawingML.is(t.Name, "blip") && !seenBlip:
				seenBlip = true
				anchor.EmbedID, _ = attr(t, officeRels, "embed")
			case drawingML.is(t.Name, "xfrm"):
				w, h, ok, err := parseXfrmExt(decoder)
				if err != nil {
					return err
				}
				if ok && !seenExt {
					seenExt = true
					anchor.W, anchor.H = w, h
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return nil
}

// parseXfrmExt reads the extent of an xfrm element in pixels.
func parseXfrmExt(decoder *xml.Decoder) (width, height int, ok bool, err error) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return 0, 0, false, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if drawingML.is(t.Name, "ext") {
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "cx":
						if cx, err := strconv.ParseInt(a.Value, 10, 64); err == nil {
							width, ok = EMUToPixels(cx), true
						}
					case "cy":
						if cy, err := strconv.ParseInt(a.Value, 10, 64); err == nil {
							height, ok = EMUToPixels(cy), true
						}
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}

	return width, height, ok, nil
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

func readElementInt(decoder *xml.Decoder) (int, error) {
	text, err := readElementText(decoder)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(text))
}
