// Package xlsxtest authors minimal xlsx packages with pictures at exact
// anchor positions for tests.
package xlsxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Picture is a two-cell anchored picture. Coordinates are zero-based.
type Picture struct {
	FromCol, FromRow int
	ToCol, ToRow     int
	Name             string
	// Media is the file name below xl/media. Empty leaves the blip without
	// an embed reference.
	Media string
}

// Sheet describes one worksheet.
type Sheet struct {
	Name string
	// NoDrawing omits the drawing element from the worksheet.
	NoDrawing bool
	Pictures  []Picture
}

// Book describes a workbook and its media parts.
type Book struct {
	Sheets []Sheet
	Media  map[string][]byte
}

const (
	nsMain = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsR    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPkg  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsXDR  = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	nsA    = "http://schemas.openxmlformats.org/drawingml/2006/main"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relWorksheet      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	relDrawing        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/drawing"
	relImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Files renders the package parts of b, keyed by part name.
func Files(b Book) map[string][]byte {
	files := map[string][]byte{
		"[Content_Types].xml": []byte(contentTypes),
		"_rels/.rels":         []byte(Rels(Rel{"rId1", relOfficeDocument, "xl/workbook.xml"})),
	}

	var sheets strings.Builder
	var wbRels []Rel
	for i, s := range b.Sheets {
		n := i + 1
		id := fmt.Sprintf("rId%d", n)
		fmt.Fprintf(&sheets, `<sheet name="%s" sheetId="%d" r:id="%s"/>`, escape(s.Name), n, id)
		wbRels = append(wbRels, Rel{id, relWorksheet, fmt.Sprintf("worksheets/sheet%d.xml", n)})

		sheetPart := fmt.Sprintf("xl/worksheets/sheet%d.xml", n)
		if s.NoDrawing {
			files[sheetPart] = []byte(Worksheet(""))
			continue
		}
		files[sheetPart] = []byte(Worksheet("rId1"))
		files[fmt.Sprintf("xl/worksheets/_rels/sheet%d.xml.rels", n)] = []byte(Rels(
			Rel{"rId1", relDrawing, fmt.Sprintf("../drawings/drawing%d.xml", n)},
		))

		var picRels []Rel
		var anchors strings.Builder
		for j, p := range s.Pictures {
			embed := ""
			if p.Media != "" {
				embed = fmt.Sprintf("rId%d", j+1)
				picRels = append(picRels, Rel{embed, relImage, "../media/" + p.Media})
			}
			anchors.WriteString(Anchor(p, j+2, embed))
		}
		files[fmt.Sprintf("xl/drawings/drawing%d.xml", n)] = []byte(Drawing(anchors.String()))
		files[fmt.Sprintf("xl/drawings/_rels/drawing%d.xml.rels", n)] = []byte(Rels(picRels...))
	}

	files["xl/workbook.xml"] = []byte(fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<workbook xmlns="%s" xmlns:r="%s"><sheets>%s</sheets></workbook>`,
		nsMain, nsR, sheets.String()))
	files["xl/_rels/workbook.xml.rels"] = []byte(Rels(wbRels...))

	for name, data := range b.Media {
		files["xl/media/"+name] = data
	}
	return files
}

// Rel is a relationship record.
type Rel struct {
	ID, Type, Target string
}

// Rels renders a .rels part.
func Rels(rels ...Rel) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="%s">`, nsPkg)
	for _, r := range rels {
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.ID, r.Type, r.Target)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

// Worksheet renders a worksheet part. An empty drawingID omits the drawing.
func Worksheet(drawingID string) string {
	drawing := ""
	if drawingID != "" {
		drawing = fmt.Sprintf(`<drawing r:id="%s"/>`, drawingID)
	}
	return fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<worksheet xmlns="%s" xmlns:r="%s"><sheetData><row r="1"><c r="A1"><v>1</v></c></row></sheetData>%s</worksheet>`,
		nsMain, nsR, drawing)
}

// Drawing wraps anchor markup in a drawing part.
func Drawing(anchors string) string {
	return fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<xdr:wsDr xmlns:xdr="%s" xmlns:a="%s">%s</xdr:wsDr>`,
		nsXDR, nsA, anchors)
}

// Anchor renders a twoCellAnchor holding picture p.
func Anchor(p Picture, shapeID int, embedID string) string {
	embed := ""
	if embedID != "" {
		embed = fmt.Sprintf(` xmlns:r="%s" r:embed="%s"`, nsR, embedID)
	}
	return fmt.Sprintf(`<xdr:twoCellAnchor editAs="oneCell">`+
		`<xdr:from><xdr:col>%d</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>%d</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:from>`+
		`<xdr:to><xdr:col>%d</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>%d</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:to>`+
		`<xdr:pic><xdr:nvPicPr><xdr:cNvPr id="%d" name="%s"/><xdr:cNvPicPr/></xdr:nvPicPr>`+
		`<xdr:blipFill><a:blip%s/><a:stretch><a:fillRect/></a:stretch></xdr:blipFill>`+
		`<xdr:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="952500" cy="476250"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></xdr:spPr>`+
		`</xdr:pic><xdr:clientData/></xdr:twoCellAnchor>`,
		p.FromCol, p.FromRow, p.ToCol, p.ToRow, shapeID, escape(p.Name), embed)
}

// escape makes s safe inside an attribute value.
func escape(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Default Extension="jpeg" ContentType="image/jpeg"/>` +
	`</Types>`

// WriteZip writes files as a zip archive to path. Entries are written in
// name order so repeated calls produce identical archives.
func WriteZip(t testing.TB, path string, files map[string][]byte) string {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Write renders b into dir/name and returns the file path.
func Write(t testing.TB, dir, name string, b Book) string {
	t.Helper()
	return WriteZip(t, filepath.Join(dir, name), Files(b))
}

// PNG returns a solid w x h PNG image.
func PNG(t testing.TB, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
