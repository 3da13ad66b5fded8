package parser

import (
	"errors"
	"testing"

	"github.com/ukaji3/xlimage-go/internal/xlsxtest"
)

func TestFindSheetPart(t *testing.T) {
	pkg := openFixture(t, xlsxtest.Files(xlsxtest.Book{
		Sheets: []xlsxtest.Sheet{
			{Name: "Summary", NoDrawing: true},
			{Name: "Photos", NoDrawing: true},
			{Name: "photos", NoDrawing: true},
		},
	}))

	tests := []struct {
		sheet    string
		expected string
	}{
		{"Summary", "xl/worksheets/sheet1.xml"},
		{"Photos", "xl/worksheets/sheet2.xml"},
		{"photos", "xl/worksheets/sheet3.xml"},
	}

	for _, tt := range tests {
		result, err := FindSheetPart(pkg, tt.sheet)
		if err != nil {
			t.Errorf("FindSheetPart(%q) failed: %v", tt.sheet, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("FindSheetPart(%q) = %q, expected %q", tt.sheet, result, tt.expected)
		}
	}

	for _, name := range []string{"PHOTOS", "Photos ", ""} {
		if _, err := FindSheetPart(pkg, name); !errors.Is(err, ErrSheetNotFound) {
			t.Errorf("FindSheetPart(%q) error = %v, expected ErrSheetNotFound", name, err)
		}
	}

	names, err := SheetNames(pkg)
	if err != nil {
		t.Fatalf("SheetNames failed: %v", err)
	}
	if len(names) != 3 || names[0] != "Summary" || names[2] != "photos" {
		t.Errorf("SheetNames = %v", names)
	}
}

func TestFindSheetPartMarkupInNames(t *testing.T) {
	const sheet = `R&D "Q1" <draft>`
	pkg := openFixture(t, xlsxtest.Files(xlsxtest.Book{
		Sheets: []xlsxtest.Sheet{{Name: sheet, Pictures: []xlsxtest.Picture{
			{FromCol: 0, FromRow: 0, ToCol: 1, ToRow: 1, Name: "Q&A", Media: "image1.png"},
		}}},
		Media: map[string][]byte{"image1.png": []byte("png")},
	}))

	part, err := FindSheetPart(pkg, sheet)
	if err != nil {
		t.Fatalf("FindSheetPart(%q) failed: %v", sheet, err)
	}
	if part != "xl/worksheets/sheet1.xml" {
		t.Errorf("FindSheetPart(%q) = %q", sheet, part)
	}

	anchors, err := ReadDrawing(pkg, "xl/drawings/drawing1.xml")
	if err != nil {
		t.Fatalf("ReadDrawing failed: %v", err)
	}
	if len(anchors) != 1 || anchors[0].Name != "Q&A" {
		t.Errorf("unexpected anchors %+v", anchors)
	}
}

func TestFindSheetPartDuplicateNamesFirstWins(t *testing.T) {
	files := xlsxtest.Files(xlsxtest.Book{
		Sheets: []xlsxtest.Sheet{
			{Name: "Data", NoDrawing: true},
			{Name: "Data", NoDrawing: true},
		},
	})
	pkg := openFixture(t, files)

	result, err := FindSheetPart(pkg, "Data")
	if err != nil {
		t.Fatalf("FindSheetPart failed: %v", err)
	}
	if result != "xl/worksheets/sheet1.xml" {
		t.Errorf("expected first declaration to win, got %q", result)
	}
}

func TestFindSheetPartRebindsPrefixes(t *testing.T) {
	files := xlsxtest.Files(xlsxtest.Book{Sheets: []xlsxtest.Sheet{{Name: "Main", NoDrawing: true}}})
	// Same namespaces, unconventional prefixes, workbook moved out of xl/.
	files["_rels/.rels"] = []byte(xlsxtest.Rels(xlsxtest.Rel{
		ID:     "rId1",
		Type:   "http://purl.oclc.org/ooxml/officeDocument/relationships/officeDocument",
		Target: "/book/main.xml",
	}))
	files["book/main.xml"] = []byte(`<x:workbook xmlns:x="http://schemas.openxmlformats.org/spreadsheetml/2006/main"` +
		` xmlns:rel="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<x:sheets><x:sheet name="Main" sheetId="1" rel:id="rId7"/></x:sheets></x:workbook>`)
	files["book/_rels/main.xml.rels"] = []byte(xlsxtest.Rels(xlsxtest.Rel{
		ID: "rId7", Type: "worksheet", Target: "../xl/worksheets/sheet1.xml",
	}))
	pkg := openFixture(t, files)

	result, err := FindSheetPart(pkg, "Main")
	if err != nil {
		t.Fatalf("FindSheetPart failed: %v", err)
	}
	if result != "xl/worksheets/sheet1.xml" {
		t.Errorf("expected xl/worksheets/sheet1.xml, got %q", result)
	}
}

func TestFindWorkbookPartFallback(t *testing.T) {
	files := xlsxtest.Files(xlsxtest.Book{Sheets: []xlsxtest.Sheet{{Name: "Sheet1", NoDrawing: true}}})
	delete(files, "_rels/.rels")
	pkg := openFixture(t, files)

	result, err := FindWorkbookPart(pkg)
	if err != nil {
		t.Fatalf("FindWorkbookPart failed: %v", err)
	}
	if result != "xl/workbook.xml" {
		t.Errorf("expected xl/workbook.xml, got %q", result)
	}
}

func TestFindSheetPartCorruptWorkbook(t *testing.T) {
	tests := []struct {
		name     string
		workbook string
	}{
		{"malformed", `<workbook><sheets><sheet name="A"`},
		{"no sheets", `<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheets/></workbook>`},
		{"missing id", `<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheets><sheet name="A" sheetId="1"/></sheets></workbook>`},
	}

	for _, tt := range tests {
		files := xlsxtest.Files(xlsxtest.Book{Sheets: []xlsxtest.Sheet{{Name: "A", NoDrawing: true}}})
		files["xl/workbook.xml"] = []byte(tt.workbook)
		pkg := openFixture(t, files)

		if _, err := FindSheetPart(pkg, "A"); !errors.Is(err, ErrCorruptPackage) {
			t.Errorf("%s: error = %v, expected ErrCorruptPackage", tt.name, err)
		}
	}
}

func TestParseWorkbookSheetsIgnoresForeignNamespace(t *testing.T) {
	data := []byte(`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:ext="urn:example:ext">` +
		`<sheets><sheet name="Real" sheetId="1" r:id="rId1"/></sheets>` +
		`<extLst><ext:sheet name="Fake" r:id="rId2"/></extLst></workbook>`)

	refs, err := parseWorkbookSheets(data)
	if err != nil {
		t.Fatalf("parseWorkbookSheets failed: %v", err)
	}
	if len(refs) != 1 || refs[0] != (SheetRef{Name: "Real", RelID: "rId1"}) {
		t.Errorf("parseWorkbookSheets = %+v", refs)
	}
}
