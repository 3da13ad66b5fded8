package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// defaultWorkbookPart is used when the package carries no root relationships.
const defaultWorkbookPart = "xl/workbook.xml"

// SheetRef is a sheet declaration of the workbook part.
type SheetRef struct {
	Name  string
	RelID string
}

// FindWorkbookPart returns the workbook part named by the package's
// officeDocument relationship.
func FindWorkbookPart(pkg *Package) (string, error) {
	const op = "workbook.find"

	rels, err := ReadRelationships(pkg, "")
	if err != nil {
		if pkg.HasPart(defaultWorkbookPart) {
			return defaultWorkbookPart, nil
		}
		return "", err
	}

	rel, ok := findRelationshipByType(rels, "/officeDocument")
	if !ok {
		if pkg.HasPart(defaultWorkbookPart) {
			return defaultWorkbookPart, nil
		}
		return "", corrupt(op, RelsPath(""), "no officeDocument relationship")
	}
	return ResolveTarget("", rel.Target)
}

// ReadSheetRefs returns the workbook's sheet declarations in document order.
func ReadSheetRefs(pkg *Package) (workbookPart string, refs []SheetRef, err error) {
	workbookPart, err = FindWorkbookPart(pkg)
	if err != nil {
		return "", nil, err
	}
	data, err := pkg.ReadPart(workbookPart)
	if err != nil {
		return "", nil, err
	}
	refs, err = parseWorkbookSheets(data)
	if err != nil {
		return "", nil, newError("workbook.parse", KindCorruptPackage, workbookPart, err)
	}
	return workbookPart, refs, nil
}

// SheetNames lists sheet names in declaration order.
func SheetNames(pkg *Package) ([]string, error) {
	_, refs, err := ReadSheetRefs(pkg)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names, nil
}

// FindSheetPart resolves sheetName to its worksheet part. Names match
// exactly; if a workbook declares a name twice the first declaration wins.
func FindSheetPart(pkg *Package, sheetName string) (string, error) {
	const op = "workbook.sheet"

	workbookPart, refs, err := ReadSheetRefs(pkg)
	if err != nil {
		return "", err
	}

	for _, ref := range refs {
		if ref.Name != sheetName {
			continue
		}
		if ref.RelID == "" {
			return "", corrupt(op, workbookPart, "sheet %q has no relationship id", sheetName)
		}
		return ResolveRelationship(pkg, workbookPart, ref.RelID)
	}

	return "", newError(op, KindSheetNotFound, workbookPart, fmt.Errorf("sheet %q does not exist", sheetName))
}

func parseWorkbookSheets(data []byte) ([]SheetRef, error) {
	var refs []SheetRef
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := token.(xml.StartElement)
		if !ok || !spreadsheetML.is(se.Name, "sheet") {
			continue
		}

		name, _ := attr(se, unqualified, "name")
		rID, _ := attr(se, officeRels, "id")
		refs = append(refs, SheetRef{Name: name, RelID: rID})
	}

	if len(refs) == 0 {
		return nil, errors.New("workbook declares no sheets")
	}
	return refs, nil
}
