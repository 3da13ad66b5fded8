package parser

import "encoding/xml"

// XML namespaces for the part types the pipeline reads. Both the transitional
// and the strict OOXML URIs are accepted.
const (
	nsMain       = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsMainStrict = "http://purl.oclc.org/ooxml/spreadsheetml/main"
	nsR          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRStrict    = "http://purl.oclc.org/ooxml/officeDocument/relationships"
	nsXDR        = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	nsXDRStrict  = "http://purl.oclc.org/ooxml/drawingml/spreadsheetDrawing"
	nsA          = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsAStrict    = "http://purl.oclc.org/ooxml/drawingml/main"
	nsMC         = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// namespace identifies an OOXML namespace by URI. encoding/xml resolves
// prefixes through the document's own declarations; when a prefix is never
// declared the decoder leaves the bare prefix in Name.Space, which is what
// the conventional prefix is compared against.
type namespace struct {
	uris   []string
	prefix string
}

var (
	spreadsheetML      = namespace{uris: []string{nsMain, nsMainStrict}, prefix: ""}
	officeRels         = namespace{uris: []string{nsR, nsRStrict}, prefix: "r"}
	spreadsheetDrawing = namespace{uris: []string{nsXDR, nsXDRStrict}, prefix: "xdr"}
	drawingML          = namespace{uris: []string{nsA, nsAStrict}, prefix: "a"}
	markupCompat       = namespace{uris: []string{nsMC}, prefix: "mc"}
	unqualified        = namespace{}
)

func (ns namespace) matches(space string) bool {
	for _, uri := range ns.uris {
		if space == uri {
			return true
		}
	}
	return space == ns.prefix
}

func (ns namespace) is(name xml.Name, local string) bool {
	return name.Local == local && ns.matches(name.Space)
}

// attr returns the value of the attribute local in namespace ns.
func attr(se xml.StartElement, ns namespace, local string) (string, bool) {
	for _, a := range se.Attr {
		if ns.is(a.Name, local) {
			return a.Value, true
		}
	}
	return "", false
}
