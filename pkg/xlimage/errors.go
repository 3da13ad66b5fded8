package xlimage

import (
	"fmt"

	"github.com/ukaji3/xlimage-go/pkg/xlimage/parser"
)

// Sentinel errors for the failure kinds of an extraction. Match them with
// errors.Is on any error returned by this package.
var (
	// ErrFileNotFound indicates the input file does not exist.
	ErrFileNotFound = parser.ErrFileNotFound
	// ErrInvalidFormat indicates the input file is not a valid xlsx package.
	ErrInvalidFormat = parser.ErrInvalidFormat
	// ErrCorruptPackage indicates a required part is missing or malformed.
	ErrCorruptPackage = parser.ErrCorruptPackage
	// ErrSheetNotFound indicates no sheet carries the requested name.
	ErrSheetNotFound = parser.ErrSheetNotFound
	// ErrNoDrawing indicates the sheet has no pictures at all.
	ErrNoDrawing = parser.ErrNoDrawing
	// ErrNoPictureAtCell indicates no picture covers the requested cell.
	ErrNoPictureAtCell = parser.ErrNoPictureAtCell
	// ErrRelationshipNotFound indicates a part references a missing relationship id.
	ErrRelationshipNotFound = parser.ErrRelationshipNotFound
)

// Failure kinds reported by IsKind.
const (
	KindNotFound             = parser.KindNotFound
	KindUnsupportedFormat    = parser.KindUnsupportedFormat
	KindCorruptPackage       = parser.KindCorruptPackage
	KindSheetNotFound        = parser.KindSheetNotFound
	KindNoDrawing            = parser.KindNoDrawing
	KindNoPictureAtCell      = parser.KindNoPictureAtCell
	KindRelationshipNotFound = parser.KindRelationshipNotFound
)

// Stage names a step of the extraction pipeline.
type Stage string

const (
	StageOpen    Stage = "open"
	StageSheet   Stage = "sheet"
	StageDrawing Stage = "drawing"
	StageAnchor  Stage = "anchor"
	StageMedia   Stage = "media"
	StageSave    Stage = "save"
)

// ExtractionError represents an error during extraction.
type ExtractionError struct {
	SheetName string
	Component Stage
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(sheetName string, component Stage, err error) *ExtractionError {
	return &ExtractionError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}

// IsKind reports whether err was caused by a pipeline failure of the given kind.
func IsKind(err error, kind parser.ErrorKind) bool {
	return parser.IsKind(err, kind)
}
