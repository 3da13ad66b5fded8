package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per ErrorKind. Match them with errors.Is.
var (
	ErrFileNotFound         = errors.New("file not found")
	ErrInvalidFormat        = errors.New("invalid xlsx format")
	ErrCorruptPackage       = errors.New("corrupt package")
	ErrSheetNotFound        = errors.New("sheet not found")
	ErrNoDrawing            = errors.New("sheet has no drawing")
	ErrNoPictureAtCell      = errors.New("no picture at cell")
	ErrRelationshipNotFound = errors.New("relationship not found")
)

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	KindNotFound             ErrorKind = "not_found"
	KindUnsupportedFormat    ErrorKind = "unsupported_format"
	KindCorruptPackage       ErrorKind = "corrupt_package"
	KindSheetNotFound        ErrorKind = "sheet_not_found"
	KindNoDrawing            ErrorKind = "no_drawing"
	KindNoPictureAtCell      ErrorKind = "no_picture_at_cell"
	KindRelationshipNotFound ErrorKind = "relationship_not_found"
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:             ErrFileNotFound,
	KindUnsupportedFormat:    ErrInvalidFormat,
	KindCorruptPackage:       ErrCorruptPackage,
	KindSheetNotFound:        ErrSheetNotFound,
	KindNoDrawing:            ErrNoDrawing,
	KindNoPictureAtCell:      ErrNoPictureAtCell,
	KindRelationshipNotFound: ErrRelationshipNotFound,
}

// Error wraps an underlying error with the failing operation, its kind and
// the file or part involved.
type Error struct {
	Op   string
	Kind ErrorKind
	Path string // source file or package part
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return kindSentinels[e.Kind] == target
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

func newError(op string, kind ErrorKind, path string, err error) *Error {
	return &Error{Op: op, Kind: kind, Path: path, Err: err}
}

func corrupt(op, path, format string, args ...any) *Error {
	return newError(op, KindCorruptPackage, path, fmt.Errorf(format, args...))
}
