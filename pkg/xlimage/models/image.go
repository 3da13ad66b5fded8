package models

import (
	"path"
	"strings"
)

// Format is an image encoding tag.
type Format string

const (
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatWebP    Format = "webp"
	FormatEMF     Format = "emf"
	FormatWMF     Format = "wmf"
	FormatSVG     Format = "svg"
	FormatUnknown Format = "unknown"
)

var extFormats = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".jpe":  FormatJPEG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".dib":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".webp": FormatWebP,
	".emf":  FormatEMF,
	".wmf":  FormatWMF,
	".svg":  FormatSVG,
}

// FormatFromExt infers the image format from a file name or part path.
func FormatFromExt(name string) Format {
	if f, ok := extFormats[strings.ToLower(path.Ext(name))]; ok {
		return f
	}
	return FormatUnknown
}

// Ext returns the canonical file extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tiff"
	case FormatUnknown, "":
		return ""
	}
	return "." + string(f)
}

// Image is a picture extracted from a worksheet cell.
type Image struct {
	// SheetName is the sheet the picture was found on.
	SheetName string `json:"sheet_name"`
	// Cell is the requested target cell.
	Cell Cell `json:"cell"`
	// Anchor is the matched anchor.
	Anchor Anchor `json:"anchor"`
	// MediaPath is the package-relative path of the image part.
	MediaPath string `json:"media_path"`
	// Format is the native encoding of Data.
	Format Format `json:"format"`
	// Data holds the raw image bytes exactly as stored in the package.
	Data []byte `json:"-"`
}
