// Package imaging writes extracted pictures to disk, re-encoding them when
// the requested format differs from the one stored in the workbook.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/xlimage-go/pkg/xlimage/models"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultJPEGQuality is used when no valid quality is given.
const DefaultJPEGQuality = 90

// ErrUnsupportedFormat indicates a format that cannot be decoded or encoded.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// decodable lists the raster formats registered with the image package.
var decodable = map[models.Format]bool{
	models.FormatPNG:  true,
	models.FormatJPEG: true,
	models.FormatGIF:  true,
	models.FormatBMP:  true,
	models.FormatTIFF: true,
	models.FormatWebP: true,
}

// ParseFormat parses a user supplied format name such as "png" or "jpg".
// An empty name yields an empty format.
func ParseFormat(name string) (models.Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", nil
	}
	f := models.FormatFromExt("." + strings.TrimPrefix(name, "."))
	if !CanEncode(f) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return f, nil
}

// FormatFromPath infers the output format from a file path extension.
func FormatFromPath(path string) models.Format {
	return models.FormatFromExt(path)
}

// CanEncode reports whether Convert can produce format f.
func CanEncode(f models.Format) bool {
	switch f {
	case models.FormatPNG, models.FormatJPEG, models.FormatGIF, models.FormatBMP, models.FormatTIFF:
		return true
	}
	return false
}

// Convert re-encodes data from one format to another. Data is returned
// unchanged when both formats are equal.
func Convert(data []byte, from, to models.Format, quality int) ([]byte, error) {
	if from == to {
		return data, nil
	}
	if !decodable[from] {
		return nil, fmt.Errorf("%w: cannot decode %s", ErrUnsupportedFormat, from)
	}
	if !CanEncode(to) {
		return nil, fmt.Errorf("%w: cannot encode %s", ErrUnsupportedFormat, to)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", from, err)
	}

	var buf bytes.Buffer
	switch to {
	case models.FormatPNG:
		err = png.Encode(&buf, img)
	case models.FormatJPEG:
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case models.FormatGIF:
		err = gif.Encode(&buf, img, nil)
	case models.FormatBMP:
		err = bmp.Encode(&buf, img)
	case models.FormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", to, err)
	}
	return buf.Bytes(), nil
}

// Save converts data to format to and writes it to path. The file is
// written to a temporary sibling first and renamed into place, so a failed
// save leaves no partial output behind.
func Save(data []byte, from models.Format, path string, to models.Format, quality int) error {
	out, err := Convert(data, from, to, quality)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".xlimage-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
