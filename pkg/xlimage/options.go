// Package xlimage extracts pictures anchored to worksheet cells of xlsx files.
package xlimage

import (
	"log/slog"

	"github.com/ukaji3/xlimage-go/pkg/xlimage/imaging"
	"github.com/ukaji3/xlimage-go/pkg/xlimage/models"
)

// Options configures extraction behavior.
type Options struct {
	// TempDir is the directory below which each call creates its private
	// working directory. If empty, os.TempDir() is used.
	TempDir string
	// Format is the output encoding used by SaveImage.
	// If empty, it follows the save path extension, falling back to the
	// picture's native format.
	Format models.Format
	// JPEGQuality is the quality (1-100) used when encoding JPEG output.
	JPEGQuality int
	// Logger receives pipeline stage events. If nil, events are discarded.
	Logger *slog.Logger
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{
		JPEGQuality: imaging.DefaultJPEGQuality,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) jpegQuality() int {
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		return imaging.DefaultJPEGQuality
	}
	return o.JPEGQuality
}
