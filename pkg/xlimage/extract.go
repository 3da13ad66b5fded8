package xlimage

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ukaji3/xlimage-go/pkg/xlimage/imaging"
	"github.com/ukaji3/xlimage-go/pkg/xlimage/models"
	"github.com/ukaji3/xlimage-go/pkg/xlimage/parser"
)

// GetImage extracts the picture anchored over cell in the named sheet of the
// xlsx file at path. The cell is zero-based. When several pictures cover the
// cell, the one declared first in the drawing wins.
//
// The package is unpacked into a private working directory that is removed
// before GetImage returns, whether it succeeds or fails.
func GetImage(path, sheetName string, cell models.Cell, opts Options) (img *models.Image, err error) {
	log := opts.logger().With(
		"extraction_id", uuid.NewString(),
		"source", path,
		"sheet", sheetName,
		"cell", cell.String(),
	)

	pkg, err := parser.OpenPackage(path, opts.TempDir)
	if err != nil {
		return nil, fail(log, sheetName, StageOpen, err)
	}
	log.Debug("extract.opened", "dir", pkg.Dir)
	defer func() {
		if cerr := pkg.Close(); cerr != nil {
			log.Error("extract.cleanup_failed", "dir", pkg.Dir, "error", cerr)
			if err == nil {
				img, err = nil, fmt.Errorf("remove working directory %s: %w", pkg.Dir, cerr)
			}
		}
	}()

	sheetPart, err := parser.FindSheetPart(pkg, sheetName)
	if err != nil {
		return nil, fail(log, sheetName, StageSheet, err)
	}
	log.Debug("extract.sheet_resolved", "part", sheetPart)

	drawingPart, err := parser.FindDrawingPart(pkg, sheetPart)
	if err != nil {
		return nil, fail(log, sheetName, StageDrawing, err)
	}
	log.Debug("extract.drawing_resolved", "part", drawingPart)

	anchors, err := parser.ReadDrawing(pkg, drawingPart)
	if err != nil {
		return nil, fail(log, sheetName, StageAnchor, err)
	}
	anchor, err := parser.MatchAnchor(anchors, cell)
	if err != nil {
		return nil, fail(log, sheetName, StageAnchor, err)
	}
	if anchor.Inverted() {
		log.Warn("extract.anchor_inverted", "index", anchor.Index, "from", anchor.From.String(), "to", anchor.To.String())
	}
	log.Debug("extract.anchor_matched", "index", anchor.Index, "name", anchor.Name, "embed", anchor.EmbedID)

	mediaPart, err := parser.ResolveMedia(pkg, drawingPart, anchor.EmbedID)
	if err != nil {
		return nil, fail(log, sheetName, StageMedia, err)
	}
	data, err := pkg.ReadPart(mediaPart)
	if err != nil {
		return nil, fail(log, sheetName, StageMedia, err)
	}
	log.Debug("extract.media_resolved", "part", mediaPart, "bytes", len(data))

	return &models.Image{
		SheetName: sheetName,
		Cell:      cell,
		Anchor:    anchor,
		MediaPath: mediaPart,
		Format:    models.FormatFromExt(mediaPart),
		Data:      data,
	}, nil
}

// SaveImage extracts the picture at cell like GetImage and writes it to
// savePath. The picture bytes are copied unchanged when the output format
// equals the native one; otherwise they are re-encoded. Nothing is written
// when extraction fails.
func SaveImage(path, sheetName string, cell models.Cell, savePath string, opts Options) (*models.Image, error) {
	img, err := GetImage(path, sheetName, cell, opts)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		format = imaging.FormatFromPath(savePath)
	}
	if format == "" || format == models.FormatUnknown {
		format = img.Format
	}

	if err := imaging.Save(img.Data, img.Format, savePath, format, opts.jpegQuality()); err != nil {
		return nil, NewExtractionError(sheetName, StageSave, err)
	}
	opts.logger().Debug("extract.saved", "path", savePath, "format", format, "native", img.Format)
	return img, nil
}

// ListPictures lists every picture anchored on the named sheet, with its
// resolved media part. A sheet without a drawing yields an empty list.
func ListPictures(path, sheetName string, opts Options) (sp *models.SheetPictures, err error) {
	pkg, err := parser.OpenPackage(path, opts.TempDir)
	if err != nil {
		return nil, NewExtractionError(sheetName, StageOpen, err)
	}
	defer closePackage(pkg, &err)

	sheetPart, err := parser.FindSheetPart(pkg, sheetName)
	if err != nil {
		return nil, NewExtractionError(sheetName, StageSheet, err)
	}
	return listSheet(pkg, filepath.Base(path), sheetName, sheetPart)
}

// ListAllPictures lists the pictures of every sheet in declaration order.
func ListAllPictures(path string, opts Options) (result []models.SheetPictures, err error) {
	pkg, err := parser.OpenPackage(path, opts.TempDir)
	if err != nil {
		return nil, NewExtractionError("", StageOpen, err)
	}
	defer closePackage(pkg, &err)

	workbookPart, refs, err := parser.ReadSheetRefs(pkg)
	if err != nil {
		return nil, NewExtractionError("", StageSheet, err)
	}

	result = make([]models.SheetPictures, 0, len(refs))
	for _, ref := range refs {
		sheetPart, err := parser.ResolveRelationship(pkg, workbookPart, ref.RelID)
		if err != nil {
			return nil, NewExtractionError(ref.Name, StageSheet, err)
		}
		sp, err := listSheet(pkg, filepath.Base(path), ref.Name, sheetPart)
		if err != nil {
			return nil, err
		}
		result = append(result, *sp)
	}
	return result, nil
}

func listSheet(pkg *parser.Package, bookName, sheetName, sheetPart string) (*models.SheetPictures, error) {
	sp := &models.SheetPictures{
		BookName:  bookName,
		SheetName: sheetName,
		SheetPart: sheetPart,
		Pictures:  []models.Picture{},
	}

	drawingPart, err := parser.FindDrawingPart(pkg, sheetPart)
	if errors.Is(err, ErrNoDrawing) {
		return sp, nil
	}
	if err != nil {
		return nil, NewExtractionError(sheetName, StageDrawing, err)
	}
	sp.DrawingPart = drawingPart

	anchors, err := parser.ReadDrawing(pkg, drawingPart)
	if err != nil {
		return nil, NewExtractionError(sheetName, StageAnchor, err)
	}
	for _, a := range anchors {
		pic := models.Picture{Anchor: a}
		if a.EmbedID != "" {
			mediaPart, err := parser.ResolveMedia(pkg, drawingPart, a.EmbedID)
			if err != nil {
				return nil, NewExtractionError(sheetName, StageMedia, err)
			}
			pic.MediaPath = mediaPart
			pic.Format = models.FormatFromExt(mediaPart)
		}
		sp.Pictures = append(sp.Pictures, pic)
	}
	return sp, nil
}

// closePackage removes the working directory, reporting a failure through
// err unless an earlier error is already being returned.
func closePackage(pkg *parser.Package, err *error) {
	if cerr := pkg.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("remove working directory %s: %w", pkg.Dir, cerr)
	}
}

func fail(log *slog.Logger, sheetName string, stage Stage, err error) error {
	log.Debug("extract.failed", "stage", stage, "error", err)
	return NewExtractionError(sheetName, stage, err)
}
