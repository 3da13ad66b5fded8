package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// zipSignature is the local file header magic every OOXML package starts with.
var zipSignature = []byte("PK\x03\x04")

// supportedExts lists the container extensions accepted by OpenPackage.
var supportedExts = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// Package is an OOXML package extracted into a private working directory.
// It is owned by a single extraction and must be closed on every exit path.
type Package struct {
	// Source is the path of the original archive.
	Source string
	// Dir is the working directory holding the extracted parts.
	Dir string

	fsys   fs.FS
	closed bool
}

// OpenPackage validates the archive at path and extracts it into a fresh
// directory below tempDir (os.TempDir() when empty).
func OpenPackage(path, tempDir string) (*Package, error) {
	const op = "package.open"

	info, err := os.Stat(path)
	if err != nil {
		return nil, newError(op, KindNotFound, path, err)
	}
	if info.IsDir() {
		return nil, newError(op, KindUnsupportedFormat, path, errors.New("is a directory"))
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExts[ext] {
		return nil, newError(op, KindUnsupportedFormat, path, fmt.Errorf("unsupported extension %q", ext))
	}
	if err := checkSignature(path); err != nil {
		return nil, newError(op, KindUnsupportedFormat, path, err)
	}

	r, err := zip.OpenReader(path)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return nil, newError(op, KindCorruptPackage, path, err)
	}
	if err != nil {
		return nil, newError(op, KindUnsupportedFormat, path, err)
	}
	defer r.Close()

	if tempDir == "" {
		tempDir = os.TempDir()
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Join(tempDir, stem+"_xlimage_"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: create working directory: %w", op, err)
	}

	if err := extractAll(&r.Reader, dir); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return &Package{
		Source: path,
		Dir:    dir,
		fsys:   os.DirFS(dir),
	}, nil
}

func checkSignature(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, len(zipSignature))
	if _, err := io.ReadFull(f, head); err != nil {
		return fmt.Errorf("read signature: %w", err)
	}
	if !bytes.Equal(head, zipSignature) {
		return errors.New("missing zip signature")
	}
	return nil
}

// extractAll writes every archive entry below dir. Entries whose names would
// land outside dir are rejected.
func extractAll(r *zip.Reader, dir string) error {
	const op = "package.extract"

	for _, f := range r.File {
		name, ok := partName(f.Name)
		if !ok {
			return corrupt(op, f.Name, "entry escapes package root")
		}
		dest := filepath.Join(dir, filepath.FromSlash(name))

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o700); err != nil {
				return newError(op, KindCorruptPackage, name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
			return newError(op, KindCorruptPackage, name, err)
		}
		if err := extractFile(f, dest); err != nil {
			return newError(op, KindCorruptPackage, name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// partName normalizes an archive entry or part reference into a clean,
// slash-separated, package-relative name.
func partName(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimSuffix(name, "/")
	if name == "" {
		return "", false
	}
	name = path.Clean(name)
	if !fs.ValidPath(name) || name == "." {
		return "", false
	}
	return name, true
}

// ReadPart returns the raw bytes of a part.
func (p *Package) ReadPart(part string) ([]byte, error) {
	const op = "package.readpart"

	if p.closed {
		return nil, newError(op, KindCorruptPackage, part, errors.New("package is closed"))
	}
	name, ok := partName(part)
	if !ok {
		return nil, corrupt(op, part, "invalid part name")
	}
	data, err := fs.ReadFile(p.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		if folded, ok := p.foldPart(name); ok {
			data, err = fs.ReadFile(p.fsys, folded)
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, corrupt(op, name, "part is missing")
		}
		return nil, newError(op, KindCorruptPackage, name, err)
	}
	return data, nil
}

// foldPart finds the stored name of a part whose name differs from name only
// in case. Part names compare case-insensitively in OPC.
func (p *Package) foldPart(name string) (string, bool) {
	dir := "."
	for _, seg := range strings.Split(name, "/") {
		entries, err := fs.ReadDir(p.fsys, dir)
		if err != nil {
			return "", false
		}
		found := ""
		for _, e := range entries {
			if e.Name() == seg {
				found = seg
				break
			}
			if found == "" && strings.EqualFold(e.Name(), seg) {
				found = e.Name()
			}
		}
		if found == "" {
			return "", false
		}
		dir = path.Join(dir, found)
	}
	return dir, true
}

// HasPart reports whether part exists in the package.
func (p *Package) HasPart(part string) bool {
	if p.closed {
		return false
	}
	name, ok := partName(part)
	if !ok {
		return false
	}
	info, err := fs.Stat(p.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		if folded, ok := p.foldPart(name); ok {
			info, err = fs.Stat(p.fsys, folded)
		}
	}
	return err == nil && !info.IsDir()
}

// Close removes the working directory. It is safe to call more than once.
func (p *Package) Close() error {
	if p == nil || p.closed {
		return nil
	}
	p.closed = true
	return os.RemoveAll(p.Dir)
}
