package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ukaji3/xlimage-go/internal/xlsxtest"
	"github.com/ukaji3/xlimage-go/pkg/xlimage"
	"github.com/ukaji3/xlimage-go/pkg/xlimage/models"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		ref      string
		row, col int
		expected models.Cell
		wantErr  bool
	}{
		{"A1", -1, -1, models.Cell{Row: 0, Col: 0}, false},
		{"B3", -1, -1, models.Cell{Row: 2, Col: 1}, false},
		{"aa10", -1, -1, models.Cell{Row: 9, Col: 26}, false},
		{"", 4, 7, models.Cell{Row: 4, Col: 7}, false},
		{"", 0, 0, models.Cell{}, false},
		{"", -1, 3, models.Cell{}, true},
		{"", 3, -1, models.Cell{}, true},
		{"3B", -1, -1, models.Cell{}, true},
	}

	for _, tt := range tests {
		got, err := parseCell(tt.ref, tt.row, tt.col)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseCell(%q, %d, %d) error = %v, wantErr %v", tt.ref, tt.row, tt.col, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("parseCell(%q, %d, %d) = %v, expected %v", tt.ref, tt.row, tt.col, got, tt.expected)
		}
	}
}

// runCLI executes the root command in an empty working directory so no
// stray config file is picked up.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func cliBook(t *testing.T) (string, []byte) {
	t.Helper()
	pic := xlsxtest.PNG(t, 3, 3, color.RGBA{R: 200, G: 100, A: 255})
	path := xlsxtest.Write(t, t.TempDir(), "book.xlsx", xlsxtest.Book{
		Sheets: []xlsxtest.Sheet{
			{Name: "Data", NoDrawing: true},
			{Name: "Photos", Pictures: []xlsxtest.Picture{
				{FromCol: 1, FromRow: 1, ToCol: 3, ToRow: 4, Name: "Logo", Media: "image1.png"},
			}},
		},
		Media: map[string][]byte{"image1.png": pic},
	})
	return path, pic
}

func TestGetCommand(t *testing.T) {
	book, pic := cliBook(t)
	outDir := t.TempDir()
	tempDir := t.TempDir()

	out := filepath.Join(outDir, "logo.png")
	if _, _, err := runCLI(t, "get", book, "--sheet", "Photos", "--cell", "C4", "-o", out, "--temp-dir", tempDir); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, pic) {
		t.Errorf("get changed the picture bytes")
	}

	stdout, _, err := runCLI(t, "get", book, "-s", "Photos", "--row", "1", "--col", "1", "-o", "-", "--temp-dir", tempDir)
	if err != nil {
		t.Fatalf("get to stdout failed: %v", err)
	}
	if stdout != string(pic) {
		t.Errorf("stdout does not carry the picture bytes")
	}

	stdout, _, err = runCLI(t, "get", book, "-s", "Photos", "-c", "B2", "-o", "-", "-f", "jpeg", "--temp-dir", tempDir)
	if err != nil {
		t.Fatalf("get as jpeg failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "\xff\xd8") {
		t.Errorf("expected JPEG output on stdout")
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("working directories left behind: %d", len(entries))
	}
}

func TestGetCommandErrors(t *testing.T) {
	book, _ := cliBook(t)
	out := filepath.Join(t.TempDir(), "out.png")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing sheet", []string{"get", book, "-s", "Nope", "-c", "B2", "-o", out}, xlimage.ErrSheetNotFound},
		{"no drawing", []string{"get", book, "-s", "Data", "-c", "B2", "-o", out}, xlimage.ErrNoDrawing},
		{"no picture", []string{"get", book, "-s", "Photos", "-c", "A1", "-o", out}, xlimage.ErrNoPictureAtCell},
		{"missing file", []string{"get", filepath.Join(t.TempDir(), "x.xlsx"), "-s", "Photos", "-c", "B2", "-o", out}, xlimage.ErrFileNotFound},
	}

	for _, tt := range tests {
		_, _, err := runCLI(t, tt.args...)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, expected %v", tt.name, err, tt.want)
		}
	}

	if _, _, err := runCLI(t, "get", book, "-s", "Photos", "-o", out); err == nil {
		t.Errorf("expected error without a target cell")
	}
	if _, _, err := runCLI(t, "get", book, "-s", "Photos", "-c", "B2", "--row", "1", "-o", out); err == nil {
		t.Errorf("expected error for --cell together with --row")
	}
	if _, _, err := runCLI(t, "get", book, "-s", "Photos", "-c", "B2", "-o", out, "-f", "emf"); err == nil {
		t.Errorf("expected error for an unencodable format")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("failed runs left %s behind", out)
	}
}

func TestListCommand(t *testing.T) {
	book, _ := cliBook(t)

	stdout, _, err := runCLI(t, "list", book)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var all []models.SheetPictures
	if err := json.Unmarshal([]byte(stdout), &all); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, stdout)
	}
	if len(all) != 2 || len(all[0].Pictures) != 0 || len(all[1].Pictures) != 1 {
		t.Fatalf("unexpected listing %+v", all)
	}
	if p := all[1].Pictures[0]; p.Name != "Logo" || p.MediaPath != "xl/media/image1.png" || p.To != (models.Cell{Row: 4, Col: 3}) {
		t.Errorf("unexpected picture %+v", p)
	}

	stdout, _, err = runCLI(t, "list", book, "--sheet", "Photos", "--pretty")
	if err != nil {
		t.Fatalf("list --sheet failed: %v", err)
	}
	var sp models.SheetPictures
	if err := json.Unmarshal([]byte(stdout), &sp); err != nil {
		t.Fatalf("list output is not JSON: %v", err)
	}
	if sp.SheetName != "Photos" || !strings.Contains(stdout, "\n  ") {
		t.Errorf("unexpected pretty listing:\n%s", stdout)
	}
}

func TestDebugLogging(t *testing.T) {
	book, _ := cliBook(t)
	out := filepath.Join(t.TempDir(), "logo.png")

	_, stderr, err := runCLI(t, "get", book, "-s", "Photos", "-c", "B2", "-o", out, "--debug")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.Contains(stderr, "extract.anchor_matched") || !strings.Contains(stderr, "picture saved") {
		t.Errorf("debug log lacks pipeline events:\n%s", stderr)
	}
}
