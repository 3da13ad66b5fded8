package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ukaji3/xlimage-go/pkg/xlimage/models"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Format
		wantErr  bool
	}{
		{"", "", false},
		{"png", models.FormatPNG, false},
		{"PNG", models.FormatPNG, false},
		{".jpg", models.FormatJPEG, false},
		{"jpeg", models.FormatJPEG, false},
		{"tif", models.FormatTIFF, false},
		{"bmp", models.FormatBMP, false},
		{"gif", models.FormatGIF, false},
		{"webp", "", true},
		{"emf", "", true},
		{"svg", "", true},
		{"xyz", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ParseFormat(%q) error %v does not wrap ErrUnsupportedFormat", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseFormat(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestConvert(t *testing.T) {
	src := samplePNG(t)

	same, err := Convert(src, models.FormatPNG, models.FormatPNG, 0)
	if err != nil {
		t.Fatalf("Convert png->png failed: %v", err)
	}
	if !bytes.Equal(same, src) {
		t.Errorf("same-format conversion changed the bytes")
	}

	for _, to := range []models.Format{models.FormatJPEG, models.FormatGIF, models.FormatBMP, models.FormatTIFF} {
		out, err := Convert(src, models.FormatPNG, to, 80)
		if err != nil {
			t.Errorf("Convert png->%s failed: %v", to, err)
			continue
		}
		img, name, err := image.Decode(bytes.NewReader(out))
		if err != nil {
			t.Errorf("decode %s output: %v", to, err)
			continue
		}
		if name != string(to) {
			t.Errorf("Convert png->%s produced %s", to, name)
		}
		if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
			t.Errorf("Convert png->%s changed size to %v", to, b)
		}
	}
}

func TestConvertUnsupported(t *testing.T) {
	src := samplePNG(t)

	tests := []struct {
		from, to models.Format
	}{
		{models.FormatEMF, models.FormatPNG},
		{models.FormatSVG, models.FormatPNG},
		{models.FormatUnknown, models.FormatJPEG},
		{models.FormatPNG, models.FormatWebP},
		{models.FormatPNG, models.FormatWMF},
	}
	for _, tt := range tests {
		if _, err := Convert(src, tt.from, tt.to, 0); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Convert %s->%s error = %v, expected ErrUnsupportedFormat", tt.from, tt.to, err)
		}
	}

	if _, err := Convert([]byte("not an image"), models.FormatPNG, models.FormatJPEG, 0); err == nil {
		t.Errorf("expected decode error for garbage input")
	}
}

func TestSave(t *testing.T) {
	src := samplePNG(t)
	dir := t.TempDir()

	out := filepath.Join(dir, "nested", "pic.png")
	if err := Save(src, models.FormatPNG, out, models.FormatPNG, 0); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, src) {
		t.Errorf("Save changed the bytes")
	}

	bad := filepath.Join(dir, "vector.png")
	if err := Save([]byte("<svg/>"), models.FormatSVG, bad, models.FormatPNG, 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Errorf("failed save left %s behind", bad)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}
