package viewer

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/shineyruler/internal/clipboard"
	"github.com/example/shineyruler/internal/export"
)

// Clipboard writers are swapped by tests.
var (
	writeClipboardMeasured = clipboard.WriteMeasured
	writeClipboardText     = clipboard.WriteText
)

// DefaultOutput derives an output path for the current image with the given
// extension, e.g. "photo-measured.png" in the configured output directory.
func (s *Session) DefaultOutput(ext string) string {
	name := "image"
	if img, ok := s.Current(); ok && img.Name != "" {
		name = strings.TrimSuffix(img.Name, filepath.Ext(img.Name))
	}
	return filepath.Join(s.outputDir, name+"-measured"+ext)
}

// SaveImage writes the flattened image as PNG. An empty path uses
// DefaultOutput.
func (s *Session) SaveImage(path string) (string, error) {
	if path == "" {
		path = s.DefaultOutput(".png")
	}
	img, err := s.Flatten()
	if err != nil {
		return "", err
	}
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("save: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("save: closing file: %w", err)
	}
	s.notifier.Save(path)
	return path, nil
}

// Document captures the current annotations for export.
func (s *Session) Document() (export.Document, error) {
	img, ok := s.Current()
	if !ok || img.Image == nil {
		return export.Document{}, fmt.Errorf("no image open")
	}
	b := img.Image.Bounds()
	return export.Document{
		Image:       img.Ref,
		Width:       b.Dx(),
		Height:      b.Dy(),
		PixelsPerCM: s.Settings().PixelsPerCM,
		Annotations: export.FromStore(s.store),
	}, nil
}

// ExportJSON writes the annotations as JSON. An empty path uses
// DefaultOutput.
func (s *Session) ExportJSON(path string) (string, error) {
	if path == "" {
		path = s.DefaultOutput(".json")
	}
	doc, err := s.Document()
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := export.Encode(f, doc); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: closing file: %w", err)
	}
	s.notifier.Export(path)
	return path, nil
}

// CopyImage places the flattened image on the clipboard. The measurement
// summary goes with it as text.
func (s *Session) CopyImage() error {
	img, err := s.Flatten()
	if err != nil {
		return err
	}
	if err := writeClipboardMeasured(img, s.summary()); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	name := "image"
	if cur, ok := s.Current(); ok {
		name = cur.Name
	}
	s.notifier.Copy(name, img)
	return nil
}

// CopyMeasurements places the measurement summary on the clipboard.
func (s *Session) CopyMeasurements() error {
	text := s.summary()
	if text == "" {
		return fmt.Errorf("copy: no measurements")
	}
	if err := writeClipboardText(text); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	s.notifier.Copy("measurements", nil)
	return nil
}

func (s *Session) summary() string {
	lines := s.Measurements()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
