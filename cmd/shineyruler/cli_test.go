package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/shineyruler/internal/config"
	"github.com/example/shineyruler/internal/export"
)

func newTestRoot(t *testing.T, stdin string) (*root, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	r := &root{
		program: "shineyruler",
		config:  config.New(),
		saveDir: t.TempDir(),
		stdin:   strings.NewReader(stdin),
		stdout:  &stdout,
		stderr:  &stderr,
	}
	return r, &stdout, &stderr
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	path := filepath.Join(t.TempDir(), "ruler.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseViewRequiresImages(t *testing.T) {
	r, _, _ := newTestRoot(t, "")
	_, err := parseViewCmd(nil, r)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if help := uerr.Error(); !strings.Contains(help, "Usage: shineyruler view") {
		t.Fatalf("help = %q", help)
	}
	if _, err := parseViewCmd([]string{"-index", "3", "a.png"}, r); err == nil {
		t.Fatalf("expected out of range index error")
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	r, _, _ := newTestRoot(t, "")
	help := (&UsageError{of: r}).Error()
	for _, want := range []string{"view", "script", "measure", "render", "config"} {
		if !strings.Contains(help, want) {
			t.Errorf("root help missing %q", want)
		}
	}
}

func TestMeasure(t *testing.T) {
	r, out, _ := newTestRoot(t, "")
	cmd, err := parseMeasureCmd([]string{"10", "50", "388", "50"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := out.String(), "378.0 px  10.0 cm  midpoint (199.0, 50.0)\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
	if _, err := parseMeasureCmd([]string{"1", "2", "x", "4"}, r); err == nil {
		t.Fatalf("expected coordinate error")
	}
	if _, err := parseMeasureCmd([]string{"-ppcm", "0", "1", "2", "3", "4"}, r); err == nil {
		t.Fatalf("expected ppcm error")
	}
}

func TestScriptRulerAndExport(t *testing.T) {
	r, out, _ := newTestRoot(t, "")
	img := writePNG(t, 500, 100)
	jsonPath := filepath.Join(t.TempDir(), "out.json")
	cmd, err := parseScriptCmd([]string{
		"-e", "tool ruler",
		"-e", "click 10 50",
		"-e", "move 388 50",
		"-e", "click 388 50",
		"-e", "list",
		"-e", "export " + jsonPath,
		img,
	}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "1: distance 10.0 cm") {
		t.Fatalf("output = %q", out.String())
	}
	f, err := os.Open(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	doc, err := export.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Annotations) != 1 || doc.Annotations[0].Kind != "distance" || doc.Annotations[0].Centimeters != 10 {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestScriptErrorStopsExecs(t *testing.T) {
	r, _, _ := newTestRoot(t, "")
	cmd, err := parseScriptCmd([]string{"-e", "tool hammer", img(t)}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Fatalf("err = %v", err)
	}
}

func img(t *testing.T) string { return writePNG(t, 100, 100) }

func TestScriptStdin(t *testing.T) {
	r, out, errOut := newTestRoot(t, "tool line\nclick 10 10\nmove 40 10\nclick 40 10\nbogus\nlist\nundo\nstatus\nexit\nlist\n")
	cmd, err := parseScriptCmd([]string{img(t)}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "1: line 30.0 px") {
		t.Fatalf("output = %q", out.String())
	}
	if strings.Count(out.String(), "1: line") != 1 {
		t.Fatalf("commands after exit were run: %q", out.String())
	}
	if !strings.Contains(out.String(), "annotations 0") {
		t.Fatalf("undo not reflected in status: %q", out.String())
	}
	if !strings.Contains(errOut.String(), `unknown action "bogus"`) {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestScriptSizeScalesClicks(t *testing.T) {
	r, out, _ := newTestRoot(t, "")
	// A 200x200 image shown in a 100x100 area is drawn at half size.
	cmd, err := parseScriptCmd([]string{
		"-size", "100x100",
		"-e", "tool line",
		"-e", "click 10 50",
		"-e", "move 60 50",
		"-e", "click 60 50",
		"-e", "list",
		writePNG(t, 200, 200),
	}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "1: line 100.0 px") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestParseSize(t *testing.T) {
	if r, err := parseSize("640x480"); err != nil || r != image.Rect(0, 0, 640, 480) {
		t.Fatalf("parseSize = %v, %v", r, err)
	}
	for _, bad := range []string{"640", "0x10", "ax10", "10x-1"} {
		if _, err := parseSize(bad); err == nil {
			t.Errorf("parseSize(%q) should fail", bad)
		}
	}
}

func TestRenderRoundTrip(t *testing.T) {
	r, _, _ := newTestRoot(t, "")
	src := writePNG(t, 120, 80)
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.json")
	script, err := parseScriptCmd([]string{"-e", "tool line", "-e", "click 10 40", "-e", "move 110 40", "-e", "click 110 40", "-e", "export " + jsonPath, src}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := script.Run(); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(dir, "out.png")
	cmd, err := parseRenderCmd([]string{"-annotations", jsonPath, "-output", outPath}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	out, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := out.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Fatalf("bounds = %v", b)
	}
	if c := color.RGBAModel.Convert(out.At(60, 40)).(color.RGBA); c == (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("line was not drawn")
	}
}

func TestParseRenderClipboardRequiresOutput(t *testing.T) {
	_, err := parseRenderCmd([]string{"-annotations", "a.json", "-from-clipboard"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "output file is required when reading from the clipboard"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
	if _, err := parseRenderCmd([]string{"-annotations", "a.json", "-from-clipboard", "-file", "x.png", "-output", "o.png"}, nil); err == nil {
		t.Fatalf("expected error combining -file and -from-clipboard")
	}
}

func TestConfigPrint(t *testing.T) {
	r, out, _ := newTestRoot(t, "")
	cmd, err := parseConfigCmd([]string{"print"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[measure]") {
		t.Fatalf("config print = %q", out.String())
	}
	bad, err := parseConfigCmd([]string{"frobnicate"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := bad.Run(); err == nil {
		t.Fatalf("expected unknown config command error")
	}
}

func TestNotifyFlagsDefaultFromConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "notify.rc")
	if err := os.WriteFile(path, []byte("[notify]\nsave = false\ncopy = true\nexport = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHINEYRULER_CONFIG", path)
	r := newRoot()
	if !r.config.Notify.Export {
		t.Fatalf("config not loaded: %+v", r.config.Notify)
	}
	for name, want := range map[string]string{"notify-save": "false", "notify-copy": "true", "notify-export": "true"} {
		f := r.fs.Lookup(name)
		if f == nil {
			t.Fatalf("flag -%s missing", name)
		}
		if f.DefValue != want {
			t.Errorf("-%s default = %s, want %s", name, f.DefValue, want)
		}
	}
	if err := r.fs.Parse([]string{"-notify-export=false", "version"}); err != nil {
		t.Fatal(err)
	}
	if r.exportAlerts {
		t.Errorf("-notify-export=false did not override the config")
	}
}

func TestWindowTitle(t *testing.T) {
	origVersion, origCommit := version, commit
	t.Cleanup(func() { version, commit = origVersion, origCommit })
	version, commit = "1.2.3", ""
	if got, want := windowTitle(titleOptions{Count: 3}), "ShineyRuler - 3 images - v1.2.3"; got != want {
		t.Fatalf("title = %q, want %q", got, want)
	}
	if got, want := windowTitle(titleOptions{Count: 1, Extras: []string{" ", "x"}}), "ShineyRuler - v1.2.3 - x"; got != want {
		t.Fatalf("title = %q, want %q", got, want)
	}
}
