package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/measurements

[measure]
pixels_per_cm = 40
move_threshold = 3

[view]
zoom_step = 1.5
min_scale = 0.25
max_scale = 8

[notify]
save = false
copy = true
export = true

[theme.my_custom_theme]
Background = #111111
Line = #FFFFFF
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if cfg.SaveDir != "/tmp/measurements" {
		t.Errorf("Expected save_dir '/tmp/measurements', got '%s'", cfg.SaveDir)
	}
	if cfg.Measure.PixelsPerCM != 40 || cfg.Measure.MoveThreshold != 3 {
		t.Errorf("Unexpected measure section: %+v", cfg.Measure)
	}
	if cfg.View.ZoomStep != 1.5 || cfg.View.MinScale != 0.25 || cfg.View.MaxScale != 8 {
		t.Errorf("Unexpected view section: %+v", cfg.View)
	}
	if cfg.Notify.Save {
		t.Error("Expected notify.save to be false")
	}
	if !cfg.Notify.Copy {
		t.Error("Expected notify.copy to be true")
	}
	if !cfg.Notify.Export {
		t.Error("Expected notify.export to be true")
	}

	theme, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if theme.Background.R != 0x11 || theme.Background.G != 0x11 || theme.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", theme.Background)
	}
	if theme.Line.R != 0xFF {
		t.Errorf("Unexpected Line color: %+v", theme.Line)
	}

	ts := cfg.ToolSettings()
	if ts.PixelsPerCM != 40 || ts.MoveThreshold != 3 {
		t.Errorf("ToolSettings = %+v", ts)
	}
	if l := cfg.Limits(); l.ZoomStep != 1.5 || l.MaxScale != 8 {
		t.Errorf("Limits = %+v", l)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Measure.PixelsPerCM != 37.8 || cfg.Measure.MoveThreshold != 5 {
		t.Errorf("measure defaults = %+v", cfg.Measure)
	}
	if cfg.View.ZoomStep != 1.2 || cfg.View.MinScale != 0.1 || cfg.View.MaxScale != 10 {
		t.Errorf("view defaults = %+v", cfg.View)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"[measure]\npixels_per_cm = 0\n",
		"[measure]\nmove_threshold = -1\n",
		"[view]\nzoom_step = 1\n",
		"[view]\nmax_scale = big\n",
		"[notify]\nsave = maybe\n",
		"[notify]\nexport = sometimes\n",
		"[theme.x]\nLine = #12\n",
	}
	for _, in := range cases {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestParseScaleRange(t *testing.T) {
	cases := map[string]string{
		"min above identity": "[view]\nmin_scale = 2\nmax_scale = 5\n",
		"max below identity": "[view]\nmin_scale = 0.1\nmax_scale = 0.5\n",
		"inverted":           "[view]\nmin_scale = 5\nmax_scale = 2\n",
		"max below default":  "[view]\nmax_scale = 0.05\n",
	}
	for name, in := range cases {
		_, err := Parse(strings.NewReader(in))
		if err == nil {
			t.Errorf("%s: expected error for %q", name, in)
			continue
		}
		if !strings.Contains(err.Error(), "[view]") {
			t.Errorf("%s: error %q does not name the section", name, err)
		}
	}

	cfg, err := Parse(strings.NewReader("[view]\nmin_scale = 1\nmax_scale = 1\n"))
	if err != nil {
		t.Fatalf("a fixed scale of 1 should be allowed: %v", err)
	}
	if l := cfg.Limits(); l.MinScale != 1 || l.MaxScale != 1 {
		t.Errorf("Limits = %+v", l)
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/measurements

[measure]
pixels_per_cm = 37.8
move_threshold = 4.5

[view]
zoom_step = 1.25

[notify]
save = true
copy = false
export = true

[theme.custom]
Name = custom
Background = #000000
Distance = #00FF0080
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare relevant fields
	if cfg.Theme != cfg2.Theme {
		t.Errorf("Theme mismatch: %q vs %q", cfg.Theme, cfg2.Theme)
	}
	if cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("SaveDir mismatch: %q vs %q", cfg.SaveDir, cfg2.SaveDir)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if cfg.Measure != cfg2.Measure {
		t.Errorf("Measure mismatch: %+v vs %+v", cfg.Measure, cfg2.Measure)
	}
	if cfg.View != cfg2.View {
		t.Errorf("View mismatch: %+v vs %+v", cfg.View, cfg2.View)
	}

	// Check theme persistence
	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestLoaderOverridePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SHINEYRULER_CONFIG", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.rc")
	if err := os.WriteFile(path, []byte("theme = dark\n[measure]\npixels_per_cm = 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader("1.0.0", path)
	if got := l.Path(); got != path {
		t.Fatalf("Path = %q, want %q", got, path)
	}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "dark" || cfg.Measure.PixelsPerCM != 50 {
		t.Errorf("loaded %+v", cfg)
	}
	if got, err := l.SavePath(); err != nil || got != path {
		t.Errorf("SavePath = %q, %v; want the file in use", got, err)
	}
}

func TestLoaderEnvAndUserConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)
	t.Setenv("SHINEYRULER_CONFIG", "")
	l := NewLoader("1.0.0", "")

	if got := l.Path(); got != "" {
		t.Fatalf("Path with no files = %q", got)
	}
	want, err := l.SavePath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(want) != "config.rc" || filepath.Base(filepath.Dir(want)) != "shineyruler" {
		t.Fatalf("SavePath = %q", want)
	}
	if err := os.MkdirAll(filepath.Dir(want), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(want, []byte("[view]\nmax_scale = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.View.MaxScale != 4 {
		t.Errorf("user config not read: %+v", cfg.View)
	}

	env := filepath.Join(t.TempDir(), "env.rc")
	if err := os.WriteFile(env, []byte("[view]\nmin_scale = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHINEYRULER_CONFIG", env)
	if got := l.Path(); got != env {
		t.Fatalf("Path = %q, want env file %q", got, env)
	}
	if _, err := l.Load(); err == nil || !strings.Contains(err.Error(), env) {
		t.Errorf("expected error naming %s, got %v", env, err)
	}
}

func TestLoaderDevLocalFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SHINEYRULER_CONFIG", "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.WriteFile(filepath.Join(dir, ".shineyrulerrc"), []byte("save_dir = here\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader("dev", "").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SaveDir != "here" {
		t.Errorf("dev build ignored local rc: %+v", cfg)
	}
	cfg, err = NewLoader("1.2.3", "").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SaveDir != "" {
		t.Errorf("release build read local rc: %+v", cfg)
	}
}
