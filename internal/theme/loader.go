package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Loader finds themes by name. A name is tried as a file path, then as a
// built-in theme, then as <name>.theme in each of Dirs in order.
type Loader struct {
	Dirs []string
}

// NewLoader searches the user's theme directory before the system one.
func NewLoader() *Loader {
	var dirs []string
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "shineyruler", "themes"))
	}
	return &Loader{Dirs: append(dirs, "/usr/share/shineyruler/themes")}
}

// Load returns the named theme. The empty name is the default theme.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return parseFrom(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	}
	file := name
	if filepath.Ext(file) != ".theme" {
		file += ".theme"
	}
	for _, src := range l.sources() {
		t, err := parseFrom(src, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", name, err)
		}
		return t, nil
	}
	return nil, fmt.Errorf("theme %q not found", name)
}

func (l *Loader) sources() []fs.FS {
	out := make([]fs.FS, 0, len(l.Dirs)+1)
	if builtin, err := fs.Sub(EmbeddedThemes, "defaults"); err == nil {
		out = append(out, builtin)
	}
	for _, dir := range l.Dirs {
		out = append(out, os.DirFS(dir))
	}
	return out
}

func parseFrom(fsys fs.FS, file string) (*Theme, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
