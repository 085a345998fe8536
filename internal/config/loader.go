package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader locates and reads the configuration file.
type Loader struct {
	// Version is the build version. Dev builds also read ./.shineyrulerrc.
	Version string
	// Override is a path set at build time that wins when it exists.
	Override string
}

// NewLoader creates a new Loader.
func NewLoader(version, override string) *Loader {
	return &Loader{Version: version, Override: override}
}

// Candidates lists the files Load considers, most preferred first.
// SHINEYRULER_CONFIG names an extra file checked after the override.
func (l *Loader) Candidates() []string {
	var out []string
	if l.Override != "" {
		out = append(out, l.Override)
	}
	if env := os.Getenv("SHINEYRULER_CONFIG"); env != "" {
		out = append(out, env)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			out = append(out, filepath.Join(wd, ".shineyrulerrc"))
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		out = append(out,
			filepath.Join(dir, "shineyruler", "config.rc"),
			filepath.Join(dir, "shineyruler", "shineyruler.rc"))
	}
	return out
}

// Path returns the first candidate that exists, or "" when none do.
func (l *Loader) Path() string {
	for _, p := range l.Candidates() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// SavePath is where "config save" writes: the file in use, else config.rc
// in the user config directory.
func (l *Loader) SavePath() (string, error) {
	if p := l.Path(); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "shineyruler", "config.rc"), nil
}

// Load parses the file at Path. Defaults are returned when there is none.
func (l *Loader) Load() (*Config, error) {
	path := l.Path()
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
