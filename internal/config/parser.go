package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/shineyruler/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	// Context for parsing
	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		// Handle Sections
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if strings.HasPrefix(currentSection, "theme.") {
				themeName := strings.TrimPrefix(currentSection, "theme.")
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Parse Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove quotes if present
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = currentTheme.Set(key, value)
		case currentSection == "measure":
			err = setMeasureField(&cfg.Measure, key, value)
		case currentSection == "view":
			err = setViewField(&cfg.View, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := cfg.View.validate(); err != nil {
		return nil, fmt.Errorf("error in section [view]: %w", err)
	}
	return cfg, nil
}

// validate checks the zoom range as a whole. The range must contain the
// identity scale of 1.
func (v View) validate() error {
	if v.MinScale > v.MaxScale {
		return fmt.Errorf("min_scale %v is greater than max_scale %v", v.MinScale, v.MaxScale)
	}
	if v.MinScale > 1 || v.MaxScale < 1 {
		return fmt.Errorf("scale range [%v, %v] must include 1", v.MinScale, v.MaxScale)
	}
	return nil
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	}
	return nil
}

func setMeasureField(m *Measure, key, value string) error {
	switch strings.ToLower(key) {
	case "pixels_per_cm":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		m.PixelsPerCM = f
	case "move_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid threshold for key %s: %q", key, value)
		}
		m.MoveThreshold = f
	}
	return nil
}

func setViewField(v *View, key, value string) error {
	switch strings.ToLower(key) {
	case "zoom_step":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		if f <= 1 {
			return fmt.Errorf("zoom_step must be greater than 1, got %v", f)
		}
		v.ZoomStep = f
	case "min_scale":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		v.MinScale = f
	case "max_scale":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		v.MaxScale = f
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	case "export":
		n.Export = b
	}
	return nil
}

func parsePositive(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, f)
	}
	return f, nil
}
