package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/shineyruler/internal/geometry"
	"github.com/example/shineyruler/internal/theme"
	"github.com/example/shineyruler/internal/tool"
	"github.com/example/shineyruler/internal/viewport"
)

// Notify holds notification settings.
type Notify struct {
	Save   bool
	Copy   bool
	Export bool
}

// Measure holds the measurement calibration.
type Measure struct {
	PixelsPerCM   float64
	MoveThreshold float64
}

// View bounds zooming.
type View struct {
	ZoomStep float64
	MinScale float64
	MaxScale float64
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Measure Measure
	View    View
	Notify  Notify
	Themes  map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	limits := viewport.DefaultLimits()
	return &Config{
		Theme: "", // Default to empty to allow fallback to Env/Default
		Measure: Measure{
			PixelsPerCM:   geometry.DefaultPixelsPerCM,
			MoveThreshold: tool.DefaultSettings().MoveThreshold,
		},
		View: View{
			ZoomStep: limits.ZoomStep,
			MinScale: limits.MinScale,
			MaxScale: limits.MaxScale,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// ToolSettings converts the [measure] section for the tool machine.
func (c *Config) ToolSettings() tool.Settings {
	return tool.Settings{MoveThreshold: c.Measure.MoveThreshold, PixelsPerCM: c.Measure.PixelsPerCM}
}

// Limits converts the [view] section for the viewport.
func (c *Config) Limits() viewport.Limits {
	return viewport.Limits{MinScale: c.View.MinScale, MaxScale: c.View.MaxScale, ZoomStep: c.View.ZoomStep}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[measure]\n")
	fmt.Fprintf(&sb, "pixels_per_cm = %s\n", formatFloat(c.Measure.PixelsPerCM))
	fmt.Fprintf(&sb, "move_threshold = %s\n", formatFloat(c.Measure.MoveThreshold))
	sb.WriteString("\n")

	sb.WriteString("[view]\n")
	fmt.Fprintf(&sb, "zoom_step = %s\n", formatFloat(c.View.ZoomStep))
	fmt.Fprintf(&sb, "min_scale = %s\n", formatFloat(c.View.MinScale))
	fmt.Fprintf(&sb, "max_scale = %s\n", formatFloat(c.View.MaxScale))
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, field := range theme.ColorFields() {
			col, _ := t.Color(field)
			fmt.Fprintf(&sb, "%s: %s\n", field, theme.FormatColor(col))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
