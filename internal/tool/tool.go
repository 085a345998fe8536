// Package tool turns pointer events into annotations. Exactly one tool is
// active at a time; multi-click tools keep their partial state in a gesture
// value that is discarded whenever the tool changes.
package tool

import (
	"fmt"
	"strings"

	"github.com/example/shineyruler/internal/geometry"
)

// Tool selects how pointer events are interpreted.
type Tool int

const (
	ToolPan Tool = iota
	ToolPoint
	ToolLine
	ToolEllipse
	ToolPerpendicular
	ToolAngle
	ToolRuler
)

var toolNames = [...]string{"pan", "point", "line", "ellipse", "perpendicular", "angle", "ruler"}

// Tools lists every tool in palette order.
func Tools() []Tool {
	return []Tool{ToolPan, ToolPoint, ToolLine, ToolEllipse, ToolPerpendicular, ToolAngle, ToolRuler}
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("tool(%d)", int(t))
	}
	return toolNames[t]
}

// Parse resolves a tool by name, case-insensitively.
func Parse(name string) (Tool, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, tn := range toolNames {
		if tn == n {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// Phase is the stage of a pointer interaction.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
)

// Event is a pointer event in screen pixels. Mouse and touch input are both
// translated into this form before reaching the Machine.
type Event struct {
	Phase Phase
	X, Y  float64
}

// Down, Move and Up build events for the corresponding phase.
func Down(x, y float64) Event { return Event{Phase: PhaseDown, X: x, Y: y} }
func Move(x, y float64) Event { return Event{Phase: PhaseMove, X: x, Y: y} }
func Up(x, y float64) Event   { return Event{Phase: PhaseUp, X: x, Y: y} }

// Settings tunes gesture recognition.
type Settings struct {
	// MoveThreshold is the distance in image pixels the pointer must travel
	// after the first click of the line tool for the gesture to produce a
	// line instead of a point.
	MoveThreshold float64
	// PixelsPerCM converts ruler lengths. See geometry.DefaultPixelsPerCM.
	PixelsPerCM float64
}

// DefaultSettings returns the stock thresholds.
func DefaultSettings() Settings {
	return Settings{MoveThreshold: 5, PixelsPerCM: geometry.DefaultPixelsPerCM}
}
