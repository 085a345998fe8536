package platform

import "strings"

// appleScript returns the osascript program that shows m.
func (m Message) appleScript() string {
	return "display notification " + appleQuote(m.Body) + " with title " + appleQuote(m.Title)
}

func appleQuote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
