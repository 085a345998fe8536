//go:build darwin

package platform

import "os/exec"

// Notify shows m in Notification Center. Icons are not supported.
func Notify(m Message) error {
	return exec.Command("osascript", "-e", m.appleScript()).Run()
}
