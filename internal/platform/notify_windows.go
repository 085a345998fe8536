//go:build windows

package platform

import "os/exec"

// Notify shows m as a toast.
func Notify(m Message) error {
	return exec.Command("powershell.exe", "-NoProfile", "-NonInteractive", "-Command", m.toastScript()).Run()
}
