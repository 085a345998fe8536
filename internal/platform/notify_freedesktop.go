//go:build linux || freebsd || openbsd || netbsd || dragonfly

package platform

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Notify shows m through the session bus notification daemon.
func Notify(m Message) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()
	return conn.Object(notifyService, notifyPath).Call(notifyService+".Notify", 0, m.freedesktopArgs()...).Err
}
