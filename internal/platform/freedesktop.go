package platform

import "github.com/godbus/dbus/v5"

const (
	notifyService = "org.freedesktop.Notifications"
	notifyPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
)

// freedesktopArgs returns the arguments of an org.freedesktop.Notifications
// Notify call for m.
func (m Message) freedesktopArgs() []interface{} {
	hints := map[string]dbus.Variant{
		"desktop-entry": dbus.MakeVariant("shineyruler"),
	}
	if m.Icon != "" {
		hints["image-path"] = dbus.MakeVariant(m.Icon)
	}
	return []interface{}{
		AppName,
		uint32(0),
		m.Icon,
		m.Title,
		m.Body,
		[]string{},
		hints,
		int32(m.timeout().Milliseconds()),
	}
}
