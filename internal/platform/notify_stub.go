//go:build !(linux || freebsd || openbsd || netbsd || dragonfly || darwin || windows)

package platform

// Notify does nothing where there is no known notification service.
func Notify(Message) error { return nil }
