// Package platform shows desktop notifications through the host's own
// notification service.
package platform

import "time"

// AppName identifies the application to the host notification service.
const AppName = "ShineyRuler"

// DefaultTimeout applies where the host lets the sender choose.
const DefaultTimeout = 5 * time.Second

// Message is one desktop notification.
type Message struct {
	Title string
	Body  string
	// Icon is an image file shown with the notification where supported,
	// typically the measured image that was just saved or copied.
	Icon    string
	Timeout time.Duration
}

func (m Message) timeout() time.Duration {
	if m.Timeout <= 0 {
		return DefaultTimeout
	}
	return m.Timeout
}
