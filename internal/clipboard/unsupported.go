//go:build !(linux || freebsd || openbsd || netbsd || dragonfly || windows || (darwin && cgo))

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard is not supported on this platform")

func publish(Content) error { return errUnsupported }

func fetchPNG() ([]byte, error) { return nil, errUnsupported }
