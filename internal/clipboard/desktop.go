//go:build windows || (darwin && cgo)

package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

func ready() error {
	initOnce.Do(func() { initErr = clipboard.Init() })
	return initErr
}

// publish writes one format per copy; an image takes precedence over text.
func publish(c Content) error {
	if err := ready(); err != nil {
		return err
	}
	if len(c.PNG) > 0 {
		clipboard.Write(clipboard.FmtImage, c.PNG)
		return nil
	}
	clipboard.Write(clipboard.FmtText, []byte(c.Text))
	return nil
}

func fetchPNG() ([]byte, error) {
	if err := ready(); err != nil {
		return nil, err
	}
	return clipboard.Read(clipboard.FmtImage), nil
}
