// Package imagesrc resolves image references to decoded images. A reference
// is a file path, a file:// URL, an http(s):// URL or "clipboard:" for the
// image currently on the system clipboard.
package imagesrc

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/shineyruler/internal/clipboard"
)

// ClipboardRef selects the clipboard image.
const ClipboardRef = "clipboard:"

// maxRemoteBytes bounds downloads of remote images. Local files are not
// limited.
var maxRemoteBytes int64 = 64 << 20

// Client fetches http(s) references. Tests replace it.
var Client = http.DefaultClient

var readClipboard = clipboard.ReadImage

// Image is a decoded image together with the reference it came from.
type Image struct {
	Ref    string
	Name   string
	Format string
	Image  image.Image
}

// Load decodes the image that ref points to.
func Load(ctx context.Context, ref string) (Image, error) {
	if ref == ClipboardRef {
		img, err := readClipboard()
		if err != nil {
			return Image{}, fmt.Errorf("read clipboard: %w", err)
		}
		return Image{Ref: ref, Name: "clipboard", Format: "png", Image: img}, nil
	}
	rc, err := open(ctx, ref)
	if err != nil {
		return Image{}, err
	}
	defer rc.Close()
	img, format, err := image.Decode(rc)
	if err != nil {
		return Image{}, fmt.Errorf("decode %s: %w", ref, err)
	}
	return Image{Ref: ref, Name: DisplayName(ref), Format: format, Image: img}, nil
}

// LoadAll loads refs in order and stops at the first failure.
func LoadAll(ctx context.Context, refs []string) ([]Image, error) {
	out := make([]Image, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := Load(ctx, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// DisplayName returns the last path element of ref, suitable for a window
// title.
func DisplayName(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		if base := filepath.Base(u.Path); base != "." && base != "/" {
			return base
		}
		return u.Host
	}
	return filepath.Base(ref)
}

func open(ctx context.Context, ref string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", ref, err)
		}
		resp, err := Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ref, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: %s", ref, resp.Status)
		}
		return limitedBody{Reader: io.LimitReader(resp.Body, maxRemoteBytes), Closer: resp.Body}, nil
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", ref, err)
		}
		return openFile(filepath.FromSlash(u.Path))
	}
	return openFile(ref)
}

type limitedBody struct {
	io.Reader
	io.Closer
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return f, nil
}
