// internal/payload/payload.go

// Package payload turns fetched NFT image bytes into a named file suitable
// for assignment to a host-page file input.
package payload

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

var (
	ErrEmpty           = errors.New("payload has no bytes")
	ErrUnsupportedType = errors.New("payload is not an image")
)

// maxNameLen bounds the base filename. Some host inputs truncate or reject
// long names.
const maxNameLen = 64

// fallbackName is used when sanitization strips a name to nothing.
const fallbackName = "nft"

// Payload is a validated, ready-to-inject image file.
type Payload struct {
	Name string
	MIME string
	Data []byte
}

// New sniffs the content type from the bytes and builds a payload with a
// sanitized filename carrying the proper extension. The declared name's own
// extension is ignored; the sniffed type wins.
func New(name string, data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, ErrEmpty
	}
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if !strings.HasPrefix(mime, "image/") {
		return Payload{}, fmt.Errorf("%w: detected %s", ErrUnsupportedType, mime)
	}
	return Payload{
		Name: SanitizeName(name) + extFor(mime),
		MIME: mime,
		Data: data,
	}, nil
}

// File adapts the payload to the DOM file shape the trigger consumes.
func (p Payload) File() dom.File {
	return dom.File{Name: p.Name, Type: p.MIME, Data: p.Data}
}

// imageExts are declared extensions worth stripping before sanitization; the
// sniffed MIME type supplies the real one.
var imageExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "jfif": true, "gif": true,
	"webp": true, "svg": true, "bmp": true, "avif": true, "ico": true,
	"tif": true, "tiff": true, "heic": true, "heif": true,
}

// SanitizeName reduces an arbitrary NFT title to a safe filename base:
// letters, digits and underscores pass through, separator runs collapse to a
// single dash, everything else is dropped, length-capped. An empty result
// falls back to a constant.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '.'); i > 0 && imageExts[strings.ToLower(name[i+1:])] {
		name = name[:i]
	}

	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '.' || r == '-' || r == '/' || r == '\\':
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > maxNameLen {
		out = strings.Trim(out[:maxNameLen], "-")
	}
	if out == "" {
		return fallbackName
	}
	return out
}

// extFor maps a sniffed image MIME type to a conventional extension.
func extFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "image/bmp":
		return ".bmp"
	case "image/avif":
		return ".avif"
	default:
		sub := strings.TrimPrefix(mime, "image/")
		if i := strings.IndexByte(sub, '+'); i >= 0 {
			sub = sub[:i]
		}
		return "." + sub
	}
}
