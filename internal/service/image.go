package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrImageRequired indicates the request carried no image payload.
	ErrImageRequired = errors.New("image data is required")
	// ErrInvalidBase64 indicates the payload was not decodable base64.
	ErrInvalidBase64 = errors.New("invalid base64 image data format")
	// ErrMIMETypeRequired indicates no MIME type was supplied where one is
	// expected.
	ErrMIMETypeRequired = errors.New("MIME type is required")
)

// supportedImageTypes mirrors the image formats the vision provider accepts.
var supportedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/jpg":  {},
	"image/gif":  {},
	"image/webp": {},
}

// UnsupportedImageTypeError names the offending MIME type and the accepted
// set.
type UnsupportedImageTypeError struct {
	MIMEType string
}

func (e *UnsupportedImageTypeError) Error() string {
	return fmt.Sprintf("unsupported MIME type: %s. Supported types: %s",
		e.MIMEType, strings.Join(SupportedImageTypes(), ", "))
}

// SupportedImageTypes returns the accepted MIME types in stable order.
func SupportedImageTypes() []string {
	types := make([]string, 0, len(supportedImageTypes))
	for t := range supportedImageTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// StripDataURL removes a data-URL scheme marker, dropping everything up to
// and including the first comma. Stripping an already-stripped payload is a
// no-op.
func StripDataURL(data string) string {
	if strings.HasPrefix(data, "data:image") {
		if idx := strings.IndexByte(data, ','); idx >= 0 {
			return data[idx+1:]
		}
	}
	return data
}

// NormalizeImagePayload validates a base64 image string (optionally wrapped
// in a data-URL prefix) and returns the decoded bytes plus the MIME type
// detected from the payload. Every failure here is a validation error; the
// payload never reaches a provider.
func NormalizeImagePayload(data string) ([]byte, string, error) {
	if strings.TrimSpace(data) == "" {
		return nil, "", ErrImageRequired
	}

	decoded, err := base64.StdEncoding.Strict().DecodeString(StripDataURL(data))
	if err != nil {
		return nil, "", ErrInvalidBase64
	}

	if len(decoded) == 0 {
		return nil, "", ErrImageRequired
	}

	mime := mimetype.Detect(decoded).String()
	if err := ValidateMIMEType(mime); err != nil {
		return nil, "", err
	}

	return decoded, mime, nil
}

// ValidateMIMEType checks a declared or detected MIME type against the
// supported set.
func ValidateMIMEType(mime string) error {
	normalized := strings.ToLower(strings.TrimSpace(mime))
	if normalized == "" {
		return ErrMIMETypeRequired
	}

	// mimetype appends charset-style parameters for some formats.
	if idx := strings.IndexByte(normalized, ';'); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}

	if _, ok := supportedImageTypes[normalized]; !ok {
		return &UnsupportedImageTypeError{MIMEType: normalized}
	}

	return nil
}

// SanitizeFileName reduces an uploaded file name to a safe lowercase slug,
// preserving the extension.
func SanitizeFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
