package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	pdfBytes = []byte("%PDF-1.4\n%fake document")
)

func TestStripDataURL(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngBytes)
	wrapped := "data:image/png;base64," + encoded

	require.Equal(t, encoded, StripDataURL(wrapped))
}

func TestStripDataURLIdempotent(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngBytes)
	wrapped := "data:image/png;base64," + encoded

	once := StripDataURL(wrapped)
	twice := StripDataURL(once)
	require.Equal(t, once, twice)

	fromWrapped, err := base64.StdEncoding.DecodeString(once)
	require.NoError(t, err)
	fromPlain, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.Equal(t, fromPlain, fromWrapped)
}

func TestNormalizeImagePayload(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngBytes)

	decoded, mime, err := NormalizeImagePayload(encoded)
	require.NoError(t, err)
	require.Equal(t, pngBytes, decoded)
	require.Equal(t, "image/png", mime)

	decoded, mime, err = NormalizeImagePayload("data:image/png;base64," + encoded)
	require.NoError(t, err)
	require.Equal(t, pngBytes, decoded)
	require.Equal(t, "image/png", mime)
}

func TestNormalizeImagePayloadEmpty(t *testing.T) {
	_, _, err := NormalizeImagePayload("")
	require.ErrorIs(t, err, ErrImageRequired)

	_, _, err = NormalizeImagePayload("   ")
	require.ErrorIs(t, err, ErrImageRequired)
}

func TestNormalizeImagePayloadInvalidBase64(t *testing.T) {
	_, _, err := NormalizeImagePayload("this is not base64!!!")
	require.ErrorIs(t, err, ErrInvalidBase64)
}

func TestNormalizeImagePayloadUnsupportedType(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pdfBytes)

	_, _, err := NormalizeImagePayload(encoded)
	require.Error(t, err)

	var unsupported *UnsupportedImageTypeError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "application/pdf", unsupported.MIMEType)
	require.Contains(t, err.Error(), "image/png")
}

func TestValidateMIMEType(t *testing.T) {
	require.NoError(t, ValidateMIMEType("image/png"))
	require.NoError(t, ValidateMIMEType("image/jpeg"))
	require.NoError(t, ValidateMIMEType("IMAGE/GIF"))
	require.NoError(t, ValidateMIMEType("image/webp"))

	require.ErrorIs(t, ValidateMIMEType(""), ErrMIMETypeRequired)

	err := ValidateMIMEType("image/tiff")
	var unsupported *UnsupportedImageTypeError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "image/tiff", unsupported.MIMEType)
}

func TestSanitizeFileName(t *testing.T) {
	require.Equal(t, "my-step.png", SanitizeFileName("My Step.PNG"))
	require.Equal(t, "step_1.jpg", SanitizeFileName("../../step_1.jpg"))
	require.NotEmpty(t, SanitizeFileName("???"))
}
