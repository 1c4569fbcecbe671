package ai

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestResolveImageFromBytesDetectsMIME(t *testing.T) {
	data, mime, err := resolveImage(ImageInput{Data: pngBytes})
	require.NoError(t, err)
	require.Equal(t, pngBytes, data)
	require.Equal(t, "image/png", mime)
}

func TestResolveImageKeepsDeclaredMIME(t *testing.T) {
	_, mime, err := resolveImage(ImageInput{Data: pngBytes, MIMEType: "image/webp"})
	require.NoError(t, err)
	require.Equal(t, "image/webp", mime)
}

func TestResolveImageFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "step.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o600))

	data, mime, err := resolveImage(ImageInput{Path: path})
	require.NoError(t, err)
	require.Equal(t, pngBytes, data)
	require.Equal(t, "image/png", mime)
}

func TestResolveImageMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.png")

	_, _, err := resolveImage(ImageInput{Path: path})
	require.Error(t, err)

	var notFound *ImageNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, path, notFound.Path)
	require.Equal(t, "Image file not found: "+path, err.Error())
}

func TestResolveImageEmptyInput(t *testing.T) {
	_, _, err := resolveImage(ImageInput{})
	require.Error(t, err)
}
