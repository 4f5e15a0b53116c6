package sidecar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	assert.Equal(t, "/data/photos/a.jpg.xmp", Path("/data/photos/a.jpg"))
}

func TestAltPath(t *testing.T) {
	assert.Equal(t, "/data/photos/a.xmp", AltPath("/data/photos/a.jpg"))
	assert.Equal(t, "/data/photos/noext.xmp", AltPath("/data/photos/noext"))
}

func TestDiscover_AppendedForm(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(media, []byte("img"), 0o644))
	require.NoError(t, os.WriteFile(media+".xmp", []byte("<xmp/>"), 0o644))

	got := Discover(media)
	require.NotNil(t, got)
	assert.Equal(t, media+".xmp", *got)
}

func TestDiscover_ExtensionSwappedForm(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "a.jpg")
	alt := filepath.Join(dir, "a.xmp")
	require.NoError(t, os.WriteFile(media, []byte("img"), 0o644))
	require.NoError(t, os.WriteFile(alt, []byte("<xmp/>"), 0o644))

	got := Discover(media)
	require.NotNil(t, got)
	assert.Equal(t, alt, *got)
}

func TestDiscover_None(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(media, []byte("img"), 0o644))

	assert.Nil(t, Discover(media))
}
