package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0644))
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads", "nested")

	lib, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, lib.Dir())
	assert.DirExists(t, dir)

	_, err = New("")
	require.Error(t, err)
}

func TestLibrary_List(t *testing.T) {
	dir := t.TempDir()
	lib, err := New(dir)
	require.NoError(t, err)

	names, err := lib.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	writeFile(t, dir, "a.mp4")
	writeFile(t, dir, "c.webm")
	writeFile(t, dir, "b.mp4")
	writeFile(t, dir, "d.mp4.part")
	writeFile(t, dir, "e.mp4.ytdl")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	names, err = lib.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"c.webm", "b.mp4", "a.mp4"}, names)
}

func TestLibrary_ListMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	lib, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	names, err := lib.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLibrary_Resolve(t *testing.T) {
	dir := t.TempDir()
	lib, err := New(dir)
	require.NoError(t, err)
	writeFile(t, dir, "My Video (1).mp4")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder"), 0755))

	path, err := lib.Resolve("My Video (1).mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "My Video (1).mp4"), path)

	_, err = lib.Resolve("missing.mp4")
	require.ErrorIs(t, err, ErrFileNotFound)

	_, err = lib.Resolve("folder")
	require.ErrorIs(t, err, ErrFileNotFound)

	_, err = lib.Resolve("..")
	require.ErrorIs(t, err, ErrInvalidFilename)

	path, err = lib.Resolve("../../My Video (1).mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "My Video (1).mp4"), path, "directory components are dropped")
}

func TestLibrary_Delete(t *testing.T) {
	dir := t.TempDir()
	lib, err := New(dir)
	require.NoError(t, err)
	writeFile(t, dir, "T.mp4")

	outside := filepath.Join(t.TempDir(), "keep.mp4")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

	name, err := lib.Delete("T.mp4")
	require.NoError(t, err)
	assert.Equal(t, "T.mp4", name)
	assert.NoFileExists(t, filepath.Join(dir, "T.mp4"))

	_, err = lib.Delete("T.mp4")
	require.ErrorIs(t, err, ErrFileNotFound)

	_, err = lib.Delete("../" + filepath.Base(filepath.Dir(outside)) + "/keep.mp4")
	require.ErrorIs(t, err, ErrFileNotFound)
	assert.FileExists(t, outside)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "video.mp4", want: "video.mp4"},
		{name: "unicode and spaces", input: "Canção  nova.mp4", want: "Canção  nova.mp4"},
		{name: "unix traversal", input: "../../etc/passwd", want: "passwd"},
		{name: "windows traversal", input: `..\..\boot.ini`, want: "boot.ini"},
		{name: "absolute", input: "/tmp/x.mp4", want: "x.mp4"},
		{name: "empty", input: "", wantErr: true},
		{name: "dot", input: ".", wantErr: true},
		{name: "dotdot", input: "..", wantErr: true},
		{name: "trailing slash", input: "dir/", wantErr: true},
		{name: "nul byte", input: "a\x00.mp4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFilename(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFilename)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "video/mp4", ContentType("a.MP4"))
	assert.Equal(t, "video/webm", ContentType("a.webm"))
	assert.Equal(t, "video/x-matroska", ContentType("a.mkv"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}
