package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecoder_DefaultIsStrictUTF8(t *testing.T) {
	t.Parallel()
	d, err := NewDecoder("")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", d.Name())

	text, err := d.Decode([]byte("héllo"))
	require.NoError(t, err)
	assert.Equal(t, "héllo", text)

	_, err = d.Decode([]byte{'a', 0xff, 'b'})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestNewDecoder_Latin1(t *testing.T) {
	t.Parallel()
	d, err := NewDecoder("ISO-8859-1")
	require.NoError(t, err)

	text, err := d.Decode([]byte("caf\xe9"))
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestNewDecoder_Unknown(t *testing.T) {
	t.Parallel()
	_, err := NewDecoder("no-such-encoding")
	require.Error(t, err)
}

func TestOpen_ReadsAndHashes(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	u, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, u.Path)
	assert.Equal(t, "x = 1\n", string(u.Raw))
	assert.Len(t, u.Hash, 64)

	d, err := NewDecoder("utf-8")
	require.NoError(t, err)
	text, err := u.Text(d)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", text)
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Open(filepath.Join(t.TempDir(), "missing.c"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestUnitText_DecodeErrorNamesPath(t *testing.T) {
	t.Parallel()
	u := &Unit{Path: "bad.c", Raw: []byte{0xc3, 0x28}}
	d, err := NewDecoder("")
	require.NoError(t, err)

	_, err = u.Text(d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Contains(t, err.Error(), "bad.c")
}
