package source

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	inner ContentSource
	reads atomic.Int32
}

func (c *countingSource) Read(path string) ([]byte, error) {
	c.reads.Add(1)
	return c.inner.Read(path)
}

func TestFilesystemSourceReadsRelativeToRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "a.py"), []byte("x = 1\n"), 0644))

	src := NewFilesystem(root)
	data, err := src.Read("pkg/a.py")
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(data))
	assert.Equal(t, root, src.Root())

	_, err = src.Read("pkg/missing.py")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCachedSourceHitsInnerOnce(t *testing.T) {
	inner := &countingSource{inner: MapSource{"a.py": []byte("a"), "b.py": []byte("b")}}
	cached, err := NewCached(inner, 4)
	require.NoError(t, err)

	for range 3 {
		data, err := cached.Read("a.py")
		require.NoError(t, err)
		assert.Equal(t, "a", string(data))
	}
	assert.Equal(t, int32(1), inner.reads.Load())
	assert.Equal(t, 1, cached.Len())
}

func TestCachedSourceEvicts(t *testing.T) {
	inner := &countingSource{inner: MapSource{"a.py": []byte("a"), "b.py": []byte("b")}}
	cached, err := NewCached(inner, 1)
	require.NoError(t, err)

	_, _ = cached.Read("a.py")
	_, _ = cached.Read("b.py")
	_, _ = cached.Read("a.py")
	assert.Equal(t, int32(3), inner.reads.Load())
	assert.Equal(t, 1, cached.Len())
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	inner := &countingSource{inner: MapSource{}}
	cached, err := NewCached(inner, 0)
	require.NoError(t, err)

	_, err = cached.Read("missing.py")
	require.Error(t, err)
	_, err = cached.Read("missing.py")
	require.Error(t, err)
	assert.Equal(t, int32(2), inner.reads.Load())
	assert.Equal(t, 0, cached.Len())
}

func TestMapSourceMissing(t *testing.T) {
	_, err := MapSource{}.Read("x")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
