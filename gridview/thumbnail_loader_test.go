package gridview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestThumbnailLoader_DropsOldestBeyondCapacity(t *testing.T) {
	l := NewThumbnailLoader(64, 0, "")
	defer l.Close()

	noop := func(image.Image, error) {}
	for i := range thumbnailQueueCapacity {
		require.False(t, l.enqueue(thumbnailRequest{path: fmt.Sprint(i), callback: noop}))
	}
	assert.True(t, l.enqueue(thumbnailRequest{path: "last", callback: noop}))
	assert.Equal(t, thumbnailQueueCapacity, l.pending())

	l.reqLock.Lock()
	oldest := l.requests[0].path
	l.reqLock.Unlock()
	assert.Equal(t, "1", oldest, "request 0 should have been dropped")
}

func TestThumbnailLoader_ServesNewestFirst(t *testing.T) {
	l := NewThumbnailLoader(64, 0, "")
	defer l.Close()

	noop := func(image.Image, error) {}
	l.enqueue(thumbnailRequest{path: "a", callback: noop})
	l.enqueue(thumbnailRequest{path: "b", callback: noop})

	req, ok := l.next()
	require.True(t, ok)
	assert.Equal(t, "b", req.path)
	req, ok = l.next()
	require.True(t, ok)
	assert.Equal(t, "a", req.path)
}

func TestLetterbox_KeepsAspectRatio(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := range 100 {
		for x := range 200 {
			src.Set(x, y, color.White)
		}
	}

	dst := letterbox(src, 64)
	require.NotNil(t, dst)
	assert.Equal(t, image.Rect(0, 0, 64, 64), dst.Bounds())

	r, _, _, _ := dst.At(32, 4).RGBA()
	assert.Zero(t, r, "the band above a wide image is black")
	r, _, _, _ = dst.At(32, 32).RGBA()
	assert.NotZero(t, r, "the image itself fills the middle")

	assert.Nil(t, letterbox(image.NewRGBA(image.Rect(0, 0, 0, 10)), 64))
}

func TestThumbnailLoader_LoadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")
	writePNG(t, path, 40, 20)

	cacheDir := filepath.Join(dir, "cache")
	l := NewThumbnailLoader(32, 1, cacheDir)
	defer l.Close()

	done := make(chan image.Image, 1)
	l.Load(storage.NewFileURI(path), func(img image.Image, err error) {
		assert.NoError(t, err)
		done <- img
	})

	select {
	case img := <-done:
		require.NotNil(t, img)
		assert.Equal(t, 32, img.Bounds().Dx())
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for thumbnail")
	}

	require.NotNil(t, l.Cached(path))
	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the thumbnail should be written to the disk cache")

	// Memory hits are answered synchronously.
	hit := false
	l.Load(storage.NewFileURI(path), func(img image.Image, err error) {
		hit = img != nil && err == nil
	})
	assert.True(t, hit)
}

func TestThumbnailLoader_RejectsUnsupported(t *testing.T) {
	l := NewThumbnailLoader(32, 0, "")
	defer l.Close()

	var got error
	l.Load(storage.NewFileURI("/tmp/notes.txt"), func(_ image.Image, err error) {
		got = err
	})
	assert.True(t, errors.Is(got, errUnsupportedThumbnail))
}

func TestSupportsThumbnail(t *testing.T) {
	for name, want := range map[string]bool{
		"/tmp/a.png":  true,
		"/tmp/b.JPG":  true,
		"/tmp/c.gif":  true,
		"/tmp/d.webp": false,
		"/tmp/e.txt":  false,
	} {
		assert.Equal(t, want, SupportsThumbnail(storage.NewFileURI(name)), name)
	}
	assert.False(t, SupportsThumbnail(nil))
}

func TestThumbnailLoader_DecodesGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gif.Encode(f, image.NewPaletted(image.Rect(0, 0, 20, 10), color.Palette{color.White, color.Black}), nil))
	require.NoError(t, f.Close())

	l := NewThumbnailLoader(16, 1, "")
	defer l.Close()

	done := make(chan image.Image, 1)
	l.Load(storage.NewFileURI(path), func(img image.Image, err error) {
		assert.NoError(t, err)
		done <- img
	})
	select {
	case img := <-done:
		require.NotNil(t, img)
		assert.Equal(t, 16, img.Bounds().Dx())
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for thumbnail")
	}
}
