package gridview

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"golang.org/x/image/draw"
)

// thumbnailQueueCapacity bounds the pending requests. Beyond it the oldest
// request is dropped, since it is the least likely to still be on screen.
const thumbnailQueueCapacity = 100

var errUnsupportedThumbnail = errors.New("unsupported thumbnail source")

type thumbnailRequest struct {
	path     string
	callback func(image.Image, error)
}

// ThumbnailLoader produces square, letterboxed thumbnails of local image
// files in the background. Results are kept in memory and, when a cache
// directory is set, on disk as JPEG.
//
// Requests are served newest first so that the items the user scrolled to
// last are loaded first.
type ThumbnailLoader struct {
	size     int
	cacheDir string

	cache sync.Map // path -> image.Image

	reqLock  sync.Mutex
	reqCond  *sync.Cond
	requests []thumbnailRequest
	closed   bool

	decode func(path string) (image.Image, error)
}

// NewThumbnailLoader starts a loader producing size×size thumbnails with the
// given number of workers. cacheDir may be empty to keep results in memory
// only.
func NewThumbnailLoader(size, workers int, cacheDir string) *ThumbnailLoader {
	l := &ThumbnailLoader{
		size:     max(size, 1),
		cacheDir: cacheDir,
		requests: make([]thumbnailRequest, 0, thumbnailQueueCapacity),
		decode:   loadImage,
	}
	l.reqCond = sync.NewCond(&l.reqLock)

	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			fyne.LogError("thumbnail loader: disk cache disabled", err)
			l.cacheDir = ""
		}
	}

	for range workers {
		go l.worker()
	}
	return l
}

// Cached returns the thumbnail for path if it is in memory.
func (l *ThumbnailLoader) Cached(path string) image.Image {
	if cached, ok := l.cache.Load(path); ok {
		return cached.(image.Image)
	}
	return nil
}

// Load requests the thumbnail of uri. callback runs on a worker goroutine,
// or synchronously on a cache hit; it receives an error for sources that
// are not local images or fail to decode.
func (l *ThumbnailLoader) Load(uri fyne.URI, callback func(image.Image, error)) {
	if !SupportsThumbnail(uri) {
		callback(nil, errUnsupportedThumbnail)
		return
	}

	path := uri.Path()
	if img := l.Cached(path); img != nil {
		callback(img, nil)
		return
	}
	if img := l.loadFromDisk(path); img != nil {
		l.cache.Store(path, img)
		callback(img, nil)
		return
	}
	l.enqueue(thumbnailRequest{path: path, callback: callback})
}

// enqueue adds a request and reports whether the oldest one was dropped to
// make room.
func (l *ThumbnailLoader) enqueue(req thumbnailRequest) bool {
	l.reqLock.Lock()
	defer l.reqLock.Unlock()

	dropped := false
	if len(l.requests) >= thumbnailQueueCapacity {
		l.requests = l.requests[1:]
		dropped = true
	}
	l.requests = append(l.requests, req)
	l.reqCond.Signal()
	return dropped
}

// next pops the newest request, blocking until there is one. It returns
// false once the loader is closed.
func (l *ThumbnailLoader) next() (thumbnailRequest, bool) {
	l.reqLock.Lock()
	defer l.reqLock.Unlock()

	for len(l.requests) == 0 && !l.closed {
		l.reqCond.Wait()
	}
	if l.closed {
		return thumbnailRequest{}, false
	}
	last := len(l.requests) - 1
	req := l.requests[last]
	l.requests = l.requests[:last]
	return req, true
}

func (l *ThumbnailLoader) pending() int {
	l.reqLock.Lock()
	defer l.reqLock.Unlock()
	return len(l.requests)
}

// Close stops the workers. Pending requests are discarded.
func (l *ThumbnailLoader) Close() {
	l.reqLock.Lock()
	l.closed = true
	l.requests = nil
	l.reqLock.Unlock()
	l.reqCond.Broadcast()
}

func (l *ThumbnailLoader) worker() {
	for {
		req, ok := l.next()
		if !ok {
			return
		}
		img, err := l.render(req.path)
		req.callback(img, err)
	}
}

func (l *ThumbnailLoader) render(path string) (image.Image, error) {
	if img := l.Cached(path); img != nil {
		return img, nil
	}

	src, err := l.decode(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	dst := letterbox(src, l.size)
	if dst == nil {
		return nil, fmt.Errorf("%w: %s has no pixels", errUnsupportedThumbnail, path)
	}

	l.cache.Store(path, dst)
	l.saveToDisk(path, dst)
	return dst, nil
}

// letterbox scales img to fit a size×size square, centred on black.
func letterbox(img image.Image, size int) *image.RGBA {
	srcBounds := img.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: image.Black}, image.Point{}, draw.Src)

	var scaledW, scaledH int
	ratio := float64(srcW) / float64(srcH)
	if ratio > 1 {
		scaledW = size
		scaledH = max(int(float64(size)/ratio), 1)
	} else {
		scaledH = size
		scaledW = max(int(float64(size)*ratio), 1)
	}

	xBase := (size - scaledW) / 2
	yBase := (size - scaledH) / 2
	target := image.Rect(xBase, yBase, xBase+scaledW, yBase+scaledH)

	draw.ApproxBiLinear.Scale(dst, target, img, srcBounds, draw.Over, nil)
	return dst
}

func (l *ThumbnailLoader) diskPath(path string) (string, bool) {
	if l.cacheDir == "" {
		return "", false
	}
	key, err := thumbnailCacheKey(path, l.size)
	if err != nil {
		return "", false
	}
	return filepath.Join(l.cacheDir, key+".jpg"), true
}

func (l *ThumbnailLoader) loadFromDisk(path string) image.Image {
	cachePath, ok := l.diskPath(path)
	if !ok {
		return nil
	}
	img, err := loadImage(cachePath)
	if err != nil {
		return nil
	}
	return img
}

func (l *ThumbnailLoader) saveToDisk(path string, img image.Image) {
	cachePath, ok := l.diskPath(path)
	if !ok {
		return
	}
	f, err := os.Create(cachePath)
	if err != nil {
		fyne.LogError("thumbnail loader: could not write cache entry", err)
		return
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		fyne.LogError("thumbnail loader: could not encode cache entry", err)
	}
}

// thumbnailCacheKey identifies a source file by path, modification time and
// size, so that edited files get a new thumbnail.
func thumbnailCacheKey(path string, size int) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%d", absPath, info.ModTime().UTC(), info.Size(), size)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// SupportsThumbnail reports whether Load can produce a thumbnail for uri.
func SupportsThumbnail(uri fyne.URI) bool {
	if uri == nil || uri.Scheme() != "file" {
		return false
	}
	return isSupportedImage(strings.ToLower(uri.Extension()))
}

func isSupportedImage(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}
