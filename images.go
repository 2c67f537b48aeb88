package vmap

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/gogpu/vmap/internal/cache"
)

// ImageLoader resolves texture, mask and background filenames.
type ImageLoader interface {
	LoadImage(name string) (image.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(name string) (image.Image, error)

// LoadImage calls f(name).
func (f ImageLoaderFunc) LoadImage(name string) (image.Image, error) { return f(name) }

// DefaultImageCacheSize is the number of decoded images a FileImageLoader
// keeps.
const DefaultImageCacheSize = 64

// FileImageLoader decodes images from disk on first use and caches them.
// PNG, JPEG, GIF, BMP, TIFF and WebP are supported. Relative names resolve
// against the loader's directory.
type FileImageLoader struct {
	dir    string
	images *cache.Cache[string, image.Image]
}

// NewFileImageLoader creates a loader rooted at dir.
func NewFileImageLoader(dir string) *FileImageLoader {
	return &FileImageLoader{
		dir:    dir,
		images: cache.New[string, image.Image](DefaultImageCacheSize),
	}
}

// LoadImage returns the decoded image for name.
func (l *FileImageLoader) LoadImage(name string) (image.Image, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, name)
	}
	return l.images.GetOrLoad(path, func() (image.Image, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("vmap: load image: %w", err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("vmap: decode %s: %w", path, err)
		}
		Logger().Debug("vmap: image decoded", "path", path, "bounds", img.Bounds())
		return img, nil
	})
}

// Forget drops a cached image so the next load reads the file again.
func (l *FileImageLoader) Forget(name string) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, name)
	}
	l.images.Delete(path)
}
