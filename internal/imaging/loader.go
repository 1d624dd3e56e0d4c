package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"path/filepath"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder (orthomosaic exports)
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultMaxDimension is the longest side, in pixels, an analyzed raster may have.
// Larger inputs are downsampled before analysis.
const DefaultMaxDimension = 2000

// MaxSourcePixels is the largest input, in pixels, that will be decoded.
// The header is checked first so oversized inputs are rejected before their
// pixels are allocated.
const MaxSourcePixels = 150_000_000

// ErrImageTooLarge is wrapped by the *ImageDecodeError for inputs above MaxSourcePixels.
var ErrImageTooLarge = errors.New("image exceeds the pixel limit")

// ImageDecodeError reports input bytes that could not be decoded into a raster.
//
// It is terminal for the image it refers to; there is nothing to retry.
type ImageDecodeError struct {
	// Source names the input (a path, or "bytes" for in-memory data).
	Source string
	Err    error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Source, e.Err)
}

func (e *ImageDecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is, or wraps, an *ImageDecodeError.
func IsDecodeError(err error) bool {
	var de *ImageDecodeError
	return errors.As(err, &de)
}

// ImageCache provides thread-safe caching of decoded originals to avoid redundant disk reads.
//
// The cache stores full-resolution image.Image values keyed by file path. Re-running an
// analysis with a different threshold or normalization setting starts again from the
// cached original; every call to LoadRaster hands out a freshly allocated Raster, so
// concurrent analyses never share pixel buffers.
//
// Files are read through an afero.Fs, the OS filesystem unless the cache was
// built with NewImageCacheWithFs.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// For long-running processes handling many images, consider periodic cleanup to
// prevent unbounded memory growth.
type ImageCache struct {
	mu     sync.RWMutex
	fs     afero.Fs
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache over the OS filesystem.
func NewImageCache() *ImageCache {
	return NewImageCacheWithFs(afero.NewOsFs())
}

// NewImageCacheWithFs creates an empty image cache reading files from fs.
func NewImageCacheWithFs(fs afero.Fs) *ImageCache {
	return &ImageCache{
		fs:     fs,
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not cached.
//
// Returns an *ImageDecodeError when the file exists but is not a
// decodable PNG, JPEG, GIF, WebP, TIFF or BMP image.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, &ImageDecodeError{Source: path, Err: err}
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadRaster loads the original at path (cached) and returns a new Raster,
// downsampled so that neither side exceeds maxDim.
func (c *ImageCache) LoadRaster(path string, maxDim int) (*Raster, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return FromImage(Downsample(img, maxDim)), nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached originals.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Decode turns encoded image bytes into a Raster no larger than maxDim on either side.
//
// A maxDim of zero or less selects DefaultMaxDimension. Decoding failures are
// returned as *ImageDecodeError.
func Decode(data []byte, maxDim int) (*Raster, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, &ImageDecodeError{Source: "bytes", Err: err}
	}
	return FromImage(Downsample(img, maxDim)), nil
}

// decodeImage tries the registered decoders first, then the libwebp-backed decoder
// for WebP variants the pure-Go decoder rejects.
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}
	if err := checkSourceSize(data); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	if webpImg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return webpImg, nil
	}
	return nil, err
}

// checkSourceSize reads only the image header and rejects inputs above
// MaxSourcePixels. Headers that cannot be parsed are left to the decoder.
func checkSourceSize(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if cfg, err = webp.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil
		}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return fmt.Errorf("%w: %dx%d is more than %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, MaxSourcePixels)
	}
	return nil
}

// Downsample scales img down uniformly when its longest side exceeds maxDim.
//
// The scale factor is maxDim / max(width, height); both new dimensions are
// rounded down and the aspect ratio is preserved. Images already within the
// cap are returned unchanged. A maxDim of zero or less selects DefaultMaxDimension.
func Downsample(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	b := img.Bounds()
	newW, newH := scaledDimensions(b.Dx(), b.Dy(), maxDim)
	if newW == b.Dx() && newH == b.Dy() {
		return img
	}
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", "webp", "tiff",
	// "bmp" or "unknown". Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// AnalysisWidth and AnalysisHeight are the dimensions the image will have
	// after downsampling to DefaultMaxDimension.
	AnalysisWidth  int `json:"analysis_width"`
	AnalysisHeight int `json:"analysis_height"`
}

// LoadImageInfo loads an image and returns metadata about it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()

	stat, err := cache.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	aw, ah := scaledDimensions(bounds.Dx(), bounds.Dy(), DefaultMaxDimension)

	return &ImageInfo{
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		Format:         FormatFromPath(path),
		HasAlpha:       hasAlpha,
		FileSizeBytes:  stat.Size(),
		AnalysisWidth:  aw,
		AnalysisHeight: ah,
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// FormatFromPath maps a file extension to a format name.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	}
	return "unknown"
}

// scaledDimensions returns the size a w×h image has once capped at maxDim.
func scaledDimensions(w, h, maxDim int) (int, int) {
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return w, h
	}
	// Integer form of floor(side * maxDim/longest); avoids float rounding at exact ratios.
	nw, nh := w*maxDim/longest, h*maxDim/longest
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
