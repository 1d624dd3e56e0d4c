package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/chai2010/webp"
)

// ErrUnsupportedFormat is returned for export formats other than png, jpeg and webp.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is an export encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// DefaultJPEGQuality is used when a caller passes quality <= 0 for JPEG output.
const DefaultJPEGQuality = 92

// ParseFormat accepts "png", "jpg", "jpeg" and "webp" (case-insensitive).
// An empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// MimeType returns the media type for the format.
func (f Format) MimeType() string {
	return "image/" + string(f)
}

// Encode writes img to w in the given format.
//
// Quality applies to JPEG (1-100) and WebP. For WebP, quality <= 0 or >= 100
// selects lossless encoding, which suits flat-colored classification output.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	var err error
	switch format {
	case FormatPNG, "":
		err = imgio.PNGEncoder()(w, img)
	case FormatJPEG:
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		err = imgio.JPEGEncoder(quality)(w, img)
	case FormatWebP:
		opts := &webp.Options{Lossless: quality <= 0 || quality >= 100, Quality: float32(quality)}
		err = webp.Encode(w, img, opts)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}

// EncodedImage is an image encoded for transport inside a JSON payload.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeBase64 encodes a raster and wraps it as base64 for JSON responses.
func EncodeBase64(src *Raster, format Format, quality int) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, src.Image(), format, quality); err != nil {
		return nil, err
	}
	if format == "" {
		format = FormatPNG
	}
	return &EncodedImage{
		Width:       src.Width,
		Height:      src.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    format.MimeType(),
	}, nil
}
