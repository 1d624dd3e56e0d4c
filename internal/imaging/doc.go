// Package imaging provides the raster plumbing for vegetation analysis.
//
// It decodes aerial captures into a flat RGBA buffer (Raster), caps their size,
// equalizes contrast, crops regions, samples colors and encodes results for export.
// Coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward.
//
// # Rasters
//
// A Raster is a width, a height and a row-major byte slice holding 4 bytes per
// pixel (R, G, B, A). Every operation that transforms pixels returns a new Raster
// and leaves its input untouched, so callers can keep the original for display
// next to the classified output.
//
// # Loading
//
// Decode accepts PNG, JPEG, GIF, WebP, TIFF and BMP data. Inputs whose longest
// side exceeds the cap (DefaultMaxDimension, 2000 px) are scaled down uniformly
// with both dimensions rounded down. Undecodable input yields *ImageDecodeError.
//
// ImageCache keeps decoded originals keyed by path so repeated analyses of the
// same capture skip disk reads. It is safe for concurrent use; the rasters it
// hands out are never shared.
//
// # Export
//
// Encode writes PNG, JPEG or WebP. EncodeBase64 wraps the encoded bytes for
// JSON transport.
package imaging
