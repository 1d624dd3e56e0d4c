// Package detection finds connected regions in a vegetation mask.
//
// The mask is produced by the classifier: one bool per pixel, row-major, true
// where the pixel belongs to a plant. CountPlants groups true pixels into
// 8-connected components and reports each component that reaches a minimum
// area as a plant, with its bounding box, centroid and pixel count.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Bounds are half-open: X2 and Y2 are one past the last pixel of the plant.
package detection
