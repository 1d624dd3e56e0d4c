// Package vegetation classifies aerial captures by plant health.
//
// Each pixel is screened for non-vegetation (ground cloth and shadow, blossoms,
// reddish new growth) when the profile enables those screens, and otherwise
// scored with a VARI-style vegetation index chosen by the profile's Domain.
// The index is compared to the profile threshold to place the pixel in one of
// five health buckets and to count it as healthy (index >= threshold) or
// stressed.
//
// Analyze runs classification, aggregation and rendering in one pass over the
// raster. Statistics may be computed on a fixed-stride sample while every
// pixel is still rendered; see Result for what that means for pixel counts.
//
// The package does no I/O of its own beyond the writers callers pass to
// WriteReport and EncodeClassified.
package vegetation
