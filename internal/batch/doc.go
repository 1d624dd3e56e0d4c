// Package batch analyzes many captures concurrently.
//
// A Runner reads images from an afero filesystem, analyzes each one on its own
// raster with a fixed pool of workers, and optionally writes a classified map
// and a JSON report per image. A failed decode is terminal for that image only;
// the run continues and the failure is recorded in the Summary.
package batch
