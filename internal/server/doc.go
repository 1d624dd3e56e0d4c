// Package server implements the MCP (Model Context Protocol) server for vegetation
// health analysis.
//
// The server speaks JSON-RPC 2.0 over stdio so MCP clients can load aerial
// captures, classify them with a vegetation index and export false-color
// health maps without leaving the conversation.
//
// # Protocol
//
// One JSON-RPC request per line on stdin, one response per line on stdout.
// Logging goes to stderr.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image information:
//   - image_load: Load a capture and report its metadata
//   - image_dimensions: Get width and height
//   - image_sample_color: Get the color at a pixel
//   - image_grid_overlay: Draw a coordinate grid, optionally over the classified map
//
// Vegetation analysis:
//   - vegetation_profiles: List the built-in crop profiles
//   - vegetation_legend: List the colors used in classified maps
//   - vegetation_classify_pixel: Explain how one pixel is classified
//   - vegetation_analyze: Classify a capture (or one region of it) and report health
//   - vegetation_batch: Analyze a directory of captures concurrently
//
// # Image Caching
//
// Decoded captures are cached by path for the lifetime of the process. Every
// analysis works on a fresh copy of the cached pixels.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
