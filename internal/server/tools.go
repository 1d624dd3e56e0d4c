package server

import "github.com/ironsheep/vegetation-health-mcp/internal/vegetation"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// analysisProperties returns the schema properties shared by every tool that
// classifies pixels.
func analysisProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the aerial image (PNG, JPEG, WebP, TIFF, BMP or GIF)",
		},
		"profile": map[string]interface{}{
			"type":        "string",
			"enum":        vegetation.ProfileKeys(),
			"description": "Vegetation profile. Default standard",
			"default":     vegetation.DefaultProfileKey,
		},
		"threshold": map[string]interface{}{
			"type":        "number",
			"description": "Index threshold override, roughly -1 to 1. Pixels at or above it count as healthy. Defaults to the profile's threshold",
		},
		"equalize": map[string]interface{}{
			"type":        "boolean",
			"description": "Apply luminance histogram equalization before classifying. Default false",
			"default":     false,
		},
		"max_dimension": map[string]interface{}{
			"type":        "integer",
			"description": "Longest side, in pixels, the image is scaled down to before analysis. Default 2000",
			"default":     2000,
		},
	}
}

// withProperties merges extra into the shared analysis properties.
func withProperties(extra map[string]interface{}) map[string]interface{} {
	props := analysisProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and the size it will be analyzed at. Caches the image for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a pixel coordinate of the image as analyzed (after scaling to max_dimension).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Longest side the image is scaled down to. Default 2000",
						"default":     2000,
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_grid_overlay",
			Description: "Draw a labeled coordinate grid over the image, or over its classified health map, to locate patches for follow-up.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines. Default 100",
						"default":     100,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label grid intersections with coordinates. Default true",
						"default":     true,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color as hex (#RRGGBB). Default #FFFFFF",
						"default":     "#FFFFFF",
					},
					"classified": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw over the classified health map instead of the original. Default false",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},

		// Vegetation Analysis
		{
			Name:        "vegetation_profiles",
			Description: "List the built-in vegetation profiles with their index formula, default threshold and which non-vegetation screens they apply.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "vegetation_legend",
			Description: "List the colors used in classified health maps and what each means.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "vegetation_classify_pixel",
			Description: "Explain how a single pixel is classified: its color, category, vegetation index, health bucket and map color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				}),
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name: "vegetation_analyze",
			Description: "Classify every pixel of an aerial image by plant health and return the health score, index statistics and per-category pixel counts. " +
				"Pixel counts are sampled on large images; see result.stride.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Analyze only this rectangle: {x1, y1, x2, y2}, x2/y2 exclusive",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
					},
					"region_name": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
						"description": "Analyze a named part of the image. Ignored when region is set",
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the classified map as base64. Default false",
						"default":     false,
					},
					"image_format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "webp"},
						"description": "Encoding for the classified map. Default png",
						"default":     "png",
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Draw a labeled grid on the returned map every N pixels. Default 0 (none)",
						"default":     0,
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Also write <name>_classified.<ext> and <name>_report.json to this directory",
					},
					"count_plants": map[string]interface{}{
						"type":        "boolean",
						"description": "Count connected plant canopies. Default false",
						"default":     false,
					},
					"min_plant_area": map[string]interface{}{
						"type":        "integer",
						"description": "Smallest canopy, in pixels, counted as a plant. Default 25",
						"default":     25,
					},
					"max_plants": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of plants listed in the response (largest first). Default 50",
						"default":     50,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "vegetation_batch",
			Description: "Analyze many images concurrently. Returns one result per image plus the mean and standard deviation of health scores.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory whose image files are analyzed",
					},
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Image files to analyze, in addition to dir",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Write classified maps and reports here",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "webp"},
						"description": "Encoding for classified maps. Default png",
						"default":     "png",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Concurrent analyses. Default number of CPUs",
					},
					"count_plants": map[string]interface{}{
						"type":        "boolean",
						"description": "Count connected plant canopies. Default false",
						"default":     false,
					},
					"min_plant_area": map[string]interface{}{
						"type":        "integer",
						"description": "Smallest canopy, in pixels, counted as a plant. Default 25",
						"default":     25,
					},
				}),
			},
		},
	}
}

// handleToolsList returns the tool catalog.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
