package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/ironsheep/vegetation-health-mcp/internal/batch"
	"github.com/ironsheep/vegetation-health-mcp/internal/detection"
	"github.com/ironsheep/vegetation-health-mcp/internal/imaging"
	"github.com/ironsheep/vegetation-health-mcp/internal/vegetation"
)

// defaultMaxPlantsListed caps the plant list returned by vegetation_analyze.
const defaultMaxPlantsListed = 50

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "vegetation_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.debugf("%s failed after %s: %v", params.Name, time.Since(start), err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.debugf("%s completed in %s", params.Name, time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/vegetation/batch function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_grid_overlay":
		return s.handleImageGridOverlay(ctx, args)

	// Vegetation Analysis
	case "vegetation_profiles":
		return s.handleVegetationProfiles()
	case "vegetation_legend":
		return s.handleVegetationLegend()
	case "vegetation_classify_pixel":
		return s.handleVegetationClassifyPixel(args)
	case "vegetation_analyze":
		return s.handleVegetationAnalyze(ctx, args)
	case "vegetation_batch":
		return s.handleVegetationBatch(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// analysisArgs are the arguments shared by every tool that classifies pixels.
type analysisArgs struct {
	Path         string   `json:"path"`
	Profile      string   `json:"profile"`
	Threshold    *float64 `json:"threshold"`
	Equalize     bool     `json:"equalize"`
	MaxDimension int      `json:"max_dimension"`
}

func (a analysisArgs) options() vegetation.Options {
	return vegetation.Options{Profile: a.Profile, Threshold: a.Threshold, Equalize: a.Equalize}
}

// loadRaster returns a fresh raster of the cached original, capped at maxDim.
func (s *Server) loadRaster(path string, maxDim int) (*imaging.Raster, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	return s.cache.LoadRaster(path, maxDim)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path         string `json:"path"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	MaxDimension int    `json:"max_dimension"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadRaster(a.Path, a.MaxDimension)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type imageGridOverlayArgs struct {
	analysisArgs
	GridSpacing     int    `json:"grid_spacing"`
	ShowCoordinates *bool  `json:"show_coordinates"`
	GridColor       string `json:"grid_color"`
	Classified      bool   `json:"classified"`
}

func (s *Server) handleImageGridOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageGridOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.GridSpacing <= 0 {
		a.GridSpacing = 100
	}
	showCoords := true
	if a.ShowCoordinates != nil {
		showCoords = *a.ShowCoordinates
	}

	img, err := s.loadRaster(a.Path, a.MaxDimension)
	if err != nil {
		return nil, err
	}
	if a.Classified {
		analysis, err := vegetation.Analyze(ctx, img, a.options())
		if err != nil {
			return nil, err
		}
		img = analysis.Classified
	}
	return imaging.EncodeBase64(imaging.GridOverlay(img, a.GridSpacing, showCoords, a.GridColor), imaging.FormatPNG, 0)
}

// === Vegetation Analysis Handlers ===

func (s *Server) handleVegetationProfiles() (interface{}, error) {
	return map[string]interface{}{
		"profiles": vegetation.Profiles(),
		"default":  vegetation.DefaultProfileKey,
	}, nil
}

func (s *Server) handleVegetationLegend() (interface{}, error) {
	return map[string]interface{}{
		"legend": vegetation.Legend(),
	}, nil
}

type classifyPixelArgs struct {
	analysisArgs
	X int `json:"x"`
	Y int `json:"y"`
}

// ClassifyPixelResult explains how one pixel was classified.
type ClassifyPixelResult struct {
	X         int                  `json:"x"`
	Y         int                  `json:"y"`
	Color     *imaging.ColorResult `json:"color"`
	Category  vegetation.Category  `json:"category"`
	Index     *float64             `json:"index,omitempty"`
	Bucket    string               `json:"bucket,omitempty"`
	Healthy   *bool                `json:"healthy,omitempty"`
	Rendered  string               `json:"rendered_hex"`
	Profile   string               `json:"profile"`
	Threshold float64              `json:"threshold"`
}

func (s *Server) handleVegetationClassifyPixel(args json.RawMessage) (interface{}, error) {
	var a classifyPixelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadRaster(a.Path, a.MaxDimension)
	if err != nil {
		return nil, err
	}
	if a.Equalize {
		img = imaging.EqualizeHistogram(img)
	}

	opts := a.options()
	profile, err := vegetation.ResolveProfile(opts)
	if err != nil {
		return nil, err
	}
	c, bucket, err := vegetation.ClassifyPixel(img, a.X, a.Y, opts)
	if err != nil {
		return nil, err
	}
	sample, err := imaging.SampleColor(img, a.X, a.Y)
	if err != nil {
		return nil, err
	}

	result := &ClassifyPixelResult{
		X:         a.X,
		Y:         a.Y,
		Color:     sample,
		Category:  c.Category,
		Rendered:  vegetation.ColorFor(c, profile.IndexThreshold).Hex(),
		Profile:   profile.Key,
		Threshold: profile.IndexThreshold,
	}
	if c.Category == vegetation.CategoryVegetation {
		index := c.Index
		healthy := vegetation.IsHealthy(c.Index, profile.IndexThreshold)
		result.Index = &index
		result.Bucket = bucket.String()
		result.Healthy = &healthy
	}
	return result, nil
}

type vegetationAnalyzeArgs struct {
	analysisArgs
	Region       *imaging.Region `json:"region"`
	RegionName   string          `json:"region_name"`
	IncludeImage bool            `json:"include_image"`
	ImageFormat  string          `json:"image_format"`
	OutputDir    string          `json:"output_dir"`
	CountPlants  bool            `json:"count_plants"`
	MinPlantArea int             `json:"min_plant_area"`
	MaxPlants    int             `json:"max_plants"`
	GridSpacing  int             `json:"grid_spacing"`
}

// AnalyzeResult is the vegetation_analyze response.
type AnalyzeResult struct {
	Path            string                   `json:"path"`
	Width           int                      `json:"width"`
	Height          int                      `json:"height"`
	Region          *imaging.Region          `json:"region,omitempty"`
	Config          vegetation.Snapshot      `json:"config"`
	Result          vegetation.Result        `json:"result"`
	Legend          []vegetation.LegendEntry `json:"legend"`
	Plants          *detection.PlantsResult  `json:"plants,omitempty"`
	Warnings        []string                 `json:"warnings,omitempty"`
	ClassifiedImage *imaging.EncodedImage    `json:"classified_image,omitempty"`
	ClassifiedPath  string                   `json:"classified_path,omitempty"`
	ReportPath      string                   `json:"report_path,omitempty"`
}

func (s *Server) handleVegetationAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a vegetationAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxPlants <= 0 {
		a.MaxPlants = defaultMaxPlantsListed
	}
	format, err := imaging.ParseFormat(a.ImageFormat)
	if err != nil {
		return nil, err
	}

	img, err := s.loadRaster(a.Path, a.MaxDimension)
	if err != nil {
		return nil, err
	}

	region := a.Region
	if region == nil && a.RegionName != "" {
		r, err := imaging.NamedRegion(a.RegionName, img.Width, img.Height)
		if err != nil {
			return nil, err
		}
		region = &r
	}
	if region != nil {
		if img, err = imaging.Crop(img, *region); err != nil {
			return nil, err
		}
	}

	opts := a.options()
	opts.CountPlants = a.CountPlants
	opts.MinPlantArea = a.MinPlantArea
	analysis, err := vegetation.Analyze(ctx, img, opts)
	if err != nil {
		return nil, err
	}

	report := analysis.Report(a.Path, time.Now())
	if analysis.Result.Degenerate {
		s.debugf("%s: %v", a.Path, analysis.Result.Err())
	}

	result := &AnalyzeResult{
		Path:     a.Path,
		Width:    img.Width,
		Height:   img.Height,
		Region:   region,
		Config:   analysis.Config,
		Result:   analysis.Result,
		Legend:   analysis.Legend,
		Plants:   truncatePlants(analysis.Plants, a.MaxPlants),
		Warnings: report.Warnings,
	}

	if a.IncludeImage {
		classified := analysis.Classified
		if a.GridSpacing > 0 {
			classified = imaging.GridOverlay(classified, a.GridSpacing, true, "")
		}
		if result.ClassifiedImage, err = imaging.EncodeBase64(classified, format, 0); err != nil {
			return nil, err
		}
	}

	if a.OutputDir != "" {
		if err := s.writeAnalysis(analysis, report, a.OutputDir, batch.OutputBase(a.Path), format, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// writeAnalysis stores the classified map and JSON report in dir.
func (s *Server) writeAnalysis(a *vegetation.Analysis, report vegetation.Report, dir, base string, format imaging.Format, result *AnalyzeResult) error {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var img bytes.Buffer
	if err := a.EncodeClassified(&img, format, 0); err != nil {
		return err
	}
	result.ClassifiedPath = filepath.Join(dir, base+"_classified."+format.Extension())
	if err := afero.WriteFile(s.fs, result.ClassifiedPath, img.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write classified image: %w", err)
	}

	var js bytes.Buffer
	if err := vegetation.WriteReport(&js, report); err != nil {
		return err
	}
	result.ReportPath = filepath.Join(dir, base+"_report.json")
	if err := afero.WriteFile(s.fs, result.ReportPath, js.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// truncatePlants returns p with at most limit plants listed. Totals are kept.
func truncatePlants(p *detection.PlantsResult, limit int) *detection.PlantsResult {
	if p == nil || len(p.Plants) <= limit {
		return p
	}
	out := *p
	out.Plants = p.Plants[:limit]
	return &out
}

type vegetationBatchArgs struct {
	analysisArgs
	Dir          string   `json:"dir"`
	Paths        []string `json:"paths"`
	OutputDir    string   `json:"output_dir"`
	Format       string   `json:"format"`
	Workers      int      `json:"workers"`
	CountPlants  bool     `json:"count_plants"`
	MinPlantArea int      `json:"min_plant_area"`
}

func (s *Server) handleVegetationBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a vegetationBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	format, err := imaging.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	paths := a.Paths
	if a.Dir != "" {
		found, err := batch.Discover(s.fs, a.Dir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, errors.New("no images to analyze: pass dir or paths")
	}

	opts := a.options()
	opts.CountPlants = a.CountPlants
	opts.MinPlantArea = a.MinPlantArea
	runner := &batch.Runner{
		Fs:           s.fs,
		Workers:      a.Workers,
		MaxDimension: a.MaxDimension,
		Options:      opts,
		OutputDir:    a.OutputDir,
		Format:       format,
	}
	return runner.Run(ctx, paths)
}
