package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	return writeTestImage(t, filepath.Join(t.TempDir(), "capture.png"), solidImage(width, height, c))
}

func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writeTestImage(t *testing.T, path string, img image.Image) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// writeMemImage encodes img as PNG into fs at path.
func writeMemImage(t *testing.T, fs afero.Fs, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
}

// callTool runs a tools/call request and decodes the JSON text content.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) (map[string]interface{}, *MCPError) {
	t.Helper()
	paramsJSON, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatal(err)
	}

	resp := s.handleToolsCall(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Params: paramsJSON})
	if resp.Error != nil {
		return nil, resp.Error
	}

	content, ok := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	if !ok || len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %+v", resp.Result)
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &out); err != nil {
		t.Fatalf("tool output is not a JSON object: %v", err)
	}
	return out, nil
}

func mustCallTool(t *testing.T, s *Server, name string, args map[string]interface{}) map[string]interface{} {
	t.Helper()
	out, mcpErr := callTool(t, s, name, args)
	if mcpErr != nil {
		t.Fatalf("%s failed: %s (%v)", name, mcpErr.Message, mcpErr.Data)
	}
	return out
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	out := mustCallTool(t, s, "image_load", map[string]interface{}{"path": imgPath})
	if out["width"] != float64(100) || out["height"] != float64(80) {
		t.Errorf("dimensions: got %vx%v, want 100x80", out["width"], out["height"])
	}
	if out["format"] != "png" {
		t.Errorf("format: got %v, want png", out["format"])
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 200, 150, color.RGBA{0, 255, 0, 255})

	out := mustCallTool(t, s, "image_dimensions", map[string]interface{}{"path": imgPath})
	if out["width"] != float64(200) || out["height"] != float64(150) {
		t.Errorf("dimensions: got %vx%v, want 200x150", out["width"], out["height"])
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New()
	_, mcpErr := callTool(t, s, "vegetation_analyze", map[string]interface{}{"path": "/nonexistent/image.png"})
	if mcpErr == nil {
		t.Fatal("expected error for missing file")
	}
	if mcpErr.Code != -32000 {
		t.Errorf("code: got %d, want -32000", mcpErr.Code)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New()
	_, mcpErr := callTool(t, s, "nonexistent_tool", map[string]interface{}{})
	if mcpErr == nil || mcpErr.Code != -32000 {
		t.Errorf("expected -32000 for unknown tool, got %+v", mcpErr)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	resp := s.handleToolsCall(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`not valid json`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_MissingPath(t *testing.T) {
	s := New()
	_, mcpErr := callTool(t, s, "vegetation_analyze", map[string]interface{}{})
	if mcpErr == nil {
		t.Fatal("expected error when path is missing")
	}
}

func TestHandleToolsCall_SampleColor(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{34, 139, 34, 255})

	out := mustCallTool(t, s, "image_sample_color", map[string]interface{}{"path": imgPath, "x": 50, "y": 50})
	if out["hex"] != "#228B22" {
		t.Errorf("hex: got %v, want #228B22", out["hex"])
	}

	_, mcpErr := callTool(t, s, "image_sample_color", map[string]interface{}{"path": imgPath, "x": 100, "y": 0})
	if mcpErr == nil {
		t.Error("expected error for out-of-bounds coordinates")
	}
}

func TestHandleToolsCall_GridOverlay(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 120, 80, color.RGBA{0, 200, 0, 255})

	for _, classified := range []bool{false, true} {
		out := mustCallTool(t, s, "image_grid_overlay", map[string]interface{}{
			"path":         imgPath,
			"grid_spacing": 40,
			"classified":   classified,
		})
		if out["mime_type"] != "image/png" {
			t.Errorf("mime_type: got %v", out["mime_type"])
		}
		data, err := base64.StdEncoding.DecodeString(out["image_base64"].(string))
		if err != nil {
			t.Fatalf("invalid base64: %v", err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("invalid PNG: %v", err)
		}
		if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 80 {
			t.Errorf("size: got %v", img.Bounds())
		}
	}
}

func TestHandleToolsCall_VegetationProfiles(t *testing.T) {
	out := mustCallTool(t, New(), "vegetation_profiles", nil)
	profiles, ok := out["profiles"].([]interface{})
	if !ok || len(profiles) != 6 {
		t.Fatalf("expected 6 profiles, got %v", out["profiles"])
	}
	if out["default"] != "standard" {
		t.Errorf("default: got %v", out["default"])
	}
	first := profiles[0].(map[string]interface{})
	if first["key"] != "standard" || first["domain"] != "standard" {
		t.Errorf("first profile: got %v", first)
	}
}

func TestHandleToolsCall_VegetationLegend(t *testing.T) {
	out := mustCallTool(t, New(), "vegetation_legend", map[string]interface{}{})
	legend, ok := out["legend"].([]interface{})
	if !ok || len(legend) != 8 {
		t.Fatalf("expected 8 legend entries, got %v", out["legend"])
	}
}

func TestHandleToolsCall_ClassifyPixel(t *testing.T) {
	s := New()
	img := solidImage(10, 10, color.Black)
	img.Set(3, 4, color.RGBA{0, 255, 0, 255})
	imgPath := writeTestImage(t, filepath.Join(t.TempDir(), "pixel.png"), img)

	out := mustCallTool(t, s, "vegetation_classify_pixel", map[string]interface{}{
		"path": imgPath, "x": 3, "y": 4, "profile": "nursery",
	})
	if out["category"] != "vegetation" || out["bucket"] != "very_healthy" || out["healthy"] != true {
		t.Errorf("green pixel: got %v", out)
	}
	if out["rendered_hex"] != "#00FF00" {
		t.Errorf("rendered_hex: got %v", out["rendered_hex"])
	}

	out = mustCallTool(t, s, "vegetation_classify_pixel", map[string]interface{}{
		"path": imgPath, "x": 0, "y": 0, "profile": "nursery",
	})
	if out["category"] != "fabric" {
		t.Errorf("black pixel: got category %v, want fabric", out["category"])
	}
	if _, ok := out["index"]; ok {
		t.Error("fabric pixel should not report an index")
	}
	if out["rendered_hex"] != "#323232" {
		t.Errorf("rendered_hex: got %v", out["rendered_hex"])
	}
}

func TestHandleToolsCall_VegetationAnalyze(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 40, 30, color.RGBA{0, 255, 0, 255})

	out := mustCallTool(t, s, "vegetation_analyze", map[string]interface{}{"path": imgPath})
	result := out["result"].(map[string]interface{})
	if result["health_score"] != float64(100) {
		t.Errorf("health_score: got %v, want 100", result["health_score"])
	}
	if result["total_vegetation_pixels"] != float64(1200) {
		t.Errorf("total_vegetation_pixels: got %v, want 1200", result["total_vegetation_pixels"])
	}
	config := out["config"].(map[string]interface{})
	if config["profile"] != "standard" || config["threshold"] != 0.1 {
		t.Errorf("config: got %v", config)
	}
	if _, ok := out["classified_image"]; ok {
		t.Error("classified_image should be omitted unless include_image is set")
	}
}

func TestHandleToolsCall_VegetationAnalyze_Region(t *testing.T) {
	s := New()
	img := solidImage(40, 20, color.RGBA{255, 0, 0, 255})
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{0, 255, 0, 255})
		}
	}
	imgPath := writeTestImage(t, filepath.Join(t.TempDir(), "split.png"), img)

	out := mustCallTool(t, s, "vegetation_analyze", map[string]interface{}{
		"path":   imgPath,
		"region": map[string]interface{}{"x1": 0, "y1": 0, "x2": 20, "y2": 20},
	})
	if out["result"].(map[string]interface{})["health_score"] != float64(100) {
		t.Errorf("left half should be fully healthy, got %v", out["result"])
	}

	out = mustCallTool(t, s, "vegetation_analyze", map[string]interface{}{
		"path":        imgPath,
		"region_name": "right-half",
	})
	if out["result"].(map[string]interface{})["health_score"] != float64(0) {
		t.Errorf("right half should be fully stressed, got %v", out["result"])
	}
	if out["width"] != float64(20) {
		t.Errorf("width: got %v, want 20", out["width"])
	}

	_, mcpErr := callTool(t, s, "vegetation_analyze", map[string]interface{}{
		"path":   imgPath,
		"region": map[string]interface{}{"x1": 30, "y1": 0, "x2": 10, "y2": 20},
	})
	if mcpErr == nil {
		t.Error("expected error for inverted region")
	}
}

func TestHandleToolsCall_VegetationAnalyze_IncludeImage(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 16, 16, color.RGBA{255, 0, 0, 255})

	out := mustCallTool(t, s, "vegetation_analyze", map[string]interface{}{
		"path":          imgPath,
		"include_image": true,
	})
	encoded := out["classified_image"].(map[string]interface{})
	data, err := base64.StdEncoding.DecodeString(encoded["image_base64"].(string))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("classified pixel: got (%d,%d,%d), want severe stress red", r>>8, g>>8, b>>8)
	}
}

func TestHandleToolsCall_VegetationAnalyze_OutputDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewWithConfig(Config{Fs: fs})
	writeMemImage(t, fs, "/captures/capture.png", solidImage(10, 10, color.RGBA{0, 255, 0, 255}))

	out := mustCallTool(t, s, "vegetation_analyze", map[string]interface{}{
		"path":         "/captures/capture.png",
		"output_dir":   "/exports",
		"image_format": "webp",
	})
	if out["classified_path"] != "/exports/capture_classified.webp" {
		t.Errorf("classified_path: got %v", out["classified_path"])
	}
	if out["report_path"] != "/exports/capture_report.json" {
		t.Errorf("report_path: got %v", out["report_path"])
	}
	for _, p := range []string{"/exports/capture_classified.webp", "/exports/capture_report.json"} {
		if ok, _ := afero.Exists(fs, p); !ok {
			t.Errorf("%s was not written", p)
		}
	}
}

func TestHandleToolsCall_VegetationAnalyze_Degenerate(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 10, 10, color.Black)

	out := mustCallTool(t, s, "vegetation_analyze", map[string]interface{}{"path": imgPath, "profile": "nursery"})
	result := out["result"].(map[string]interface{})
	if result["degenerate"] != true || result["health_score"] != float64(0) {
		t.Errorf("expected degenerate result, got %v", result)
	}
	warnings, ok := out["warnings"].([]interface{})
	if !ok || len(warnings) == 0 {
		t.Error("expected a warning for an image without vegetation")
	}
}

func TestHandleToolsCall_VegetationAnalyze_CountPlants(t *testing.T) {
	s := New()
	img := solidImage(50, 20, color.Black)
	for _, x0 := range []int{2, 14, 26, 38} {
		for y := 5; y < 15; y++ {
			for x := x0; x < x0+8; x++ {
				img.Set(x, y, color.RGBA{30, 160, 40, 255})
			}
		}
	}
	imgPath := writeTestImage(t, filepath.Join(t.TempDir(), "rows.png"), img)

	out := mustCallTool(t, s, "vegetation_analyze", map[string]interface{}{
		"path":         imgPath,
		"profile":      "nursery",
		"count_plants": true,
		"max_plants":   2,
	})
	plants := out["plants"].(map[string]interface{})
	if plants["count"] != float64(4) {
		t.Errorf("count: got %v, want 4", plants["count"])
	}
	if listed := plants["plants"].([]interface{}); len(listed) != 2 {
		t.Errorf("listed plants: got %d, want 2", len(listed))
	}
}

func TestHandleToolsCall_VegetationAnalyze_BadArguments(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 4, 4, color.White)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"unknown profile", map[string]interface{}{"path": imgPath, "profile": "moss"}},
		{"unknown format", map[string]interface{}{"path": imgPath, "image_format": "gif"}},
		{"unknown region name", map[string]interface{}{"path": imgPath, "region_name": "middle-ish"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, mcpErr := callTool(t, s, "vegetation_analyze", tt.args); mcpErr == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestHandleToolsCall_VegetationBatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	for name, c := range map[string]color.Color{
		"/flight/a.png": color.RGBA{0, 255, 0, 255},
		"/flight/b.png": color.RGBA{255, 0, 0, 255},
	} {
		writeMemImage(t, fs, name, solidImage(8, 8, c))
	}
	s := NewWithConfig(Config{Fs: fs})

	out := mustCallTool(t, s, "vegetation_batch", map[string]interface{}{
		"dir":        "/flight",
		"output_dir": "/flight/out",
		"workers":    2,
	})
	if out["succeeded"] != float64(2) || out["failed"] != float64(0) {
		t.Errorf("summary: got %v", out)
	}
	if out["mean_health_score"] != float64(50) {
		t.Errorf("mean_health_score: got %v, want 50", out["mean_health_score"])
	}
	if ok, _ := afero.Exists(fs, "/flight/out/a_report.json"); !ok {
		t.Error("report for a.png was not written")
	}

	if _, mcpErr := callTool(t, s, "vegetation_batch", map[string]interface{}{}); mcpErr == nil {
		t.Error("expected error when no images are given")
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New()
	if _, err := s.executeTool(context.Background(), "image_ocr_full", json.RawMessage(`{}`)); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New()
	for _, name := range []string{"image_load", "image_sample_color", "vegetation_analyze", "vegetation_classify_pixel", "vegetation_batch"} {
		if _, err := s.executeTool(context.Background(), name, json.RawMessage(`{invalid}`)); err == nil {
			t.Errorf("%s: expected error for invalid JSON", name)
		}
	}
}

func TestHandleToolsCall_InjectedFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewWithConfig(Config{Fs: fs})
	writeMemImage(t, fs, "/mem/field.png", solidImage(12, 8, color.RGBA{0, 255, 0, 255}))

	tests := []struct {
		tool string
		args map[string]interface{}
	}{
		{"image_load", map[string]interface{}{"path": "/mem/field.png"}},
		{"image_dimensions", map[string]interface{}{"path": "/mem/field.png"}},
		{"image_sample_color", map[string]interface{}{"path": "/mem/field.png", "x": 1, "y": 1}},
		{"image_grid_overlay", map[string]interface{}{"path": "/mem/field.png"}},
		{"vegetation_classify_pixel", map[string]interface{}{"path": "/mem/field.png", "x": 1, "y": 1}},
		{"vegetation_analyze", map[string]interface{}{"path": "/mem/field.png"}},
		{"vegetation_batch", map[string]interface{}{"paths": []string{"/mem/field.png"}}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			mustCallTool(t, s, tt.tool, tt.args)
		})
	}

	out := mustCallTool(t, s, "image_load", map[string]interface{}{"path": "/mem/field.png"})
	if out["width"] != float64(12) || out["file_size_bytes"].(float64) <= 0 {
		t.Errorf("image_load over injected fs: got %v", out)
	}
}

func TestHandleToolsCall_ClassifyTransparentPixel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	imgPath := writeTestImage(t, filepath.Join(t.TempDir(), "edge.png"), img)

	if _, mcpErr := callTool(t, New(), "vegetation_classify_pixel", map[string]interface{}{"path": imgPath, "x": 0, "y": 0}); mcpErr == nil {
		t.Error("expected an error for a transparent pixel")
	}
}
