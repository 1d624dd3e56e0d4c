package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/vegetation-health-mcp/internal/imaging"
	"github.com/ironsheep/vegetation-health-mcp/internal/vegetation"
)

const (
	classifiedSuffix = "_classified"
	reportSuffix     = "_report.json"
)

// Runner analyzes a list of image files.
type Runner struct {
	// Fs is the filesystem images are read from and outputs written to.
	Fs afero.Fs

	// Workers is the number of concurrent analyses. Zero or less uses GOMAXPROCS.
	Workers int

	// MaxDimension caps the longest side of each image before analysis.
	MaxDimension int

	// Options are applied to every image.
	Options vegetation.Options

	// OutputDir receives <name>_classified.<ext> and <name>_report.json per
	// image. Empty disables output.
	OutputDir string

	// Format and Quality select the classified map encoding.
	Format  imaging.Format
	Quality int

	// Logger receives progress lines. Nil uses log.Default().
	Logger *log.Logger

	// Now stamps reports. Nil uses time.Now.
	Now func() time.Time
}

// ItemResult is the outcome for one input file.
type ItemResult struct {
	Path           string             `json:"path"`
	Width          int                `json:"width,omitempty"`
	Height         int                `json:"height,omitempty"`
	Result         *vegetation.Result `json:"result,omitempty"`
	PlantCount     *int               `json:"plant_count,omitempty"`
	ClassifiedPath string             `json:"classified_path,omitempty"`
	ReportPath     string             `json:"report_path,omitempty"`
	Error          string             `json:"error,omitempty"`

	err error
}

// Err returns the error that stopped this item, if any.
func (i ItemResult) Err() error { return i.err }

// Summary aggregates a batch run. Items keep the order of the input paths.
type Summary struct {
	Items             []ItemResult `json:"items"`
	Succeeded         int          `json:"succeeded"`
	Failed            int          `json:"failed"`
	Degenerate        int          `json:"degenerate"`
	MeanHealthScore   float64      `json:"mean_health_score"`
	StdDevHealthScore float64      `json:"stddev_health_score"`
}

// Run analyzes every path and returns once all workers are done.
//
// Per-image failures are recorded in the Summary and do not fail the run. If
// ctx is canceled, images not yet started are marked failed and Run returns
// the partial Summary along with ctx's error.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	if r.Fs == nil {
		return nil, errors.New("batch runner has no filesystem")
	}
	logger := r.logger()

	if r.OutputDir != "" {
		if err := r.Fs.MkdirAll(r.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", r.OutputDir, err)
		}
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, max(1, len(paths)))

	items := make([]ItemResult, len(paths))
	bases := UniqueOutputBases(paths)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				items[i] = r.process(ctx, paths[i], bases[i])
				if items[i].err != nil {
					logger.Printf("FAILED %s: %v", paths[i], items[i].err)
				} else {
					logger.Printf("analyzed %s: health %.1f%%", paths[i], items[i].Result.HealthScore)
				}
			}
		}()
	}

	next := 0
feed:
	for ; next < len(paths); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(paths); i++ {
		items[i] = failed(paths[i], fmt.Errorf("not started: %w", ctx.Err()))
	}

	summary := summarize(items)
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch canceled: %w", err)
	}
	return summary, nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// process analyzes one file. Each call owns its rasters and result.
func (r *Runner) process(ctx context.Context, path, base string) ItemResult {
	data, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return failed(path, fmt.Errorf("failed to read image: %w", err))
	}

	a, err := vegetation.AnalyzeBytes(ctx, data, r.MaxDimension, r.Options)
	if err != nil {
		return failed(path, err)
	}

	item := ItemResult{
		Path:   path,
		Width:  a.Classified.Width,
		Height: a.Classified.Height,
		Result: &a.Result,
	}
	if a.Plants != nil {
		n := a.Plants.Count
		item.PlantCount = &n
	}

	if r.OutputDir == "" {
		return item
	}
	if err := r.writeOutputs(a, path, base, &item); err != nil {
		return failed(path, err)
	}
	return item
}

func (r *Runner) writeOutputs(a *vegetation.Analysis, path, base string, item *ItemResult) error {
	format := r.Format
	if format == "" {
		format = imaging.FormatPNG
	}

	var img bytes.Buffer
	if err := a.EncodeClassified(&img, format, r.Quality); err != nil {
		return err
	}
	item.ClassifiedPath = filepath.Join(r.OutputDir, base+classifiedSuffix+"."+format.Extension())
	if err := afero.WriteFile(r.Fs, item.ClassifiedPath, img.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write classified image: %w", err)
	}

	var report bytes.Buffer
	if err := vegetation.WriteReport(&report, a.Report(path, r.now())); err != nil {
		return err
	}
	item.ReportPath = filepath.Join(r.OutputDir, base+reportSuffix)
	if err := afero.WriteFile(r.Fs, item.ReportPath, report.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func failed(path string, err error) ItemResult {
	return ItemResult{Path: path, Error: err.Error(), err: err}
}

// OutputBase returns the file name of path without its extension.
func OutputBase(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// UniqueOutputBases returns an output base name per path, in order.
//
// Inputs sharing a base name (plot.png and plot.jpg, or /a/plot.png and
// /b/plot.png) would write the same output files, so later duplicates get a
// numeric suffix: plot, plot-2, plot-3. A suffixed name never collides with
// another input's own base name.
func UniqueOutputBases(paths []string) []string {
	taken := make(map[string]bool, len(paths))
	for _, p := range paths {
		taken[OutputBase(p)] = true
	}

	bases := make([]string, len(paths))
	assigned := make(map[string]bool, len(paths))
	for i, p := range paths {
		base := OutputBase(p)
		candidate := base
		for n := 2; assigned[candidate] || (candidate != base && taken[candidate]); n++ {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		assigned[candidate] = true
		bases[i] = candidate
	}
	return bases
}

func summarize(items []ItemResult) *Summary {
	s := &Summary{Items: items}
	scores := make([]float64, 0, len(items))
	for _, it := range items {
		if it.err != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		if it.Result.Degenerate {
			s.Degenerate++
			continue
		}
		scores = append(scores, it.Result.HealthScore)
	}

	switch len(scores) {
	case 0:
	case 1:
		s.MeanHealthScore = scores[0]
	default:
		s.MeanHealthScore, s.StdDevHealthScore = stat.MeanStdDev(scores, nil)
	}
	if math.IsNaN(s.StdDevHealthScore) {
		s.StdDevHealthScore = 0
	}
	return s
}
