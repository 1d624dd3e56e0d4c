package vegetation

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ironsheep/vegetation-health-mcp/internal/detection"
	"github.com/ironsheep/vegetation-health-mcp/internal/imaging"
)

// Report is the exportable record of an analysis run.
type Report struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Source      string                  `json:"source,omitempty"`
	Width       int                     `json:"width"`
	Height      int                     `json:"height"`
	Config      Snapshot                `json:"config"`
	Result      Result                  `json:"result"`
	Legend      []LegendEntry           `json:"legend"`
	Plants      *detection.PlantsResult `json:"plants,omitempty"`
	Warnings    []string                `json:"warnings,omitempty"`
}

// Report builds the export record for the run.
func (a *Analysis) Report(source string, now time.Time) Report {
	r := Report{
		GeneratedAt: now.UTC(),
		Source:      source,
		Width:       a.Classified.Width,
		Height:      a.Classified.Height,
		Config:      a.Config,
		Result:      a.Result,
		Legend:      a.Legend,
		Plants:      a.Plants,
	}
	if err := a.Result.Err(); err != nil {
		r.Warnings = append(r.Warnings, err.Error())
	}
	if a.Result.Stride > 1 {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"pixel counts are from a 1-in-%d sample; multiply by %d to estimate totals",
			a.Result.Stride, a.Result.Stride))
	}
	return r
}

// WriteReport writes r as indented JSON.
func WriteReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// EncodeClassified writes the classified map in the given format.
func (a *Analysis) EncodeClassified(w io.Writer, format imaging.Format, quality int) error {
	return imaging.Encode(w, a.Classified.Image(), format, quality)
}
