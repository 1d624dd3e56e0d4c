package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ironsheep/vegetation-health-mcp/internal/imaging"
)

// Discover lists the image files directly inside dir, sorted by name.
// Classified maps written by a previous run are skipped.
func Discover(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if imaging.FormatFromPath(name) == "unknown" {
			continue
		}
		if strings.HasSuffix(OutputBase(name), classifiedSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}
