package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFiles creates resultsDir and plotsDir and writes the three tables
// and the markdown report into resultsDir. It returns the written paths.
func WriteFiles(resultsDir, plotsDir string, r *Report) ([]string, error) {
	for _, dir := range []string{resultsDir, plotsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}

	files := []struct {
		name    string
		content string
	}{
		{ResultsFile, RenderRunsCSV(r.Rows)},
		{SummaryFile, RenderSummaryCSV(r.Summary)},
		{SensitivityFile, RenderSensitivityCSV(r.Sensitivity)},
		{ReportFile, RenderMarkdown(r)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(resultsDir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
