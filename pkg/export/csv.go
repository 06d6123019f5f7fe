// Package export writes computed score summaries to report artifacts:
// per-scope CSV files and a shared Postgres results store.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/qactl/qactl/pkg/score"
)

var reportHeader = []string{
	"study",
	"score_missing_as_present",
	"max_score",
	"pct_missing_as_present",
	"score_missing_as_absent",
	"max_score_excluding_missing",
	"pct_missing_excluded",
}

// WriteReportCSV writes one scope's summaries to report_<scope>.csv in
// dir, creating the directory if needed. Returns the written file path.
func WriteReportCSV(dir string, scope score.Scope, summaries []score.Summary) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("output directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating report dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("report_%s.csv", scope))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		return "", fmt.Errorf("writing report header: %w", err)
	}
	for _, s := range summaries {
		row := []string{
			s.Study,
			num(s.ScoreMissingAsPresent),
			num(s.MaxScore),
			pct(s.PctMissingAsPresent),
			num(s.ScoreMissingAsAbsent),
			num(s.MaxScoreExcludingMissing),
			pct(s.PctMissingExcluded),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing report row for %s: %w", s.Study, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing report %s: %w", path, err)
	}

	return path, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
