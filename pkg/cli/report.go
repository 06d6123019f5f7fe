package cli

import (
	"errors"
	"fmt"
	"log/slog"

	urfave "github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/qactl/qactl/pkg/config"
	"github.com/qactl/qactl/pkg/data"
	"github.com/qactl/qactl/pkg/export"
	"github.com/qactl/qactl/pkg/score"
)

const scopeAll = "all"

var (
	scopeFlag = &urfave.StringFlag{
		Name:  "scope",
		Usage: "Scope to compute [methods, reporting, total, all]",
	}

	outDirFlag = &urfave.StringFlag{
		Name:  "out",
		Usage: "Directory for per-scope CSV report files (optional, stdout only when empty)",
	}

	reportCmd = &urfave.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Compute weighted score summaries per scope",
		UsageText: `qactl report                         # all scopes to stdout
   qactl report --scope methods --out ./reports`,
		Action: cmdReport,
		Flags: []urfave.Flag{
			scopeFlag,
			outDirFlag,
		},
	}
)

// ScopeReport is the outcome of one scope's computation. Scopes fail
// independently: a malformed methods block never blocks the reporting
// block, so the error travels in the result instead of aborting the run.
type ScopeReport struct {
	Scope     score.Scope     `json:"scope" yaml:"scope"`
	Summaries []score.Summary `json:"summaries,omitempty" yaml:"summaries,omitempty"`
	File      string          `json:"file,omitempty" yaml:"file,omitempty"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
}

func cmdReport(c *urfave.Context) error {
	cfg := getConfig(c)

	scopes, err := resolveScopes(c.String(scopeFlag.Name), cfg.Defaults)
	if err != nil {
		return err
	}

	outDir := c.String(outDirFlag.Name)
	if outDir == "" {
		outDir = cfg.Defaults.ReportDir
	}

	table, weights, err := data.LoadDataset(cfg.DB)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	if len(table.Studies()) == 0 {
		return errors.New("no dataset imported yet (run: qactl import)")
	}

	reports := runScopes(table, weights, scopes, outDir)

	if err := encode(reports); err != nil {
		return fmt.Errorf("error encoding reports: %w", err)
	}

	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}
	if failed == len(reports) {
		return fmt.Errorf("all %d scope(s) failed", failed)
	}
	return nil
}

// runScopes computes each scope concurrently; the aggregator is pure so
// the shared table needs no locking.
func runScopes(table *score.Table, weights score.Weights, scopes []score.Scope, outDir string) []*ScopeReport {
	reports := make([]*ScopeReport, len(scopes))

	var g errgroup.Group
	for i, sc := range scopes {
		g.Go(func() error {
			r := &ScopeReport{Scope: sc}
			reports[i] = r

			summaries, err := score.ComputeSummaries(table.Slice(sc), weights)
			if err != nil {
				slog.Error("scope computation failed", "scope", sc, "error", err)
				r.Error = err.Error()
				return nil
			}
			r.Summaries = summaries

			for _, s := range summaries {
				for _, w := range s.Warnings {
					slog.Warn("summary warning", "scope", sc, "study", s.Study, "warning", w)
				}
			}

			if outDir != "" {
				path, err := export.WriteReportCSV(outDir, sc, summaries)
				if err != nil {
					slog.Error("report file write failed", "scope", sc, "error", err)
					r.Error = err.Error()
					return nil
				}
				r.File = path
			}
			return nil
		})
	}
	// the workers report failures through ScopeReport.Error
	_ = g.Wait()

	return reports
}

func resolveScopes(val string, defaults *config.Config) ([]score.Scope, error) {
	if val == "" {
		if defaults != nil && len(defaults.Scopes) > 0 {
			scopes := make([]score.Scope, 0, len(defaults.Scopes))
			for _, s := range defaults.Scopes {
				sc, err := score.ParseScope(s)
				if err != nil {
					return nil, fmt.Errorf("config scopes: %w", err)
				}
				scopes = append(scopes, sc)
			}
			return scopes, nil
		}
		val = scopeAll
	}

	if val == scopeAll {
		return score.Scopes, nil
	}

	sc, err := score.ParseScope(val)
	if err != nil {
		return nil, err
	}
	return []score.Scope{sc}, nil
}
