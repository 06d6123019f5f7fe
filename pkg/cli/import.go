package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	urfave "github.com/urfave/cli/v2"

	"github.com/qactl/qactl/pkg/auth"
	"github.com/qactl/qactl/pkg/data"
	"github.com/qactl/qactl/pkg/net"
	"github.com/qactl/qactl/pkg/score"
	"github.com/qactl/qactl/pkg/sheet"
)

var (
	filePathFlag = &urfave.StringFlag{
		Name:     "path",
		Usage:    "Path to the assessment spreadsheet (CSV)",
		Required: true,
	}

	urlFlag = &urfave.StringFlag{
		Name:     "url",
		Usage:    "URL of the assessment spreadsheet (CSV)",
		Required: true,
	}

	ghRepoFlag = &urfave.StringFlag{
		Name:     "repo",
		Usage:    "GitHub repository holding the dataset (owner/name)",
		Required: true,
	}

	ghPathFlag = &urfave.StringFlag{
		Name:     "path",
		Usage:    "Path of the spreadsheet within the repository",
		Required: true,
	}

	ghRefFlag = &urfave.StringFlag{
		Name:  "ref",
		Usage: "Git ref to fetch (optional, defaults to the default branch)",
	}

	importCmd = &urfave.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Import the assessment spreadsheet (replaces any previously imported dataset)",
		UsageText: `qactl import file --path scores.csv
   qactl import url --url https://example.org/data/scores.csv
   qactl import github --repo acme/ml-qa-review --path data/scores.csv --ref v1.0.2`,
		Subcommands: []*urfave.Command{
			{
				Name:   "file",
				Usage:  "Import from a local CSV file",
				Action: cmdImportFile,
				Flags:  []urfave.Flag{filePathFlag},
			},
			{
				Name:   "url",
				Usage:  "Import from an HTTP(S) URL",
				Action: cmdImportURL,
				Flags:  []urfave.Flag{urlFlag},
			},
			{
				Name:   "github",
				Usage:  "Import from a GitHub repository (uses the stored token when present)",
				Action: cmdImportGitHub,
				Flags:  []urfave.Flag{ghRepoFlag, ghPathFlag, ghRefFlag},
			},
		},
	}
)

// ImportResult is the summary printed after a successful import.
type ImportResult struct {
	Source         string `json:"source" yaml:"source"`
	Studies        int    `json:"studies" yaml:"studies"`
	Items          int    `json:"items" yaml:"items"`
	MethodsItems   int    `json:"methods_items" yaml:"methodsItems"`
	ReportingItems int    `json:"reporting_items" yaml:"reportingItems"`
	MissingScores  int    `json:"missing_scores" yaml:"missingScores"`
	Duration       string `json:"duration" yaml:"duration"`
}

func cmdImportFile(c *urfave.Context) error {
	start := time.Now()
	path := c.String(filePathFlag.Name)

	d, err := sheet.ParseFile(path)
	if err != nil {
		return err
	}

	return storeDataset(c, d, path, start)
}

func cmdImportURL(c *urfave.Context) error {
	start := time.Now()
	url := c.String(urlFlag.Name)

	slog.Debug("fetching dataset", "url", url)
	b, err := net.Fetch(url)
	if err != nil {
		return fmt.Errorf("fetching dataset: %w", err)
	}

	d, err := sheet.Parse(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("parsing dataset from %s: %w", url, err)
	}

	return storeDataset(c, d, url, start)
}

func cmdImportGitHub(c *urfave.Context) error {
	start := time.Now()
	repo := c.String(ghRepoFlag.Name)
	path := c.String(ghPathFlag.Name)
	ref := c.String(ghRefFlag.Name)

	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return fmt.Errorf("invalid repository %q (expected owner/name)", repo)
	}

	cfg := getConfig(c)
	token, err := auth.GetToken(cfg.HomeDir)
	if err != nil {
		return fmt.Errorf("reading stored token: %w", err)
	}

	client := net.GetHTTPClient()
	if token != "" {
		client = net.GetOAuthClient(c.Context, token)
	}

	slog.Debug("fetching dataset from github", "repo", repo, "path", path, "ref", ref)
	b, err := net.FetchGitHubFile(c.Context, client, owner, name, path, ref)
	if err != nil {
		return fmt.Errorf("fetching dataset: %w", err)
	}

	d, err := sheet.Parse(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("parsing dataset from %s/%s: %w", repo, path, err)
	}

	return storeDataset(c, d, fmt.Sprintf("github.com/%s/%s", repo, path), start)
}

func storeDataset(c *urfave.Context, d *sheet.Dataset, source string, start time.Time) error {
	cfg := getConfig(c)

	if err := data.ReplaceDataset(cfg.DB, d.Table, d.Weights); err != nil {
		return fmt.Errorf("storing dataset: %w", err)
	}

	res := &ImportResult{
		Source:   source,
		Studies:  len(d.Table.Studies()),
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}
	for _, it := range d.Table.Items() {
		res.Items++
		if it.Category == score.CategoryMethods {
			res.MethodsItems++
		} else {
			res.ReportingItems++
		}
	}
	for _, study := range d.Table.Studies() {
		res.MissingScores += d.Table.MissingCount(study)
	}

	slog.Debug("dataset imported",
		"source", source,
		"studies", res.Studies,
		"items", res.Items,
	)

	return encode(res)
}
