package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"

	"github.com/qactl/qactl/pkg/data"
)

var (
	studyNameFlag = &urfave.StringFlag{
		Name:     "study",
		Usage:    "Study identifier (as imported)",
		Required: true,
	}

	queryCmd = &urfave.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "List imported studies, items, and raw scores",
		Subcommands: []*urfave.Command{
			{
				Name:    "studies",
				Usage:   "List studies with scored and missing item counts",
				Aliases: []string{"s"},
				Action:  cmdQueryStudies,
			},
			{
				Name:    "items",
				Usage:   "List instrument items with categories and weights",
				Aliases: []string{"i"},
				Action:  cmdQueryItems,
			},
			{
				Name:   "scores",
				Usage:  "Show one study's raw per-item scores (null = missing)",
				Action: cmdQueryScores,
				Flags: []urfave.Flag{
					studyNameFlag,
				},
			},
		},
	}
)

func cmdQueryStudies(c *urfave.Context) error {
	cfg := getConfig(c)

	list, err := data.GetStudies(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query studies: %w", err)
	}

	return encode(list)
}

func cmdQueryItems(c *urfave.Context) error {
	cfg := getConfig(c)

	list, err := data.GetItems(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query items: %w", err)
	}

	return encode(list)
}

func cmdQueryScores(c *urfave.Context) error {
	study := c.String(studyNameFlag.Name)
	if study == "" {
		return urfave.ShowSubcommandHelp(c)
	}

	cfg := getConfig(c)

	list, err := data.GetStudyScores(cfg.DB, study)
	if err != nil {
		return fmt.Errorf("failed to query scores: %w", err)
	}
	if list == nil {
		return fmt.Errorf("study %q not found in the imported dataset", study)
	}

	return encode(list)
}
