package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"

	"github.com/qactl/qactl/pkg/auth"
)

var (
	tokenFlag = &urfave.StringFlag{
		Name:  "token",
		Usage: "GitHub access token (read access to the dataset repository is enough)",
	}

	authCmd = &urfave.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Store the GitHub token used to fetch datasets from private repositories",
		Action:          cmdAuthSet,
		Flags: []urfave.Flag{
			tokenFlag,
		},
		Subcommands: []*urfave.Command{
			{
				Name:   "clear",
				Usage:  "Remove the stored token",
				Action: cmdAuthClear,
			},
		},
	}
)

func cmdAuthSet(c *urfave.Context) error {
	token := c.String(tokenFlag.Name)
	if token == "" {
		return urfave.ShowSubcommandHelp(c)
	}

	cfg := getConfig(c)
	if err := auth.SaveToken(cfg.HomeDir, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Println("Token saved to OS keychain")
	return nil
}

func cmdAuthClear(c *urfave.Context) error {
	cfg := getConfig(c)
	if err := auth.ClearToken(cfg.HomeDir); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}

	fmt.Println("Token removed")
	return nil
}
