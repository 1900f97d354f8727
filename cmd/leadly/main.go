package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/Harsh-BH/Leadly/cmd/leadly/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "leadly",
		Usage: "Find and manage Reddit leads from the command line",
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Usage:     "Run a lead search in the foreground and print progress",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Service description leads are matched against",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Subreddit to scan (repeatable, defaults to the active subreddits)",
					},
				},
				Action: commands.ScanAction,
			},
			{
				Name:  "leads",
				Usage: "List stored leads",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of leads",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Number of leads to skip",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Filter by category (hot/cold/neutral)",
					},
					&cli.StringFlag{
						Name:  "subreddit",
						Usage: "Filter by subreddit",
					},
				},
				Action: commands.LeadsAction,
			},
			{
				Name:  "sources",
				Usage: "Manage the subreddits covered by scheduled scans",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "Show the active subreddits",
						Action: commands.SourcesListAction,
					},
					{
						Name:      "add",
						Usage:     "Add a subreddit",
						ArgsUsage: "<name>",
						Action:    commands.SourcesAddAction,
					},
					{
						Name:      "remove",
						Usage:     "Stop scanning a subreddit",
						ArgsUsage: "<name>",
						Action:    commands.SourcesRemoveAction,
					},
				},
			},
			{
				Name:  "db",
				Usage: "Database maintenance",
				Commands: []*cli.Command{
					{
						Name:  "clear",
						Usage: "Delete every stored lead and subreddit",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "yes",
								Usage: "Skip the confirmation prompt",
							},
						},
						Action: commands.DBClearAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "leadly:", err)
		os.Exit(1)
	}
}
