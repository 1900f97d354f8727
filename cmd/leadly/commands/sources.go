package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Harsh-BH/Leadly/internal/usecase"
)

var errNameRequired = errors.New("subreddit name is required")

// SourcesListAction prints the active subreddits.
func SourcesListAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := usecase.NewManageSourcesUsecase(app.Sources, app.Logger).List(ctx)
	if err != nil {
		return err
	}
	for _, name := range resp.Subreddits {
		fmt.Fprintln(cmd.Root().Writer, name)
	}
	return nil
}

// SourcesAddAction adds the subreddit named by the first argument.
func SourcesAddAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errNameRequired
	}

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	added, err := usecase.NewManageSourcesUsecase(app.Sources, app.Logger).Add(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Added r/%s\n", added)
	return nil
}

// SourcesRemoveAction stops scanning the subreddit named by the first argument.
func SourcesRemoveAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errNameRequired
	}

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := usecase.NewManageSourcesUsecase(app.Sources, app.Logger).Remove(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Removed r/%s\n", name)
	return nil
}
