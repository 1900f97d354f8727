package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Harsh-BH/Leadly/internal/usecase"
)

// DBClearAction deletes every stored lead and subreddit after confirmation.
func DBClearAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	if !cmd.Bool("yes") {
		in := cmd.Root().Reader
		if in == nil {
			in = os.Stdin
		}
		if !confirm(in, out, "This deletes every stored lead and subreddit. Type 'yes' to continue: ") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	leads, sources, err := usecase.NewClearDatabaseUsecase(app.Leads, app.Sources, app.Logger).Execute(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %d leads and %d subreddits.\n", leads, sources)
	return nil
}

func confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}
