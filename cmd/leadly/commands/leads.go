package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/extractor/reddit"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

const descriptionWidth = 60

// LeadsAction prints a page of stored leads.
func LeadsAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := usecase.NewListLeadsUsecase(app.Leads).Execute(ctx, domain.LeadFilter{
		Limit:     cmd.Int("limit"),
		Offset:    cmd.Int("offset"),
		Category:  domain.Category(strings.ToLower(cmd.String("category"))),
		Subreddit: cmd.String("subreddit"),
	})
	if err != nil {
		return err
	}

	printLeads(cmd.Root().Writer, resp)
	return nil
}

func printLeads(w io.Writer, resp *domain.LeadsResponse) {
	if len(resp.Leads) == 0 {
		fmt.Fprintln(w, "No leads stored.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSUBREDDIT\tKIND\tDESCRIPTION\tURL")
	for _, l := range resp.Leads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			l.Category, l.Subreddit, l.Kind, reddit.Shorten(l.Description, descriptionWidth), l.URL)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "Showing %d-%d of %d\n", resp.Offset+1, resp.Offset+len(resp.Leads), resp.Total)
}

// printVerdicts prints the leads of a finished scan grouped hot, cold, neutral.
func printVerdicts(w io.Writer, verdicts map[string]domain.Verdict) {
	if len(verdicts) == 0 {
		fmt.Fprintln(w, "No leads found.")
		return
	}

	ids := make([]string, 0, len(verdicts))
	for id := range verdicts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, category := range []domain.Category{domain.CategoryHot, domain.CategoryCold, domain.CategoryNeutral} {
		var lines []string
		for _, id := range ids {
			if v := verdicts[id]; v.Category == category {
				lines = append(lines, fmt.Sprintf("  %s  %s", id, v.Description))
			}
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d)\n%s\n", strings.ToUpper(string(category)), len(lines), strings.Join(lines, "\n"))
	}
}
