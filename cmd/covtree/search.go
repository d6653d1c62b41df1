package main

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/covtree/pkg/loader"
	"github.com/vanderheijden86/covtree/pkg/model"
	"github.com/vanderheijden86/covtree/pkg/tree"
)

// searchHit is one matching node in search output.
type searchHit struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Coverage string `json:"coverage,omitempty"`
	URL      string `json:"url,omitempty"`
	Result   bool   `json:"result"` // Top-level result rather than folded into one
}

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query> [dataset]",
		Short: "Print the nodes matching a tree search",
		Long: `Runs the same search as the report's search box. A query containing a dot
matches node ids, anything else matches labels; matching is case-sensitive.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd, args)
		},
	}
	cmd.Flags().Bool("json", false, "print matches as JSON")
	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, args []string) error {
	path, err := a.resolveDataset(args[1:])
	if err != nil {
		return err
	}
	ds, err := loader.LoadDataset(path)
	if err != nil {
		return err
	}
	t, err := tree.FromDataset(ds, nil, nil)
	if err != nil {
		return err
	}

	res := t.Search(args[0])
	results := make(map[string]bool, len(res.Results))
	for _, id := range res.Results {
		results[id] = true
	}

	hits := []searchHit{}
	t.Iterate(func(n, _ *tree.Node) bool {
		if t.IsMatch(n.ID) {
			hits = append(hits, searchHit{
				ID:       n.ID,
				Label:    model.PlainText(n.Text),
				Coverage: model.PlainText(n.Coverage),
				URL:      t.LinkURL(n),
				Result:   results[n.ID],
			})
		}
		return true
	})

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Fprintln(out, "No results found")
		return nil
	}
	for _, h := range hits {
		marker := " "
		if h.Result {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s  %s\n", marker, h.ID, strings.TrimSpace(h.Coverage))
	}
	fmt.Fprintf(out, "%d matches, %d results\n", res.Total, len(res.Results))
	return nil
}
