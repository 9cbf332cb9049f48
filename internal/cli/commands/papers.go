package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ainewshub/newshub/internal/cli/catalog"
	"github.com/ainewshub/newshub/internal/cli/client"
)

// NewPapersCmd creates the papers command
func NewPapersCmd(g *Globals) *cobra.Command {
	var query client.PaperQuery
	var filter catalog.PaperFilter
	var page, perPage int
	var refresh bool

	cmd := &cobra.Command{
		Use:   "papers",
		Short: "List research papers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			if refresh {
				if err := a.client.RefreshPapers(cmd.Context()); err != nil {
					return apiErr("failed to refresh papers", err)
				}
			}

			list, err := a.client.ListPapers(cmd.Context(), query)
			if err != nil {
				return apiErr("failed to list papers", err)
			}

			// Older backends ignore the query parameters
			filter.Category, filter.Conference = query.Category, query.Conference
			papers := catalog.FilterPapers(list.Papers, filter)
			window := catalog.Paginate(len(papers), page, perPage)
			papers = papers[window.Start:window.End]

			return a.render(papers, func(w io.Writer) {
				fmt.Fprintf(w, "%d papers, %d trending\n\n", len(list.Papers), catalog.CountTrending(list.Papers))
				if len(papers) == 0 {
					fmt.Fprintln(w, "No papers match the filters.")
					return
				}
				header(w, "ID", "TITLE", "AUTHORS", "CONFERENCE", "CATEGORY", "")
				for _, p := range papers {
					trending := ""
					if p.Trending {
						trending = "🔥"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						p.ID,
						truncate(p.Title, 50),
						truncate(strings.Join(p.Authors, ", "), 30),
						orDash(p.Conference),
						orDash(p.Category),
						trending,
					)
				}
				fmt.Fprintf(w, "\nPage %d of %d\n", window.Current, window.Pages)
			})
		},
	}

	cmd.Flags().StringVar(&query.Category, "category", "", "Category to request from the server")
	cmd.Flags().StringVar(&query.Conference, "conference", "", "Conference to request from the server")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "Maximum papers to fetch")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search title and authors")
	cmd.Flags().BoolVar(&filter.TrendingOnly, "trending", false, "Only trending papers")
	cmd.Flags().IntVar(&page, "page", 1, "Page to show")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "Papers per page")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ask the server to refresh its paper cache first")

	return cmd
}

// NewAnalyzePaperCmd creates the analyze-paper command
func NewAnalyzePaperCmd(g *Globals) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "analyze-paper <arxiv-id>",
		Short: "Run the AI interpretation of an arXiv paper (can take minutes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintf(a.errOut, "Analyzing arXiv:%s (%s mode), this can take several minutes...\n", args[0], mode)

			analysis, err := a.client.AnalyzeArxiv(cmd.Context(), args[0], mode)
			if err != nil {
				return apiErr("paper analysis failed", err)
			}

			return a.render(analysis.Data, func(w io.Writer) {
				printAnalysis(w, analysis.Data)
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "summary", "Analysis mode (summary, deep)")

	return cmd
}

// printAnalysis prints the text fields of an analysis payload. Anything
// else is shown as indented JSON.
func printAnalysis(w io.Writer, data json.RawMessage) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err == nil {
		for _, key := range []string{"title", "summary", "analysis", "content"} {
			if s, ok := fields[key].(string); ok && s != "" {
				fmt.Fprintf(w, "%s\n\n", s)
			}
		}
		if _, ok := fields["analysis"]; ok {
			return
		}
		if _, ok := fields["content"]; ok {
			return
		}
	}

	var indented strings.Builder
	enc := json.NewEncoder(&indented)
	enc.SetIndent("", "  ")
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		fmt.Fprintln(w, string(data))
		return
	}
	_ = enc.Encode(v)
	fmt.Fprint(w, indented.String())
}
