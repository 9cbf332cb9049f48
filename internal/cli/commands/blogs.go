package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ainewshub/newshub/internal/cli/catalog"
	"github.com/ainewshub/newshub/internal/cli/client"
)

// NewBlogsCmd creates the blogs command
func NewBlogsCmd(g *Globals) *cobra.Command {
	var query client.BlogQuery
	var filter catalog.BlogFilter
	var facets, refresh bool

	cmd := &cobra.Command{
		Use:   "blogs",
		Short: "List aggregated AI blog articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			if refresh {
				if err := a.client.RefreshBlogs(cmd.Context()); err != nil {
					return apiErr("failed to refresh blogs", err)
				}
			}

			list, err := a.client.ListBlogs(cmd.Context(), query)
			if err != nil {
				return apiErr("failed to list blogs", err)
			}

			if facets {
				f := catalog.BlogFacets(list.Articles)
				return a.render(f, func(w io.Writer) {
					fmt.Fprintf(w, "Authors:\t%s\n", strings.Join(f.Authors, ", "))
					fmt.Fprintf(w, "Companies:\t%s\n", strings.Join(f.Companies, ", "))
					fmt.Fprintf(w, "Topics:\t%s\n", strings.Join(f.Topics, ", "))
				})
			}

			filter.Category = query.Category
			articles := catalog.FilterBlogs(list.Articles, filter)

			return a.render(articles, func(w io.Writer) {
				if len(articles) == 0 {
					fmt.Fprintln(w, "No articles match the filters.")
					return
				}
				header(w, "TITLE", "AUTHOR", "COMPANY", "PUBLISHED", "URL")
				for _, article := range articles {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						truncate(article.Title, 50),
						orDash(article.Author),
						orDash(article.Company),
						orDash(shortDate(article.PublishedAt)),
						article.URL,
					)
				}
				fmt.Fprintf(w, "\nFound %d articles\n", len(articles))
			})
		},
	}

	cmd.Flags().StringVar(&query.Category, "category", "", "Category")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "Maximum articles to fetch")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search title, author and summary")
	cmd.Flags().StringVar(&filter.Author, "author", "", "Only this author")
	cmd.Flags().StringVar(&filter.Company, "company", "", "Only this company")
	cmd.Flags().StringVar(&filter.Topic, "topic", "", "Only articles with this topic")
	cmd.Flags().BoolVar(&facets, "facets", false, "List the available authors, companies and topics instead")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ask the server to re-crawl blogs first")

	return cmd
}

// shortDate keeps the date part of an ISO timestamp
func shortDate(s string) string {
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		return s[:10]
	}
	return s
}
