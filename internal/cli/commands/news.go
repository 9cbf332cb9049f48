package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/ainewshub/newshub/internal/cli/catalog"
	"github.com/ainewshub/newshub/internal/cli/client"
)

// NewNewsCmd creates the news command group
func NewNewsCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Read the AI news feed",
	}

	cmd.AddCommand(newNewsListCmd(g))
	cmd.AddCommand(newNewsShowCmd(g))
	cmd.AddCommand(newNewsWatchCmd(g))

	return cmd
}

type newsFlags struct {
	query  client.NewsQuery
	filter catalog.NewsFilter
}

func (f *newsFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.query.ExcludeSocial, "no-social", false, "Leave out social media posts")
	cmd.Flags().StringVar(&f.query.Platform, "platform", "", "Only posts from this platform")
	cmd.Flags().StringVar(&f.filter.Category, "category", "", "Only this category")
	cmd.Flags().StringVar(&f.filter.Search, "search", "", "Search title, summary and source")
}

func (f *newsFlags) fetch(ctx context.Context, a *app) ([]client.NewsItem, error) {
	list, err := a.client.ListNews(ctx, f.query)
	if err != nil {
		return nil, apiErr("failed to load news", err)
	}
	return catalog.FilterNews(list.News, f.filter), nil
}

func newNewsListCmd(g *Globals) *cobra.Command {
	var flags newsFlags

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List news items",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			items, err := flags.fetch(cmd.Context(), a)
			if err != nil {
				return err
			}

			return a.render(items, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, "No news found.")
					return
				}
				printNewsTable(w, items)
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func printNewsTable(w io.Writer, items []client.NewsItem) {
	header(w, "ID", "TITLE", "SOURCE", "CATEGORY", "PUBLISHED")
	for _, n := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			n.ID,
			truncate(n.Title, 60),
			orDash(n.Source),
			orDash(n.Category),
			orDash(shortDate(n.PublishedAt)),
		)
	}
}

func newNewsShowCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a news item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			item, err := a.client.GetNews(cmd.Context(), args[0])
			if err != nil {
				return apiErr("failed to load news item", err)
			}

			return a.render(item, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n", item.Title)
				fmt.Fprintf(w, "Source:\t%s\n", orDash(item.Source))
				fmt.Fprintf(w, "Published:\t%s\n", orDash(item.PublishedAt))
				fmt.Fprintf(w, "URL:\t%s\n", orDash(item.URL))
				body := item.Content
				if body == "" {
					body = item.Summary
				}
				fmt.Fprintf(w, "\n%s\n", body)
			})
		},
	}
}

func newNewsWatchCmd(g *Globals) *cobra.Command {
	var flags newsFlags
	var schedule string
	var maxPolls int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the news feed and print new items as they appear",
		Long: `Poll the news feed and print new items as they appear.

The schedule accepts cron expressions and descriptors such as "@every 5m"
or "@hourly". Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &newsWatcher{app: a, flags: &flags, seen: make(map[client.FlexibleID]bool), maxPolls: maxPolls}
			return w.run(ctx, schedule)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&schedule, "schedule", "@every 5m", "Polling schedule")
	cmd.Flags().IntVar(&maxPolls, "max-polls", 0, "Stop after this many polls (0 runs until interrupted)")
	_ = cmd.Flags().MarkHidden("max-polls")

	return cmd
}

// newsWatcher prints items it has not printed before
type newsWatcher struct {
	app      *app
	flags    *newsFlags
	maxPolls int

	mu    sync.Mutex
	seen  map[client.FlexibleID]bool
	polls int
}

func (w *newsWatcher) run(ctx context.Context, schedule string) error {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if _, err := scheduler.AddFunc(schedule, func() { w.poll(ctx, cancel) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	fmt.Fprintf(w.app.errOut, "Watching %s news (%s), press Ctrl+C to stop\n", w.app.serverLabel(), schedule)

	w.poll(ctx, cancel)
	if ctx.Err() != nil {
		return nil
	}

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()

	return nil
}

func (w *newsWatcher) poll(ctx context.Context, cancel context.CancelFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	items, err := w.flags.fetch(ctx, w.app)
	if err != nil {
		w.app.logger.Warn().Err(err).Msg("News poll failed")
		fmt.Fprintln(w.app.errOut, err)
	} else {
		var fresh []client.NewsItem
		for _, item := range items {
			key := item.ID
			if key == "" {
				key = client.FlexibleID(item.URL + "|" + item.Title)
			}
			if !w.seen[key] {
				w.seen[key] = true
				fresh = append(fresh, item)
			}
		}
		if len(fresh) > 0 {
			if err := w.app.render(fresh, func(out io.Writer) { printNewsTable(out, fresh) }); err != nil {
				w.app.logger.Error().Err(err).Msg("Failed to print news")
			}
		}
	}

	w.polls++
	if w.maxPolls > 0 && w.polls >= w.maxPolls {
		cancel()
	}
}
