package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ainewshub/newshub/internal/cli/client"
)

// NewLeaderboardCmd creates the leaderboard command
func NewLeaderboardCmd(g *Globals) *cobra.Command {
	var by string
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top users",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch by {
			case client.LeaderboardByLevel, client.LeaderboardByExperience, client.LeaderboardBySolved, client.LeaderboardByStreak:
			default:
				return fmt.Errorf("invalid --by '%s', must be one of: level, experience, solved, streak", by)
			}

			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.client.Leaderboard(cmd.Context(), by, limit)
			if err != nil {
				return apiErr("failed to load leaderboard", err)
			}

			me := a.store.State().User.Username()

			return a.render(entries, func(w io.Writer) {
				if len(entries) == 0 {
					fmt.Fprintln(w, "Nobody on the leaderboard yet.")
					return
				}
				header(w, "#", "USER", "LEVEL", "EXPERIENCE", "SOLVED", "STREAK")
				for i, e := range entries {
					name := e.Username
					if me != "" && name == me {
						name += " (you)"
					}
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\n", i+1, name, e.Level, e.Experience, e.TotalSolved, e.Streak)
				}
			})
		},
	}

	cmd.Flags().StringVar(&by, "by", client.LeaderboardByLevel, "Ranking: level, experience, solved or streak")
	cmd.Flags().IntVar(&limit, "limit", 50, "Number of users")

	return cmd
}

// statsView is the machine-readable shape of the stats command
type statsView struct {
	Stats        *client.UserStats    `json:"stats"`
	Achievements []client.Achievement `json:"achievements,omitempty"`
	Progress     []client.ProgressDay `json:"progress,omitempty"`
}

// NewStatsCmd creates the stats command
func NewStatsCmd(g *Globals) *cobra.Command {
	var achievements bool
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show your progress (requires login)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireLogin(); err != nil {
				return err
			}

			view := statsView{}
			view.Stats, err = a.client.Stats(cmd.Context())
			if err != nil {
				return apiErr("failed to load stats", err)
			}

			// Keep the stored profile in step with the server
			a.store.UpdateUser(client.User{
				"level":       view.Stats.Level,
				"experience":  view.Stats.Experience,
				"totalSolved": view.Stats.TotalSolved,
				"streak":      view.Stats.Streak,
			})

			if achievements {
				view.Achievements, err = a.client.Achievements(cmd.Context())
				if err != nil {
					return apiErr("failed to load achievements", err)
				}
			}
			if days > 0 {
				view.Progress, err = a.client.Progress(cmd.Context(), days)
				if err != nil {
					return apiErr("failed to load progress", err)
				}
			}

			return a.render(view, func(w io.Writer) {
				printStats(w, view)
			})
		},
	}

	cmd.Flags().BoolVar(&achievements, "achievements", false, "Include achievements")
	cmd.Flags().IntVar(&days, "progress", 0, "Include per-day progress for the last N days")

	return cmd
}

func printStats(w io.Writer, view statsView) {
	s := view.Stats
	fmt.Fprintf(w, "Level:\t%d\n", s.Level)
	fmt.Fprintf(w, "Experience:\t%d\n", s.Experience)
	fmt.Fprintf(w, "Solved:\t%d\n", s.TotalSolved)
	fmt.Fprintf(w, "Streak:\t%d days\n", s.Streak)

	for _, section := range []struct {
		title  string
		counts map[string]int
	}{
		{"By difficulty", s.DifficultyBreakdown},
		{"By category", s.CategoryBreakdown},
	} {
		if len(section.counts) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", section.title)
		keys := make([]string, 0, len(section.counts))
		for k := range section.counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s\t%d\n", k, section.counts[k])
		}
	}

	if len(view.Achievements) > 0 {
		fmt.Fprintln(w, "\nAchievements:")
		for _, ach := range view.Achievements {
			mark := " "
			if ach.Unlocked {
				mark = "✓"
			}
			fmt.Fprintf(w, "  %s %s\t%s\n", mark, ach.Name, ach.Description)
		}
	}

	if len(view.Progress) > 0 {
		fmt.Fprintln(w, "\nProgress:")
		for _, day := range view.Progress {
			fmt.Fprintf(w, "  %s\t%d solved\t+%d xp\n", day.Date, day.Solved, day.Experience)
		}
	}
}
