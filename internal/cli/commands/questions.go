package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ainewshub/newshub/internal/cli/catalog"
	"github.com/ainewshub/newshub/internal/cli/client"
)

// NewQuestionsCmd creates the questions command group
func NewQuestionsCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "questions",
		Aliases: []string{"q"},
		Short:   "Browse and solve coding questions",
	}

	cmd.AddCommand(newQuestionsListCmd(g))
	cmd.AddCommand(newQuestionsShowCmd(g))
	cmd.AddCommand(newQuestionsHintsCmd(g))
	cmd.AddCommand(newQuestionsSubmitCmd(g))
	cmd.AddCommand(newQuestionsAnalyzeCmd(g))

	return cmd
}

func newQuestionsListCmd(g *Globals) *cobra.Command {
	var filter client.QuestionFilter
	var search string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			page, err := a.client.ListQuestions(cmd.Context(), filter)
			if err != nil {
				return apiErr("failed to list questions", err)
			}

			questions := catalog.SearchQuestions(page.Questions, search)
			return a.render(questions, func(w io.Writer) {
				if len(questions) == 0 {
					fmt.Fprintln(w, "No questions found.")
					return
				}
				header(w, "ID", "TITLE", "DIFFICULTY", "CATEGORY", "POINTS")
				for _, q := range questions {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", q.ID, truncate(q.Title, 50), q.Difficulty, q.Category, q.Points)
				}
				fmt.Fprintf(w, "\nPage %d of %d (%d questions)\n", page.Pagination.Current, page.Pagination.Pages, page.Pagination.Total)
			})
		},
	}

	cmd.Flags().IntVar(&filter.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 12, "Questions per page")
	cmd.Flags().StringVar(&filter.Difficulty, "difficulty", "", "Filter by difficulty (easy, medium, hard)")
	cmd.Flags().StringVar(&filter.Category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&filter.Language, "language", "", "Filter by language")
	cmd.Flags().StringVar(&search, "search", "", "Search title and description within the page")

	return cmd
}

func newQuestionsShowCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			q, err := a.client.GetQuestion(cmd.Context(), args[0])
			if err != nil {
				return apiErr("failed to get question", err)
			}

			return a.render(q, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n", q.Title)
				fmt.Fprintf(w, "Difficulty:\t%s\n", orDash(q.Difficulty))
				fmt.Fprintf(w, "Category:\t%s\n", orDash(q.Category))
				fmt.Fprintf(w, "Points:\t%d\n", q.Points)
				if len(q.Tags) > 0 {
					fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(q.Tags, ", "))
				}
				fmt.Fprintf(w, "\n%s\n", q.Description)
				if q.StarterCode != "" {
					fmt.Fprintf(w, "\nStarter code:\n%s\n", q.StarterCode)
				}
			})
		},
	}
}

func newQuestionsHintsCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "hints <id>",
		Short: "Show the hints for a question (requires login)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireLogin(); err != nil {
				return err
			}

			hints, err := a.client.GetHints(cmd.Context(), args[0])
			if err != nil {
				return apiErr("failed to get hints", err)
			}

			return a.render(hints, func(w io.Writer) {
				if len(hints) == 0 {
					fmt.Fprintln(w, "No hints for this question.")
					return
				}
				for i, hint := range hints {
					fmt.Fprintf(w, "%d.\t%s\n", i+1, hint)
				}
			})
		},
	}
}

func newQuestionsSubmitCmd(g *Globals) *cobra.Command {
	var file, language string

	cmd := &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit a solution for grading (requires login)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireLogin(); err != nil {
				return err
			}

			code, err := readCode(cmd, file)
			if err != nil {
				return err
			}

			result, err := a.client.SubmitAnswer(cmd.Context(), args[0], code, language)
			if err != nil {
				return apiErr("submission failed", err)
			}

			if result.Success {
				applySubmission(a, result)
			}

			return a.render(result, func(w io.Writer) {
				if !result.Success {
					fmt.Fprintf(w, "✗ %s\n", orDash(result.Message))
					if result.PassRate > 0 {
						fmt.Fprintf(w, "  Passed:\t%.0f%%\n", result.PassRate*100)
					}
					for _, hint := range result.Hints {
						fmt.Fprintf(w, "  Hint:\t%s\n", hint)
					}
					return
				}
				fmt.Fprintf(w, "✓ %s\n", orDash(result.Message))
				fmt.Fprintf(w, "  Score:\t%d\n", result.Score)
				fmt.Fprintf(w, "  Experience:\t+%d\n", result.ExperienceGained)
				if result.LeveledUp {
					fmt.Fprintf(w, "  Level up!\tnow level %d\n", result.NewLevel)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "File with the solution ('-' reads stdin)")
	cmd.Flags().StringVar(&language, "language", "javascript", "Solution language")

	return cmd
}

// applySubmission folds a successful grading into the stored user
func applySubmission(a *app, result *client.SubmitResult) {
	user := a.store.State().User
	partial := client.User{
		"experience":  user.Experience() + result.ExperienceGained,
		"totalSolved": user.TotalSolved() + 1,
	}
	if result.LeveledUp && result.NewLevel > 0 {
		partial["level"] = result.NewLevel
	}
	a.store.UpdateUser(partial)
}

func newQuestionsAnalyzeCmd(g *Globals) *cobra.Command {
	var file, title, language string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Ask for an AI review of a solution draft (requires login)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireLogin(); err != nil {
				return err
			}

			code, err := readCode(cmd, file)
			if err != nil {
				return err
			}

			analysis, err := a.client.AnalyzeCode(cmd.Context(), code, title, language)
			if err != nil {
				return apiErr("code analysis failed", err)
			}

			return a.render(analysis, func(w io.Writer) {
				fmt.Fprintln(w, analysis.Analysis)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "File with the code ('-' reads stdin)")
	cmd.Flags().StringVar(&title, "title", "", "Question title for context")
	cmd.Flags().StringVar(&language, "language", "javascript", "Code language")

	return cmd
}

func readCode(cmd *cobra.Command, file string) (string, error) {
	var data []byte
	var err error
	if file == "" || file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read code: %w", err)
	}

	code := string(data)
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("no code to submit")
	}
	return code, nil
}
