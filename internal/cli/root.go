package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ainewshub/newshub/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the newshub command tree
func NewRootCmd() *cobra.Command {
	globals := &commands.Globals{}

	rootCmd := &cobra.Command{
		Use:   "newshub",
		Short: "AI News Hub - news, papers and coding practice from the terminal",
		Long: `AI News Hub CLI - read AI news, browse research papers and blogs,
and practice coding questions against an AI News Hub backend.

Your session is stored per server in the system keyring (or a local file
with NEWSHUB_STORAGE=file) and is cleared automatically when the server
rejects it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.Server, "server", "", "Server alias from newshub.json")
	flags.StringVar(&globals.APIURL, "api-url", "", "Backend API base URL (overrides newshub.json and NEWSHUB_API_URL)")
	flags.StringVarP(&globals.Output, "output", "o", "", "Output format: table, json or yaml")
	flags.BoolVarP(&globals.Verbose, "verbose", "v", false, "Log HTTP requests to stderr")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newshub version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewLoginCmd(globals))
	rootCmd.AddCommand(commands.NewRegisterCmd(globals))
	rootCmd.AddCommand(commands.NewLogoutCmd(globals))
	rootCmd.AddCommand(commands.NewWhoamiCmd(globals))
	rootCmd.AddCommand(commands.NewQuestionsCmd(globals))
	rootCmd.AddCommand(commands.NewPapersCmd(globals))
	rootCmd.AddCommand(commands.NewAnalyzePaperCmd(globals))
	rootCmd.AddCommand(commands.NewBlogsCmd(globals))
	rootCmd.AddCommand(commands.NewNewsCmd(globals))
	rootCmd.AddCommand(commands.NewLeaderboardCmd(globals))
	rootCmd.AddCommand(commands.NewStatsCmd(globals))
	rootCmd.AddCommand(commands.NewAPICmd(globals))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
