package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ainewshub/newshub/internal/cli/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd(g *Globals) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to AI News Hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			return runLogin(cmd, a, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set NEWSHUB_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set NEWSHUB_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, a *app, email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("NEWSHUB_EMAIL")
	}
	if password == "" {
		password = os.Getenv("NEWSHUB_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or NEWSHUB_EMAIL env var)")
	}

	password, err := readPassword(cmd, password, "NEWSHUB_PASSWORD")
	if err != nil {
		return err
	}

	// A rejected login is reported below, not as an expired session
	a.hint.disabled = true

	fmt.Fprintf(a.out, "Logging in to %s...\n", a.serverLabel())

	result := a.store.Login(cmd.Context(), email, password)
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Message)
	}

	printWelcome(a.out, a.store.State())
	return nil
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(g *Globals) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an AI News Hub account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			return runRegister(cmd, a, username, email, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runRegister(cmd *cobra.Command, a *app, username, email, password string) error {
	if username == "" || email == "" {
		return fmt.Errorf("--username and --email are required")
	}

	password, err := readPassword(cmd, password, "--password")
	if err != nil {
		return err
	}

	a.hint.disabled = true

	fmt.Fprintf(a.out, "Registering %s on %s...\n", username, a.serverLabel())

	result := a.store.Register(cmd.Context(), username, email, password)
	if !result.Success {
		return fmt.Errorf("registration failed: %s", result.Message)
	}

	printWelcome(a.out, a.store.State())
	return nil
}

// readPassword returns password, or prompts for it when stdin is a terminal
func readPassword(cmd *cobra.Command, password, source string) (string, error) {
	if password != "" {
		return password, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
	} else if f, ok := in.(*os.File); !ok || f != os.Stdin {
		// Piped input from tests and scripts
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		return "", fmt.Errorf("password is required in non-interactive mode (use %s)", source)
	}
	return password, nil
}

func printWelcome(w io.Writer, state session.State) {
	fmt.Fprintln(w, "✓ Login successful!")
	fmt.Fprintf(w, "  User: %s (%s)\n", state.User.Username(), state.User.Email())
	if level := state.User.Level(); level > 0 {
		fmt.Fprintf(w, "  Level: %d\n", level)
	}
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session for the current server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			wasLoggedIn := a.store.State().Token != ""
			a.store.Logout()

			if wasLoggedIn {
				fmt.Fprintf(a.out, "✓ Logged out of %s\n", a.serverLabel())
			} else {
				fmt.Fprintln(a.out, "Not logged in.")
			}
			return nil
		},
	}
}
