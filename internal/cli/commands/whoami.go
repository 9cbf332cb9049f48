package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/ainewshub/newshub/internal/cli/client"
)

// whoami is the machine-readable shape of the command output
type whoami struct {
	Server    string      `json:"server"`
	Status    string      `json:"status"`
	User      client.User `json:"user,omitempty"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Verify the stored session and show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			return runWhoami(cmd, a)
		},
	}
}

func runWhoami(cmd *cobra.Command, a *app) error {
	token, _ := a.store.Token()
	if token == "" {
		return errNotLoggedIn
	}

	// CheckAuth logs out on failure, a 401 also prints the login hint
	if err := a.store.CheckAuth(cmd.Context()); err != nil {
		return apiErr("session check failed", err)
	}

	state := a.store.State()
	result := whoami{
		Server:    a.baseURL,
		Status:    string(state.Status()),
		User:      state.User,
		ExpiresAt: tokenExpiry(token),
	}

	return a.render(result, func(w io.Writer) {
		fmt.Fprintf(w, "Server:\t%s\n", a.serverLabel())
		fmt.Fprintf(w, "User:\t%s\n", orDash(state.User.Username()))
		fmt.Fprintf(w, "Email:\t%s\n", orDash(state.User.Email()))
		fmt.Fprintf(w, "Level:\t%d\n", state.User.Level())
		fmt.Fprintf(w, "Experience:\t%d\n", state.User.Experience())
		fmt.Fprintf(w, "Streak:\t%d\n", state.User.Streak())
		if result.ExpiresAt != nil {
			fmt.Fprintf(w, "Token expires:\t%s\n", result.ExpiresAt.Local().Format(time.RFC1123))
		}
	})
}

// tokenExpiry reads the exp claim without verifying the signature. The
// token is opaque to the client; this is only for display.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
