package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ainewshub/newshub/internal/cli/session"
)

// NewAPICmd creates the api command
func NewAPICmd(g *Globals) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "api <method> <path>",
		Short: "Send a raw authenticated request to the backend",
		Long: `Send a raw authenticated request to the backend.

The path is relative to the API base URL. The stored session token is
attached when present, and a 401 clears it like any other command.

Examples:
  $ newshub api GET /auth/me
  $ newshub api POST /ai/analyze-code --data '{"code":"x","language":"go"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			return runAPI(cmd, a, args[0], args[1], data)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")

	return cmd
}

func runAPI(cmd *cobra.Command, a *app, method, path, data string) error {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return fmt.Errorf("unsupported method %s", method)
	}

	var body any
	if data != "" {
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("--data is not valid JSON")
		}
		body = json.RawMessage(data)
	}

	// Read the token from storage on every request
	a.client.SetTokenSource(session.PersistedTokenSource{Storage: a.storage, Logger: a.logger})

	raw, err := a.client.DoRaw(cmd.Context(), method, path, body)
	if err != nil {
		return apiErr(fmt.Sprintf("%s %s failed", method, path), err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if !json.Valid(raw) {
		_, err := fmt.Fprintln(a.out, string(raw))
		return err
	}

	if a.format == formatYAML {
		return writeYAML(a.out, json.RawMessage(raw))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, pretty.String())
	return err
}
