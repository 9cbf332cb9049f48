package commands

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ainewshub/newshub/internal/cli/client"
	"github.com/ainewshub/newshub/internal/cli/config"
	"github.com/ainewshub/newshub/internal/cli/serverselect"
	"github.com/ainewshub/newshub/internal/cli/session"
	"github.com/ainewshub/newshub/internal/cli/storage"
	"github.com/ainewshub/newshub/internal/cli/userconfig"
	appconfig "github.com/ainewshub/newshub/internal/config"
	"github.com/ainewshub/newshub/internal/logger"
)

// Globals holds the persistent flags shared by every command
type Globals struct {
	Server  string
	APIURL  string
	Output  string
	Verbose bool
}

// app bundles everything a command needs to talk to the backend
type app struct {
	cfg     *appconfig.Config
	baseURL string
	alias   string
	format  string

	client  *client.Client
	store   *session.Store
	storage storage.Storage
	hint    *loginHint
	logger  zerolog.Logger

	out    io.Writer
	errOut io.Writer
}

// newApp loads configuration, opens the session storage for the resolved
// server and binds a rehydrated session store to a fresh API client.
func newApp(cmd *cobra.Command, g *Globals) (*app, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logging.Level
	if g.Verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Logging.Format, cmd.ErrOrStderr())

	baseURL, alias, err := resolveBaseURL(cfg, g)
	if err != nil {
		return nil, err
	}

	format, err := outputFormat(g.Output)
	if err != nil {
		return nil, err
	}

	st, err := storage.Open(cfg.Storage.Backend, storageScope(baseURL))
	if err != nil {
		return nil, err
	}

	hint := &loginHint{w: cmd.ErrOrStderr()}

	apiClient := client.New(client.Options{
		BaseURL:   baseURL,
		Timeout:   cfg.API.Timeout,
		Navigator: hint,
		Logger:    &log,
	})

	store := session.NewStore(apiClient, st, session.WithLogger(log))
	store.Rehydrate()
	store.Bind(apiClient)

	return &app{
		cfg:     cfg,
		baseURL: baseURL,
		alias:   alias,
		format:  format,
		client:  apiClient,
		store:   store,
		storage: st,
		hint:    hint,
		logger:  log,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}, nil
}

// close tears the store down at the end of a command
func (a *app) close() {
	a.store.Close()
}

// serverLabel names the backend in human output
func (a *app) serverLabel() string {
	if a.alias != "" {
		return fmt.Sprintf("%s (%s)", a.alias, a.baseURL)
	}
	return a.baseURL
}

// resolveBaseURL picks the backend by priority: --api-url, NEWSHUB_API_URL,
// the project newshub.json (honouring --server and the selected server),
// then the built-in default.
func resolveBaseURL(cfg *appconfig.Config, g *Globals) (string, string, error) {
	if g.APIURL != "" {
		return g.APIURL, "", nil
	}
	if cfg.API.URLFromEnv && g.Server == "" {
		return cfg.API.URL, "", nil
	}

	projectConfig, err := config.LoadFromCurrentDir()
	if err != nil {
		if g.Server != "" {
			return "", "", fmt.Errorf("failed to load config: %w\nRun 'newshub init' to create a configuration file", err)
		}
		return cfg.API.URL, "", nil
	}

	server, err := serverselect.ResolveServer(projectConfig, g.Server)
	if err != nil {
		return "", "", err
	}
	return server.URL, server.Alias, nil
}

// storageScope keys stored sessions by backend so that tokens issued by one
// server are never sent to another.
func storageScope(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimRight(baseURL, "/")
	}
	return u.Host + strings.TrimRight(u.Path, "/")
}

func outputFormat(flag string) (string, error) {
	format := flag
	if format == "" {
		if cfg, err := userconfig.Load(); err == nil {
			format = cfg.Output
		}
	}

	switch strings.ToLower(format) {
	case "", formatTable:
		return formatTable, nil
	case formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format '%s', must be one of: table, json, yaml", format)
	}
}

// loginHint is the CLI's answer to a 401: the session is already cleared by
// the store, so all that is left is to point the user at `newshub login`.
type loginHint struct {
	w        io.Writer
	once     sync.Once
	disabled bool
}

func (h *loginHint) RedirectToLogin() {
	if h.disabled {
		return
	}
	h.once.Do(func() {
		fmt.Fprintln(h.w, "Your session is no longer valid. Run 'newshub login' to sign in again.")
	})
}

// requireLogin fails fast when there is no stored token at all
func (a *app) requireLogin() error {
	if token, _ := a.store.Token(); token == "" {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in. Please run 'newshub login' first")

// apiErr turns client errors into a single readable line
func apiErr(action string, err error) error {
	return fmt.Errorf("%s: %s", action, client.Message(err))
}
