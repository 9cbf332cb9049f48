package serverselect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ainewshub/newshub/internal/cli/config"
	"github.com/ainewshub/newshub/internal/cli/userconfig"
)

func twoServers() *config.Config {
	return &config.Config{Servers: []config.Server{
		{Alias: "local", URL: "http://localhost:5000/api"},
		{Alias: "staging", URL: "https://staging.example.com/api"},
	}}
}

func stubPrompt(t *testing.T, fn func(*config.Config) (*config.Server, error)) *int {
	t.Helper()

	calls := 0
	original := Prompt
	Prompt = func(cfg *config.Config) (*config.Server, error) {
		calls++
		return fn(cfg)
	}
	t.Cleanup(func() { Prompt = original })
	return &calls
}

func TestResolveServer_FlagWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, userconfig.SetSelectedServer("local"))

	server, err := ResolveServer(twoServers(), "staging")
	require.NoError(t, err)
	require.Equal(t, "staging", server.Alias)

	_, err = ResolveServer(twoServers(), "missing")
	require.ErrorContains(t, err, "not found")
}

func TestResolveServer_SelectedServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, userconfig.SetSelectedServer("staging"))
	calls := stubPrompt(t, func(*config.Config) (*config.Server, error) {
		return nil, errors.New("should not prompt")
	})

	server, err := ResolveServer(twoServers(), "")
	require.NoError(t, err)
	require.Equal(t, "staging", server.Alias)
	require.Zero(t, *calls)
}

func TestResolveServer_StaleSelectionFallsThrough(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, userconfig.SetSelectedServer("removed"))

	cfg := &config.Config{Servers: []config.Server{{Alias: "only", URL: "http://only/api"}}}
	server, err := ResolveServer(cfg, "")
	require.NoError(t, err)
	require.Equal(t, "only", server.Alias)

	selected, err := userconfig.GetSelectedServer()
	require.NoError(t, err)
	require.Equal(t, "only", selected)
}

func TestResolveServer_PromptsAndRemembers(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	calls := stubPrompt(t, func(cfg *config.Config) (*config.Server, error) {
		return &cfg.Servers[1], nil
	})

	server, err := ResolveServer(twoServers(), "")
	require.NoError(t, err)
	require.Equal(t, "staging", server.Alias)
	require.Equal(t, 1, *calls)

	selected, err := userconfig.GetSelectedServer()
	require.NoError(t, err)
	require.Equal(t, "staging", selected)
}

func TestResolveServer_PromptCancelled(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	stubPrompt(t, func(*config.Config) (*config.Server, error) {
		return nil, errors.New("server selection cancelled: ^C")
	})

	_, err := ResolveServer(twoServers(), "")
	require.ErrorContains(t, err, "cancelled")
}

func TestGetServerByURLOrAlias(t *testing.T) {
	cfg := twoServers()

	server, err := GetServerByURLOrAlias(cfg, "https://staging.example.com/api/")
	require.NoError(t, err)
	require.Equal(t, "staging", server.Alias)

	server, err = GetServerByURLOrAlias(cfg, "local")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000/api", server.URL)

	_, err = GetServerByURLOrAlias(cfg, "nowhere")
	require.Error(t, err)
}
