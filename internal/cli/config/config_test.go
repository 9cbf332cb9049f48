package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServer_Validate(t *testing.T) {
	tests := []struct {
		name        string
		server      Server
		shouldError bool
		errContains string
	}{
		{
			name:   "http url",
			server: Server{Alias: "local", URL: "http://localhost:5000/api"},
		},
		{
			name:   "https url",
			server: Server{Alias: "prod", URL: "https://news.example.com/api"},
		},
		{
			name:        "missing alias",
			server:      Server{URL: "http://localhost:5000/api"},
			shouldError: true,
			errContains: "alias is required",
		},
		{
			name:        "relative url",
			server:      Server{Alias: "broken", URL: "/api"},
			shouldError: true,
			errContains: "must start with http",
		},
		{
			name:        "no host",
			server:      Server{Alias: "broken", URL: "http:///api"},
			shouldError: true,
			errContains: "no host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.server.Validate()

			if tt.shouldError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_DuplicateAlias(t *testing.T) {
	cfg := &Config{Servers: []Server{
		{Alias: "a", URL: "http://one/api"},
		{Alias: "a", URL: "http://two/api"},
	}}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate server alias") {
		t.Fatalf("expected duplicate alias error, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(cfg.Servers) != 1 || cfg.Servers[0].Alias != "local" {
		t.Fatalf("unexpected servers: %+v", cfg.Servers)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()

	badJSON := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badJSON, []byte(`{"servers":`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(badJSON); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}

	badServer := filepath.Join(dir, "server.json")
	if err := os.WriteFile(badServer, []byte(`{"servers":[{"alias":"x","url":"ftp://x"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(badServer); err == nil || !strings.Contains(err.Error(), "invalid config file") {
		t.Errorf("expected validation error, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestFindConfigFile_SearchesParents(t *testing.T) {
	root := t.TempDir()
	if err := Save(filepath.Join(root, ConfigFileName), DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	chdir(t, nested)

	path, err := FindConfigFile()
	if err != nil {
		t.Fatalf("expected config to be found: %v", err)
	}

	resolvedRoot, _ := filepath.EvalSymlinks(root)
	resolvedPath, _ := filepath.EvalSymlinks(filepath.Dir(path))
	if resolvedPath != resolvedRoot {
		t.Errorf("expected config in %s, got %s", resolvedRoot, path)
	}
}

func TestLookups(t *testing.T) {
	cfg := &Config{Servers: []Server{
		{Alias: "local", URL: "http://localhost:5000/api"},
		{Alias: "staging", URL: "https://staging.example.com/api/"},
	}}

	server, err := cfg.GetServerByAlias("staging")
	if err != nil || server.URL != "https://staging.example.com/api/" {
		t.Fatalf("alias lookup failed: %v %+v", err, server)
	}

	server, err = cfg.GetServerByURL("https://staging.example.com/api")
	if err != nil || server.Alias != "staging" {
		t.Fatalf("url lookup failed: %v %+v", err, server)
	}

	if _, err := cfg.GetServerByAlias("nope"); err == nil {
		t.Errorf("expected error for unknown alias")
	}

	server, err = cfg.GetDefaultServer()
	if err != nil || server.Alias != "local" {
		t.Fatalf("default server failed: %v %+v", err, server)
	}

	empty := &Config{}
	if _, err := empty.GetDefaultServer(); err == nil {
		t.Errorf("expected error for empty config")
	}
}
