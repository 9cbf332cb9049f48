package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"github.com/ainewshub/newshub/internal/cli/session"
	"github.com/ainewshub/newshub/internal/cli/storage"
)

// mockBackend is a minimal AI News Hub API for command tests
type mockBackend struct {
	t        *testing.T
	server   *httptest.Server
	email    string
	password string
	token    string
	user     map[string]any

	mu   sync.Mutex
	hits map[string]int
}

func newMockBackend(t *testing.T) *mockBackend {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u1",
		"exp":    time.Now().Add(7 * 24 * time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	b := &mockBackend{
		t:        t,
		email:    "test@example.com",
		password: "password123",
		token:    token,
		user:     map[string]any{"id": "u1", "username": "tester", "email": "test@example.com", "level": 2, "experience": 120},
		hits:     make(map[string]int),
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.server.Close)
	return b
}

func (b *mockBackend) apiURL() string {
	return b.server.URL + "/api"
}

func (b *mockBackend) hitCount(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *mockBackend) handle(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.hits[route]++
	b.mu.Unlock()

	authed := r.Header.Get("Authorization") == "Bearer "+b.token

	switch {
	case route == "POST /api/auth/login":
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != b.email || req.Password != b.password {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "token": b.token, "user": b.user})

	case route == "POST /api/auth/register":
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email == b.email {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "User already exists"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Registration successful",
			"token":   b.token,
			"user":    map[string]any{"id": "u2", "username": req.Username, "email": req.Email, "level": 1},
		})

	case !authed && (route == "GET /api/auth/me" ||
		route == "GET /api/users/stats" ||
		strings.HasSuffix(route, "/submit")):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Token is not valid"})

	case route == "GET /api/auth/me":
		writeJSON(w, http.StatusOK, map[string]any{"user": b.user})

	case route == "GET /api/users/stats":
		writeJSON(w, http.StatusOK, map[string]any{
			"level": 3, "experience": 250, "totalSolved": 7, "streak": 4,
			"difficultyBreakdown": map[string]int{"easy": 5, "medium": 2},
		})

	case route == "POST /api/questions/42/submit":
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "message": "All tests passed", "score": 100, "experienceGained": 30,
		})

	case route == "GET /api/ai-news":
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"count":   2,
			"news": []map[string]any{
				{"id": 1, "title": "New model released", "source": "TechCrunch", "category": "AI", "publishedAt": "2026-10-01T08:00:00Z"},
				{"id": 2, "title": "Framework update", "source": "GitHub", "category": "tools", "publishedAt": "2026-10-02T08:00:00Z"},
			},
		})

	case route == "GET /api/users/leaderboard":
		writeJSON(w, http.StatusOK, []map[string]any{
			{"_id": "u1", "username": "tester", "level": 3, "experience": 250, "totalSolved": 7, "streak": 4},
		})

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// setupCLI isolates HOME, the working directory and the keyring, and points
// the CLI at backend through NEWSHUB_API_URL.
func setupCLI(t *testing.T, backend *mockBackend) {
	t.Helper()

	keyring.MockInit()
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	t.Setenv("NEWSHUB_API_URL", backend.apiURL())
	t.Setenv("NEWSHUB_STORAGE", "")
	t.Setenv("NEWSHUB_TIMEOUT", "")
	t.Setenv("NEWSHUB_EMAIL", "")
	t.Setenv("NEWSHUB_PASSWORD", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
}

// execute runs a command tree like the real root command
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	g := &Globals{}
	root := &cobra.Command{Use: "newshub", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().StringVar(&g.Server, "server", "", "")
	root.PersistentFlags().StringVar(&g.APIURL, "api-url", "", "")
	root.PersistentFlags().StringVarP(&g.Output, "output", "o", "", "")
	root.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "")

	root.AddCommand(
		NewLoginCmd(g),
		NewRegisterCmd(g),
		NewLogoutCmd(g),
		NewWhoamiCmd(g),
		NewQuestionsCmd(g),
		NewNewsCmd(g),
		NewLeaderboardCmd(g),
		NewStatsCmd(g),
		NewAPICmd(g),
	)

	var stdout, stderr bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// sessionStorage opens the keyring scope the CLI uses for backend
func sessionStorage(backend *mockBackend) storage.Storage {
	return storage.NewKeyring(storageScope(backend.apiURL()))
}

func storedSession(t *testing.T, backend *mockBackend) (string, bool) {
	t.Helper()

	raw, err := sessionStorage(backend).Get(session.StorageKey)
	if err == storage.ErrNotFound {
		return "", false
	}
	if err != nil {
		t.Fatalf("failed to read stored session: %v", err)
	}
	return raw, true
}

func storeSession(t *testing.T, backend *mockBackend, token string, user map[string]any) {
	t.Helper()

	blob, err := json.Marshal(map[string]any{
		"state":   map[string]any{"token": token, "user": user},
		"version": 0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := sessionStorage(backend).Set(session.StorageKey, string(blob)); err != nil {
		t.Fatalf("failed to store session: %v", err)
	}
}
