package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ainewshub/newshub/internal/cli/client"
	"github.com/ainewshub/newshub/internal/cli/session"
	"github.com/ainewshub/newshub/internal/cli/storage"
	"github.com/ainewshub/newshub/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		DevServer: config.DevServerConfig{
			Address:     "127.0.0.1:0",
			DatabaseURL: filepath.Join(t.TempDir(), "dev.sqlite"),
			JWTSecret:   "test-secret",
		},
	}

	srv, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// call sends a JSON request and decodes the JSON response into out
func call(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type authBody struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    map[string]any `json:"user"`
}

func register(t *testing.T, ts *httptest.Server, username, email string) authBody {
	t.Helper()

	var resp authBody
	status := call(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	}, &resp)
	require.Equal(t, http.StatusCreated, status, resp.Message)
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]any
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/health", "", nil, &body))
	require.Equal(t, "online", body["status"])
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	resp := register(t, ts, "alice", "alice@example.com")
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "alice", resp.User["username"])
	require.EqualValues(t, 1, resp.User["level"])
	require.Len(t, resp.User["id"], 26)

	var failure map[string]string
	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"duplicate email", map[string]string{"username": "alice2", "email": "alice@example.com", "password": "password123"}, "Username or email already exists"},
		{"duplicate username", map[string]string{"username": "alice", "email": "other@example.com", "password": "password123"}, "Username or email already exists"},
		{"missing username", map[string]string{"email": "bob@example.com", "password": "password123"}, "Please provide username, email and password"},
		{"invalid email", map[string]string{"username": "bob", "email": "bob", "password": "password123"}, "Please provide a valid email"},
		{"short password", map[string]string{"username": "bob", "email": "bob@example.com", "password": "12345"}, "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := call(t, ts, http.MethodPost, "/api/auth/register", "", tt.body, &failure)
			require.Equal(t, http.StatusBadRequest, status)
			require.Equal(t, tt.message, failure["message"])
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts, "alice", "alice@example.com")

	var resp authBody
	status := call(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Login successful", resp.Message)

	var me struct {
		User map[string]any `json:"user"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/auth/me", resp.Token, nil, &me))
	require.Equal(t, "alice@example.com", me.User["email"])

	var failure map[string]string
	status = call(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, &failure)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid email or password", failure["message"])

	status = call(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com"}, &failure)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t)

	for _, token := range []string{"", "garbage"} {
		var failure map[string]string
		status := call(t, ts, http.MethodGet, "/api/auth/me", token, nil, &failure)
		require.Equal(t, http.StatusUnauthorized, status)
		require.NotEmpty(t, failure["message"])
	}

	// A well-formed token for a user that does not exist
	resp := register(t, ts, "alice", "alice@example.com")
	other := newTestServer(t) // fresh database, same secret
	var failure map[string]string
	require.Equal(t, http.StatusUnauthorized, call(t, other, http.MethodGet, "/api/users/stats", resp.Token, nil, &failure))
}

func TestQuestionsAndSubmit(t *testing.T) {
	ts := newTestServer(t)
	alice := register(t, ts, "alice", "alice@example.com")

	var page struct {
		Questions  []map[string]any `json:"questions"`
		Pagination struct {
			Current int `json:"current"`
			Pages   int `json:"pages"`
			Total   int `json:"total"`
		} `json:"pagination"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/questions?difficulty=beginner", "", nil, &page))
	require.Len(t, page.Questions, 1)
	require.Equal(t, "Two Sum", page.Questions[0]["title"])
	require.NotContains(t, page.Questions[0], "hints")
	require.Equal(t, 1, page.Pagination.Total)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/questions?limit=2", "", nil, &page))
	require.Len(t, page.Questions, 2)
	require.Equal(t, 2, page.Pagination.Pages)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/questions?difficulty=beginner", "", nil, &page))
	id := page.Questions[0]["_id"].(string)

	var hints map[string][]string
	require.Equal(t, http.StatusUnauthorized, call(t, ts, http.MethodGet, "/api/questions/"+id+"/hints", "", nil, nil))
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/questions/"+id+"/hints", alice.Token, nil, &hints))
	require.NotEmpty(t, hints["hints"])

	var result SubmitResponse
	status := call(t, ts, http.MethodPost, "/api/questions/"+id+"/submit", alice.Token,
		map[string]string{"code": "console.log(1)", "language": "javascript"}, &result)
	require.Equal(t, http.StatusOK, status)
	require.False(t, result.Success)
	require.NotEmpty(t, result.Hints)

	status = call(t, ts, http.MethodPost, "/api/questions/"+id+"/submit", alice.Token,
		map[string]string{"code": "function twoSum(nums, target) { return [0, 1] }", "language": "javascript"}, &result)
	require.Equal(t, http.StatusOK, status)
	require.True(t, result.Success)
	require.Equal(t, 50, result.ExperienceGained)

	var stats UserStats
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/users/stats", alice.Token, nil, &stats))
	require.Equal(t, 50, stats.Experience)
	require.Equal(t, 1, stats.TotalSolved)
	require.Equal(t, 1, stats.DifficultyBreakdown["beginner"])
	require.Equal(t, 1, stats.CategoryBreakdown["algorithms"])
	require.Contains(t, stats.Achievements, "first_solve")
	require.Len(t, stats.RecentActivity, 1)

	var achievements []Achievement
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/users/achievements", alice.Token, nil, &achievements))
	require.Len(t, achievements, 6)
	require.True(t, achievements[0].Unlocked)
	require.False(t, achievements[1].Unlocked)

	var failure map[string]string
	require.Equal(t, http.StatusNotFound, call(t, ts, http.MethodGet, "/api/questions/missing", "", nil, &failure))
	require.Equal(t, "Question not found", failure["message"])
	require.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/api/questions/"+id+"/submit", alice.Token, map[string]string{}, &failure))
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	alice := register(t, ts, "alice", "alice@example.com")
	register(t, ts, "bob", "bob@example.com")

	var page struct {
		Questions []map[string]any `json:"questions"`
	}
	call(t, ts, http.MethodGet, "/api/questions?difficulty=advanced", "", nil, &page)
	call(t, ts, http.MethodPost, "/api/questions/"+page.Questions[0]["_id"].(string)+"/submit", alice.Token,
		map[string]string{"code": "def attention(q, k, v): pass"}, nil)

	var entries []LeaderboardEntry
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/users/leaderboard?type=experience", "", nil, &entries))
	require.Len(t, entries, 2)
	require.Equal(t, "alice", entries[0].Username)
	require.Equal(t, 120, entries[0].Experience)
	require.Equal(t, 2, entries[0].Level)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/users/leaderboard?limit=1", "", nil, &entries))
	require.Len(t, entries, 1)
}

func TestNews(t *testing.T) {
	ts := newTestServer(t)

	var list struct {
		Success bool             `json:"success"`
		News    []map[string]any `json:"news"`
		Count   int              `json:"count"`
		Filters map[string]any   `json:"filters"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/ai-news", "", nil, &list))
	require.True(t, list.Success)
	require.Equal(t, 3, list.Count)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/ai-news?includeSocial=false", "", nil, &list))
	require.Equal(t, 2, list.Count)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/ai-news?platform=reddit", "", nil, &list))
	require.Equal(t, 1, list.Count)
	require.Equal(t, "reddit", list.Filters["platform"])

	var item struct {
		Success bool           `json:"success"`
		News    map[string]any `json:"news"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/ai-news/1", "", nil, &item))
	require.True(t, item.Success)
	require.NotEmpty(t, item.News["title"])

	require.Equal(t, http.StatusNotFound, call(t, ts, http.MethodGet, "/api/ai-news/999", "", nil, &item))
	require.False(t, item.Success)
}

// TestClientSessionEndToEnd drives the CLI's client and session store
// against the development server.
func TestClientSessionEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts, "alice", "alice@example.com")

	var navigations atomic.Int32
	st := storage.NewMemory()
	api := client.New(client.Options{
		BaseURL:   ts.URL + "/api",
		Navigator: client.NavigatorFunc(func() { navigations.Add(1) }),
	})
	store := session.NewStore(api, st)
	store.Bind(api)
	defer store.Close()

	ctx := context.Background()

	result := store.Login(ctx, "alice@example.com", "wrong-password")
	require.False(t, result.Success)
	require.Equal(t, "Invalid email or password", result.Message)
	require.Equal(t, session.StatusAnonymous, store.State().Status())

	result = store.Login(ctx, "alice@example.com", "password123")
	require.True(t, result.Success)
	require.Equal(t, session.StatusAuthenticated, store.State().Status())

	require.NoError(t, store.CheckAuth(ctx))
	require.Equal(t, "alice", store.State().User.Username())

	stats, err := api.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Level)

	page, err := api.ListQuestions(ctx, client.QuestionFilter{Difficulty: "beginner"})
	require.NoError(t, err)
	require.Len(t, page.Questions, 1)

	submit, err := api.SubmitAnswer(ctx, string(page.Questions[0].ID), "function twoSum() {}", "javascript")
	require.NoError(t, err)
	require.True(t, submit.Success)

	news, err := api.ListNews(ctx, client.NewsQuery{ExcludeSocial: true})
	require.NoError(t, err)
	require.Len(t, news.News, 2)

	// A second store rehydrates the persisted session
	restored := session.NewStore(api, st)
	restored.Rehydrate()
	token, err := restored.Token()
	require.NoError(t, err)
	require.Equal(t, store.State().Token, token)
	restored.Close()

	// A token the server rejects clears the session and navigates once
	require.NoError(t, st.Set(session.StorageKey, `{"state":{"token":"forged","user":null},"version":0}`))
	forged := session.NewStore(api, st)
	forged.Rehydrate()
	forged.Bind(api)
	defer forged.Close()

	_, err = api.Stats(ctx)
	require.True(t, client.IsUnauthorized(err))
	require.Equal(t, int32(2), navigations.Load())
	require.Equal(t, session.StatusAnonymous, forged.State().Status())

	_, err = st.Get(session.StorageKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
