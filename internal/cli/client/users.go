package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// UserStats is the profile summary from /users/stats
type UserStats struct {
	Level               int             `json:"level"`
	Experience          int             `json:"experience"`
	TotalSolved         int             `json:"totalSolved"`
	Streak              int             `json:"streak"`
	Achievements        []string        `json:"achievements"`
	DifficultyBreakdown map[string]int  `json:"difficultyBreakdown"`
	CategoryBreakdown   map[string]int  `json:"categoryBreakdown"`
	RecentActivity      json.RawMessage `json:"recentActivity,omitempty"`
}

// Achievement is one entry of /users/achievements
type Achievement struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

// ProgressDay aggregates solved questions for one day
type ProgressDay struct {
	Date       string          `json:"date" validate:"required"`
	Solved     int             `json:"solved"`
	Experience int             `json:"experience"`
	Questions  json.RawMessage `json:"questions,omitempty"`
}

// LeaderboardEntry is one ranked user
type LeaderboardEntry struct {
	ID          FlexibleID `json:"_id"`
	Username    string     `json:"username" validate:"required"`
	Level       int        `json:"level"`
	Experience  int        `json:"experience"`
	TotalSolved int        `json:"totalSolved"`
	Streak      int        `json:"streak"`
}

// Leaderboard orderings accepted by the backend
const (
	LeaderboardByLevel      = "level"
	LeaderboardByExperience = "experience"
	LeaderboardBySolved     = "solved"
	LeaderboardByStreak     = "streak"
)

// Stats returns the current user's statistics (requires login)
func (c *Client) Stats(ctx context.Context) (*UserStats, error) {
	var resp UserStats
	if err := c.Get(ctx, "/users/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Achievements returns all achievements with their unlock state (requires login)
func (c *Client) Achievements(ctx context.Context) ([]Achievement, error) {
	var resp []Achievement
	if err := c.Get(ctx, "/users/achievements", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Progress returns per-day progress for the last days (requires login)
func (c *Client) Progress(ctx context.Context, days int) ([]ProgressDay, error) {
	if days < 1 {
		days = 30
	}

	var resp []ProgressDay
	if err := c.Get(ctx, withQuery("/users/progress", url.Values{"days": {strconv.Itoa(days)}}), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Leaderboard returns the top users ordered by kind
func (c *Client) Leaderboard(ctx context.Context, kind string, limit int) ([]LeaderboardEntry, error) {
	if kind == "" {
		kind = LeaderboardByLevel
	}
	if limit < 1 {
		limit = 50
	}

	query := url.Values{}
	query.Set("type", kind)
	query.Set("limit", strconv.Itoa(limit))

	var resp []LeaderboardEntry
	if err := c.Get(ctx, withQuery("/users/leaderboard", query), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
