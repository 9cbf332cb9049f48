package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ainewshub/newshub/internal/models"
)

// LeaderboardEntry is one ranked user
type LeaderboardEntry struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Level       int    `json:"level"`
	Experience  int    `json:"experience"`
	TotalSolved int    `json:"totalSolved"`
	Streak      int    `json:"streak"`
}

// UserStats is the profile summary of /users/stats
type UserStats struct {
	Level               int            `json:"level"`
	Experience          int            `json:"experience"`
	TotalSolved         int            `json:"totalSolved"`
	Streak              int            `json:"streak"`
	Achievements        []string       `json:"achievements"`
	DifficultyBreakdown map[string]int `json:"difficultyBreakdown"`
	CategoryBreakdown   map[string]int `json:"categoryBreakdown"`
	RecentActivity      []models.Solve `json:"recentActivity"`
}

// Achievement is one entry of /users/achievements
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

var achievements = []Achievement{
	{ID: "first_solve", Name: "First Steps", Description: "Solve your first question", Icon: "🎯"},
	{ID: "streak_7", Name: "Persistent", Description: "Solve questions 7 days in a row", Icon: "🔥"},
	{ID: "streak_30", Name: "Dedicated", Description: "Solve questions 30 days in a row", Icon: "💎"},
	{ID: "level_5", Name: "Rising", Description: "Reach level 5", Icon: "⭐"},
	{ID: "level_10", Name: "Master", Description: "Reach level 10", Icon: "👑"},
	{ID: "perfect_score", Name: "Perfectionist", Description: "Get a perfect score", Icon: "💯"},
}

var leaderboardOrder = map[string]string{
	"level":      "level",
	"experience": "experience",
	"solved":     "total_solved",
	"streak":     "streak",
}

func (s *Server) leaderboard(c *gin.Context) {
	column, ok := leaderboardOrder[c.DefaultQuery("type", "level")]
	if !ok {
		column = "level"
	}
	limit := queryInt(c, "limit", 10)

	var users []models.User
	if err := s.db.Order(column + " DESC").Order("experience DESC").Limit(limit).Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			ID:          u.ID,
			Username:    u.Username,
			Level:       u.Level,
			Experience:  u.Experience,
			TotalSolved: u.TotalSolved,
			Streak:      u.Streak,
		})
	}

	c.JSON(http.StatusOK, entries)
}

func (s *Server) userStats(c *gin.Context) {
	user, ok := s.sessionUser(c)
	if !ok {
		return
	}

	var solves []models.Solve
	if err := s.db.Where("user_id = ?", user.ID).Order("solved_at DESC").Find(&solves).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to load solves")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	stats := UserStats{
		Level:        user.Level,
		Experience:   user.Experience,
		TotalSolved:  user.TotalSolved,
		Streak:       user.Streak,
		Achievements: user.Achievements,
		DifficultyBreakdown: map[string]int{
			"beginner":     0,
			"intermediate": 0,
			"advanced":     0,
		},
		CategoryBreakdown: map[string]int{},
		RecentActivity:    solves[:min(5, len(solves))],
	}
	if stats.Achievements == nil {
		stats.Achievements = []string{}
	}
	for _, solve := range solves {
		stats.DifficultyBreakdown[solve.Difficulty]++
		stats.CategoryBreakdown[solve.Category]++
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) userAchievements(c *gin.Context) {
	user, ok := s.sessionUser(c)
	if !ok {
		return
	}

	result := make([]Achievement, len(achievements))
	for i, a := range achievements {
		a.Unlocked = user.HasAchievement(a.ID)
		result[i] = a
	}

	c.JSON(http.StatusOK, result)
}
