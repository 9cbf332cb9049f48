package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ainewshub/newshub/internal/models"
)

// SubmitRequest represents a code submission
type SubmitRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language"`
}

// SubmitResponse is the grading result. A wrong answer is a 200 with
// success false.
type SubmitResponse struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	Score            int      `json:"score,omitempty"`
	ExperienceGained int      `json:"experienceGained,omitempty"`
	LeveledUp        bool     `json:"leveledUp,omitempty"`
	NewLevel         int      `json:"newLevel,omitempty"`
	Hints            []string `json:"hints,omitempty"`
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *Server) listQuestions(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	filtered := func() *gorm.DB {
		query := s.db.Model(&models.Question{}).Where("is_active = ?", true)
		for _, field := range []string{"difficulty", "category", "language"} {
			if value := c.Query(field); value != "" {
				query = query.Where(field+" = ?", value)
			}
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count questions")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	questions := []models.Question{}
	if err := filtered().Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&questions).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list questions")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"pagination": gin.H{
			"current": page,
			"pages":   int(math.Ceil(float64(total) / float64(limit))),
			"total":   total,
		},
	})
}

// findQuestion loads an active question, writing a 404 when it is missing
func (s *Server) findQuestion(c *gin.Context) (*models.Question, bool) {
	var question models.Question
	err := s.db.Where("id = ? AND is_active = ?", c.Param("id"), true).First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Str("question_id", c.Param("id")).Msg("Failed to load question")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return nil, false
	}
	return &question, true
}

func (s *Server) getQuestion(c *gin.Context) {
	question, ok := s.findQuestion(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, question)
}

func (s *Server) getHints(c *gin.Context) {
	question, ok := s.findQuestion(c)
	if !ok {
		return
	}
	hints := question.Hints
	if hints == nil {
		hints = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"hints": hints})
}

// submitAnswer grades a submission. There is no sandbox here: the code
// passes when it defines the question's entry point.
func (s *Server) submitAnswer(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil || s.validator.Struct(req) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide code"})
		return
	}

	question, ok := s.findQuestion(c)
	if !ok {
		return
	}

	user, ok := s.sessionUser(c)
	if !ok {
		return
	}

	if !strings.Contains(req.Code, question.EntryPoint) {
		c.JSON(http.StatusOK, SubmitResponse{
			Success: false,
			Message: "Incorrect answer, please try again",
			Hints:   question.Hints,
		})
		return
	}

	leveledUp, newLevel := user.AddExperience(question.Points)
	user.TotalSolved++
	if user.TotalSolved == 1 {
		user.Unlock("first_solve")
	}
	if user.Streak >= 7 {
		user.Unlock("streak_7")
	}
	if user.Level >= 5 {
		user.Unlock("level_5")
	}
	if user.Level >= models.MaxLevel {
		user.Unlock("level_10")
	}

	solve := &models.Solve{
		UserID:     user.ID,
		QuestionID: question.ID,
		Title:      question.Title,
		Difficulty: question.Difficulty,
		Category:   question.Category,
		Score:      question.Points,
		SolvedAt:   time.Now().UTC(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		return tx.Create(solve).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to record submission")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("question_id", question.ID).
		Int("experience", user.Experience).
		Msg("Question solved")

	c.JSON(http.StatusOK, SubmitResponse{
		Success:          true,
		Message:          "Correct answer, well done",
		Score:            question.Points,
		ExperienceGained: question.Points,
		LeveledUp:        leveledUp,
		NewLevel:         newLevel,
	})
}
