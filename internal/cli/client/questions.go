package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Question is a coding practice question, without solution or test cases
type Question struct {
	ID          FlexibleID `json:"_id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty"`
	Category    string     `json:"category"`
	Language    string     `json:"language,omitempty"`
	Points      int        `json:"points"`
	StarterCode string     `json:"starterCode,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// Pagination describes a page of server-side results
type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

// QuestionPage is one page of /questions
type QuestionPage struct {
	Questions  []Question `json:"questions" validate:"required,dive"`
	Pagination Pagination `json:"pagination"`
}

// QuestionFilter narrows /questions server-side
type QuestionFilter struct {
	Page       int
	Limit      int
	Difficulty string
	Category   string
	Language   string
}

// SubmitRequest is the body of a submission
type SubmitRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// SubmitResult is the grading outcome. Success is false for a wrong answer,
// which is a normal result rather than an error.
type SubmitResult struct {
	Success          bool            `json:"success"`
	Message          string          `json:"message"`
	Score            int             `json:"score,omitempty"`
	ExperienceGained int             `json:"experienceGained,omitempty"`
	LeveledUp        bool            `json:"leveledUp,omitempty"`
	NewLevel         int             `json:"newLevel,omitempty"`
	TimeSpent        int             `json:"timeSpent,omitempty"`
	PassRate         float64         `json:"passRate,omitempty"`
	Hints            []string        `json:"hints,omitempty"`
	Results          json.RawMessage `json:"results,omitempty"`
}

// CodeAnalysis is the AI review of a submission draft
type CodeAnalysis struct {
	Analysis  string `json:"analysis" validate:"required"`
	Timestamp string `json:"timestamp,omitempty"`
}

type analyzeCodeRequest struct {
	Code          string `json:"code"`
	QuestionTitle string `json:"questionTitle,omitempty"`
	Language      string `json:"language"`
}

// ListQuestions returns one page of questions
func (c *Client) ListQuestions(ctx context.Context, filter QuestionFilter) (*QuestionPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 12
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("difficulty", filter.Difficulty)
	query.Set("category", filter.Category)
	query.Set("language", filter.Language)

	var resp QuestionPage
	if err := c.Get(ctx, withQuery("/questions", query), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetQuestion returns a single question
func (c *Client) GetQuestion(ctx context.Context, id string) (*Question, error) {
	var resp Question
	if err := c.Get(ctx, fmt.Sprintf("/questions/%s", url.PathEscape(id)), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetHints returns the hints for a question (requires login)
func (c *Client) GetHints(ctx context.Context, id string) ([]string, error) {
	var resp struct {
		Hints []string `json:"hints"`
	}
	if err := c.Get(ctx, fmt.Sprintf("/questions/%s/hints", url.PathEscape(id)), &resp); err != nil {
		return nil, err
	}
	return resp.Hints, nil
}

// SubmitAnswer submits code for grading (requires login)
func (c *Client) SubmitAnswer(ctx context.Context, id, code, language string) (*SubmitResult, error) {
	if language == "" {
		language = "javascript"
	}

	var resp SubmitResult
	path := fmt.Sprintf("/questions/%s/submit", url.PathEscape(id))
	if err := c.Post(ctx, path, SubmitRequest{Code: code, Language: language}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AnalyzeCode asks the backend for an AI review of code (requires login)
func (c *Client) AnalyzeCode(ctx context.Context, code, questionTitle, language string) (*CodeAnalysis, error) {
	if language == "" {
		language = "javascript"
	}

	req := analyzeCodeRequest{Code: code, QuestionTitle: questionTitle, Language: language}

	var resp CodeAnalysis
	if err := c.Post(ctx, "/ai/analyze-code", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
