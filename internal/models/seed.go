package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Seed fills empty question and news tables with sample content
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Question{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count == 0 {
		if err := db.Create(sampleQuestions()).Error; err != nil {
			return fmt.Errorf("failed to seed questions: %w", err)
		}
	}

	if err := db.Model(&NewsItem{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count news: %w", err)
	}
	if count == 0 {
		if err := db.Create(sampleNews(time.Now().UTC())).Error; err != nil {
			return fmt.Errorf("failed to seed news: %w", err)
		}
	}

	return nil
}

func sampleQuestions() []Question {
	return []Question{
		{
			Title:       "Two Sum",
			Description: "Return the indices of the two numbers in nums that add up to target.",
			Difficulty:  "beginner",
			Category:    "algorithms",
			Language:    "javascript",
			Points:      50,
			StarterCode: "function twoSum(nums, target) {\n  // your code\n}",
			Tags:        []string{"array", "hash-map"},
			Hints:       []string{"A map from value to index finds the complement in one pass."},
			EntryPoint:  "function twoSum",
		},
		{
			Title:       "Softmax",
			Description: "Implement a numerically stable softmax over a vector of logits.",
			Difficulty:  "intermediate",
			Category:    "machine-learning",
			Language:    "python",
			Points:      80,
			StarterCode: "def softmax(logits):\n    pass",
			Tags:        []string{"numerics"},
			Hints:       []string{"Subtract the maximum logit before exponentiating."},
			EntryPoint:  "def softmax",
		},
		{
			Title:       "Scaled Dot-Product Attention",
			Description: "Compute attention weights and outputs for query, key and value matrices.",
			Difficulty:  "advanced",
			Category:    "deep-learning",
			Language:    "python",
			Points:      120,
			StarterCode: "def attention(q, k, v):\n    pass",
			Tags:        []string{"transformers"},
			Hints: []string{
				"Scale the scores by the square root of the key dimension.",
				"Apply softmax along the last axis.",
			},
			EntryPoint: "def attention",
		},
	}
}

func sampleNews(now time.Time) []NewsItem {
	return []NewsItem{
		{
			Title:       "Open model tops reasoning benchmark",
			Summary:     "A new open-weights model reports state of the art results on math and code.",
			Source:      "AI Weekly",
			URL:         "https://example.com/news/open-model",
			Category:    "models",
			PublishedAt: now.Add(-2 * time.Hour),
		},
		{
			Title:       "Agent framework reaches 1.0",
			Summary:     "The release stabilizes the tool calling API.",
			Source:      "GitHub",
			URL:         "https://example.com/news/agent-framework",
			Category:    "tools",
			PublishedAt: now.Add(-26 * time.Hour),
		},
		{
			Title:       "Thread: what changed in long context training",
			Summary:     "Practitioners compare notes on context extension.",
			Source:      "r/MachineLearning",
			URL:         "https://example.com/news/long-context",
			Category:    "research",
			Platform:    "reddit",
			PublishedAt: now.Add(-5 * time.Hour),
		},
	}
}
