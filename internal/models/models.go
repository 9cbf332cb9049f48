package models

import (
	"math"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// MaxLevel caps the level reached through experience
const MaxLevel = 10

// User represents a registered practice account
type User struct {
	BaseModel
	Username       string    `json:"username" gorm:"uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"not null"`
	Level          int       `json:"level" gorm:"not null;default:1"`
	Experience     int       `json:"experience" gorm:"not null;default:0"`
	TotalSolved    int       `json:"totalSolved" gorm:"not null;default:0"`
	Streak         int       `json:"streak" gorm:"not null;default:0"`
	LastActiveDate time.Time `json:"-"`
	Achievements   []string  `json:"achievements" gorm:"serializer:json"`
}

// AddExperience adds amount and raises the level (100 experience per level,
// capped at MaxLevel). It reports the new level when the user leveled up.
func (u *User) AddExperience(amount int) (bool, int) {
	u.Experience += amount

	newLevel := u.Experience/100 + 1
	if newLevel > u.Level && newLevel <= MaxLevel {
		u.Level = newLevel
		return true, newLevel
	}
	return false, 0
}

// UpdateStreak counts consecutive active days
func (u *User) UpdateStreak(now time.Time) int {
	if u.LastActiveDate.IsZero() {
		u.Streak = 1
	} else {
		days := int(math.Ceil(now.Sub(u.LastActiveDate).Hours() / 24))
		switch {
		case days == 1:
			u.Streak++
		case days > 1:
			u.Streak = 1
		}
	}
	u.LastActiveDate = now
	return u.Streak
}

// HasAchievement reports whether id is unlocked
func (u *User) HasAchievement(id string) bool {
	for _, a := range u.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Unlock adds the achievement once
func (u *User) Unlock(id string) {
	if !u.HasAchievement(id) {
		u.Achievements = append(u.Achievements, id)
	}
}

// Question is a coding practice question. Solution details never leave the
// server.
type Question struct {
	ID          string    `json:"_id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty" gorm:"index"` // beginner, intermediate, advanced
	Category    string    `json:"category" gorm:"index"`
	Language    string    `json:"language" gorm:"index"`
	Points      int       `json:"points" gorm:"not null;default:10"`
	StarterCode string    `json:"starterCode"`
	Tags        []string  `json:"tags" gorm:"serializer:json"`
	Hints       []string  `json:"-" gorm:"serializer:json"`
	EntryPoint  string    `json:"-"` // a submission must define this to pass
	IsActive    bool      `json:"-" gorm:"not null;default:true"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = ulid.Make().String()
	}
	return nil
}

// Solve records one solved question for the stats breakdowns
type Solve struct {
	BaseModel
	UserID     string    `json:"-" gorm:"type:varchar(26);index;not null"`
	QuestionID string    `json:"questionId" gorm:"type:varchar(26);not null"`
	Title      string    `json:"title"`
	Difficulty string    `json:"difficulty"`
	Category   string    `json:"category"`
	Score      int       `json:"score"`
	SolvedAt   time.Time `json:"solvedAt"`
}

// NewsItem is an entry of the AI news feed
type NewsItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content,omitempty"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Category    string    `json:"category"`
	Platform    string    `json:"platform,omitempty"` // set for social media posts
	PublishedAt time.Time `json:"publishedAt"`
}

// AutoMigrate runs all database migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Question{},
		&Solve{},
		&NewsItem{},
	)
}
