package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ainewshub/newshub/internal/models"
)

func (s *Server) listNews(c *gin.Context) {
	includeSocial := c.DefaultQuery("includeSocial", "true") == "true"
	platform := c.Query("platform")

	query := s.db.Order("published_at DESC")
	switch {
	case platform != "":
		query = query.Where("platform = ?", platform)
	case !includeSocial:
		query = query.Where("platform = ?", "")
	}

	news := []models.NewsItem{}
	if err := query.Find(&news).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load news")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load news"})
		return
	}

	if platform == "" {
		platform = "all"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"news":        news,
		"count":       len(news),
		"lastUpdated": time.Now().UTC().Format(time.RFC3339),
		"filters": gin.H{
			"includeSocial": includeSocial,
			"platform":      platform,
		},
	})
}

func (s *Server) getNews(c *gin.Context) {
	var item models.NewsItem
	if err := s.db.Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "News not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load news item")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load news"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "news": item})
}
