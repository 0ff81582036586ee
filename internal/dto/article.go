package dto

import (
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/timeline"
)

// ArticleListRequest filters the article list.
type ArticleListRequest struct {
	Query string `form:"q"`
	Tab   string `form:"tab"`
}

// ArticleListResponse is the filtered, labelled article list.
type ArticleListResponse struct {
	Items []models.ArticleView `json:"items"`
	Total int                  `json:"total"`
	// AuthorsDegraded is set when the user directory could not be loaded and
	// author labels are placeholders.
	AuthorsDegraded bool `json:"authorsDegraded,omitempty"`
}

// ArticleTimelineResponse is the progress stepper of one article.
type ArticleTimelineResponse struct {
	ArticleID models.ID         `json:"articleId"`
	Title     string            `json:"title"`
	Timeline  timeline.Timeline `json:"timeline"`
}

// CommentListResponse lists review notes newest first.
type CommentListResponse struct {
	ArticleID models.ID        `json:"articleId"`
	Items     []models.Comment `json:"items"`
}
