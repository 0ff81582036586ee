package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/pkg/response"
)

type articleService interface {
	List(ctx context.Context, sess *session.Session, req dto.ArticleListRequest) (*dto.ArticleListResponse, error)
	Timeline(ctx context.Context, sess *session.Session, id string) (*dto.ArticleTimelineResponse, error)
	Submit(ctx context.Context, sess *session.Session, sub *models.ArticleSubmission) error
}

type commentService interface {
	List(ctx context.Context, sess *session.Session, articleID string) (*dto.CommentListResponse, error)
	Create(ctx context.Context, sess *session.Session, articleID string, req models.CreateCommentRequest) error
}

// ArticleHandler exposes article lists, timelines, submissions and review comments.
type ArticleHandler struct {
	articles articleService
	comments commentService
}

// NewArticleHandler constructs the handler.
func NewArticleHandler(articles articleService, comments commentService) *ArticleHandler {
	return &ArticleHandler{articles: articles, comments: comments}
}

// List godoc
// @Summary List articles in scope
// @Tags Articles
// @Produce json
// @Param q query string false "Free text over title, category, author and keywords"
// @Param tab query string false "Status tab"
// @Success 200 {object} response.Envelope
// @Router /articles [get]
func (h *ArticleHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.ArticleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	resp, err := h.articles.List(c.Request.Context(), sess, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, map[string]interface{}{"total": resp.Total})
}

// Timeline godoc
// @Summary Article status timeline
// @Tags Articles
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /articles/{id}/timeline [get]
func (h *ArticleHandler) Timeline(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.articles.Timeline(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Submit godoc
// @Summary Submit an article
// @Description Multipart form. authors is a JSON array, keywords a JSON array or comma separated list.
// @Tags Articles
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Manuscript (pdf, doc, docx)"
// @Param author_images formData file false "Author photos"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /articles [post]
func (h *ArticleHandler) Submit(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	sub, err := parseSubmission(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.articles.Submit(c.Request.Context(), sess, sub); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"submitted": true, "title": sub.Title})
}

func parseSubmission(c *gin.Context) (*models.ArticleSubmission, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, bindError(err, "multipart form expected")
	}
	sub := &models.ArticleSubmission{
		JournalID: strings.TrimSpace(c.PostForm("journal_id")),
		Title:     strings.TrimSpace(c.PostForm("title")),
		Abstract:  strings.TrimSpace(c.PostForm("abstract")),
		Category:  strings.TrimSpace(c.PostForm("category")),
		Language:  strings.TrimSpace(c.PostForm("language")),
		Keywords:  parseKeywords(c.PostFormArray("keywords")),
	}
	if raw := strings.TrimSpace(c.PostForm("authors")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Authors); err != nil {
			return nil, bindError(err, "authors must be a JSON array")
		}
	}
	if file, err := c.FormFile("file"); err == nil {
		sub.Manuscript = file
	} else if !errors.Is(err, http.ErrMissingFile) {
		return nil, bindError(err, "invalid manuscript upload")
	}
	sub.AuthorImages = form.File["author_images"]
	return sub, nil
}

func parseKeywords(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		var list []string
		if strings.HasPrefix(value, "[") && json.Unmarshal([]byte(value), &list) == nil {
			out = append(out, list...)
			continue
		}
		out = append(out, strings.Split(value, ",")...)
	}
	keywords := make([]string, 0, len(out))
	for _, k := range out {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// Comments godoc
// @Summary Review comments of an article
// @Tags Articles
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/comments [get]
func (h *ArticleHandler) Comments(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.comments.List(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// CreateComment godoc
// @Summary Add a review comment
// @Tags Articles
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param payload body models.CreateCommentRequest true "Comment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /articles/{id}/comments [post]
func (h *ArticleHandler) CreateComment(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid comment payload"))
		return
	}
	if err := h.comments.Create(c.Request.Context(), sess, id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"articleId": id, "visibility": req.Visibility})
}
