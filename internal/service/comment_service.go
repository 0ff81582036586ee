package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/normalize"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/internal/validation"
)

type commentBackend interface {
	Comments(ctx context.Context, token, articleID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, token, articleID, userID string, req models.CreateCommentRequest) error
}

type articleLookup interface {
	Get(ctx context.Context, sess *session.Session, id string) (*models.Article, error)
}

// CommentService lists and appends review notes on articles in scope.
type CommentService struct {
	backend   commentBackend
	articles  articleLookup
	validator *validation.Validator
	logger    *zap.Logger
}

// NewCommentService constructs a CommentService.
func NewCommentService(backend commentBackend, articles articleLookup, validator *validation.Validator, logger *zap.Logger) *CommentService {
	if validator == nil {
		validator = validation.New(validation.FileLimits{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{backend: backend, articles: articles, validator: validator, logger: logger}
}

// visibleTo reports whether sess may read c. Authors read Author notes only;
// Private notes are limited to their writer and super admins.
func visibleTo(sess *session.Session, c models.Comment) bool {
	switch {
	case sess.Role == models.RoleSuperAdmin:
		return true
	case strings.EqualFold(c.Visibility, models.VisibilityPrivate):
		return c.UserID == sess.UserID
	case sess.Role == models.RoleAuthor:
		return strings.EqualFold(c.Visibility, models.VisibilityAuthor)
	default:
		return true
	}
}

// List returns the visible comments of an article, newest first.
func (s *CommentService) List(ctx context.Context, sess *session.Session, articleID string) (*dto.CommentListResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	article, err := s.articles.Get(ctx, sess, articleID)
	if err != nil {
		return nil, err
	}
	comments, err := s.backend.Comments(ctx, sess.Token, string(article.ID))
	if err != nil {
		return nil, invalidateOnExpiry(sess, err)
	}
	comments = normalize.Where(comments, func(c models.Comment) bool {
		return (c.ArticleID == "" || c.ArticleID == article.ID) && visibleTo(sess, c)
	})
	sortNewestFirst(comments)
	return &dto.CommentListResponse{ArticleID: article.ID, Items: comments}, nil
}

// Create appends a review note to an article in scope.
func (s *CommentService) Create(ctx context.Context, sess *session.Session, articleID string, req models.CreateCommentRequest) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	article, err := s.articles.Get(ctx, sess, articleID)
	if err != nil {
		return err
	}
	if err := s.backend.CreateComment(ctx, sess.Token, string(article.ID), string(sess.UserID), req); err != nil {
		return invalidateOnExpiry(sess, err)
	}
	s.logger.Info("review comment added",
		zap.String("article_id", string(article.ID)),
		zap.String("visibility", req.Visibility),
		zap.String("actor", string(sess.UserID)),
	)
	return nil
}
