package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/filter"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/internal/timeline"
	"github.com/noah-isme/journal-desk-api/internal/validation"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

type articleSubmitter interface {
	SubmitArticle(ctx context.Context, token, userID string, sub *models.ArticleSubmission) error
}

// ArticleServiceParams groups constructor dependencies.
type ArticleServiceParams struct {
	Articles  articleSource
	Journals  journalSource
	Users     userSource
	Submitter articleSubmitter
	Validator *validation.Validator
	Logger    *zap.Logger
}

// ArticleService serves role-scoped article lists, timelines and submissions.
type ArticleService struct {
	articles  articleSource
	journals  journalSource
	users     userSource
	submitter articleSubmitter
	validator *validation.Validator
	logger    *zap.Logger
}

// NewArticleService constructs an ArticleService.
func NewArticleService(params ArticleServiceParams) *ArticleService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validator := params.Validator
	if validator == nil {
		validator = validation.New(validation.FileLimits{})
	}
	return &ArticleService{
		articles:  params.Articles,
		journals:  params.Journals,
		users:     params.Users,
		submitter: params.Submitter,
		validator: validator,
		logger:    logger,
	}
}

// Scoped fetches the articles visible to sess.
func (s *ArticleService) Scoped(ctx context.Context, sess *session.Session) ([]models.Article, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var (
		articles []models.Article
		journals []models.Journal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		articles, err = s.articles.Articles(gctx, sess.Token)
		return err
	})
	if needsJournals(sess) {
		g.Go(func() error {
			var err error
			journals, err = s.journals.Journals(gctx, sess.Token)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, invalidateOnExpiry(sess, err)
	}
	return scopeArticles(sess, journals, articles), nil
}

// List returns the scoped articles filtered by free text and status tab, each
// labelled with its author. When the user directory cannot be loaded the
// labels fall back to "User #<id>".
func (s *ArticleService) List(ctx context.Context, sess *session.Session, req dto.ArticleListRequest) (*dto.ArticleListResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	var (
		articles []models.Article
		users    []models.User
		usersErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		articles, err = s.Scoped(gctx, sess)
		return err
	})
	if s.users != nil {
		g.Go(func() error {
			users, usersErr = s.users.Users(gctx, sess.Token)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	degraded := s.users == nil || usersErr != nil
	if usersErr != nil {
		s.logger.Warn("user directory unavailable, using placeholder author labels", zap.Error(usersErr))
	}

	names := make(map[models.ID]string, len(users))
	for _, user := range users {
		if name := user.DisplayName(); name != "" {
			names[user.ID] = name
		}
	}

	views := make([]models.ArticleView, 0, len(articles))
	for _, article := range articles {
		views = append(views, models.ArticleView{
			Article:       article,
			AuthorLabel:   authorLabel(article, names),
			DisplayStatus: article.ArticleStatus(),
		})
	}

	filtered := filter.Apply(views, filter.Options[models.ArticleView]{
		Query: req.Query,
		Fields: func(v models.ArticleView) []string {
			return append([]string{v.Title, v.Category, v.AuthorLabel, v.Status}, v.Keywords...)
		},
		Tab:      req.Tab,
		TabValue: func(v models.ArticleView) string { return string(v.DisplayStatus) },
	})
	return &dto.ArticleListResponse{Items: filtered, Total: len(filtered), AuthorsDegraded: degraded}, nil
}

func authorLabel(article models.Article, names map[models.ID]string) string {
	if name, ok := names[article.UserID]; ok {
		return name
	}
	if strings.TrimSpace(string(article.UserID)) == "" {
		return "Unknown author"
	}
	return fmt.Sprintf("User #%s", article.UserID)
}

// Get returns one article if it is within the caller's scope.
func (s *ArticleService) Get(ctx context.Context, sess *session.Session, id string) (*models.Article, error) {
	articles, err := s.Scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if string(articles[i].ID) == strings.TrimSpace(id) {
			return &articles[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
}

// Timeline projects the article status onto the editorial steps.
func (s *ArticleService) Timeline(ctx context.Context, sess *session.Session, id string) (*dto.ArticleTimelineResponse, error) {
	article, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return &dto.ArticleTimelineResponse{
		ArticleID: article.ID,
		Title:     article.Title,
		Timeline:  timeline.Project(article.Status),
	}, nil
}

// Submit validates a submission locally and forwards it to the backend.
// Invalid submissions never reach the backend.
func (s *ArticleService) Submit(ctx context.Context, sess *session.Session, sub *models.ArticleSubmission) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.validator.Submission(sub); err != nil {
		return err
	}
	if err := s.submitter.SubmitArticle(ctx, sess.Token, string(sess.UserID), sub); err != nil {
		return invalidateOnExpiry(sess, err)
	}
	s.logger.Info("article submitted",
		zap.String("user_id", string(sess.UserID)),
		zap.String("journal_id", sub.JournalID),
		zap.Int("authors", len(sub.Authors)),
	)
	return nil
}
