package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

type stubCacheRepo struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.store, key)
	}
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.store {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.store, key)
		}
	}
	return nil
}

func (s *stubCacheRepo) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.store[key]
	return ok
}

// fakeBackend stands in for the upstream client.
type fakeBackend struct {
	mu sync.Mutex

	articles         []models.Article
	articlesErr      error
	journals         []models.Journal
	journalsErr      error
	users            []models.User
	usersErr         error
	notifications    []models.Notification
	notificationsErr error
	logs             []models.AuditLog
	logsErr          error
	comments         []models.Comment
	commentsErr      error

	markReadErr       error
	createCommentErr  error
	createUserErr     error
	statusErr         error
	submitErr         error
	markRead          []string
	sentNotifications []models.CreateNotificationRequest
	sentComments      []models.CreateCommentRequest
	sentUsers         []models.CreateUserRequest
	statusUpdates     map[string]string
	submissions       int
	calls             map[string]int
}

func (f *fakeBackend) called(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Articles(context.Context, string) ([]models.Article, error) {
	f.called("articles")
	return f.articles, f.articlesErr
}

func (f *fakeBackend) Journals(context.Context, string) ([]models.Journal, error) {
	f.called("journals")
	return f.journals, f.journalsErr
}

func (f *fakeBackend) Users(context.Context, string) ([]models.User, error) {
	f.called("users")
	return f.users, f.usersErr
}

func (f *fakeBackend) Notifications(context.Context, string) ([]models.Notification, error) {
	f.called("notifications")
	out := make([]models.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out, f.notificationsErr
}

func (f *fakeBackend) AuditLogs(context.Context, string) ([]models.AuditLog, error) {
	f.called("logs")
	return f.logs, f.logsErr
}

func (f *fakeBackend) Comments(context.Context, string, string) ([]models.Comment, error) {
	f.called("comments")
	out := make([]models.Comment, len(f.comments))
	copy(out, f.comments)
	return out, f.commentsErr
}

func (f *fakeBackend) MarkNotificationRead(_ context.Context, _ string, id string) error {
	f.called("markRead")
	if f.markReadErr != nil {
		return f.markReadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markRead = append(f.markRead, id)
	return nil
}

func (f *fakeBackend) CreateNotification(_ context.Context, _ string, req models.CreateNotificationRequest) error {
	f.called("createNotification")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentNotifications = append(f.sentNotifications, req)
	return nil
}

func (f *fakeBackend) CreateComment(_ context.Context, _, _, _ string, req models.CreateCommentRequest) error {
	f.called("createComment")
	if f.createCommentErr != nil {
		return f.createCommentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentComments = append(f.sentComments, req)
	return nil
}

func (f *fakeBackend) CreateUser(_ context.Context, _ string, req models.CreateUserRequest) error {
	f.called("createUser")
	if f.createUserErr != nil {
		return f.createUserErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentUsers = append(f.sentUsers, req)
	return nil
}

func (f *fakeBackend) UpdateJournalStatus(_ context.Context, _, journalID, status string) error {
	f.called("updateJournal")
	if f.statusErr != nil {
		return f.statusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusUpdates == nil {
		f.statusUpdates = make(map[string]string)
	}
	f.statusUpdates[journalID] = status
	return nil
}

func (f *fakeBackend) SubmitArticle(context.Context, string, string, *models.ArticleSubmission) error {
	f.called("submit")
	if f.submitErr != nil {
		return f.submitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions++
	return nil
}

func newSession(role models.UserRole, id string) *session.Session {
	return session.New(id, role, id+"@example.org", "token-"+id)
}

func newArticleService(backend *fakeBackend) *ArticleService {
	return NewArticleService(ArticleServiceParams{
		Articles:  backend,
		Journals:  backend,
		Users:     backend,
		Submitter: backend,
	})
}

func enabledCache(repo *stubCacheRepo) *CacheService {
	return NewCacheService(repo, nil, time.Minute, nil, true)
}

// editorialFixture is scenario data: admin 5 owns journals 1 and 2, admin 6
// owns journal 3.
func editorialFixture() *fakeBackend {
	return &fakeBackend{
		journals: []models.Journal{
			{ID: "1", JournalAdminID: "5", Name: "Soil Letters", Status: models.JournalActive},
			{ID: "2", JournalAdminID: "5", Name: "Crop Review", Status: models.JournalPending},
			{ID: "3", JournalAdminID: "6", Name: "Marine Notes", Status: models.JournalDisabled},
		},
		articles: []models.Article{
			{ID: "10", JournalID: "1", UserID: "7", Title: "Soil carbon", Status: "Submitted", APCPaid: true},
			{ID: "11", JournalID: "2", UserID: "8", Title: "Wheat yields", Status: "under_review"},
			{ID: "12", JournalID: "3", UserID: "7", Title: "Reef survey", Status: "Published", APCPaid: true},
		},
		users: []models.User{{ID: "7", Name: "Ada"}, {ID: "8", Email: "bo@example.org"}},
	}
}
