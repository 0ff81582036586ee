package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

type fakeAuthenticator struct {
	sessions map[string]*session.Session
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*session.Session, error) {
	if token == "revoked" {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	if sess, ok := f.sessions[token]; ok {
		return sess, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newAuthRouter(t *testing.T, roles ...models.UserRole) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := &fakeAuthenticator{sessions: map[string]*session.Session{
		"admin":  session.New("1", models.RoleSuperAdmin, "root@example.org", "admin"),
		"author": session.New("7", models.RoleAuthor, "ada@example.org", "author"),
	}}
	r := gin.New()
	r.GET("/protected", JWT(auth), RequireRoles(roles...), func(c *gin.Context) {
		sess, ok := session.From(c)
		require.True(t, ok)
		c.String(http.StatusOK, string(sess.UserID))
	})
	return r
}

func doGet(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	r := newAuthRouter(t, models.RoleSuperAdmin, models.RoleAuthor)

	w := doGet(r, "Bearer author")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Token author").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer nope").Code)

	w = doGet(r, "Bearer revoked")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_EXPIRED")
}

func TestRequireRoles(t *testing.T) {
	r := newAuthRouter(t, models.RoleSuperAdmin)
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer admin").Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer author").Code)
}

func TestRequireRolesWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RequireRoles(models.RoleSuperAdmin)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	WithResponseMeta()(c)
	MarkStale(c, "articles")
	MarkStale(c, "logs")

	meta := ExtractMeta(c)
	assert.Equal(t, []string{"articles", "logs"}, meta[staleKey])
	assert.Contains(t, meta, "processing_time_ms")
	assert.NotContains(t, meta, "started_at")
}

type recordingObserver struct {
	mu    sync.Mutex
	paths []string
	codes []int
}

func (o *recordingObserver) ObserveHTTPRequest(_ string, path string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paths = append(o.paths, path)
	o.codes = append(o.codes, status)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &recordingObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/articles/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/articles/10", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, []string{"/articles/:id", "unmatched"}, obs.paths)
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNotFound}, obs.codes)
}

func TestAuditLogsSuccessfulActions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.PUT("/journals/:id/status", func(c *gin.Context) {
		session.Set(c, session.New("1", models.RoleSuperAdmin, "", "token"))
	}, Audit(zap.New(core), "journal.status"), func(c *gin.Context) {
		if c.Param("id") == "bad" {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/journals/3/status", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/journals/bad/status", nil))

	entries := logs.FilterMessage("panel action").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "journal.status", fields["action"])
	assert.Equal(t, "3", fields["target_id"])
	assert.Equal(t, "1", fields["actor"])
}
