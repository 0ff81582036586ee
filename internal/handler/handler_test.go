package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/middleware"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/service"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func testContext(method, target string, body io.Reader, sess *session.Session) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, body)
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		session.Set(c, sess)
	}
	return c, rec
}

func editor() *session.Session {
	return session.New("2", models.RoleEditor, "ed@example.org", "token")
}

type fakeDashboardSrv struct {
	overview *dto.DashboardResponse
	trend    *dto.TrendResponse
	err      error
	mode     models.TrendMode
}

func (f *fakeDashboardSrv) Overview(context.Context, *session.Session) (*dto.DashboardResponse, error) {
	return f.overview, f.err
}

func (f *fakeDashboardSrv) Trends(_ context.Context, _ *session.Session, mode models.TrendMode) (*dto.TrendResponse, error) {
	f.mode = mode
	return f.trend, f.err
}

type fakeExporter struct {
	format string
}

func (f *fakeExporter) Trend(_ context.Context, _ *session.Session, mode models.TrendMode, format string) (*service.ExportResult, error) {
	f.format = format
	return &service.ExportResult{Filename: "trend-" + string(mode) + ".csv", ContentType: "text/csv", Body: []byte("bucket,label,count\n")}, nil
}

func TestDashboardOverviewMarksStaleSections(t *testing.T) {
	srv := &fakeDashboardSrv{overview: &dto.DashboardResponse{
		Role:     models.RoleEditor,
		Articles: dto.ArticlesSection{SectionState: dto.SectionState{Error: "articles offline", Stale: true}, Total: 3},
	}}
	h := NewDashboardHandler(srv, &fakeExporter{})

	c, rec := testContext(http.MethodGet, "/dashboard", nil, editor())
	middleware.WithResponseMeta()(c)
	h.Overview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, []interface{}{"articles"}, envelope.Meta["stale_sections"])
	assert.Contains(t, string(envelope.Data), `"error":"articles offline"`)
}

func TestDashboardOverviewRequiresSession(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardSrv{}, &fakeExporter{})
	c, rec := testContext(http.MethodGet, "/dashboard", nil, nil)
	h.Overview(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardTrendsMode(t *testing.T) {
	srv := &fakeDashboardSrv{trend: &dto.TrendResponse{TrendSummary: models.TrendSummary{Mode: models.TrendMonthly}}}
	h := NewDashboardHandler(srv, &fakeExporter{})

	c, rec := testContext(http.MethodGet, "/dashboard/trends?mode=weekly", nil, editor())
	h.Trends(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = testContext(http.MethodGet, "/dashboard/trends?mode=monthly", nil, editor())
	h.Trends(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TrendMonthly, srv.mode)
}

func TestDashboardExportAttachment(t *testing.T) {
	exporter := &fakeExporter{}
	h := NewDashboardHandler(&fakeDashboardSrv{}, exporter)

	c, rec := testContext(http.MethodGet, "/dashboard/trends/export?format=csv", nil, editor())
	h.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "trend-daily.csv")
	assert.Equal(t, "csv", exporter.format)
}

type fakeArticleSrv struct {
	listReq   dto.ArticleListRequest
	submitted *models.ArticleSubmission
	err       error
}

func (f *fakeArticleSrv) List(_ context.Context, _ *session.Session, req dto.ArticleListRequest) (*dto.ArticleListResponse, error) {
	f.listReq = req
	return &dto.ArticleListResponse{Items: []models.ArticleView{}, Total: 0}, f.err
}

func (f *fakeArticleSrv) Timeline(_ context.Context, _ *session.Session, id string) (*dto.ArticleTimelineResponse, error) {
	if id == "404" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
	}
	return &dto.ArticleTimelineResponse{ArticleID: models.ID(id)}, nil
}

func (f *fakeArticleSrv) Submit(_ context.Context, _ *session.Session, sub *models.ArticleSubmission) error {
	f.submitted = sub
	return f.err
}

type fakeCommentSrv struct {
	created *models.CreateCommentRequest
}

func (f *fakeCommentSrv) List(_ context.Context, _ *session.Session, articleID string) (*dto.CommentListResponse, error) {
	return &dto.CommentListResponse{ArticleID: models.ID(articleID), Items: []models.Comment{}}, nil
}

func (f *fakeCommentSrv) Create(_ context.Context, _ *session.Session, _ string, req models.CreateCommentRequest) error {
	f.created = &req
	return nil
}

func TestArticleListBindsQuery(t *testing.T) {
	srv := &fakeArticleSrv{}
	h := NewArticleHandler(srv, &fakeCommentSrv{})

	c, rec := testContext(http.MethodGet, "/articles?q=soil&tab=published", nil, editor())
	h.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ArticleListRequest{Query: "soil", Tab: "published"}, srv.listReq)
}

func TestArticleTimelineNotFound(t *testing.T) {
	h := NewArticleHandler(&fakeArticleSrv{}, &fakeCommentSrv{})
	c, rec := testContext(http.MethodGet, "/articles/404/timeline", nil, editor())
	c.Params = gin.Params{{Key: "id", Value: "404"}}
	h.Timeline(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArticleSubmitParsesMultipart(t *testing.T) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	require.NoError(t, form.WriteField("journal_id", "1"))
	require.NoError(t, form.WriteField("title", " Soil carbon "))
	require.NoError(t, form.WriteField("keywords", `["soil","carbon"]`))
	require.NoError(t, form.WriteField("authors", `[{"name":"Ada","email":"ada@example.org"}]`))
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="paper.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := form.CreatePart(header)
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, form.Close())

	srv := &fakeArticleSrv{}
	h := NewArticleHandler(srv, &fakeCommentSrv{})
	c, rec := testContext(http.MethodPost, "/articles", body, session.New("7", models.RoleAuthor, "", "token"))
	c.Request.Header.Set("Content-Type", form.FormDataContentType())
	h.Submit(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, srv.submitted)
	assert.Equal(t, "Soil carbon", srv.submitted.Title)
	assert.Equal(t, []string{"soil", "carbon"}, srv.submitted.Keywords)
	require.Len(t, srv.submitted.Authors, 1)
	require.NotNil(t, srv.submitted.Manuscript)
	assert.Equal(t, "paper.pdf", srv.submitted.Manuscript.Filename)
}

func TestArticleSubmitRejectsBadAuthors(t *testing.T) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	require.NoError(t, form.WriteField("authors", "not json"))
	require.NoError(t, form.Close())

	srv := &fakeArticleSrv{}
	h := NewArticleHandler(srv, &fakeCommentSrv{})
	c, rec := testContext(http.MethodPost, "/articles", body, editor())
	c.Request.Header.Set("Content-Type", form.FormDataContentType())
	h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, srv.submitted)
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, parseKeywords([]string{"a, b", " c "}))
	assert.Equal(t, []string{"x", "y"}, parseKeywords([]string{`["x", " y"]`}))
	assert.Equal(t, []string{}, parseKeywords(nil))
}

func TestCreateCommentBindsJSON(t *testing.T) {
	comments := &fakeCommentSrv{}
	h := NewArticleHandler(&fakeArticleSrv{}, comments)

	c, rec := testContext(http.MethodPost, "/articles/10/comments", strings.NewReader(`{"visibility":"Author","comment":"Revise"}`), editor())
	c.Params = gin.Params{{Key: "id", Value: "10"}}
	h.CreateComment(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, comments.created)
	assert.Equal(t, "Revise", comments.created.Comment)

	c, rec = testContext(http.MethodPost, "/articles/10/comments", strings.NewReader(`{`), editor())
	c.Params = gin.Params{{Key: "id", Value: "10"}}
	h.CreateComment(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeJournalSrv struct {
	id     string
	action models.JournalAction
}

func (f *fakeJournalSrv) List(context.Context, *session.Session, dto.JournalListRequest) (*dto.JournalListResponse, error) {
	return &dto.JournalListResponse{Items: []models.Journal{}, Counts: map[string]int{"all": 0}}, nil
}

func (f *fakeJournalSrv) UpdateStatus(_ context.Context, _ *session.Session, id string, req models.JournalStatusRequest) (*dto.JournalStatusResponse, error) {
	f.id, f.action = id, req.Action
	return &dto.JournalStatusResponse{JournalID: models.ID(id), Action: req.Action, Status: models.JournalDisabled}, nil
}

func TestJournalUpdateStatus(t *testing.T) {
	srv := &fakeJournalSrv{}
	h := NewJournalHandler(srv)

	c, rec := testContext(http.MethodPut, "/journals/3/status", strings.NewReader(`{"action":"disable"}`), editor())
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	h.UpdateStatus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", srv.id)
	assert.Equal(t, models.JournalActionDisable, srv.action)
}

type fakeNotificationSrv struct {
	view *dto.NotificationView
	err  error
}

func (f *fakeNotificationSrv) View(context.Context, *session.Session, string) (*dto.NotificationView, error) {
	return f.view, f.err
}

func (f *fakeNotificationSrv) MarkRead(context.Context, *session.Session, string) (*dto.NotificationView, error) {
	return f.view, f.err
}

func (f *fakeNotificationSrv) Create(context.Context, *session.Session, models.CreateNotificationRequest) error {
	return f.err
}

func TestMarkReadRollbackReturnsViewWithError(t *testing.T) {
	srv := &fakeNotificationSrv{
		view: &dto.NotificationView{Items: []models.Notification{{ID: "2", Status: models.NotificationUnread}}, Unread: 1},
		err:  appErrors.Clone(appErrors.ErrFetchFailed, "cannot update"),
	}
	h := NewNotificationHandler(srv)

	c, rec := testContext(http.MethodPut, "/notifications/2/read", nil, editor())
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	h.MarkRead(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "FETCH_FAILED", envelope.Error.Code)
	var view dto.NotificationView
	require.NoError(t, json.Unmarshal(envelope.Data, &view))
	assert.Equal(t, 1, view.Unread)
	assert.Equal(t, models.NotificationUnread, view.Items[0].Status)
}

func TestMarkReadNotFound(t *testing.T) {
	h := NewNotificationHandler(&fakeNotificationSrv{err: appErrors.ErrNotFound})
	c, rec := testContext(http.MethodPut, "/notifications/9/read", nil, editor())
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	h.MarkRead(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeUserSrv struct {
	err error
}

func (f *fakeUserSrv) Create(context.Context, *session.Session, models.CreateUserRequest) error {
	return f.err
}

func TestUserCreateSurfacesValidation(t *testing.T) {
	h := NewUserHandler(&fakeUserSrv{err: appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters and contain an uppercase letter")})
	c, rec := testContext(http.MethodPost, "/users", strings.NewReader(`{"email":"a@b.co"}`), editor())
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Contains(t, envelope.Error.Message, "uppercase")
}

type fakeSnapshotSrv struct {
	req dto.SnapshotCaptureRequest
}

func (f *fakeSnapshotSrv) List(context.Context, *session.Session, dto.SnapshotListRequest) ([]models.TrendSnapshot, error) {
	return []models.TrendSnapshot{}, nil
}

func (f *fakeSnapshotSrv) Enqueue(_ context.Context, _ *session.Session, req dto.SnapshotCaptureRequest) (*dto.SnapshotCaptureResponse, error) {
	f.req = req
	return &dto.SnapshotCaptureResponse{JobID: "job-1", Mode: models.TrendDaily, Scope: service.ScopeGlobal}, nil
}

func TestSnapshotHandlerWithoutStorage(t *testing.T) {
	h := NewSnapshotHandler(nil)
	c, rec := testContext(http.MethodGet, "/snapshots", nil, editor())
	h.List(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSnapshotCaptureAcceptsEmptyBody(t *testing.T) {
	srv := &fakeSnapshotSrv{}
	h := NewSnapshotHandler(srv)
	c, rec := testContext(http.MethodPost, "/snapshots", http.NoBody, editor())
	h.Capture(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "job-1")
}

func TestReadyReportsFailingCheck(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"redis":    func(context.Context) error { return nil },
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})
	c, rec := testContext(http.MethodGet, "/ready", nil, nil)
	h.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
