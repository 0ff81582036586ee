package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/normalize"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

// Endpoint labels used for metrics and logs.
const (
	EndpointArticles           = "article.getAll"
	EndpointSubmitArticle      = "article.create"
	EndpointJournals           = "journal.getAll"
	EndpointUpdateJournal      = "journal.update"
	EndpointNotifications      = "notifications.list"
	EndpointMarkNotification   = "notifications.update"
	EndpointCreateNotification = "notifications.create"
	EndpointAuditLogs          = "audit-logs.list"
	EndpointCreateComment      = "comment.create"
	EndpointComments           = "comment.article"
	EndpointUsers              = "user.getAll"
	EndpointCreateUser         = "user.create"
)

func decode[T any](c *Client, endpoint string, items []interface{}) []T {
	records, dropped := normalize.Decode[T](items)
	if dropped > 0 {
		c.logger.Warn("dropped malformed backend records", zap.String("endpoint", endpoint), zap.Int("dropped", dropped))
	}
	return records
}

// Articles fetches every article visible to token.
func (c *Client) Articles(ctx context.Context, token string) ([]models.Article, error) {
	items, err := c.getAll(ctx, token, EndpointArticles, "/article/getAll", "articles")
	if err != nil {
		return nil, err
	}
	return decode[models.Article](c, EndpointArticles, items), nil
}

// Journals fetches every journal.
func (c *Client) Journals(ctx context.Context, token string) ([]models.Journal, error) {
	items, err := c.getAll(ctx, token, EndpointJournals, "/journal/getAll", "journals")
	if err != nil {
		return nil, err
	}
	return decode[models.Journal](c, EndpointJournals, items), nil
}

// UpdateJournalStatus stores a new journal status.
func (c *Client) UpdateJournalStatus(ctx context.Context, token, journalID, status string) error {
	path := "/journal/update/" + url.PathEscape(journalID)
	return c.send(ctx, token, EndpointUpdateJournal, http.MethodPut, path, map[string]string{"status": status})
}

// Notifications fetches the notifications visible to token.
func (c *Client) Notifications(ctx context.Context, token string) ([]models.Notification, error) {
	items, err := c.getAll(ctx, token, EndpointNotifications, "/notifications", "notifications")
	if err != nil {
		return nil, err
	}
	return decode[models.Notification](c, EndpointNotifications, items), nil
}

// MarkNotificationRead transitions one notification to read.
func (c *Client) MarkNotificationRead(ctx context.Context, token, notificationID string) error {
	path := "/notifications/" + url.PathEscape(notificationID)
	return c.send(ctx, token, EndpointMarkNotification, http.MethodPut, path, map[string]string{"status": models.NotificationRead})
}

// CreateNotification sends a notification to a user.
func (c *Client) CreateNotification(ctx context.Context, token string, req models.CreateNotificationRequest) error {
	return c.send(ctx, token, EndpointCreateNotification, http.MethodPost, "/notifications/create", req)
}

// AuditLogs fetches the activity log.
func (c *Client) AuditLogs(ctx context.Context, token string) ([]models.AuditLog, error) {
	items, err := c.getAll(ctx, token, EndpointAuditLogs, "/audit-logs", "logs")
	if err != nil {
		return nil, err
	}
	return decode[models.AuditLog](c, EndpointAuditLogs, items), nil
}

// Comments fetches the review notes of one article.
func (c *Client) Comments(ctx context.Context, token, articleID string) ([]models.Comment, error) {
	items, err := c.getAll(ctx, token, EndpointComments, "/comment/article/"+url.PathEscape(articleID), "comments")
	if err != nil {
		return nil, err
	}
	return decode[models.Comment](c, EndpointComments, items), nil
}

// CreateComment appends a review note to an article.
func (c *Client) CreateComment(ctx context.Context, token, articleID, userID string, req models.CreateCommentRequest) error {
	payload := map[string]string{
		"article_id": articleID,
		"user_id":    userID,
		"visibility": req.Visibility,
		"comment":    req.Comment,
	}
	return c.send(ctx, token, EndpointCreateComment, http.MethodPost, "/comment/create", payload)
}

// Users fetches the user directory.
func (c *Client) Users(ctx context.Context, token string) ([]models.User, error) {
	items, err := c.getAll(ctx, token, EndpointUsers, "/user/getAll", "users")
	if err != nil {
		return nil, err
	}
	return decode[models.User](c, EndpointUsers, items), nil
}

// CreateUser provisions a panel account.
func (c *Client) CreateUser(ctx context.Context, token string, req models.CreateUserRequest) error {
	return c.send(ctx, token, EndpointCreateUser, http.MethodPost, "/user/create", req)
}

// SubmitArticle forwards a validated submission as multipart/form-data. The
// manuscript is sent as "file" and author photos as "author_images".
func (c *Client) SubmitArticle(ctx context.Context, token, userID string, sub *models.ArticleSubmission) error {
	body, contentType, err := submissionForm(userID, sub)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode submission")
	}
	_, err = c.do(ctx, call{
		endpoint:    EndpointSubmitArticle,
		method:      http.MethodPost,
		path:        "/article/create",
		token:       token,
		body:        body,
		contentType: contentType,
	})
	return err
}

func submissionForm(userID string, sub *models.ArticleSubmission) (io.Reader, string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	keywords, err := json.Marshal(sub.Keywords)
	if err != nil {
		return nil, "", err
	}
	authors, err := json.Marshal(sub.Authors)
	if err != nil {
		return nil, "", err
	}
	fields := [][2]string{
		{"journal_id", sub.JournalID},
		{"user_id", userID},
		{"title", sub.Title},
		{"abstract", sub.Abstract},
		{"category", sub.Category},
		{"language", sub.Language},
		{"keywords", string(keywords)},
		{"authors", string(authors)},
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}

	if err := attach(form, "file", sub.Manuscript); err != nil {
		return nil, "", err
	}
	for _, image := range sub.AuthorImages {
		if err := attach(form, "author_images", image); err != nil {
			return nil, "", err
		}
	}
	if err := form.Close(); err != nil {
		return nil, "", err
	}
	return &buf, form.FormDataContentType(), nil
}

func attach(form *multipart.Writer, field string, file *multipart.FileHeader) error {
	if file == nil {
		return nil
	}
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", file.Filename, err)
	}
	defer src.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Filename))
	if ct := file.Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	} else {
		header.Set("Content-Type", "application/octet-stream")
	}
	dst, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
