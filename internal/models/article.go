package models

import (
	"encoding/json"
	"time"
)

// Author is one contributor listed on a submission.
type Author struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Authors decodes either an array or a JSON-encoded array string; anything
// else degrades to an empty list.
type Authors []Author

// UnmarshalJSON implements json.Unmarshaler.
func (a *Authors) UnmarshalJSON(data []byte) error {
	*a = Authors{}
	var list []Author
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if err := json.Unmarshal([]byte(text), &list); err == nil {
			*a = list
		}
	}
	return nil
}

// Article is a manuscript as returned by the journal backend.
type Article struct {
	ID        ID        `json:"id"`
	JournalID ID        `json:"journal_id"`
	UserID    ID        `json:"user_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	APCPaid   Bool      `json:"apc_paid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Keywords  Strings   `json:"keywords"`
	Authors   Authors   `json:"authors"`
	Abstract  string    `json:"abstract"`
	Category  string    `json:"category"`
	Language  string    `json:"language"`
	FileURL   string    `json:"file_url"`
}

type articleWire struct {
	ID        ID      `json:"id"`
	JournalID ID      `json:"journal_id"`
	UserID    ID      `json:"user_id"`
	Title     Text    `json:"title"`
	Status    Text    `json:"status"`
	APCPaid   Bool    `json:"apc_paid"`
	Keywords  Strings `json:"keywords"`
	Authors   Authors `json:"authors"`
	Abstract  Text    `json:"abstract"`
	Category  Text    `json:"category"`
	Language  Text    `json:"language"`
	FileURL   Text    `json:"file_url"`
}

// UnmarshalJSON resolves timestamps from whichever field the backend used.
func (a *Article) UnmarshalJSON(data []byte) error {
	var wire articleWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*a = Article{
		ID:        wire.ID,
		JournalID: wire.JournalID,
		UserID:    wire.UserID,
		Title:     string(wire.Title),
		Status:    string(wire.Status),
		APCPaid:   wire.APCPaid,
		Keywords:  wire.Keywords,
		Authors:   wire.Authors,
		Abstract:  string(wire.Abstract),
		Category:  string(wire.Category),
		Language:  string(wire.Language),
		FileURL:   string(wire.FileURL),
	}
	a.CreatedAt = resolveTimestamp(data)
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err == nil {
		a.UpdatedAt, _ = FirstTimestamp(raw, "updatedAt", "updated_at")
	}
	return nil
}

// Timestamp reports the resolved creation time.
func (a Article) Timestamp() (time.Time, bool) {
	return a.CreatedAt, !a.CreatedAt.IsZero()
}

// ArticleStatus returns the parsed editorial status.
func (a Article) ArticleStatus() ArticleStatus {
	status, _ := ParseArticleStatus(a.Status)
	return status
}

// ArticleView decorates an article for list rendering.
type ArticleView struct {
	Article
	AuthorLabel   string        `json:"author_label"`
	DisplayStatus ArticleStatus `json:"display_status"`
}
