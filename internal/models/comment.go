package models

import (
	"encoding/json"
	"time"
)

// Comment visibility values.
const (
	VisibilityAuthor  = "Author"
	VisibilityEditor  = "Editor"
	VisibilityPrivate = "Private"
)

// Comment is a review decision note attached to an article.
type Comment struct {
	ID         ID        `json:"id"`
	ArticleID  ID        `json:"article_id"`
	UserID     ID        `json:"user_id"`
	Visibility string    `json:"visibility"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

type commentWire struct {
	ID         ID   `json:"id"`
	ArticleID  ID   `json:"article_id"`
	UserID     ID   `json:"user_id"`
	Visibility Text `json:"visibility"`
	Comment    Text `json:"comment"`
}

// UnmarshalJSON resolves the creation time from the known field spellings.
func (c *Comment) UnmarshalJSON(data []byte) error {
	var wire commentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*c = Comment{
		ID:         wire.ID,
		ArticleID:  wire.ArticleID,
		UserID:     wire.UserID,
		Visibility: string(wire.Visibility),
		Comment:    string(wire.Comment),
		CreatedAt:  resolveTimestamp(data),
	}
	return nil
}

// Timestamp reports the resolved creation time.
func (c Comment) Timestamp() (time.Time, bool) {
	return c.CreatedAt, !c.CreatedAt.IsZero()
}

// CreateCommentRequest is the review decision payload.
type CreateCommentRequest struct {
	Visibility string `json:"visibility" validate:"required,oneof=Author Editor Private"`
	Comment    string `json:"comment" validate:"required,max=5000"`
}
