package models

import "mime/multipart"

// ArticleSubmission is the multipart article form after parsing.
type ArticleSubmission struct {
	JournalID string             `form:"journal_id" validate:"required"`
	Title     string             `form:"title" validate:"required,max=300"`
	Abstract  string             `form:"abstract" validate:"required"`
	Category  string             `form:"category" validate:"required"`
	Language  string             `form:"language" validate:"required"`
	Keywords  []string           `form:"keywords" validate:"required,min=1,dive,required"`
	Authors   []SubmissionAuthor `form:"-" validate:"required,min=1,dive"`

	Manuscript   *multipart.FileHeader   `form:"-"`
	AuthorImages []*multipart.FileHeader `form:"-"`
}

// SubmissionAuthor is one contributor entered in the wizard.
type SubmissionAuthor struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Affiliation string `json:"affiliation"`
	ORCID       string `json:"orcid" validate:"omitempty,orcid"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
}
