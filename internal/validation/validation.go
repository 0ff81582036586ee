// Package validation checks panel payloads locally so that invalid requests
// never reach the journal backend.
package validation

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/journal-desk-api/internal/models"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

const (
	// DefaultMaxDocumentBytes caps manuscript uploads.
	DefaultMaxDocumentBytes int64 = 10 << 20
	// DefaultMaxImageBytes caps author image uploads.
	DefaultMaxImageBytes int64 = 2 << 20
)

var (
	orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

	documentTypes = map[string]struct{}{
		"application/pdf":    {},
		"application/msword": {},
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	}
	documentExtensions = map[string]string{
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
)

var messages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"password": "%s must be at least 6 characters and contain an uppercase letter",
	"orcid":    "%s must look like 0000-0000-0000-000X",
	"phone":    "%s must contain 10 to 15 digits",
	"oneof":    "%s must be one of: %s",
	"max":      "%s must be at most %s characters",
	"min":      "%s needs at least %s entries",
}

// FileLimits bounds multipart uploads.
type FileLimits struct {
	MaxDocumentBytes int64
	MaxImageBytes    int64
}

// Validator wraps go-playground/validator with the journal-specific tags.
type Validator struct {
	validate *validator.Validate
	limits   FileLimits
}

// New builds a Validator. Zero limits fall back to the defaults.
func New(limits FileLimits) *Validator {
	if limits.MaxDocumentBytes <= 0 {
		limits.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = DefaultMaxImageBytes
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("orcid", func(fl validator.FieldLevel) bool {
		return ValidORCID(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	return &Validator{validate: v, limits: limits}
}

// Struct validates s and returns a VALIDATION_ERROR whose message describes
// the first failing field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	format, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	if strings.Count(format, "%s") == 2 {
		return fmt.Sprintf(format, fe.Field(), fe.Param())
	}
	return fmt.Sprintf(format, fe.Field())
}

// ValidPassword requires at least 6 characters and one uppercase letter.
func ValidPassword(password string) bool {
	if len([]rune(password)) < 6 {
		return false
	}
	for _, r := range password {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// ValidORCID checks the 16-digit ORCID layout in groups of four.
func ValidORCID(orcid string) bool {
	return orcidPattern.MatchString(strings.TrimSpace(orcid))
}

// ValidPhone accepts 10 to 15 digits once spaces, dashes, dots, parentheses
// and a leading plus are removed.
func ValidPhone(phone string) bool {
	digits := strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	digits = strings.TrimPrefix(digits, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Manuscript checks the submitted document type and size.
func (v *Validator) Manuscript(file *multipart.FileHeader) error {
	if file == nil {
		return appErrors.Clone(appErrors.ErrValidation, "manuscript file is required")
	}
	if _, ok := documentTypes[contentType(file)]; !ok {
		return appErrors.Clone(appErrors.ErrValidation, "manuscript must be a PDF or Word document")
	}
	if file.Size > v.limits.MaxDocumentBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("manuscript must be at most %s", humanBytes(v.limits.MaxDocumentBytes)))
	}
	return nil
}

// AuthorImage checks an author photo type and size.
func (v *Validator) AuthorImage(file *multipart.FileHeader) error {
	if file == nil {
		return nil
	}
	if !strings.HasPrefix(contentType(file), "image/") {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not an image", file.Filename))
	}
	if file.Size > v.limits.MaxImageBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be at most %s", file.Filename, humanBytes(v.limits.MaxImageBytes)))
	}
	return nil
}

// Submission validates the form fields and every attached file.
func (v *Validator) Submission(sub *models.ArticleSubmission) error {
	if sub == nil {
		return appErrors.Clone(appErrors.ErrValidation, "submission is required")
	}
	if err := v.Struct(sub); err != nil {
		return err
	}
	if err := v.Manuscript(sub.Manuscript); err != nil {
		return err
	}
	for _, image := range sub.AuthorImages {
		if err := v.AuthorImage(image); err != nil {
			return err
		}
	}
	return nil
}

func contentType(file *multipart.FileHeader) string {
	declared := ""
	if file.Header != nil {
		declared = file.Header.Get("Content-Type")
	}
	if parsed, _, err := mime.ParseMediaType(declared); err == nil {
		declared = parsed
	}
	if declared != "" && declared != "application/octet-stream" {
		return strings.ToLower(declared)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if known, ok := documentExtensions[ext]; ok {
		return known
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		if parsed, _, err := mime.ParseMediaType(byExt); err == nil {
			return parsed
		}
	}
	return declared
}

func humanBytes(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
