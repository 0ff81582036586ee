package models

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the panel a user signs in to.
type UserRole string

const (
	RoleSuperAdmin   UserRole = "SUPER_ADMIN"
	RoleJournalAdmin UserRole = "JOURNAL_ADMIN"
	RoleEditor       UserRole = "EDITOR"
	RoleAuthor       UserRole = "AUTHOR"
)

// ParseRole normalises backend role spellings such as "superAdmin" or "journal-admin".
func ParseRole(raw string) UserRole {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(raw))
	switch key {
	case "superadmin":
		return RoleSuperAdmin
	case "journaladmin", "admin":
		return RoleJournalAdmin
	case "editor", "revieweditor":
		return RoleEditor
	default:
		return RoleAuthor
	}
}

// User is the minimal identity record used to label articles.
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UnmarshalJSON tolerates non-string values, such as a role object.
func (u *User) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID    ID   `json:"id"`
		Name  Text `json:"name"`
		Email Text `json:"email"`
		Role  Text `json:"role"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*u = User{ID: wire.ID, Name: string(wire.Name), Email: string(wire.Email), Role: string(wire.Role)}
	return nil
}

// DisplayName returns the user's name, falling back to the email address.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return strings.TrimSpace(u.Email)
}

// CreateUserRequest is used by super admins to provision panel accounts.
type CreateUserRequest struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,password"`
	Phone    string   `json:"phone" validate:"omitempty,phone"`
	Role     UserRole `json:"role" validate:"required,oneof=JOURNAL_ADMIN EDITOR AUTHOR"`
}

// JWTClaims is the access token payload issued by the journal backend.
type JWTClaims struct {
	UserID ID     `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
