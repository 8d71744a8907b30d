package session

import (
	"errors"
	"strings"
)

// Role is the closed role enumeration carried on a profile.
type Role string

const (
	RoleMember    Role = "member"
	RoleAdmin     Role = "admin"
	RoleExecutive Role = "executive"
)

// ParseRole maps the backend's role strings onto the closed set. Unknown or
// blank roles degrade to member; they never grant access.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin
	case "ceo", "executive":
		return RoleExecutive
	default:
		return RoleMember
	}
}

// Elevated reports whether the role may reach the reviewer dashboard.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleExecutive
}

// UserProfile is the authenticated user's identity as returned by the
// identity exchange. Immutable once fetched; refresh replaces it wholesale.
type UserProfile struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Role          Role     `json:"role"`
	DepartmentIDs []string `json:"department_ids"`
}

// HasDepartments reports whether the user belongs to any department, which
// routes them to the reviewer dashboard on sign-in.
func (p *UserProfile) HasDepartments() bool {
	return p != nil && len(p.DepartmentIDs) > 0
}

// Session is the authenticated state owned exclusively by the Store. Other
// components read copies of it and never mutate it.
type Session struct {
	Credential string       `json:"-"`
	User       *UserProfile `json:"user"`
}

// IsAuthenticated holds iff both credential and user are present.
func (s Session) IsAuthenticated() bool {
	return s.Credential != "" && s.User != nil
}

var (
	ErrNoPersistedCredential = errors.New("no persisted credential")
)
