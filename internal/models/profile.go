package models

import (
	"strings"
	"time"
)

// Module is a dashboard area enabled for a role.
type Module struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Route string `json:"route"`
	Logo  string `json:"logo,omitempty"`
}

// Role is the signed-in user's role with its enabled modules.
type Role struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Modules []Module `json:"modules"`
}

// Profile is the identity of the signed-in administrator.
type Profile struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Email       string     `json:"email"`
	Salutation  string     `json:"salutation,omitempty"`
	Surname     string     `json:"surname"`
	OtherNames  string     `json:"otherNames"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	Role        Role       `json:"role"`
}

// DisplayName renders the profile for headers and audit entries.
func (p Profile) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.Surname) + " " + strings.TrimSpace(p.OtherNames))
	if name == "" {
		return p.Email
	}
	return name
}

// HasModule reports whether the role enables the module routed at route.
func (p Profile) HasModule(route string) bool {
	route = strings.Trim(strings.ToLower(route), "/")
	for _, m := range p.Role.Modules {
		if strings.Trim(strings.ToLower(m.Route), "/") == route {
			return true
		}
	}
	return false
}

// Session carries the authenticated context for one request.
type Session struct {
	Token     string     `json:"-"`
	Profile   Profile    `json:"profile"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	ClientIP  string     `json:"-"`
	UserAgent string     `json:"-"`
}

// Actor returns the identifier recorded as reviewer/approver.
func (s *Session) Actor() string {
	if s == nil {
		return ""
	}
	if s.Profile.UserID != "" {
		return s.Profile.UserID
	}
	return s.Profile.ID
}
