package models

import "time"

// User represents an account on the dashboard.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	Phone        string    `json:"phone,omitempty"`
	Company      string    `json:"company,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitized returns a copy without the password hash.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// ProfileUpdate carries the self-service editable fields of a user.
type ProfileUpdate struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	AvatarURL string `json:"avatarUrl"`
}

// Scope is the ownership filter applied to shipments and drivers.
type Scope struct {
	UserID string
	All    bool
}

// ScopeFor derives the ownership filter for the given identity. Admins see every owner's rows.
func ScopeFor(u User) Scope {
	return Scope{UserID: u.ID, All: u.Role == RoleAdmin}
}
