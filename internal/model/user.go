package model

import "time"

// User field constraints
const (
	MinNameLength     = 3
	MaxNameLength     = 20
	MaxLastNameLength = 20
	MaxLocationLength = 20
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt ignores bytes past 72

	DefaultLastName = "lastName"
	DefaultLocation = "my city"
)

// User represents a user account
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Hash      *string   `json:"-"` // Never expose password hash
	LastName  string    `json:"last_name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenClaims represents the identity carried by a session token
type TokenClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// UserSummary is the public view of a user returned alongside a token
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	LastName string `json:"last_name"`
	Location string `json:"location"`
}

// Summary returns the public view of u
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		LastName: u.LastName,
		Location: u.Location,
	}
}
