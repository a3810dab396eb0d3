package domain

import "time"

// Account is the single identity record for a person, independent of the
// roles attached to it. Accounts are created once and never hard-deleted;
// deactivation is the terminal soft state.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"`
	Bio          string     `json:"bio,omitempty"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	Nationality  string     `json:"nationality,omitempty"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	Languages    []string   `json:"languages,omitempty"`
	Active       bool       `json:"active"`
	Verified     bool       `json:"verified"`
	// CompletionScore is the 0-100 profile completion score maintained by
	// the scorer; it is the only field the scorer ever writes.
	CompletionScore int       `json:"completion_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
