package domain

import "time"

// MembershipTier is the customer loyalty tier.
type MembershipTier string

const (
	TierBasic  MembershipTier = "basic"
	TierSilver MembershipTier = "silver"
	TierGold   MembershipTier = "gold"
)

// CustomerProfile is the customer role extension, created with defaults at
// provisioning time. No approval gate applies.
type CustomerProfile struct {
	AccountID    string            `json:"account_id"`
	Preferences  map[string]string `json:"preferences,omitempty"`
	LoyaltyScore int               `json:"loyalty_score"`
	Tier         MembershipTier    `json:"tier"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// DriverProfile is the driver role extension. Approved starts false and only
// an out-of-scope moderation action can flip it.
type DriverProfile struct {
	AccountID     string    `json:"account_id"`
	LicenseNumber string    `json:"license_number"`
	LicenseExpiry time.Time `json:"license_expiry"`
	Languages     []string  `json:"languages"`
	Approved      bool      `json:"approved"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EditorProfile is the content-editor role extension. Permissions start empty
// and are never taken from caller input; Approved starts false.
type EditorProfile struct {
	AccountID   string    `json:"account_id"`
	Permissions []string  `json:"permissions"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleProfiles aggregates all provisioned role profiles for one account.
// A nil field means that profile has not been provisioned.
type RoleProfiles struct {
	Customer *CustomerProfile
	Driver   *DriverProfile
	Editor   *EditorProfile
}
