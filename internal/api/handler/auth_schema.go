package handler

import (
	"time"

	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

// roleDataRequest is the union of role-specific registration payloads. Which
// fields are consulted depends on the requested role; the rest are ignored.
// There is intentionally no approved field.
type roleDataRequest struct {
	// customer
	Preferences map[string]string `json:"preferences,omitempty"`

	// driver
	LicenseNumber string     `json:"license_number,omitempty"`
	LicenseExpiry *time.Time `json:"license_expiry,omitempty"`
	Languages     []string   `json:"languages,omitempty"`

	// editor
	InvitationCode string `json:"invitation_code,omitempty"`
}

type registerRequest struct {
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Name     string           `json:"name"`
	Phone    string           `json:"phone,omitempty"`
	Role     string           `json:"role"`
	RoleData *roleDataRequest `json:"role_data,omitempty"`
}

// toRoleData projects the flat request union onto the variant matching the
// requested role, dropping everything else.
func (r *registerRequest) toRoleData(role domain.Role) ports.RoleData {
	var data ports.RoleData
	if r.RoleData == nil {
		return data
	}
	switch role {
	case domain.RoleCustomer:
		data.Customer = &ports.CustomerData{Preferences: r.RoleData.Preferences}
	case domain.RoleDriver:
		driver := &ports.DriverData{
			LicenseNumber: r.RoleData.LicenseNumber,
			Languages:     r.RoleData.Languages,
		}
		if r.RoleData.LicenseExpiry != nil {
			driver.LicenseExpiry = *r.RoleData.LicenseExpiry
		}
		data.Driver = driver
	case domain.RoleEditor:
		data.Editor = &ports.EditorData{InvitationCode: r.RoleData.InvitationCode}
	}
	return data
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type accountResponse struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone,omitempty"`
	Active          bool     `json:"active"`
	Verified        bool     `json:"verified"`
	CompletionScore int      `json:"completion_score"`
	Roles           []string `json:"roles,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

func toAccountResponse(a *domain.Account, roles []string) *accountResponse {
	if a == nil {
		return nil
	}
	return &accountResponse{
		ID:              a.ID,
		Email:           a.Email,
		Name:            a.Name,
		Phone:           a.Phone,
		Active:          a.Active,
		Verified:        a.Verified,
		CompletionScore: a.CompletionScore,
		Roles:           roles,
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type registerResponse struct {
	Success         bool             `json:"success"`
	Message         string           `json:"message"`
	PendingApproval bool             `json:"pending_approval"`
	Account         *accountResponse `json:"account,omitempty"`
	Timestamp       string           `json:"timestamp"`
	RequestID       string           `json:"request_id,omitempty"`
}

type loginResponse struct {
	Token     string           `json:"token"`
	Account   *accountResponse `json:"account"`
	Timestamp string           `json:"timestamp"`
	RequestID string           `json:"request_id,omitempty"`
}
