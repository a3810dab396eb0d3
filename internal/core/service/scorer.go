package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

// Role-profile denominator weights. Each provisioned profile widens the
// denominator by its weight and contributes to the numerator only through
// its populated fields.
const (
	customerWeight = 3
	driverWeight   = 4
	editorWeight   = 2
	baseFieldCount = 8
)

// ScoreService computes the 0-100 profile completion score and persists it
// on the account. Repeated calls with no intervening writes return the same
// value.
type ScoreService struct {
	accounts ports.AccountRepository
	roles    ports.RoleRepository
	log      zerolog.Logger
}

func NewScoreService(accounts ports.AccountRepository, roles ports.RoleRepository, log zerolog.Logger) *ScoreService {
	return &ScoreService{accounts: accounts, roles: roles, log: log}
}

func (s *ScoreService) Score(ctx context.Context, accountID string) (int, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("score: %w", err)
	}

	profiles, err := s.roles.FindProfiles(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("score: load profiles: %w", err)
	}

	numerator := populatedBaseFields(account)
	denominator := baseFieldCount

	if p := profiles.Customer; p != nil {
		denominator += customerWeight
		numerator += populatedCustomerFields(p)
	}
	if p := profiles.Driver; p != nil {
		denominator += driverWeight
		numerator += populatedDriverFields(p)
	}
	if p := profiles.Editor; p != nil {
		denominator += editorWeight
		numerator += populatedEditorFields(p)
	}

	score := int(math.Round(100 * float64(numerator) / float64(denominator)))

	if score != account.CompletionScore {
		if err := s.accounts.UpdateScore(ctx, accountID, score); err != nil {
			return 0, fmt.Errorf("score: persist: %w", err)
		}
	}

	s.log.Debug().
		Str("account_id", accountID).
		Int("numerator", numerator).
		Int("denominator", denominator).
		Int("score", score).
		Msg("profile completion scored")

	return score, nil
}

// populatedBaseFields counts the populated fields among the 8-field base set:
// name, email, phone, bio, date of birth, nationality, avatar, languages.
func populatedBaseFields(a *domain.Account) int {
	n := 0
	if a.Name != "" {
		n++
	}
	if a.Email != "" {
		n++
	}
	if a.Phone != "" {
		n++
	}
	if a.Bio != "" {
		n++
	}
	if a.DateOfBirth != nil {
		n++
	}
	if a.Nationality != "" {
		n++
	}
	if a.AvatarURL != "" {
		n++
	}
	if len(a.Languages) > 0 {
		n++
	}
	return n
}

// Customer fields counted: preferences set, loyalty activity, tier above the
// default. A freshly provisioned profile contributes 0.
func populatedCustomerFields(p *domain.CustomerProfile) int {
	n := 0
	if len(p.Preferences) > 0 {
		n++
	}
	if p.LoyaltyScore > 0 {
		n++
	}
	if p.Tier != "" && p.Tier != domain.TierBasic {
		n++
	}
	return n
}

// Driver fields counted: license number, license expiry, languages, approval.
func populatedDriverFields(p *domain.DriverProfile) int {
	n := 0
	if p.LicenseNumber != "" {
		n++
	}
	if !p.LicenseExpiry.IsZero() {
		n++
	}
	if len(p.Languages) > 0 {
		n++
	}
	if p.Approved {
		n++
	}
	return n
}

// Editor fields counted: granted permissions, approval.
func populatedEditorFields(p *domain.EditorProfile) int {
	n := 0
	if len(p.Permissions) > 0 {
		n++
	}
	if p.Approved {
		n++
	}
	return n
}
