package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

func TestProvisioner_ValidateDriverData(t *testing.T) {
	p := NewProvisioner(newStubRoleRepo(), zerolog.Nop())
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name string
		data ports.RoleData
		ok   bool
	}{
		{"missing data", ports.RoleData{}, false},
		{"missing license", ports.RoleData{Driver: &ports.DriverData{LicenseExpiry: future, Languages: []string{"en"}}}, false},
		{"no languages", ports.RoleData{Driver: &ports.DriverData{LicenseNumber: "L1", LicenseExpiry: future}}, false},
		{"past expiry", ports.RoleData{Driver: &ports.DriverData{LicenseNumber: "L1", LicenseExpiry: time.Now().Add(-time.Minute), Languages: []string{"en"}}}, false},
		{"valid", ports.RoleData{Driver: &ports.DriverData{LicenseNumber: "L1", LicenseExpiry: future, Languages: []string{"en"}}}, true},
	}

	for _, tc := range cases {
		err := p.ValidateData(domain.RoleDriver, tc.data)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, domain.ErrDriverDataRequired) {
			t.Errorf("%s: expected ErrDriverDataRequired, got %v", tc.name, err)
		}
	}
}

func TestProvisioner_ValidateDriverExpiryEqualNowRejected(t *testing.T) {
	p := NewProvisioner(newStubRoleRepo(), zerolog.Nop())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	err := p.ValidateData(domain.RoleDriver, ports.RoleData{Driver: &ports.DriverData{
		LicenseNumber: "L1",
		LicenseExpiry: fixed, // equal, not strictly after
		Languages:     []string{"en"},
	}})
	if !errors.Is(err, domain.ErrDriverDataRequired) {
		t.Fatalf("expiry equal to now must be rejected, got %v", err)
	}
}

func TestProvisioner_ValidateEditorData(t *testing.T) {
	p := NewProvisioner(newStubRoleRepo(), zerolog.Nop())

	if err := p.ValidateData(domain.RoleEditor, ports.RoleData{}); !errors.Is(err, domain.ErrInvitationRequired) {
		t.Fatalf("expected ErrInvitationRequired, got %v", err)
	}
	if err := p.ValidateData(domain.RoleEditor, ports.RoleData{Editor: &ports.EditorData{InvitationCode: ""}}); !errors.Is(err, domain.ErrInvitationRequired) {
		t.Fatalf("expected ErrInvitationRequired for empty code, got %v", err)
	}
	if err := p.ValidateData(domain.RoleEditor, ports.RoleData{Editor: &ports.EditorData{InvitationCode: "INV-1"}}); err != nil {
		t.Fatalf("syntactically present code must pass, got %v", err)
	}
}

func TestProvisioner_CustomerIdempotent(t *testing.T) {
	roles := newStubRoleRepo()
	p := NewProvisioner(roles, zerolog.Nop())
	ctx := context.Background()

	if err := p.Provision(ctx, "acc_1", domain.RoleCustomer, ports.RoleData{}); err != nil {
		t.Fatalf("first provision failed: %v", err)
	}
	first, _ := roles.FindCustomerProfile(ctx, "acc_1")
	if first.Tier != domain.TierBasic || first.LoyaltyScore != 0 {
		t.Fatalf("customer defaults wrong: %+v", first)
	}

	// Second call is a no-op, not an error, and does not reset the profile.
	first.LoyaltyScore = 10
	roles.customers["acc_1"] = first
	if err := p.Provision(ctx, "acc_1", domain.RoleCustomer, ports.RoleData{}); err != nil {
		t.Fatalf("idempotent provision failed: %v", err)
	}
	after, _ := roles.FindCustomerProfile(ctx, "acc_1")
	if after.LoyaltyScore != 10 {
		t.Fatalf("idempotent provision must not overwrite the profile")
	}
}

func TestProvisioner_DriverApprovalNeverFromCaller(t *testing.T) {
	roles := newStubRoleRepo()
	p := NewProvisioner(roles, zerolog.Nop())
	ctx := context.Background()

	data := ports.RoleData{Driver: &ports.DriverData{
		LicenseNumber: "L1",
		LicenseExpiry: time.Now().Add(time.Hour),
		Languages:     []string{"en", "es"},
	}}
	if err := p.Provision(ctx, "acc_1", domain.RoleDriver, data); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	profile, _ := roles.FindDriverProfile(ctx, "acc_1")
	if profile.Approved {
		t.Fatalf("driver profile must be created unapproved")
	}

	// Re-provisioning updates license data but leaves approval untouched.
	profile.Approved = true
	roles.drivers["acc_1"] = profile
	data.Driver.LicenseNumber = "L2"
	if err := p.Provision(ctx, "acc_1", domain.RoleDriver, data); err != nil {
		t.Fatalf("re-provision failed: %v", err)
	}
	after, _ := roles.FindDriverProfile(ctx, "acc_1")
	if after.LicenseNumber != "L2" {
		t.Fatalf("license update lost: %+v", after)
	}
	if !after.Approved {
		t.Fatalf("re-provisioning must not reset the approval flag")
	}
}

func TestProvisioner_EditorPermissionsNeverInherited(t *testing.T) {
	roles := newStubRoleRepo()
	p := NewProvisioner(roles, zerolog.Nop())

	data := ports.RoleData{Editor: &ports.EditorData{InvitationCode: "INV-1"}}
	if err := p.Provision(context.Background(), "acc_1", domain.RoleEditor, data); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	profile, _ := roles.FindEditorProfile(context.Background(), "acc_1")
	if len(profile.Permissions) != 0 {
		t.Fatalf("editor permissions must start empty, got %v", profile.Permissions)
	}
	if profile.Approved {
		t.Fatalf("editor profile must start unapproved")
	}
}

func TestProvisioner_AdminHasNoProfile(t *testing.T) {
	roles := newStubRoleRepo()
	p := NewProvisioner(roles, zerolog.Nop())

	if err := p.Provision(context.Background(), "acc_1", domain.RoleAdmin, ports.RoleData{}); err != nil {
		t.Fatalf("admin provision must be a no-op, got %v", err)
	}
	if len(roles.customers)+len(roles.drivers)+len(roles.editors) != 0 {
		t.Fatalf("admin must not create any profile")
	}
}
