package service

import (
	"testing"

	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

func validInput() ports.RegisterInput {
	return ports.RegisterInput{
		Email:    "ann@example.com",
		Password: "Aa12345!",
		Name:     "Ann A",
		Role:     domain.RoleCustomer,
	}
}

func TestValidateRegistration_CleanInput(t *testing.T) {
	if ve := ValidateRegistration(validInput()); ve != nil {
		t.Fatalf("expected no violations, got: %v", ve)
	}
}

func TestValidateRegistration_PhoneOptional(t *testing.T) {
	in := validInput()
	in.Phone = ""
	if ve := ValidateRegistration(in); ve != nil {
		t.Fatalf("absent phone must not be an error, got: %v", ve)
	}

	in.Phone = "+52 55 1234 5678"
	if ve := ValidateRegistration(in); ve != nil {
		t.Fatalf("valid phone rejected: %v", ve)
	}

	in.Phone = "not-a-phone"
	ve := ValidateRegistration(in)
	if ve == nil || len(ve.Fields["phone"]) == 0 {
		t.Fatalf("expected phone violation, got: %v", ve)
	}
}

func TestValidateRegistration_EmailFormat(t *testing.T) {
	for _, bad := range []string{"", "plain", "a@", "@x.com", "a@x", "a b@x.com"} {
		in := validInput()
		in.Email = bad
		ve := ValidateRegistration(in)
		if ve == nil || len(ve.Fields["email"]) == 0 {
			t.Errorf("email %q: expected violation, got %v", bad, ve)
		}
	}
}

func TestValidateRegistration_NameLength(t *testing.T) {
	in := validInput()
	in.Name = "A"
	ve := ValidateRegistration(in)
	if ve == nil || len(ve.Fields["name"]) == 0 {
		t.Fatalf("expected short-name violation, got %v", ve)
	}

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	in.Name = string(long)
	ve = ValidateRegistration(in)
	if ve == nil || len(ve.Fields["name"]) == 0 {
		t.Fatalf("expected long-name violation, got %v", ve)
	}
}

func TestValidateRegistration_PasswordReportsAllRules(t *testing.T) {
	in := validInput()
	in.Password = "short" // too short, no upper, no digit
	ve := ValidateRegistration(in)
	if ve == nil {
		t.Fatalf("expected violations")
	}
	if got := len(ve.Fields["password"]); got != 3 {
		t.Fatalf("expected all 3 violated password rules reported, got %d: %v", got, ve.Fields["password"])
	}
}

func TestValidateRegistration_UnknownRole(t *testing.T) {
	in := validInput()
	in.Role = domain.Role("superuser")
	ve := ValidateRegistration(in)
	if ve == nil || len(ve.Fields["role"]) == 0 {
		t.Fatalf("expected role violation, got %v", ve)
	}
}

func TestValidateRegistration_AggregatesAcrossFields(t *testing.T) {
	ve := ValidateRegistration(ports.RegisterInput{
		Email:    "bad",
		Password: "x",
		Name:     "",
		Role:     domain.RoleCustomer,
	})
	if ve == nil {
		t.Fatalf("expected violations")
	}
	for _, field := range []string{"email", "password", "name"} {
		if len(ve.Fields[field]) == 0 {
			t.Errorf("expected violation for %s, got %v", field, ve.Fields)
		}
	}
}
