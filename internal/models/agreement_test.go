package models

import (
	"errors"
	"testing"
	"time"

	"github.com/rentaltrack/rentaltrack/internal/util"
)

func TestRentalPeriod_Valid(t *testing.T) {
	tests := []struct {
		name   string
		period RentalPeriod
		want   bool
	}{
		{"Daily is valid", RentalPeriodDaily, true},
		{"Weekly is valid", RentalPeriodWeekly, true},
		{"Fortnightly is valid", RentalPeriodFortnightly, true},
		{"Monthly is valid", RentalPeriodMonthly, true},
		{"Lowercase is invalid", RentalPeriod("monthly"), false},
		{"Empty string is invalid", RentalPeriod(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.Valid(); got != tt.want {
				t.Errorf("RentalPeriod.Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAgreementStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status AgreementStatus
		want   bool
	}{
		{"New is valid", AgreementStatusNew, true},
		{"Active is valid", AgreementStatusActive, true},
		{"Completed is valid", AgreementStatusCompleted, true},
		{"Unknown status", AgreementStatus("CANCELLED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("AgreementStatus.Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	start := util.Date(2024, time.January, 1)
	end := util.Date(2024, time.December, 31)

	tests := []struct {
		name    string
		now     time.Time
		current AgreementStatus
		want    AgreementStatus
	}{
		{"Before start is new", util.Date(2023, time.June, 1), AgreementStatusNew, AgreementStatusNew},
		{"Inside range is active", util.Date(2024, time.June, 1), AgreementStatusNew, AgreementStatusActive},
		{"After end is completed", util.Date(2025, time.January, 1), AgreementStatusActive, AgreementStatusCompleted},
		{"Start day is active", time.Date(2024, time.January, 1, 0, 0, 1, 0, time.UTC), AgreementStatusNew, AgreementStatusActive},
		{"Late on end day is still active", time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC), AgreementStatusActive, AgreementStatusActive},
		{"Completed never regresses", util.Date(2024, time.June, 1), AgreementStatusCompleted, AgreementStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(start, end, tt.now, tt.current); got != tt.want {
				t.Errorf("DeriveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRentalAgreement_Validate(t *testing.T) {
	owner := NewOwner("O1", "Olive Owner", util.Date(1970, 1, 1), "olive@example.com")
	host := NewHost("H1", "Harry Host", util.Date(1980, 1, 1), "harry@example.com")
	tenant := NewTenant("T1", "Tina Tenant", util.Date(1990, 1, 1), "tina@example.com")
	property := NewResidentialProperty("P1", "1 Main St", 1200, PropertyStatusAvailable, owner, ResidentialDetails{Bedrooms: 2})

	valid := func() *RentalAgreement {
		return NewRentalAgreement("A1",
			Parties{Property: property, MainTenant: tenant, Owner: owner, Host: host},
			util.Date(2024, 1, 1), util.Date(2024, 12, 31), 1200, RentalPeriodMonthly, AgreementStatusNew)
	}

	tests := []struct {
		name    string
		mutate  func(a *RentalAgreement)
		wantErr bool
	}{
		{"Valid agreement", func(a *RentalAgreement) {}, false},
		{"Missing ID", func(a *RentalAgreement) { a.ID = "" }, true},
		{"End before start", func(a *RentalAgreement) { a.EndDate = util.Date(2023, 1, 1) }, true},
		{"Terminated before start", func(a *RentalAgreement) {
			a.EndDate = util.Date(2023, 12, 1)
			a.Status = AgreementStatusCompleted
		}, false},
		{"Negative rent", func(a *RentalAgreement) { a.RentAmount = -1 }, true},
		{"Bad period", func(a *RentalAgreement) { a.Period = "YEARLY" }, true},
		{"Missing host", func(a *RentalAgreement) { _ = a.AssignParties(Parties{Property: property, MainTenant: tenant, Owner: owner}) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(a)
			err := a.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNewRentalAgreement_DropsMainTenantFromSubTenants(t *testing.T) {
	main := NewTenant("T1", "Main", util.Date(1990, 1, 1), "main@example.com")
	sub := NewTenant("T2", "Sub", util.Date(1991, 1, 1), "sub@example.com")

	a := NewRentalAgreement("A1", Parties{MainTenant: main, SubTenants: []*Tenant{main, sub, sub}},
		util.Date(2024, 1, 1), util.Date(2024, 2, 1), 100, RentalPeriodWeekly, AgreementStatusNew)

	subs := a.SubTenants()
	if len(subs) != 1 || subs[0].ID != "T2" {
		t.Fatalf("expected only T2 as sub-tenant, got %d entries", len(subs))
	}
}

func TestErrorTaxonomy(t *testing.T) {
	if !errors.Is(InvalidArgumentf("sort %q", "x"), ErrValidation) {
		t.Error("invalid argument should be a validation error")
	}
	if !errors.Is(NotFound("owner", "O1"), ErrNotFound) {
		t.Error("NotFound should wrap ErrNotFound")
	}
	if !errors.Is(DuplicateKey("owner", "id", "O1"), ErrDuplicateKey) {
		t.Error("DuplicateKey should wrap ErrDuplicateKey")
	}
	if !errors.Is(Inconsistent("property", "owner", "O9"), ErrDataInconsistency) {
		t.Error("Inconsistent should wrap ErrDataInconsistency")
	}
}
