package models

import (
	"math"
	"time"

	"github.com/rentaltrack/rentaltrack/internal/util"
)

// RentalPeriod is the billing cadence of an agreement.
type RentalPeriod string

const (
	RentalPeriodDaily       RentalPeriod = "DAILY"
	RentalPeriodWeekly      RentalPeriod = "WEEKLY"
	RentalPeriodFortnightly RentalPeriod = "FORTNIGHTLY"
	RentalPeriodMonthly     RentalPeriod = "MONTHLY"
)

// Valid returns true if the period is known.
func (p RentalPeriod) Valid() bool {
	switch p {
	case RentalPeriodDaily, RentalPeriodWeekly, RentalPeriodFortnightly, RentalPeriodMonthly:
		return true
	default:
		return false
	}
}

// AgreementStatus is the lifecycle state of an agreement.
type AgreementStatus string

const (
	AgreementStatusNew       AgreementStatus = "NEW"
	AgreementStatusActive    AgreementStatus = "ACTIVE"
	AgreementStatusCompleted AgreementStatus = "COMPLETED"
)

// Valid returns true if the status is known.
func (s AgreementStatus) Valid() bool {
	switch s {
	case AgreementStatusNew, AgreementStatusActive, AgreementStatusCompleted:
		return true
	default:
		return false
	}
}

// DeriveStatus applies the date rule at day granularity: before start is NEW,
// after end is COMPLETED, otherwise ACTIVE. A COMPLETED agreement stays
// COMPLETED.
func DeriveStatus(start, end, now time.Time, current AgreementStatus) AgreementStatus {
	if current == AgreementStatusCompleted {
		return AgreementStatusCompleted
	}

	today := util.StartOfDay(now)
	switch {
	case today.Before(util.StartOfDay(start)):
		return AgreementStatusNew
	case today.After(util.StartOfDay(end)):
		return AgreementStatusCompleted
	default:
		return AgreementStatusActive
	}
}

// RentalAgreement binds a property, its parties and a rent schedule.
type RentalAgreement struct {
	ID         string          `json:"id"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	RentAmount float64         `json:"rent_amount"`
	Period     RentalPeriod    `json:"period"`
	Status     AgreementStatus `json:"status"`

	property   *Property
	mainTenant *Tenant
	subTenants []*Tenant
	owner      *Owner
	host       *Host
	payments   []*Payment
	bound      bool
}

// Parties names the collaborators of an agreement.
type Parties struct {
	Property   *Property
	MainTenant *Tenant
	SubTenants []*Tenant
	Owner      *Owner
	Host       *Host
}

// NewRentalAgreement builds an unregistered agreement. Sub-tenants equal to
// the main tenant or repeated are dropped.
func NewRentalAgreement(id string, parties Parties, start, end time.Time, rent float64, period RentalPeriod, status AgreementStatus) *RentalAgreement {
	a := &RentalAgreement{
		ID:         id,
		StartDate:  start,
		EndDate:    end,
		RentAmount: rent,
		Period:     period,
		Status:     status,
	}
	a.setParties(parties)
	return a
}

func (a *RentalAgreement) setParties(parties Parties) {
	a.property = parties.Property
	a.mainTenant = parties.MainTenant
	a.owner = parties.Owner
	a.host = parties.Host
	a.subTenants = nil
	for _, t := range parties.SubTenants {
		if t == nil || sameTenant(t, a.mainTenant) || containsID(a.subTenants, t.ID) {
			continue
		}
		a.subTenants = append(a.subTenants, t)
	}
}

// AssignParties replaces the collaborators of an unregistered agreement.
// Registered agreements change parties through ReplaceAgreement.
func (a *RentalAgreement) AssignParties(parties Parties) error {
	if a.bound {
		return Validationf("agreement %s is registered; use ReplaceAgreement", a.ID)
	}
	a.setParties(parties)
	return nil
}

// Parties returns the agreement's collaborators.
func (a *RentalAgreement) Parties() Parties {
	return Parties{
		Property:   a.property,
		MainTenant: a.mainTenant,
		SubTenants: cloneRefs(a.subTenants),
		Owner:      a.owner,
		Host:       a.host,
	}
}

// Property returns the rented property.
func (a *RentalAgreement) Property() *Property { return a.property }

// MainTenant returns the principal tenant.
func (a *RentalAgreement) MainTenant() *Tenant { return a.mainTenant }

// SubTenants returns the sub-tenants in the order they were added.
func (a *RentalAgreement) SubTenants() []*Tenant { return cloneRefs(a.subTenants) }

// Owner returns the owner party.
func (a *RentalAgreement) Owner() *Owner { return a.owner }

// Host returns the administering host.
func (a *RentalAgreement) Host() *Host { return a.host }

// Payments returns the payment history, oldest first.
func (a *RentalAgreement) Payments() []*Payment { return cloneRefs(a.payments) }

// Tenants returns the main tenant followed by sub-tenants.
func (a *RentalAgreement) Tenants() []*Tenant {
	out := make([]*Tenant, 0, 1+len(a.subTenants))
	if a.mainTenant != nil {
		out = append(out, a.mainTenant)
	}
	return append(out, a.subTenants...)
}

// Includes reports whether t is the main tenant or a sub-tenant.
func (a *RentalAgreement) Includes(t *Tenant) bool {
	return sameTenant(t, a.mainTenant) || containsID(a.subTenants, t.ID)
}

// IsOpen reports whether the agreement has not completed.
func (a *RentalAgreement) IsOpen() bool {
	return a.Status != AgreementStatusCompleted
}

// Validate checks scalar fields and that every required party is present.
func (a *RentalAgreement) Validate() error {
	if a.ID == "" {
		return Validationf("id is required")
	}
	if a.StartDate.IsZero() || a.EndDate.IsZero() {
		return Validationf("start and end dates are required")
	}
	// Terminating before the start date leaves a COMPLETED agreement whose
	// end precedes its start.
	if a.Status != AgreementStatusCompleted && util.StartOfDay(a.EndDate).Before(util.StartOfDay(a.StartDate)) {
		return Validationf("end date %s is before start date %s",
			util.FormatDate(a.EndDate), util.FormatDate(a.StartDate))
	}
	if a.RentAmount < 0 || math.IsNaN(a.RentAmount) || math.IsInf(a.RentAmount, 0) {
		return Validationf("rent amount must be a non-negative number, got %v", a.RentAmount)
	}
	if !a.Period.Valid() {
		return Validationf("invalid rental period: %q", a.Period)
	}
	if !a.Status.Valid() {
		return Validationf("invalid agreement status: %q", a.Status)
	}
	if a.property == nil {
		return Validationf("property is required")
	}
	if a.mainTenant == nil {
		return Validationf("main tenant is required")
	}
	if a.owner == nil {
		return Validationf("owner is required")
	}
	if a.host == nil {
		return Validationf("host is required")
	}
	return nil
}

func sameTenant(a, b *Tenant) bool {
	return a != nil && b != nil && a.ID == b.ID
}
