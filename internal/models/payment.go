package models

import (
	"math"
	"time"
)

// Payment records money received against an agreement.
type Payment struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Method string    `json:"method"`

	agreement *RentalAgreement
	tenant    *Tenant
}

// NewPayment builds an unrecorded payment.
func NewPayment(id string, agreement *RentalAgreement, tenant *Tenant, date time.Time, amount float64, method string) *Payment {
	return &Payment{
		ID:        id,
		Date:      date,
		Amount:    amount,
		Method:    method,
		agreement: agreement,
		tenant:    tenant,
	}
}

// Agreement returns the agreement paid against.
func (p *Payment) Agreement() *RentalAgreement { return p.agreement }

// Tenant returns the paying tenant.
func (p *Payment) Tenant() *Tenant { return p.tenant }

// AssignParties points an unrecorded payment at a and t.
func (p *Payment) AssignParties(a *RentalAgreement, t *Tenant) {
	p.agreement = a
	p.tenant = t
}

// Validate checks the payment fields.
func (p *Payment) Validate() error {
	if p.ID == "" {
		return Validationf("id is required")
	}
	if p.Date.IsZero() {
		return Validationf("date is required")
	}
	if p.Amount < 0 || math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
		return Validationf("amount must be a non-negative number, got %v", p.Amount)
	}
	if p.agreement == nil {
		return Validationf("agreement is required")
	}
	if p.tenant == nil {
		return Validationf("tenant is required")
	}
	return nil
}
