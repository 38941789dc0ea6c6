package models

import (
	"time"

	"github.com/rentaltrack/rentaltrack/internal/validation"
)

// Role distinguishes the three person kinds. Email uniqueness is scoped per role.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleHost   Role = "HOST"
	RoleTenant Role = "TENANT"
)

// Valid returns true if the role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleHost, RoleTenant:
		return true
	default:
		return false
	}
}

// Person is the identity and contact record shared by owners, hosts and tenants.
type Person struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Email       string    `json:"email"`
}

// Base returns the embedded person record.
func (p *Person) Base() *Person {
	return p
}

// Validate checks the scalar fields of a person.
func (p *Person) Validate() error {
	if p.ID == "" {
		return Validationf("id is required")
	}
	if p.FullName == "" {
		return Validationf("full_name is required")
	}
	if p.DateOfBirth.IsZero() {
		return Validationf("date_of_birth is required")
	}
	if !validation.IsValidEmail(p.Email) {
		return Validationf("invalid email: %q", p.Email)
	}
	return nil
}

// Owner holds title to properties.
type Owner struct {
	Person

	properties []*Property
	agreements []*RentalAgreement
}

// NewOwner builds an unregistered owner.
func NewOwner(id, fullName string, dob time.Time, email string) *Owner {
	return &Owner{Person: Person{ID: id, FullName: fullName, DateOfBirth: dob, Email: email}}
}

// OwnedProperties returns the properties this owner holds.
func (o *Owner) OwnedProperties() []*Property {
	return cloneRefs(o.properties)
}

// Agreements returns the rental agreements this owner is party to.
func (o *Owner) Agreements() []*RentalAgreement {
	return cloneRefs(o.agreements)
}

// ManagingHosts returns every host managing at least one owned property,
// in order of first appearance.
func (o *Owner) ManagingHosts() []*Host {
	var hosts []*Host
	for _, p := range o.properties {
		for _, h := range p.hosts {
			if !containsRef(hosts, h) {
				hosts = append(hosts, h)
			}
		}
	}
	return hosts
}

// Host manages properties on behalf of owners.
type Host struct {
	Person

	properties []*Property
	agreements []*RentalAgreement
}

// NewHost builds an unregistered host.
func NewHost(id, fullName string, dob time.Time, email string) *Host {
	return &Host{Person: Person{ID: id, FullName: fullName, DateOfBirth: dob, Email: email}}
}

// ManagedProperties returns the properties this host manages.
func (h *Host) ManagedProperties() []*Property {
	return cloneRefs(h.properties)
}

// ManagedAgreements returns the agreements this host administers.
func (h *Host) ManagedAgreements() []*RentalAgreement {
	return cloneRefs(h.agreements)
}

// CooperatingOwners returns the owners of every managed property.
func (h *Host) CooperatingOwners() []*Owner {
	var owners []*Owner
	for _, p := range h.properties {
		if p.owner != nil && !containsRef(owners, p.owner) {
			owners = append(owners, p.owner)
		}
	}
	return owners
}

// Tenant rents properties through agreements.
type Tenant struct {
	Person

	agreements []*RentalAgreement
	rented     []*Property
	payments   []*Payment
}

// NewTenant builds an unregistered tenant.
func NewTenant(id, fullName string, dob time.Time, email string) *Tenant {
	return &Tenant{Person: Person{ID: id, FullName: fullName, DateOfBirth: dob, Email: email}}
}

// Agreements returns agreements naming this tenant as main or sub-tenant.
func (t *Tenant) Agreements() []*RentalAgreement {
	return cloneRefs(t.agreements)
}

// RentedProperties returns the properties this tenant currently occupies.
func (t *Tenant) RentedProperties() []*Property {
	return cloneRefs(t.rented)
}

// Payments returns the payments made by this tenant.
func (t *Tenant) Payments() []*Payment {
	return cloneRefs(t.payments)
}
