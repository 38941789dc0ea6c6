package models

import "math"

// PropertyKind tags the property variant.
type PropertyKind string

const (
	PropertyKindResidential PropertyKind = "RESIDENTIAL"
	PropertyKindCommercial  PropertyKind = "COMMERCIAL"
)

// Valid returns true if the kind is known.
func (k PropertyKind) Valid() bool {
	return k == PropertyKindResidential || k == PropertyKindCommercial
}

// PropertyStatus represents the letting state of a property.
type PropertyStatus string

const (
	PropertyStatusAvailable        PropertyStatus = "AVAILABLE"
	PropertyStatusRented           PropertyStatus = "RENTED"
	PropertyStatusUnderMaintenance PropertyStatus = "UNDER_MAINTENANCE"
)

// Valid returns true if the status is known.
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusAvailable, PropertyStatusRented, PropertyStatusUnderMaintenance:
		return true
	default:
		return false
	}
}

// ResidentialDetails is the payload of a residential property.
type ResidentialDetails struct {
	Bedrooms    int  `json:"bedrooms"`
	HasGarden   bool `json:"has_garden"`
	PetFriendly bool `json:"pet_friendly"`
}

// CommercialDetails is the payload of a commercial property.
type CommercialDetails struct {
	BusinessType  string  `json:"business_type"`
	ParkingSpaces int     `json:"parking_spaces"`
	SquareFootage float64 `json:"square_footage"`
}

// Property is a rentable unit. Exactly one of Residential or Commercial is
// set, matching Kind.
type Property struct {
	ID          string              `json:"id"`
	Kind        PropertyKind        `json:"kind"`
	Address     string              `json:"address"`
	Price       float64             `json:"price"`
	Status      PropertyStatus      `json:"status"`
	Residential *ResidentialDetails `json:"residential,omitempty"`
	Commercial  *CommercialDetails  `json:"commercial,omitempty"`

	owner   *Owner
	hosts   []*Host
	tenants []*Tenant
	history []*RentalAgreement

	// released is set once the property leaves its manager. Retained
	// agreements still point at it, but no new edge may.
	released bool
}

// NewResidentialProperty builds an unregistered residential property owned by owner.
func NewResidentialProperty(id, address string, price float64, status PropertyStatus, owner *Owner, details ResidentialDetails) *Property {
	return &Property{
		ID:          id,
		Kind:        PropertyKindResidential,
		Address:     address,
		Price:       price,
		Status:      status,
		Residential: &details,
		owner:       owner,
	}
}

// NewCommercialProperty builds an unregistered commercial property owned by owner.
func NewCommercialProperty(id, address string, price float64, status PropertyStatus, owner *Owner, details CommercialDetails) *Property {
	return &Property{
		ID:         id,
		Kind:       PropertyKindCommercial,
		Address:    address,
		Price:      price,
		Status:     status,
		Commercial: &details,
		owner:      owner,
	}
}

// Released reports whether the property has been deleted from its manager.
func (p *Property) Released() bool {
	return p.released
}

// Owner returns the owning party. For an unregistered property this is the
// requested owner; the owner's list is only updated on registration.
func (p *Property) Owner() *Owner {
	return p.owner
}

// OwnerID returns the owner's ID, or "" when unset.
func (p *Property) OwnerID() string {
	if p.owner == nil {
		return ""
	}
	return p.owner.ID
}

// OwnerName returns the owner's full name, or "" when unset.
func (p *Property) OwnerName() string {
	if p.owner == nil {
		return ""
	}
	return p.owner.FullName
}

// Hosts returns the hosts managing this property.
func (p *Property) Hosts() []*Host {
	return cloneRefs(p.hosts)
}

// Tenants returns the current occupants.
func (p *Property) Tenants() []*Tenant {
	return cloneRefs(p.tenants)
}

// RentalHistory returns the agreements ever bound to this property, oldest first.
func (p *Property) RentalHistory() []*RentalAgreement {
	return cloneRefs(p.history)
}

// Validate checks the scalar fields and the variant payload.
func (p *Property) Validate() error {
	if p.ID == "" {
		return Validationf("id is required")
	}
	if p.Address == "" {
		return Validationf("address is required")
	}
	if !p.Kind.Valid() {
		return Validationf("invalid property kind: %q", p.Kind)
	}
	if !p.Status.Valid() {
		return Validationf("invalid property status: %q", p.Status)
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return Validationf("price must be a non-negative number, got %v", p.Price)
	}

	switch p.Kind {
	case PropertyKindResidential:
		if p.Residential == nil || p.Commercial != nil {
			return Validationf("residential property must carry residential details only")
		}
		if p.Residential.Bedrooms < 0 {
			return Validationf("bedrooms must be non-negative")
		}
	case PropertyKindCommercial:
		if p.Commercial == nil || p.Residential != nil {
			return Validationf("commercial property must carry commercial details only")
		}
		if p.Commercial.ParkingSpaces < 0 {
			return Validationf("parking_spaces must be non-negative")
		}
		if p.Commercial.SquareFootage < 0 {
			return Validationf("square_footage must be non-negative")
		}
	}

	if p.owner == nil {
		return Validationf("owner is required")
	}

	return nil
}

// CopyScalars overwrites the record fields of p with those of src, leaving
// every relationship untouched.
func (p *Property) CopyScalars(src *Property) {
	p.Kind = src.Kind
	p.Address = src.Address
	p.Price = src.Price
	p.Status = src.Status
	p.Residential = nil
	p.Commercial = nil
	if src.Residential != nil {
		d := *src.Residential
		p.Residential = &d
	}
	if src.Commercial != nil {
		d := *src.Commercial
		p.Commercial = &d
	}
}
