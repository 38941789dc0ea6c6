package models

// This file is the single place where relationship collections change.
// Every edge has one registrar function that updates both ends, so the
// symmetry between the two sides cannot drift.

type keyed interface {
	key() string
}

func (p Person) key() string           { return p.ID }
func (p *Property) key() string        { return p.ID }
func (a *RentalAgreement) key() string { return a.ID }
func (p *Payment) key() string         { return p.ID }

func cloneRefs[T any](list []T) []T {
	if len(list) == 0 {
		return nil
	}
	out := make([]T, len(list))
	copy(out, list)
	return out
}

func containsID[T keyed](list []T, id string) bool {
	for _, v := range list {
		if v.key() == id {
			return true
		}
	}
	return false
}

func containsRef[T keyed](list []T, v T) bool {
	return containsID(list, v.key())
}

func removeID[T keyed](list []T, id string) ([]T, bool) {
	for i, v := range list {
		if v.key() == id {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

// AssignOwner makes o the owner of p, detaching p from its previous owner's
// list first. A nil owner clears the link; a non-nil owner registers p again.
func AssignOwner(p *Property, o *Owner) {
	if p.owner != nil {
		p.owner.properties, _ = removeID(p.owner.properties, p.ID)
	}
	p.owner = o
	if o == nil {
		return
	}
	p.released = false
	if !containsID(o.properties, p.ID) {
		o.properties = append(o.properties, p)
	}
}

// LinkHost records that h manages p. It returns false if the edge already
// exists or p has been released.
func LinkHost(p *Property, h *Host) bool {
	if p.released || containsID(p.hosts, h.ID) {
		return false
	}
	p.hosts = append(p.hosts, h)
	if !containsID(h.properties, p.ID) {
		h.properties = append(h.properties, p)
	}
	return true
}

// UnlinkHost removes the management edge between p and h.
func UnlinkHost(p *Property, h *Host) bool {
	var removed bool
	p.hosts, removed = removeID(p.hosts, h.ID)
	h.properties, _ = removeID(h.properties, p.ID)
	return removed
}

// LinkOccupant records t as a current occupant of p. A released property
// takes no occupants.
func LinkOccupant(p *Property, t *Tenant) bool {
	if p.released || containsID(p.tenants, t.ID) {
		return false
	}
	p.tenants = append(p.tenants, t)
	if !containsID(t.rented, p.ID) {
		t.rented = append(t.rented, p)
	}
	return true
}

// UnlinkOccupant removes the occupancy edge between p and t.
func UnlinkOccupant(p *Property, t *Tenant) bool {
	var removed bool
	p.tenants, removed = removeID(p.tenants, t.ID)
	t.rented, _ = removeID(t.rented, p.ID)
	return removed
}

// ReleaseProperty detaches p from its hosts, occupants and owner and marks
// it released. Agreements keep their reference to p for reporting.
func ReleaseProperty(p *Property) {
	for _, h := range cloneRefs(p.hosts) {
		UnlinkHost(p, h)
	}
	for _, t := range cloneRefs(p.tenants) {
		UnlinkOccupant(p, t)
	}
	AssignOwner(p, nil)
	p.released = true
}

// ReleaseHost detaches h from every managed property and drops its
// agreement list. Agreements keep their reference to h for reporting.
func ReleaseHost(h *Host) {
	for _, p := range cloneRefs(h.properties) {
		UnlinkHost(p, h)
	}
	h.agreements = nil
}

// ReleaseOwner drops the owner's agreement list. The caller must ensure the
// owner no longer holds any property.
func ReleaseOwner(o *Owner) {
	o.agreements = nil
}

// ReleaseTenant removes t from every occupancy and sub-tenant list.
// Agreements naming t as main tenant keep the reference for reporting.
func ReleaseTenant(t *Tenant) {
	for _, p := range cloneRefs(t.rented) {
		UnlinkOccupant(p, t)
	}
	for _, a := range t.agreements {
		a.subTenants, _ = removeID(a.subTenants, t.ID)
	}
	t.agreements = nil
}

// BindAgreement registers a with its property, owner, host and tenants.
// Open agreements also make their tenants occupants of the property.
func BindAgreement(a *RentalAgreement) {
	if a.property != nil && !containsID(a.property.history, a.ID) {
		a.property.history = append(a.property.history, a)
	}
	if a.owner != nil && !containsID(a.owner.agreements, a.ID) {
		a.owner.agreements = append(a.owner.agreements, a)
	}
	if a.host != nil && !containsID(a.host.agreements, a.ID) {
		a.host.agreements = append(a.host.agreements, a)
	}
	for _, t := range a.Tenants() {
		if !containsID(t.agreements, a.ID) {
			t.agreements = append(t.agreements, a)
		}
	}
	if a.IsOpen() {
		occupy(a)
	}
	a.bound = true
}

// UnbindAgreement reverses BindAgreement.
func UnbindAgreement(a *RentalAgreement) {
	if a.IsOpen() {
		vacate(a, a.Tenants())
	}
	if a.property != nil {
		a.property.history, _ = removeID(a.property.history, a.ID)
	}
	if a.owner != nil {
		a.owner.agreements, _ = removeID(a.owner.agreements, a.ID)
	}
	if a.host != nil {
		a.host.agreements, _ = removeID(a.host.agreements, a.ID)
	}
	for _, t := range a.Tenants() {
		t.agreements, _ = removeID(t.agreements, a.ID)
	}
	a.bound = false
}

// ReplaceAgreement rewires stored to match incoming: every old edge is
// removed first, then the scalars and parties are copied, then the new
// edges are added. Payments stay with stored.
func ReplaceAgreement(stored, incoming *RentalAgreement) {
	UnbindAgreement(stored)

	stored.StartDate = incoming.StartDate
	stored.EndDate = incoming.EndDate
	stored.RentAmount = incoming.RentAmount
	stored.Period = incoming.Period
	stored.Status = incoming.Status
	stored.setParties(incoming.Parties())

	BindAgreement(stored)
}

// ReleaseAgreement unbinds a and detaches its payments from their tenants.
func ReleaseAgreement(a *RentalAgreement) []*Payment {
	UnbindAgreement(a)
	payments := a.payments
	for _, p := range payments {
		if p.tenant != nil {
			p.tenant.payments, _ = removeID(p.tenant.payments, p.ID)
		}
	}
	a.payments = nil
	return payments
}

// CompleteAgreement marks a COMPLETED and vacates tenants whose occupancy no
// other open agreement on the property justifies.
func CompleteAgreement(a *RentalAgreement) {
	a.Status = AgreementStatusCompleted
	vacate(a, a.Tenants())
}

// SubTenantOutcome describes what AddSubTenant or RemoveSubTenant did.
type SubTenantOutcome int

const (
	SubTenantChanged SubTenantOutcome = iota
	SubTenantIsMain
	SubTenantAlreadyPresent
	SubTenantAbsent
)

// AddSubTenant appends t to the sub-tenants of a and registers a on t.
// The main tenant and existing sub-tenants are left alone.
func AddSubTenant(a *RentalAgreement, t *Tenant) SubTenantOutcome {
	if sameTenant(t, a.mainTenant) {
		return SubTenantIsMain
	}
	if containsID(a.subTenants, t.ID) {
		return SubTenantAlreadyPresent
	}

	a.subTenants = append(a.subTenants, t)
	if !containsID(t.agreements, a.ID) {
		t.agreements = append(t.agreements, a)
	}
	if a.IsOpen() && a.property != nil {
		LinkOccupant(a.property, t)
	}
	return SubTenantChanged
}

// RemoveSubTenant undoes AddSubTenant.
func RemoveSubTenant(a *RentalAgreement, t *Tenant) SubTenantOutcome {
	if sameTenant(t, a.mainTenant) {
		return SubTenantIsMain
	}
	var removed bool
	a.subTenants, removed = removeID(a.subTenants, t.ID)
	if !removed {
		return SubTenantAbsent
	}

	t.agreements, _ = removeID(t.agreements, a.ID)
	if a.IsOpen() {
		vacate(a, []*Tenant{t})
	}
	return SubTenantChanged
}

// AttachPayment records p on its agreement and its paying tenant.
func AttachPayment(p *Payment) {
	if p.agreement != nil && !containsID(p.agreement.payments, p.ID) {
		p.agreement.payments = append(p.agreement.payments, p)
	}
	if p.tenant != nil && !containsID(p.tenant.payments, p.ID) {
		p.tenant.payments = append(p.tenant.payments, p)
	}
}

// DetachPayment removes p from its agreement and tenant.
func DetachPayment(p *Payment) {
	if p.agreement != nil {
		p.agreement.payments, _ = removeID(p.agreement.payments, p.ID)
	}
	if p.tenant != nil {
		p.tenant.payments, _ = removeID(p.tenant.payments, p.ID)
	}
}

func occupy(a *RentalAgreement) {
	if a.property == nil {
		return
	}
	for _, t := range a.Tenants() {
		LinkOccupant(a.property, t)
	}
}

// vacate removes the given tenants of a from its property unless another
// open agreement on the same property still includes them.
func vacate(a *RentalAgreement, tenants []*Tenant) {
	if a.property == nil {
		return
	}
	for _, t := range tenants {
		if heldElsewhere(a, t) {
			continue
		}
		UnlinkOccupant(a.property, t)
	}
}

func heldElsewhere(a *RentalAgreement, t *Tenant) bool {
	for _, other := range a.property.history {
		if other.ID != a.ID && other.IsOpen() && other.Includes(t) {
			return true
		}
	}
	return false
}
