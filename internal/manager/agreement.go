package manager

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rentaltrack/rentaltrack/internal/models"
	"github.com/rentaltrack/rentaltrack/internal/util"
)

// Agreement sort criteria.
const (
	SortByPropertyID = "propertyid"
	SortByTenantName = "tenantname"
	SortByOwnerName  = "ownername"
	SortByHostName   = "hostname"
	SortByStartDate  = "startdate"
	SortByEndDate    = "enddate"
	SortByRentAmount = "rentamount"
)

// RentalAgreementManager stores agreements and their payments and drives the
// agreement status state machine.
type RentalAgreementManager struct {
	set      *Set
	clock    util.Clock
	byID     map[string]*models.RentalAgreement
	payments map[string]*models.Payment
	logger   *slog.Logger
}

func newRentalAgreementManager(set *Set, clock util.Clock, logger *slog.Logger) *RentalAgreementManager {
	return &RentalAgreementManager{
		set:      set,
		clock:    clock,
		byID:     make(map[string]*models.RentalAgreement),
		payments: make(map[string]*models.Payment),
		logger:   logger,
	}
}

// resolveParties swaps every party of a for the registered instance with the
// same ID. Unknown IDs fail with ErrNotFound.
func (m *RentalAgreementManager) resolveParties(a *models.RentalAgreement) (models.Parties, error) {
	in := a.Parties()
	var out models.Parties
	var err error

	if out.Property, err = m.set.Properties.Get(in.Property.ID); err != nil {
		return out, err
	}
	if out.MainTenant, err = m.set.Tenants.Get(in.MainTenant.ID); err != nil {
		return out, err
	}
	if out.Owner, err = m.set.Owners.Get(in.Owner.ID); err != nil {
		return out, err
	}
	if out.Host, err = m.set.Hosts.Get(in.Host.ID); err != nil {
		return out, err
	}
	for _, t := range in.SubTenants {
		st, err := m.set.Tenants.Get(t.ID)
		if err != nil {
			return out, err
		}
		out.SubTenants = append(out.SubTenants, st)
	}
	return out, nil
}

// Add registers an agreement with its property, tenants, owner and host.
// The status is derived from the dates unless the agreement is already
// COMPLETED.
func (m *RentalAgreementManager) Add(a *models.RentalAgreement) error {
	return m.add(a, true)
}

// Restore registers an agreement keeping its stored status. Used when
// rebuilding the graph from storage.
func (m *RentalAgreementManager) Restore(a *models.RentalAgreement) error {
	return m.add(a, false)
}

func (m *RentalAgreementManager) add(a *models.RentalAgreement, derive bool) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("adding agreement: %w", err)
	}
	if _, ok := m.byID[a.ID]; ok {
		return models.DuplicateKey("agreement", "id", a.ID)
	}
	parties, err := m.resolveParties(a)
	if err != nil {
		return fmt.Errorf("adding agreement %s: %w", a.ID, err)
	}
	if err := a.AssignParties(parties); err != nil {
		return fmt.Errorf("adding agreement %s: %w", a.ID, err)
	}

	if derive {
		a.Status = models.DeriveStatus(a.StartDate, a.EndDate, m.clock.Now(), a.Status)
	}
	models.BindAgreement(a)
	m.byID[a.ID] = a
	m.logger.Debug("added agreement", "id", a.ID, "status", a.Status)
	return nil
}

// Update replaces an agreement in two passes: every edge of the stored
// agreement is removed, then the new values are copied in and the new edges
// added. Payments stay with the agreement and a COMPLETED agreement is never
// reopened.
func (m *RentalAgreementManager) Update(a *models.RentalAgreement) error {
	stored, ok := m.byID[a.ID]
	if !ok {
		return models.NotFound("agreement", a.ID)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("updating agreement: %w", err)
	}
	parties, err := m.resolveParties(a)
	if err != nil {
		return fmt.Errorf("updating agreement %s: %w", a.ID, err)
	}

	// A stored COMPLETED agreement stays completed whatever the incoming
	// record says.
	anchor := a.Status
	if stored.Status == models.AgreementStatusCompleted {
		anchor = models.AgreementStatusCompleted
	}
	status := models.DeriveStatus(a.StartDate, a.EndDate, m.clock.Now(), anchor)
	incoming := models.NewRentalAgreement(a.ID, parties, a.StartDate, a.EndDate, a.RentAmount, a.Period, status)
	models.ReplaceAgreement(stored, incoming)
	m.logger.Debug("updated agreement", "id", a.ID, "status", stored.Status)
	return nil
}

// Delete removes an agreement, its edges and its payments.
func (m *RentalAgreementManager) Delete(id string) error {
	a, ok := m.byID[id]
	if !ok {
		return models.NotFound("agreement", id)
	}

	for _, p := range models.ReleaseAgreement(a) {
		delete(m.payments, p.ID)
	}
	delete(m.byID, id)
	m.logger.Debug("deleted agreement", "id", id)
	return nil
}

// Get returns the agreement with the given ID.
func (m *RentalAgreementManager) Get(id string) (*models.RentalAgreement, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, models.NotFound("agreement", id)
	}
	return a, nil
}

// List returns all agreements ordered by ID.
func (m *RentalAgreementManager) List() []*models.RentalAgreement {
	return sortedValues(m.byID)
}

// Count returns the number of agreements.
func (m *RentalAgreementManager) Count() int {
	return len(m.byID)
}

func propertyID(a *models.RentalAgreement) string {
	if p := a.Property(); p != nil {
		return p.ID
	}
	return ""
}

func propertyAddress(a *models.RentalAgreement) string {
	if p := a.Property(); p != nil {
		return p.Address
	}
	return ""
}

func tenantName(a *models.RentalAgreement) string {
	if t := a.MainTenant(); t != nil {
		return t.FullName
	}
	return ""
}

func ownerName(a *models.RentalAgreement) string {
	if o := a.Owner(); o != nil {
		return o.FullName
	}
	return ""
}

func hostName(a *models.RentalAgreement) string {
	if h := a.Host(); h != nil {
		return h.FullName
	}
	return ""
}

// Sorted returns all agreements ordered by id, propertyid, tenantname,
// ownername, hostname, startdate, enddate, rentamount or status.
func (m *RentalAgreementManager) Sorted(criterion string) ([]*models.RentalAgreement, error) {
	type A = *models.RentalAgreement
	var cmpFn func(a, b A) int
	switch normalizeCriterion(criterion) {
	case SortByID:
		cmpFn = byString(func(a A) string { return a.ID })
	case SortByPropertyID, "property":
		cmpFn = byString(propertyID)
	case SortByTenantName, "tenant":
		cmpFn = byString(tenantName)
	case SortByOwnerName, SortByOwner:
		cmpFn = byString(ownerName)
	case SortByHostName, "host":
		cmpFn = byString(hostName)
	case SortByStartDate:
		cmpFn = byTime(func(a A) time.Time { return a.StartDate })
	case SortByEndDate:
		cmpFn = byTime(func(a A) time.Time { return a.EndDate })
	case SortByRentAmount, "rent":
		cmpFn = byFloat(func(a A) float64 { return a.RentAmount })
	case SortByStatus:
		cmpFn = byString(func(a A) string { return string(a.Status) })
	default:
		return nil, models.InvalidArgumentf("unknown agreement sort criterion %q", criterion)
	}

	return sortedByKey(m.List(), func(a A) string { return a.ID }, cmpFn), nil
}

// Search matches keyword against the agreement ID, property address and the
// names of the main tenant, owner and host, ignoring case.
func (m *RentalAgreementManager) Search(keyword string) []*models.RentalAgreement {
	var out []*models.RentalAgreement
	for _, a := range m.List() {
		if containsFold(keyword, a.ID, propertyAddress(a), tenantName(a), ownerName(a), hostName(a)) {
			out = append(out, a)
		}
	}
	return out
}

// Terminate completes an agreement today regardless of its dates: the end
// date becomes today and its tenants leave the property. The agreement and
// its payments are kept.
func (m *RentalAgreementManager) Terminate(id string) error {
	a, err := m.Get(id)
	if err != nil {
		return err
	}

	a.EndDate = util.Today(m.clock)
	models.CompleteAgreement(a)
	m.logger.Info("terminated agreement", "id", id, "end_date", util.FormatDate(a.EndDate))
	return nil
}

// Extend pushes the end date of an agreement out by days. The status is
// left for the next RefreshStatuses pass.
func (m *RentalAgreementManager) Extend(id string, days int) error {
	a, err := m.Get(id)
	if err != nil {
		return err
	}
	if days <= 0 {
		return models.InvalidArgumentf("extension must be a positive number of days, got %d", days)
	}

	a.EndDate = util.AddDays(a.EndDate, days)
	m.logger.Debug("extended agreement", "id", id, "end_date", util.FormatDate(a.EndDate))
	return nil
}

// RefreshStatuses re-derives every agreement's status from the clock and
// returns the IDs that changed, in ID order. Agreements moving to COMPLETED
// release their tenants; COMPLETED never regresses.
func (m *RentalAgreementManager) RefreshStatuses() []string {
	now := m.clock.Now()
	var changed []string

	for _, a := range m.List() {
		next := models.DeriveStatus(a.StartDate, a.EndDate, now, a.Status)
		if next == a.Status {
			continue
		}

		m.logger.Debug("agreement status changed", "id", a.ID, "from", a.Status, "to", next)
		if next == models.AgreementStatusCompleted {
			models.CompleteAgreement(a)
		} else {
			a.Status = next
		}
		changed = append(changed, a.ID)
	}

	return changed
}

// AddSubTenant adds a tenant to an agreement and to the occupants of its
// property. Adding the main tenant or an existing sub-tenant is a logged
// no-op.
func (m *RentalAgreementManager) AddSubTenant(agreementID, tenantID string) error {
	a, t, err := m.resolveSubTenant(agreementID, tenantID)
	if err != nil {
		return err
	}

	switch models.AddSubTenant(a, t) {
	case models.SubTenantIsMain:
		m.logger.Info("tenant is the main tenant; not added as sub-tenant", "agreement", agreementID, "tenant", tenantID)
	case models.SubTenantAlreadyPresent:
		m.logger.Info("tenant is already a sub-tenant", "agreement", agreementID, "tenant", tenantID)
	}
	return nil
}

// RemoveSubTenant reverses AddSubTenant. Removing a tenant that is not a
// sub-tenant is a logged no-op.
func (m *RentalAgreementManager) RemoveSubTenant(agreementID, tenantID string) error {
	a, t, err := m.resolveSubTenant(agreementID, tenantID)
	if err != nil {
		return err
	}

	switch models.RemoveSubTenant(a, t) {
	case models.SubTenantIsMain:
		m.logger.Info("tenant is the main tenant; not removed", "agreement", agreementID, "tenant", tenantID)
	case models.SubTenantAbsent:
		m.logger.Info("tenant is not a sub-tenant", "agreement", agreementID, "tenant", tenantID)
	}
	return nil
}

func (m *RentalAgreementManager) resolveSubTenant(agreementID, tenantID string) (*models.RentalAgreement, *models.Tenant, error) {
	a, err := m.Get(agreementID)
	if err != nil {
		return nil, nil, err
	}
	t, err := m.set.Tenants.Get(tenantID)
	if err != nil {
		return nil, nil, err
	}
	return a, t, nil
}

// RecordPayment attaches a payment to its agreement and paying tenant.
func (m *RentalAgreementManager) RecordPayment(p *models.Payment) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("recording payment: %w", err)
	}
	if _, ok := m.payments[p.ID]; ok {
		return models.DuplicateKey("payment", "id", p.ID)
	}
	a, err := m.Get(p.Agreement().ID)
	if err != nil {
		return fmt.Errorf("recording payment %s: %w", p.ID, err)
	}
	t, err := m.set.Tenants.Get(p.Tenant().ID)
	if err != nil {
		return fmt.Errorf("recording payment %s: %w", p.ID, err)
	}

	p.AssignParties(a, t)
	models.AttachPayment(p)
	m.payments[p.ID] = p
	return nil
}

// DeletePayment removes a payment from its agreement and tenant.
func (m *RentalAgreementManager) DeletePayment(id string) error {
	p, ok := m.payments[id]
	if !ok {
		return models.NotFound("payment", id)
	}
	models.DetachPayment(p)
	delete(m.payments, id)
	return nil
}

// Payment returns the payment with the given ID.
func (m *RentalAgreementManager) Payment(id string) (*models.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, models.NotFound("payment", id)
	}
	return p, nil
}

// Payments returns every recorded payment ordered by ID.
func (m *RentalAgreementManager) Payments() []*models.Payment {
	return sortedValues(m.payments)
}

// PaymentsFor returns the payments recorded against an agreement.
func (m *RentalAgreementManager) PaymentsFor(agreementID string) ([]*models.Payment, error) {
	a, err := m.Get(agreementID)
	if err != nil {
		return nil, err
	}
	return a.Payments(), nil
}

// Active returns agreements with status ACTIVE.
func (m *RentalAgreementManager) Active() []*models.RentalAgreement {
	return m.withStatus(models.AgreementStatusActive)
}

// Expired returns agreements with status COMPLETED.
func (m *RentalAgreementManager) Expired() []*models.RentalAgreement {
	return m.withStatus(models.AgreementStatusCompleted)
}

func (m *RentalAgreementManager) withStatus(status models.AgreementStatus) []*models.RentalAgreement {
	var out []*models.RentalAgreement
	for _, a := range m.List() {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

// ActiveCount returns the number of ACTIVE agreements.
func (m *RentalAgreementManager) ActiveCount() int {
	return len(m.Active())
}

// TotalRentalIncome sums the rent of every ACTIVE agreement.
func (m *RentalAgreementManager) TotalRentalIncome() float64 {
	var total float64
	for _, a := range m.Active() {
		total += a.RentAmount
	}
	return total
}

// FindActiveForProperty returns the first ACTIVE agreement on a property,
// by ID order.
func (m *RentalAgreementManager) FindActiveForProperty(propertyID string) (*models.RentalAgreement, error) {
	for _, a := range m.Active() {
		if a.Property() != nil && a.Property().ID == propertyID {
			return a, nil
		}
	}
	return nil, models.NotFound("active agreement for property", propertyID)
}

// StatusCounts returns the number of agreements in each status.
func (m *RentalAgreementManager) StatusCounts() map[models.AgreementStatus]int {
	counts := map[models.AgreementStatus]int{
		models.AgreementStatusNew:       0,
		models.AgreementStatusActive:    0,
		models.AgreementStatusCompleted: 0,
	}
	for _, a := range m.byID {
		counts[a.Status]++
	}
	return counts
}
