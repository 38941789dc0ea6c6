package manager

import (
	"log/slog"

	"github.com/rentaltrack/rentaltrack/internal/models"
)

// OwnerManager stores owners.
type OwnerManager struct {
	book *personBook[*models.Owner]
}

func newOwnerManager(logger *slog.Logger) *OwnerManager {
	return &OwnerManager{book: newPersonBook[*models.Owner]("owner", logger)}
}

// Add registers a new owner.
func (m *OwnerManager) Add(o *models.Owner) error { return m.book.add(o) }

// Update replaces the record fields of an existing owner.
func (m *OwnerManager) Update(o *models.Owner) error {
	_, err := m.book.update(o)
	return err
}

// Delete removes an owner. An owner still holding property cannot be
// deleted, because every property needs exactly one owner.
func (m *OwnerManager) Delete(id string) error {
	o, err := m.book.get(id)
	if err != nil {
		return err
	}
	if n := len(o.OwnedProperties()); n > 0 {
		return models.Validationf("owner %s still owns %d properties; reassign or delete them first", id, n)
	}

	models.ReleaseOwner(o)
	m.book.remove(id)
	return nil
}

// Get returns the owner with the given ID.
func (m *OwnerManager) Get(id string) (*models.Owner, error) { return m.book.get(id) }

// List returns all owners ordered by ID.
func (m *OwnerManager) List() []*models.Owner { return m.book.list() }

// Sorted returns all owners ordered by id, name, dob or email.
func (m *OwnerManager) Sorted(criterion string) ([]*models.Owner, error) {
	return m.book.sorted(criterion)
}

// Search matches keyword against ID, name and email, ignoring case.
func (m *OwnerManager) Search(keyword string) []*models.Owner { return m.book.search(keyword) }

// IsEmailTaken reports whether another owner already uses email.
func (m *OwnerManager) IsEmailTaken(email string) bool { return m.book.emails.Taken(email, "") }

// Count returns the number of owners.
func (m *OwnerManager) Count() int { return len(m.book.byID) }

// HostManager stores hosts.
type HostManager struct {
	book *personBook[*models.Host]
}

func newHostManager(logger *slog.Logger) *HostManager {
	return &HostManager{book: newPersonBook[*models.Host]("host", logger)}
}

// Add registers a new host.
func (m *HostManager) Add(h *models.Host) error { return m.book.add(h) }

// Update replaces the record fields of an existing host.
func (m *HostManager) Update(h *models.Host) error {
	_, err := m.book.update(h)
	return err
}

// Delete removes a host and detaches it from every managed property.
func (m *HostManager) Delete(id string) error {
	h, err := m.book.get(id)
	if err != nil {
		return err
	}

	models.ReleaseHost(h)
	m.book.remove(id)
	return nil
}

// Get returns the host with the given ID.
func (m *HostManager) Get(id string) (*models.Host, error) { return m.book.get(id) }

// List returns all hosts ordered by ID.
func (m *HostManager) List() []*models.Host { return m.book.list() }

// Sorted returns all hosts ordered by id, name, dob or email.
func (m *HostManager) Sorted(criterion string) ([]*models.Host, error) {
	return m.book.sorted(criterion)
}

// Search matches keyword against ID, name and email, ignoring case.
func (m *HostManager) Search(keyword string) []*models.Host { return m.book.search(keyword) }

// IsEmailTaken reports whether another host already uses email.
func (m *HostManager) IsEmailTaken(email string) bool { return m.book.emails.Taken(email, "") }

// Count returns the number of hosts.
func (m *HostManager) Count() int { return len(m.book.byID) }

// TenantManager stores tenants.
type TenantManager struct {
	book *personBook[*models.Tenant]
}

func newTenantManager(logger *slog.Logger) *TenantManager {
	return &TenantManager{book: newPersonBook[*models.Tenant]("tenant", logger)}
}

// Add registers a new tenant.
func (m *TenantManager) Add(t *models.Tenant) error { return m.book.add(t) }

// Update replaces the record fields of an existing tenant.
func (m *TenantManager) Update(t *models.Tenant) error {
	_, err := m.book.update(t)
	return err
}

// Delete removes a tenant from every occupancy and sub-tenant list.
// Agreements naming the tenant as main tenant, and its payments, keep the
// reference for reporting.
func (m *TenantManager) Delete(id string) error {
	t, err := m.book.get(id)
	if err != nil {
		return err
	}

	models.ReleaseTenant(t)
	m.book.remove(id)
	return nil
}

// Get returns the tenant with the given ID.
func (m *TenantManager) Get(id string) (*models.Tenant, error) { return m.book.get(id) }

// GetByEmail returns the tenant using email, ignoring case.
func (m *TenantManager) GetByEmail(email string) (*models.Tenant, error) {
	return m.book.byEmail(email)
}

// List returns all tenants ordered by ID.
func (m *TenantManager) List() []*models.Tenant { return m.book.list() }

// Sorted returns all tenants ordered by id, name, dob or email.
func (m *TenantManager) Sorted(criterion string) ([]*models.Tenant, error) {
	return m.book.sorted(criterion)
}

// Search matches keyword against ID, name and email, ignoring case.
func (m *TenantManager) Search(keyword string) []*models.Tenant { return m.book.search(keyword) }

// IsEmailTaken reports whether another tenant already uses email.
func (m *TenantManager) IsEmailTaken(email string) bool { return m.book.emails.Taken(email, "") }

// Count returns the number of tenants.
func (m *TenantManager) Count() int { return len(m.book.byID) }
