package manager

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rentaltrack/rentaltrack/internal/models"
)

// Property sort criteria.
const (
	SortByType    = "type"
	SortByAddress = "address"
	SortByPrice   = "price"
	SortByStatus  = "status"
	SortByOwner   = "owner"
)

// PropertyManager stores properties and owns the property↔host and
// property↔tenant edges.
type PropertyManager struct {
	set    *Set
	byID   map[string]*models.Property
	logger *slog.Logger
}

func newPropertyManager(set *Set, logger *slog.Logger) *PropertyManager {
	return &PropertyManager{
		set:    set,
		byID:   make(map[string]*models.Property),
		logger: logger,
	}
}

// Add registers a property and links it to its owner. The owner must
// already be registered.
func (m *PropertyManager) Add(p *models.Property) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("adding property: %w", err)
	}
	if _, ok := m.byID[p.ID]; ok {
		return models.DuplicateKey("property", "id", p.ID)
	}
	owner, err := m.set.Owners.Get(p.OwnerID())
	if err != nil {
		return fmt.Errorf("adding property %s: %w", p.ID, err)
	}

	models.AssignOwner(p, owner)
	m.byID[p.ID] = p
	m.logger.Debug("added property", "id", p.ID, "owner", owner.ID)
	return nil
}

// Update copies the record fields of p into the stored property and moves
// it to p's owner when that changed. Host and occupant sets are kept.
func (m *PropertyManager) Update(p *models.Property) error {
	stored, ok := m.byID[p.ID]
	if !ok {
		return models.NotFound("property", p.ID)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("updating property: %w", err)
	}
	owner, err := m.set.Owners.Get(p.OwnerID())
	if err != nil {
		return fmt.Errorf("updating property %s: %w", p.ID, err)
	}

	if stored != p {
		stored.CopyScalars(p)
	}
	if stored.Owner() != owner {
		m.logger.Debug("reassigning property owner", "id", p.ID, "from", stored.OwnerID(), "to", owner.ID)
		models.AssignOwner(stored, owner)
	}
	return nil
}

// Delete removes a property after detaching its hosts, occupants and owner.
// Agreements on the property are retained in memory and keep pointing at
// the released property, which takes no new hosts or occupants. Their
// property ID no longer resolves, so a later load skips those agreements
// and their payments.
func (m *PropertyManager) Delete(id string) error {
	p, ok := m.byID[id]
	if !ok {
		return models.NotFound("property", id)
	}

	models.ReleaseProperty(p)
	delete(m.byID, id)

	if history := p.RentalHistory(); len(history) > 0 {
		m.logger.Warn("deleted property still has agreements; they will not survive a reload",
			"id", id,
			"agreements", len(history),
		)
	} else {
		m.logger.Debug("deleted property", "id", id)
	}
	return nil
}

// Get returns the property with the given ID.
func (m *PropertyManager) Get(id string) (*models.Property, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, models.NotFound("property", id)
	}
	return p, nil
}

// List returns all properties ordered by ID.
func (m *PropertyManager) List() []*models.Property {
	return sortedValues(m.byID)
}

// Sorted returns all properties ordered by id, type, address, price,
// status or owner (owner name).
func (m *PropertyManager) Sorted(criterion string) ([]*models.Property, error) {
	var cmpFn func(a, b *models.Property) int
	switch normalizeCriterion(criterion) {
	case SortByID:
		cmpFn = byString(func(p *models.Property) string { return p.ID })
	case SortByType, "kind":
		cmpFn = byString(func(p *models.Property) string { return string(p.Kind) })
	case SortByAddress:
		cmpFn = byString(func(p *models.Property) string { return p.Address })
	case SortByPrice:
		cmpFn = byFloat(func(p *models.Property) float64 { return p.Price })
	case SortByStatus:
		cmpFn = byString(func(p *models.Property) string { return string(p.Status) })
	case SortByOwner, "ownername":
		cmpFn = byString(func(p *models.Property) string { return p.OwnerName() })
	default:
		return nil, models.InvalidArgumentf("unknown property sort criterion %q", criterion)
	}

	return sortedByKey(m.List(), func(p *models.Property) string { return p.ID }, cmpFn), nil
}

// Search matches keyword against ID, address and owner name, ignoring case.
func (m *PropertyManager) Search(keyword string) []*models.Property {
	var out []*models.Property
	for _, p := range m.List() {
		if containsFold(keyword, p.ID, p.Address, p.OwnerName()) {
			out = append(out, p)
		}
	}
	return out
}

// AttachHost records that host manages property.
func (m *PropertyManager) AttachHost(propertyID, hostID string) error {
	p, h, err := m.resolveHost(propertyID, hostID)
	if err != nil {
		return err
	}
	if !models.LinkHost(p, h) {
		m.logger.Debug("host already manages property", "property", propertyID, "host", hostID)
	}
	return nil
}

// DetachHost removes the management edge between property and host.
func (m *PropertyManager) DetachHost(propertyID, hostID string) error {
	p, h, err := m.resolveHost(propertyID, hostID)
	if err != nil {
		return err
	}
	if !models.UnlinkHost(p, h) {
		m.logger.Debug("host does not manage property", "property", propertyID, "host", hostID)
	}
	return nil
}

// AttachTenant records tenant as an occupant of property.
func (m *PropertyManager) AttachTenant(propertyID, tenantID string) error {
	p, t, err := m.resolveTenant(propertyID, tenantID)
	if err != nil {
		return err
	}
	if !models.LinkOccupant(p, t) {
		m.logger.Debug("tenant already occupies property", "property", propertyID, "tenant", tenantID)
	}
	return nil
}

// DetachTenant removes tenant from the occupants of property.
func (m *PropertyManager) DetachTenant(propertyID, tenantID string) error {
	p, t, err := m.resolveTenant(propertyID, tenantID)
	if err != nil {
		return err
	}
	if !models.UnlinkOccupant(p, t) {
		m.logger.Debug("tenant does not occupy property", "property", propertyID, "tenant", tenantID)
	}
	return nil
}

func (m *PropertyManager) resolveHost(propertyID, hostID string) (*models.Property, *models.Host, error) {
	p, err := m.Get(propertyID)
	if err != nil {
		return nil, nil, err
	}
	h, err := m.set.Hosts.Get(hostID)
	if err != nil {
		return nil, nil, err
	}
	return p, h, nil
}

func (m *PropertyManager) resolveTenant(propertyID, tenantID string) (*models.Property, *models.Tenant, error) {
	p, err := m.Get(propertyID)
	if err != nil {
		return nil, nil, err
	}
	t, err := m.set.Tenants.Get(tenantID)
	if err != nil {
		return nil, nil, err
	}
	return p, t, nil
}

// Available returns properties with status AVAILABLE, ordered by ID.
func (m *PropertyManager) Available() []*models.Property {
	return m.withStatus(models.PropertyStatusAvailable)
}

func (m *PropertyManager) withStatus(status models.PropertyStatus) []*models.Property {
	var out []*models.Property
	for _, p := range m.List() {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of properties.
func (m *PropertyManager) Count() int {
	return len(m.byID)
}

// OccupiedCount returns the number of properties with status RENTED.
func (m *PropertyManager) OccupiedCount() int {
	return len(m.withStatus(models.PropertyStatusRented))
}

// ByKind returns properties of the given kind, ordered by ID.
func (m *PropertyManager) ByKind(kind models.PropertyKind) []*models.Property {
	var out []*models.Property
	for _, p := range m.List() {
		if strings.EqualFold(string(p.Kind), string(kind)) {
			out = append(out, p)
		}
	}
	return out
}
