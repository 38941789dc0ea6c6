package manager

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/rentaltrack/rentaltrack/internal/models"
	"github.com/rentaltrack/rentaltrack/internal/testutil"
)

func TestPropertyManager_Add(t *testing.T) {
	p := newPortfolio(t)

	t.Run("Links the owner", func(t *testing.T) {
		owned := p.owner.OwnedProperties()
		if len(owned) != 1 || owned[0] != p.property {
			t.Errorf("OwnedProperties() = %v", owned)
		}
	})

	t.Run("Unknown owner", func(t *testing.T) {
		stranger := testutil.FixtureOwner()
		prop := testutil.FixtureCommercialProperty(stranger)
		if err := p.set.Properties.Add(prop); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if len(stranger.OwnedProperties()) != 0 {
			t.Error("rejected property must not be linked to its owner")
		}
	})

	t.Run("Negative price", func(t *testing.T) {
		prop := testutil.FixtureResidentialProperty(p.owner, func(pr *models.Property) { pr.Price = -1 })
		if err := p.set.Properties.Add(prop); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("Duplicate ID", func(t *testing.T) {
		prop := testutil.FixtureResidentialProperty(p.owner, func(pr *models.Property) { pr.ID = p.property.ID })
		if err := p.set.Properties.Add(prop); !errors.Is(err, models.ErrDuplicateKey) {
			t.Fatalf("expected ErrDuplicateKey, got %v", err)
		}
	})
}

func TestPropertyManager_Update(t *testing.T) {
	p := newPortfolio(t)
	other := testutil.FixtureOwner()
	mustNot(t, p.set.Owners.Add(other))

	incoming := models.NewCommercialProperty(p.property.ID, "99 Dock Road", 900000, models.PropertyStatusUnderMaintenance, other,
		models.CommercialDetails{BusinessType: "Warehouse", ParkingSpaces: 4, SquareFootage: 8000})
	if err := p.set.Properties.Update(incoming); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, _ := p.set.Properties.Get(p.property.ID)
	if stored != p.property {
		t.Fatal("Update() should keep the stored instance")
	}
	if stored.Kind != models.PropertyKindCommercial || stored.Residential != nil || stored.Commercial == nil {
		t.Errorf("variant not replaced: kind=%s", stored.Kind)
	}
	if stored.Address != "99 Dock Road" || stored.Status != models.PropertyStatusUnderMaintenance {
		t.Errorf("scalars not copied: %+v", stored)
	}
	if stored.Owner() != other {
		t.Errorf("owner = %s, want %s", stored.OwnerID(), other.ID)
	}
	if len(p.owner.OwnedProperties()) != 0 {
		t.Error("previous owner still lists the property")
	}
	if len(other.OwnedProperties()) != 1 {
		t.Error("new owner does not list the property")
	}
	if len(stored.Hosts()) != 1 || len(stored.Tenants()) != 1 {
		t.Errorf("update dropped links: hosts=%d tenants=%d", len(stored.Hosts()), len(stored.Tenants()))
	}

	t.Run("Unknown ID", func(t *testing.T) {
		missing := testutil.FixtureResidentialProperty(p.owner)
		if err := p.set.Properties.Update(missing); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPropertyManager_DeleteCascade(t *testing.T) {
	p := newPortfolio(t)

	if len(p.property.Tenants()) != 1 {
		t.Fatalf("setup: property has %d occupants, want 1", len(p.property.Tenants()))
	}

	if err := p.set.Properties.Delete(p.property.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := p.set.Properties.Get(p.property.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(p.host.ManagedProperties()) != 0 {
		t.Error("host still manages the deleted property")
	}
	if len(p.owner.OwnedProperties()) != 0 {
		t.Error("owner still owns the deleted property")
	}
	if len(p.tenant.RentedProperties()) != 0 {
		t.Error("tenant still rents the deleted property")
	}

	a, err := p.set.Agreements.Get(p.agreement.ID)
	if err != nil {
		t.Fatalf("agreement should be retained: %v", err)
	}
	if a.Property() != p.property {
		t.Error("retained agreement should keep its property reference")
	}
}

func TestPropertyManager_DeletedPropertyTakesNoOccupants(t *testing.T) {
	p := newPortfolio(t)
	mustNot(t, p.set.Properties.Delete(p.property.ID))

	if !p.property.Released() {
		t.Fatal("deleted property should be marked released")
	}

	newcomer := testutil.FixtureTenant(func(t *models.Tenant) { t.FullName = "Nina Newcomer" })
	mustNot(t, p.set.Tenants.Add(newcomer))
	if err := p.set.Agreements.AddSubTenant(p.agreement.ID, newcomer.ID); err != nil {
		t.Fatalf("AddSubTenant() error = %v", err)
	}

	if subs := p.agreement.SubTenants(); len(subs) != 1 || subs[0] != newcomer {
		t.Errorf("SubTenants() = %v, want the newcomer", subs)
	}
	if rented := newcomer.RentedProperties(); len(rented) != 0 {
		t.Errorf("sub-tenant rents deleted property: %v", rented)
	}
	if occupants := p.property.Tenants(); len(occupants) != 0 {
		t.Errorf("deleted property gained occupants: %v", occupants)
	}
}

func TestPropertyManager_DeleteWarnsAboutRetainedAgreements(t *testing.T) {
	var buf bytes.Buffer
	set := NewSet(WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))))

	owner := testutil.FixtureOwner()
	host := testutil.FixtureHost()
	tenant := testutil.FixtureTenant()
	mustNot(t, set.Owners.Add(owner))
	mustNot(t, set.Hosts.Add(host))
	mustNot(t, set.Tenants.Add(tenant))

	vacant := testutil.FixtureResidentialProperty(owner)
	rented := testutil.FixtureResidentialProperty(owner)
	mustNot(t, set.Properties.Add(vacant))
	mustNot(t, set.Properties.Add(rented))
	mustNot(t, set.Agreements.Add(testutil.FixtureAgreement(models.Parties{
		Property: rented, MainTenant: tenant, Owner: owner, Host: host,
	})))

	mustNot(t, set.Properties.Delete(vacant.ID))
	if buf.Len() != 0 {
		t.Errorf("deleting a property without agreements logged: %s", buf.String())
	}

	mustNot(t, set.Properties.Delete(rented.ID))
	out := buf.String()
	if !strings.Contains(out, "will not survive a reload") || !strings.Contains(out, rented.ID) {
		t.Errorf("missing retained-agreement warning, got %q", out)
	}
}

func TestPropertyManager_HostsAndTenants(t *testing.T) {
	p := newPortfolio(t)
	second := testutil.FixtureHost()
	mustNot(t, p.set.Hosts.Add(second))

	mustNot(t, p.set.Properties.AttachHost(p.property.ID, second.ID))
	mustNot(t, p.set.Properties.AttachHost(p.property.ID, second.ID))
	if got := len(p.property.Hosts()); got != 2 {
		t.Errorf("Hosts() = %d, want 2 after repeated attach", got)
	}
	if owners := second.CooperatingOwners(); len(owners) != 1 || owners[0] != p.owner {
		t.Errorf("CooperatingOwners() = %v", owners)
	}

	mustNot(t, p.set.Properties.DetachHost(p.property.ID, second.ID))
	if len(second.ManagedProperties()) != 0 {
		t.Error("detached host still manages the property")
	}

	mustNot(t, p.set.Properties.AttachTenant(p.property.ID, p.subTenant.ID))
	if len(p.subTenant.RentedProperties()) != 1 {
		t.Error("attached tenant does not rent the property")
	}
	mustNot(t, p.set.Properties.DetachTenant(p.property.ID, p.subTenant.ID))
	if len(p.subTenant.RentedProperties()) != 0 {
		t.Error("detached tenant still rents the property")
	}

	if err := p.set.Properties.AttachHost("missing", second.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown property: expected ErrNotFound, got %v", err)
	}
	if err := p.set.Properties.AttachTenant(p.property.ID, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown tenant: expected ErrNotFound, got %v", err)
	}
}

func TestPropertyManager_SortedAndSearch(t *testing.T) {
	set := NewSet(WithLogger(testutil.DiscardLogger()))
	owner := testutil.FixtureOwner()
	mustNot(t, set.Owners.Add(owner))

	props := []*models.Property{
		testutil.FixtureResidentialProperty(owner, func(p *models.Property) { p.ID, p.Address, p.Price = "P2", "Beta Lane", 300 }),
		testutil.FixtureCommercialProperty(owner, func(p *models.Property) { p.ID, p.Address, p.Price = "P1", "Alpha Road", 500 }),
		testutil.FixtureResidentialProperty(owner, func(p *models.Property) {
			p.ID, p.Address, p.Price, p.Status = "P3", "Gamma Court", 100, models.PropertyStatusRented
		}),
	}
	for _, p := range props {
		mustNot(t, set.Properties.Add(p))
	}

	tests := []struct {
		criterion string
		want      []string
	}{
		{"id", []string{"P1", "P2", "P3"}},
		{"price", []string{"P3", "P2", "P1"}},
		{"address", []string{"P1", "P2", "P3"}},
		{"type", []string{"P1", "P2", "P3"}},
		{"status", []string{"P1", "P2", "P3"}},
	}
	for _, tt := range tests {
		t.Run("Sorted by "+tt.criterion, func(t *testing.T) {
			got, err := set.Properties.Sorted(tt.criterion)
			if err != nil {
				t.Fatalf("Sorted() error = %v", err)
			}
			ids := make([]string, len(got))
			for i, p := range got {
				ids[i] = p.ID
			}
			if !equalStrings(ids, tt.want) {
				t.Errorf("Sorted(%q) = %v, want %v", tt.criterion, ids, tt.want)
			}
		})
	}

	if _, err := set.Properties.Sorted("bedrooms"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if got := set.Properties.Search("gamma"); len(got) != 1 || got[0].ID != "P3" {
		t.Errorf("Search(address) = %v", got)
	}
	if got := set.Properties.Search(owner.FullName); len(got) != 3 {
		t.Errorf("Search(owner) returned %d, want 3", len(got))
	}
	if got := len(set.Properties.Available()); got != 2 {
		t.Errorf("Available() = %d, want 2", got)
	}
	if got := set.Properties.OccupiedCount(); got != 1 {
		t.Errorf("OccupiedCount() = %d, want 1", got)
	}
	if got := len(set.Properties.ByKind(models.PropertyKindCommercial)); got != 1 {
		t.Errorf("ByKind(COMMERCIAL) = %d, want 1", got)
	}
}
