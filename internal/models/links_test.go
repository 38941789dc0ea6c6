package models

import (
	"testing"

	"github.com/rentaltrack/rentaltrack/internal/util"
)

type graph struct {
	o1, o2 *Owner
	h1, h2 *Host
	t1, t2 *Tenant
	p1, p2 *Property
}

func newGraph() *graph {
	g := &graph{
		o1: NewOwner("O1", "Olive", util.Date(1970, 1, 1), "olive@example.com"),
		o2: NewOwner("O2", "Oscar", util.Date(1971, 1, 1), "oscar@example.com"),
		h1: NewHost("H1", "Hana", util.Date(1980, 1, 1), "hana@example.com"),
		h2: NewHost("H2", "Hugo", util.Date(1981, 1, 1), "hugo@example.com"),
		t1: NewTenant("T1", "Tara", util.Date(1990, 1, 1), "tara@example.com"),
		t2: NewTenant("T2", "Theo", util.Date(1991, 1, 1), "theo@example.com"),
	}
	g.p1 = NewResidentialProperty("P1", "1 Elm St", 900, PropertyStatusAvailable, g.o1, ResidentialDetails{Bedrooms: 1})
	g.p2 = NewCommercialProperty("P2", "9 Dock Rd", 4000, PropertyStatusAvailable, g.o1, CommercialDetails{BusinessType: "Cafe"})
	AssignOwner(g.p1, g.o1)
	AssignOwner(g.p2, g.o1)
	return g
}

func hostSymmetric(t *testing.T, p *Property, h *Host) {
	t.Helper()
	inP := containsID(p.hosts, h.ID)
	inH := containsID(h.properties, p.ID)
	if inP != inH {
		t.Fatalf("host symmetry broken for %s/%s: property side %v, host side %v", p.ID, h.ID, inP, inH)
	}
}

func occupantSymmetric(t *testing.T, p *Property, tn *Tenant) {
	t.Helper()
	inP := containsID(p.tenants, tn.ID)
	inT := containsID(tn.rented, p.ID)
	if inP != inT {
		t.Fatalf("occupancy symmetry broken for %s/%s: property side %v, tenant side %v", p.ID, tn.ID, inP, inT)
	}
}

func TestAssignOwner_Reassignment(t *testing.T) {
	g := newGraph()

	AssignOwner(g.p1, g.o2)

	if g.p1.Owner() != g.o2 {
		t.Fatalf("expected O2 to own P1")
	}
	if containsID(g.o1.properties, "P1") {
		t.Error("old owner still lists P1")
	}
	if !containsID(g.o2.properties, "P1") {
		t.Error("new owner does not list P1")
	}

	AssignOwner(g.p1, g.o2)
	if len(g.o2.OwnedProperties()) != 1 {
		t.Errorf("reassigning to the same owner duplicated the entry")
	}
}

func TestLinkHost_Symmetry(t *testing.T) {
	g := newGraph()

	if !LinkHost(g.p1, g.h1) {
		t.Fatal("first link should report a change")
	}
	if LinkHost(g.p1, g.h1) {
		t.Error("second link should be a no-op")
	}
	LinkHost(g.p2, g.h1)
	LinkHost(g.p1, g.h2)

	for _, p := range []*Property{g.p1, g.p2} {
		for _, h := range []*Host{g.h1, g.h2} {
			hostSymmetric(t, p, h)
		}
	}
	if len(g.h1.ManagedProperties()) != 2 {
		t.Errorf("expected H1 to manage 2 properties, got %d", len(g.h1.ManagedProperties()))
	}

	owners := g.h1.CooperatingOwners()
	if len(owners) != 1 || owners[0].ID != "O1" {
		t.Errorf("expected O1 as the only cooperating owner, got %d", len(owners))
	}
	if hosts := g.o1.ManagingHosts(); len(hosts) != 2 {
		t.Errorf("expected 2 managing hosts, got %d", len(hosts))
	}

	UnlinkHost(g.p1, g.h1)
	hostSymmetric(t, g.p1, g.h1)
	if containsID(g.p1.hosts, "H1") {
		t.Error("unlink left H1 on P1")
	}
}

func TestReleaseProperty(t *testing.T) {
	g := newGraph()
	LinkHost(g.p1, g.h1)
	LinkOccupant(g.p1, g.t1)

	ReleaseProperty(g.p1)

	if len(g.o1.OwnedProperties()) != 1 {
		t.Errorf("owner still holds released property")
	}
	if len(g.h1.ManagedProperties()) != 0 {
		t.Errorf("host still manages released property")
	}
	if len(g.t1.RentedProperties()) != 0 {
		t.Errorf("tenant still rents released property")
	}
	if g.p1.Owner() != nil {
		t.Errorf("released property still has an owner")
	}
}

func TestReleaseProperty_RefusesNewEdges(t *testing.T) {
	g := newGraph()
	a := newAgreement(g, "A1", AgreementStatusActive)
	BindAgreement(a)

	ReleaseProperty(g.p1)

	if LinkHost(g.p1, g.h2) {
		t.Error("LinkHost() linked a released property")
	}
	if LinkOccupant(g.p1, g.t2) {
		t.Error("LinkOccupant() linked a released property")
	}
	if got := AddSubTenant(a, g.t2); got != SubTenantChanged {
		t.Fatalf("AddSubTenant() = %v, want SubTenantChanged", got)
	}
	if len(g.t2.RentedProperties()) != 0 || len(g.p1.Tenants()) != 0 {
		t.Error("sub-tenant of an orphaned agreement occupies the released property")
	}
	hostSymmetric(t, g.p1, g.h2)
	occupantSymmetric(t, g.p1, g.t2)

	AssignOwner(g.p1, g.o2)
	if g.p1.Released() {
		t.Error("assigning an owner should register the property again")
	}
}

func newAgreement(g *graph, id string, status AgreementStatus, subs ...*Tenant) *RentalAgreement {
	return NewRentalAgreement(id,
		Parties{Property: g.p1, MainTenant: g.t1, SubTenants: subs, Owner: g.o1, Host: g.h1},
		util.Date(2024, 1, 1), util.Date(2024, 12, 31), 900, RentalPeriodMonthly, status)
}

func TestBindAgreement(t *testing.T) {
	g := newGraph()
	a := newAgreement(g, "A1", AgreementStatusActive, g.t2)

	BindAgreement(a)

	if !containsID(g.p1.history, "A1") || !containsID(g.o1.agreements, "A1") ||
		!containsID(g.h1.agreements, "A1") || !containsID(g.t1.agreements, "A1") ||
		!containsID(g.t2.agreements, "A1") {
		t.Fatal("agreement not registered with every collaborator")
	}
	occupantSymmetric(t, g.p1, g.t1)
	occupantSymmetric(t, g.p1, g.t2)
	if len(g.p1.Tenants()) != 2 {
		t.Errorf("expected 2 occupants, got %d", len(g.p1.Tenants()))
	}

	if err := a.AssignParties(Parties{}); err == nil {
		t.Error("expected AssignParties to refuse a registered agreement")
	}

	UnbindAgreement(a)
	if len(g.p1.Tenants()) != 0 || len(g.t1.Agreements()) != 0 || len(g.o1.Agreements()) != 0 {
		t.Error("unbind left references behind")
	}
}

func TestBindAgreement_CompletedDoesNotOccupy(t *testing.T) {
	g := newGraph()
	BindAgreement(newAgreement(g, "A1", AgreementStatusCompleted))

	if len(g.p1.Tenants()) != 0 {
		t.Errorf("completed agreement should not add occupants")
	}
}

func TestCompleteAgreement_KeepsOccupancyHeldByAnotherAgreement(t *testing.T) {
	g := newGraph()
	a1 := newAgreement(g, "A1", AgreementStatusActive)
	a2 := newAgreement(g, "A2", AgreementStatusNew, g.t2)
	BindAgreement(a1)
	BindAgreement(a2)

	CompleteAgreement(a1)

	if !containsID(g.p1.tenants, "T1") {
		t.Error("T1 is still main tenant of open A2 and should stay")
	}

	CompleteAgreement(a2)
	if len(g.p1.Tenants()) != 0 {
		t.Errorf("expected no occupants after both agreements complete, got %d", len(g.p1.Tenants()))
	}
	occupantSymmetric(t, g.p1, g.t1)
	occupantSymmetric(t, g.p1, g.t2)
}

func TestSubTenants(t *testing.T) {
	g := newGraph()
	a := newAgreement(g, "A1", AgreementStatusActive)
	BindAgreement(a)

	t.Run("Main tenant is refused", func(t *testing.T) {
		if got := AddSubTenant(a, g.t1); got != SubTenantIsMain {
			t.Fatalf("expected SubTenantIsMain, got %v", got)
		}
		if len(a.SubTenants()) != 0 {
			t.Error("main tenant was added as sub-tenant")
		}
	})

	t.Run("New sub-tenant occupies the property", func(t *testing.T) {
		if got := AddSubTenant(a, g.t2); got != SubTenantChanged {
			t.Fatalf("expected SubTenantChanged, got %v", got)
		}
		if got := AddSubTenant(a, g.t2); got != SubTenantAlreadyPresent {
			t.Fatalf("expected SubTenantAlreadyPresent, got %v", got)
		}
		occupantSymmetric(t, g.p1, g.t2)
		if !containsID(g.p1.tenants, "T2") {
			t.Error("sub-tenant does not occupy the property")
		}
	})

	t.Run("Removal is symmetric", func(t *testing.T) {
		if got := RemoveSubTenant(a, g.t2); got != SubTenantChanged {
			t.Fatalf("expected SubTenantChanged, got %v", got)
		}
		if got := RemoveSubTenant(a, g.t2); got != SubTenantAbsent {
			t.Fatalf("expected SubTenantAbsent, got %v", got)
		}
		if containsID(g.p1.tenants, "T2") || containsID(g.t2.agreements, "A1") {
			t.Error("removed sub-tenant still linked")
		}
	})
}

func TestReplaceAgreement_MovesProperty(t *testing.T) {
	g := newGraph()
	a := newAgreement(g, "A1", AgreementStatusActive)
	BindAgreement(a)
	pay := NewPayment("PAY1", a, g.t1, util.Date(2024, 2, 1), 900, "card")
	AttachPayment(pay)

	incoming := NewRentalAgreement("A1",
		Parties{Property: g.p2, MainTenant: g.t2, Owner: g.o1, Host: g.h2},
		util.Date(2024, 1, 1), util.Date(2025, 1, 1), 950, RentalPeriodMonthly, AgreementStatusActive)

	ReplaceAgreement(a, incoming)

	if containsID(g.p1.history, "A1") || containsID(g.p1.tenants, "T1") {
		t.Error("old property still references the agreement or its tenant")
	}
	if containsID(g.h1.agreements, "A1") || containsID(g.t1.agreements, "A1") {
		t.Error("old host or tenant still references the agreement")
	}
	if !containsID(g.p2.history, "A1") || !containsID(g.p2.tenants, "T2") || !containsID(g.h2.agreements, "A1") {
		t.Error("new collaborators were not wired")
	}
	if len(a.Payments()) != 1 {
		t.Error("payments should stay with the agreement")
	}
	if a.RentAmount != 950 {
		t.Errorf("scalars not copied, rent = %v", a.RentAmount)
	}
}

func TestReleaseTenant(t *testing.T) {
	g := newGraph()
	a := newAgreement(g, "A1", AgreementStatusActive, g.t2)
	BindAgreement(a)

	ReleaseTenant(g.t2)

	if len(a.SubTenants()) != 0 {
		t.Error("released tenant still a sub-tenant")
	}
	if containsID(g.p1.tenants, "T2") {
		t.Error("released tenant still occupies the property")
	}
}

func TestReleaseAgreement_DetachesPayments(t *testing.T) {
	g := newGraph()
	a := newAgreement(g, "A1", AgreementStatusActive)
	BindAgreement(a)
	AttachPayment(NewPayment("PAY1", a, g.t1, util.Date(2024, 2, 1), 900, "cash"))

	payments := ReleaseAgreement(a)

	if len(payments) != 1 {
		t.Fatalf("expected 1 released payment, got %d", len(payments))
	}
	if len(g.t1.Payments()) != 0 {
		t.Error("tenant still lists payment of released agreement")
	}
}
