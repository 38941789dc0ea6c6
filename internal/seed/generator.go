package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rentaltrack/rentaltrack/internal/manager"
	"github.com/rentaltrack/rentaltrack/internal/models"
	"github.com/rentaltrack/rentaltrack/internal/util"
)

// ErrNotEmpty is returned when seeding a set that already holds entities.
var ErrNotEmpty = errors.New("portfolio is not empty")

// Config configures the seed data generator.
type Config struct {
	Owners     int
	Hosts      int
	Tenants    int
	Properties int
	Agreements int
	RandomSeed int64
}

// DefaultConfig returns a default seed configuration.
func DefaultConfig() Config {
	return Config{
		Owners:     8,
		Hosts:      4,
		Tenants:    30,
		Properties: 20,
		Agreements: 15,
		RandomSeed: 1987,
	}
}

// Validate checks that the counts can produce a consistent portfolio.
func (c Config) Validate() error {
	var errs []error

	if c.Owners < 1 {
		errs = append(errs, errors.New("owners must be positive"))
	}
	if c.Hosts < 1 {
		errs = append(errs, errors.New("hosts must be positive"))
	}
	if c.Tenants < 0 || c.Properties < 0 || c.Agreements < 0 {
		errs = append(errs, errors.New("counts must be non-negative"))
	}
	if c.Agreements > 0 && c.Tenants < 1 {
		errs = append(errs, errors.New("agreements need at least one tenant"))
	}
	if c.Agreements > c.Properties {
		errs = append(errs, errors.New("agreements must not exceed properties"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Generator fills a manager.Set with a demo portfolio. Two generators with
// the same seed and clock produce identical portfolios.
type Generator struct {
	set    *manager.Set
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger
	seq    int64

	// Tracking
	owners     []*models.Owner
	hosts      []*models.Host
	tenants    []*models.Tenant
	properties []*models.Property
}

// NewGenerator creates a new seed data generator.
func NewGenerator(set *manager.Set, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		set:    set,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.RandomSeed)),
		logger: logger,
	}
}

// agreementPhase places an agreement relative to today.
type agreementPhase int

const (
	phaseEnded agreementPhase = iota
	phaseRunning
	phaseUpcoming
)

func phaseOf(i int) agreementPhase {
	return agreementPhase(i % 3)
}

// Generate creates the whole portfolio through the managers and returns
// the resulting counts.
func (g *Generator) Generate(ctx context.Context) (manager.Counts, error) {
	if err := g.cfg.Validate(); err != nil {
		return manager.Counts{}, fmt.Errorf("seed config: %w", err)
	}
	if c := g.set.Counts(); c != (manager.Counts{}) {
		return c, ErrNotEmpty
	}

	g.logger.Info("starting seed data generation",
		"owners", g.cfg.Owners,
		"properties", g.cfg.Properties,
		"agreements", g.cfg.Agreements,
		"seed", g.cfg.RandomSeed,
	)

	stages := []struct {
		name string
		run  func() error
	}{
		{"people", g.generatePeople},
		{"properties", g.generateProperties},
		{"agreements", g.generateAgreements},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return g.set.Counts(), err
		}
		if err := stage.run(); err != nil {
			return g.set.Counts(), fmt.Errorf("generating %s: %w", stage.name, err)
		}
	}

	counts := g.set.Counts()
	g.logger.Info("seed data generation complete",
		"owners", counts.Owners,
		"hosts", counts.Hosts,
		"tenants", counts.Tenants,
		"properties", counts.Properties,
		"agreements", counts.Agreements,
		"payments", counts.Payments,
	)
	return counts, nil
}

func (g *Generator) nextID(prefix string) string {
	g.seq++
	return prefix + "-" + util.DeterministicID(g.cfg.RandomSeed*1_000_003+g.seq)
}

func (g *Generator) pick(list []string) string {
	return list[g.rng.Intn(len(list))]
}

// person builds the shared fields of a generated person. Emails carry the
// sequence number so they never collide within a role.
func (g *Generator) person(prefix, domain string, minAge, maxAge int) models.Person {
	given := g.pick(GivenNames)
	surname := g.pick(Surnames)
	id := g.nextID(prefix)

	today := util.Today(g.set.Clock())
	age := minAge + g.rng.Intn(maxAge-minAge+1)
	dob := today.AddDate(-age, -g.rng.Intn(12), -g.rng.Intn(28))

	return models.Person{
		ID:          id,
		FullName:    given + " " + surname,
		DateOfBirth: dob,
		Email:       fmt.Sprintf("%s.%s%d@%s", strings.ToLower(given), strings.ToLower(surname), g.seq, domain),
	}
}

func (g *Generator) generatePeople() error {
	for i := 0; i < g.cfg.Owners; i++ {
		p := g.person("OWN", "owners.example", 30, 75)
		o := models.NewOwner(p.ID, p.FullName, p.DateOfBirth, p.Email)
		if err := g.set.Owners.Add(o); err != nil {
			return err
		}
		g.owners = append(g.owners, o)
	}

	for i := 0; i < g.cfg.Hosts; i++ {
		p := g.person("HST", "hosts.example", 25, 65)
		h := models.NewHost(p.ID, p.FullName, p.DateOfBirth, p.Email)
		if err := g.set.Hosts.Add(h); err != nil {
			return err
		}
		g.hosts = append(g.hosts, h)
	}

	for i := 0; i < g.cfg.Tenants; i++ {
		p := g.person("TNT", "tenants.example", 18, 80)
		t := models.NewTenant(p.ID, p.FullName, p.DateOfBirth, p.Email)
		if err := g.set.Tenants.Add(t); err != nil {
			return err
		}
		g.tenants = append(g.tenants, t)
	}

	g.logger.Debug("people generated",
		"owners", len(g.owners),
		"hosts", len(g.hosts),
		"tenants", len(g.tenants),
	)
	return nil
}

func (g *Generator) address() string {
	return fmt.Sprintf("%d %s %s", 1+g.rng.Intn(240), g.pick(StreetNames), g.pick(StreetSuffixes))
}

// roundTo rounds v to the nearest multiple of step.
func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

func (g *Generator) randomBusinessType() string {
	total := 0
	for _, bt := range BusinessTypes {
		total += bt.Weight
	}

	r := g.rng.Intn(total)
	cumulative := 0
	for _, bt := range BusinessTypes {
		cumulative += bt.Weight
		if r < cumulative {
			return bt.Type
		}
	}
	return BusinessTypes[0].Type
}

// generateProperties creates every property with one or two hosts. The
// first Agreements properties are reserved for agreements; those with a
// running agreement are marked RENTED.
func (g *Generator) generateProperties() error {
	for i := 0; i < g.cfg.Properties; i++ {
		owner := g.owners[g.rng.Intn(len(g.owners))]
		status := models.PropertyStatusAvailable
		switch {
		case i < g.cfg.Agreements && phaseOf(i) == phaseRunning:
			status = models.PropertyStatusRented
		case i >= g.cfg.Agreements && g.rng.Intn(10) == 0:
			status = models.PropertyStatusUnderMaintenance
		}

		var p *models.Property
		id := g.nextID("PRP")
		if g.rng.Intn(4) == 0 {
			p = models.NewCommercialProperty(id, g.address(), roundTo(300000+g.rng.Float64()*2700000, 1000), status, owner,
				models.CommercialDetails{
					BusinessType:  g.randomBusinessType(),
					ParkingSpaces: g.rng.Intn(40),
					SquareFootage: roundTo(400+g.rng.Float64()*9600, 0.5),
				})
		} else {
			p = models.NewResidentialProperty(id, g.address(), roundTo(120000+g.rng.Float64()*780000, 1000), status, owner,
				models.ResidentialDetails{
					Bedrooms:    1 + g.rng.Intn(5),
					HasGarden:   g.rng.Intn(2) == 0,
					PetFriendly: g.rng.Intn(3) == 0,
				})
		}
		if err := g.set.Properties.Add(p); err != nil {
			return err
		}

		hostCount := 1 + g.rng.Intn(2)
		for _, j := range g.rng.Perm(len(g.hosts))[:min(hostCount, len(g.hosts))] {
			if err := g.set.Properties.AttachHost(p.ID, g.hosts[j].ID); err != nil {
				return err
			}
		}
		g.properties = append(g.properties, p)
	}

	g.logger.Debug("properties generated", "count", len(g.properties))
	return nil
}

// generateAgreements creates one agreement per reserved property, cycling
// through ended, running and upcoming agreements. Running agreements get a
// monthly payment history up to today.
func (g *Generator) generateAgreements() error {
	today := util.Today(g.set.Clock())
	periods := []models.RentalPeriod{
		models.RentalPeriodMonthly,
		models.RentalPeriodMonthly,
		models.RentalPeriodWeekly,
		models.RentalPeriodFortnightly,
	}

	for i := 0; i < g.cfg.Agreements; i++ {
		p := g.properties[i]
		hosts := p.Hosts()
		tenant := g.tenants[g.rng.Intn(len(g.tenants))]

		var start, end time.Time
		switch phaseOf(i) {
		case phaseEnded:
			start = util.AddDays(today, -(400 + g.rng.Intn(300)))
			end = util.AddDays(start, 365)
		case phaseRunning:
			start = util.AddDays(today, -(1 + g.rng.Intn(300)))
			end = util.AddDays(start, 365)
		case phaseUpcoming:
			start = util.AddDays(today, 10+g.rng.Intn(80))
			end = util.AddDays(start, 180)
		}

		rent := roundTo(p.Price*0.004, 5)
		a := models.NewRentalAgreement(g.nextID("AGR"), models.Parties{
			Property:   p,
			MainTenant: tenant,
			Owner:      p.Owner(),
			Host:       hosts[g.rng.Intn(len(hosts))],
		}, start, end, rent, periods[g.rng.Intn(len(periods))], models.AgreementStatusNew)
		if err := g.set.Agreements.Add(a); err != nil {
			return err
		}

		if len(g.tenants) > 1 && g.rng.Intn(3) == 0 {
			sub := g.tenants[g.rng.Intn(len(g.tenants))]
			if err := g.set.Agreements.AddSubTenant(a.ID, sub.ID); err != nil {
				return err
			}
		}

		if phaseOf(i) == phaseRunning {
			if err := g.generatePayments(a, tenant, today); err != nil {
				return err
			}
		}
	}

	g.logger.Debug("agreements generated", "count", g.cfg.Agreements)
	return nil
}

func (g *Generator) generatePayments(a *models.RentalAgreement, tenant *models.Tenant, today time.Time) error {
	for due := a.StartDate; !due.After(today); due = due.AddDate(0, 1, 0) {
		p := models.NewPayment(g.nextID("PAY"), a, tenant, due, a.RentAmount, g.pick(PaymentMethods))
		if err := g.set.Agreements.RecordPayment(p); err != nil {
			return err
		}
	}
	return nil
}
