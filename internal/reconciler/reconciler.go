// Package reconciler round-trips the entity graph through flat record
// tables. Loading replays the tables in dependency order and resolves every
// foreign key through the managers; a record that cannot be resolved is
// logged and skipped. Saving writes every table sorted by ID so that two
// saves without an intervening mutation produce identical output.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rentaltrack/rentaltrack/internal/manager"
	"github.com/rentaltrack/rentaltrack/internal/metrics"
	"github.com/rentaltrack/rentaltrack/internal/models"
	"github.com/rentaltrack/rentaltrack/internal/storage"
)

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used for skipped records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}

// WithMetrics records load and save counts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// Reconciler moves the entities of a manager.Set to and from a store.
type Reconciler struct {
	store   storage.Store
	set     *manager.Set
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Reconciler over store and set.
func New(store storage.Store, set *manager.Set, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:  store,
		set:    set,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Set returns the managers being reconciled.
func (r *Reconciler) Set() *manager.Set {
	return r.set
}

// Problem is one record that could not be loaded, or one reference inside
// a loaded record that could not be resolved.
type Problem struct {
	Table storage.Table
	Line  int
	Err   error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s line %d: %v", p.Table.FileName(), p.Line, p.Err)
}

// LoadReport summarises a load.
type LoadReport struct {
	Loaded   map[storage.Table]int
	Skipped  map[storage.Table]int
	Problems []Problem
	Duration time.Duration
}

func newLoadReport() *LoadReport {
	return &LoadReport{
		Loaded:  make(map[storage.Table]int),
		Skipped: make(map[storage.Table]int),
	}
}

// TotalLoaded returns the number of records loaded across all tables.
func (rep *LoadReport) TotalLoaded() int {
	n := 0
	for _, v := range rep.Loaded {
		n += v
	}
	return n
}

// TotalSkipped returns the number of records skipped across all tables.
func (rep *LoadReport) TotalSkipped() int {
	n := 0
	for _, v := range rep.Skipped {
		n += v
	}
	return n
}

// Inconsistencies returns the problems caused by unresolved foreign keys.
func (rep *LoadReport) Inconsistencies() []Problem {
	var out []Problem
	for _, p := range rep.Problems {
		if errors.Is(p.Err, models.ErrDataInconsistency) {
			out = append(out, p)
		}
	}
	return out
}

// rowFunc applies one record to the graph. A non-nil error skips the record.
// warn reports a problem inside a record that is still loaded.
type rowFunc func(row []string, warn func(error)) error

type loadStep struct {
	table storage.Table
	apply func(r *Reconciler) rowFunc
}

// loadOrder is the dependency order: leaf records, then properties, then
// property joins, then agreements and their joins, then payments.
var loadOrder = []loadStep{
	{storage.TableOwners, (*Reconciler).applyOwner},
	{storage.TableHosts, (*Reconciler).applyHost},
	{storage.TableTenants, (*Reconciler).applyTenant},
	{storage.TableProperties, (*Reconciler).applyProperty},
	{storage.TablePropertyHosts, (*Reconciler).applyPropertyHost},
	{storage.TablePropertyTenants, (*Reconciler).applyPropertyTenant},
	{storage.TableRentalAgreements, (*Reconciler).applyAgreement},
	{storage.TableRentalAgreementsTenants, (*Reconciler).applyAgreementTenant},
	{storage.TablePayments, (*Reconciler).applyPayment},
}

// LoadAll loads every table in dependency order into the set, which should
// be empty. Bad records are skipped and reported; only a storage failure
// stops the load.
func (r *Reconciler) LoadAll(ctx context.Context) (*LoadReport, error) {
	start := time.Now()
	rep := newLoadReport()

	for _, step := range loadOrder {
		if err := r.loadTable(ctx, step.table, step.apply(r), rep); err != nil {
			return rep, err
		}
	}

	rep.Duration = time.Since(start)
	r.metrics.ObserveLoad(rep.Duration)
	r.RecordPortfolio()
	r.logger.Info("loaded portfolio",
		"records", rep.TotalLoaded(),
		"skipped", rep.TotalSkipped(),
		"duration", rep.Duration,
	)
	return rep, nil
}

func (r *Reconciler) loadOne(ctx context.Context, table storage.Table, apply rowFunc) (*LoadReport, error) {
	rep := newLoadReport()
	err := r.loadTable(ctx, table, apply, rep)
	return rep, err
}

// LoadOwners loads the owners table.
func (r *Reconciler) LoadOwners(ctx context.Context) (*LoadReport, error) {
	return r.loadOne(ctx, storage.TableOwners, r.applyOwner())
}

// LoadHosts loads the hosts table.
func (r *Reconciler) LoadHosts(ctx context.Context) (*LoadReport, error) {
	return r.loadOne(ctx, storage.TableHosts, r.applyHost())
}

// LoadTenants loads the tenants table.
func (r *Reconciler) LoadTenants(ctx context.Context) (*LoadReport, error) {
	return r.loadOne(ctx, storage.TableTenants, r.applyTenant())
}

// LoadProperties loads the properties table. Owners must be loaded.
func (r *Reconciler) LoadProperties(ctx context.Context) (*LoadReport, error) {
	return r.loadOne(ctx, storage.TableProperties, r.applyProperty())
}

// LoadPropertyHosts loads property↔host join records.
func (r *Reconciler) LoadPropertyHosts(ctx context.Context) (*LoadReport, error) {
	return r.loadOne(ctx, storage.TablePropertyHosts, r.applyPropertyHost())
}

// LoadPropertyTenants loads property↔tenant occupancy records.
func (r *Reconciler) LoadPropertyTenants(ctx context.Context) (*LoadReport, error) {
	return r.loadOne(ctx, storage.TablePropertyTenants, r.applyPropertyTenant())
}

// LoadAgreements loads the rental agreements table. Properties and every
// person kind must be loaded.
func (r *Reconciler) LoadAgreements(ctx context.Context) (*LoadReport, error) {
	return r.loadOne(ctx, storage.TableRentalAgreements, r.applyAgreement())
}

// LoadAgreementSubTenants loads agreement↔sub-tenant join records.
func (r *Reconciler) LoadAgreementSubTenants(ctx context.Context) (*LoadReport, error) {
	return r.loadOne(ctx, storage.TableRentalAgreementsTenants, r.applyAgreementTenant())
}

// LoadPayments loads the payments table. Agreements must be loaded.
func (r *Reconciler) LoadPayments(ctx context.Context) (*LoadReport, error) {
	return r.loadOne(ctx, storage.TablePayments, r.applyPayment())
}

func (r *Reconciler) loadTable(ctx context.Context, table storage.Table, apply rowFunc, rep *LoadReport) error {
	rows, err := r.store.ReadTable(ctx, table)
	var malformed *storage.MalformedRowsError
	if err != nil && !errors.As(err, &malformed) {
		return fmt.Errorf("loading %s: %w", table, err)
	}

	loaded := 0
	for i, row := range rows {
		line := i + 1
		warn := func(err error) {
			rep.Problems = append(rep.Problems, Problem{Table: table, Line: line, Err: err})
			r.logger.Warn("ignoring unresolved reference", "table", table, "line", line, "error", err)
		}

		err := malformed.At(line)
		if err == nil {
			err = apply(row, warn)
		}
		if err != nil {
			rep.Skipped[table]++
			rep.Problems = append(rep.Problems, Problem{Table: table, Line: line, Err: err})
			r.metrics.Skipped(string(table))
			r.logger.Warn("skipping record", "table", table, "line", line, "error", err)
			continue
		}
		loaded++
	}

	rep.Loaded[table] += loaded
	r.metrics.Loaded(string(table), loaded)
	r.logger.Debug("loaded table", "table", table, "records", loaded, "rows", len(rows))
	return nil
}

// unresolved turns a manager NotFound into a load-time inconsistency.
func unresolved(err error, kind, field, id string) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.Inconsistent(kind, field, id)
	}
	return err
}

func (r *Reconciler) applyOwner() rowFunc {
	return func(row []string, _ func(error)) error {
		p, err := decodePerson(row)
		if err != nil {
			return err
		}
		return r.set.Owners.Add(models.NewOwner(p.ID, p.FullName, p.DateOfBirth, p.Email))
	}
}

func (r *Reconciler) applyHost() rowFunc {
	return func(row []string, _ func(error)) error {
		p, err := decodePerson(row)
		if err != nil {
			return err
		}
		return r.set.Hosts.Add(models.NewHost(p.ID, p.FullName, p.DateOfBirth, p.Email))
	}
}

func (r *Reconciler) applyTenant() rowFunc {
	return func(row []string, _ func(error)) error {
		p, err := decodePerson(row)
		if err != nil {
			return err
		}
		return r.set.Tenants.Add(models.NewTenant(p.ID, p.FullName, p.DateOfBirth, p.Email))
	}
}

func (r *Reconciler) applyProperty() rowFunc {
	return func(row []string, warn func(error)) error {
		rec, err := decodeProperty(row)
		if err != nil {
			return err
		}
		owner, err := r.set.Owners.Get(rec.OwnerID)
		if err != nil {
			return unresolved(err, "property "+rec.ID, "owner", rec.OwnerID)
		}
		if err := r.set.Properties.Add(rec.build(owner)); err != nil {
			return err
		}

		for _, hostID := range rec.HostIDs {
			if err := r.set.Properties.AttachHost(rec.ID, hostID); err != nil {
				warn(unresolved(err, "property "+rec.ID, "host", hostID))
			}
		}
		return nil
	}
}

func (r *Reconciler) applyPropertyHost() rowFunc {
	return func(row []string, _ func(error)) error {
		propertyID, hostID, err := decodeJoin(row)
		if err != nil {
			return err
		}
		if _, err := r.set.Properties.Get(propertyID); err != nil {
			return unresolved(err, "host join", "property", propertyID)
		}
		if _, err := r.set.Hosts.Get(hostID); err != nil {
			return unresolved(err, "host join", "host", hostID)
		}
		return r.set.Properties.AttachHost(propertyID, hostID)
	}
}

func (r *Reconciler) applyPropertyTenant() rowFunc {
	return func(row []string, _ func(error)) error {
		propertyID, tenantID, err := decodeJoin(row)
		if err != nil {
			return err
		}
		if _, err := r.set.Properties.Get(propertyID); err != nil {
			return unresolved(err, "tenant join", "property", propertyID)
		}
		if _, err := r.set.Tenants.Get(tenantID); err != nil {
			return unresolved(err, "tenant join", "tenant", tenantID)
		}
		return r.set.Properties.AttachTenant(propertyID, tenantID)
	}
}

func (r *Reconciler) applyAgreement() rowFunc {
	return func(row []string, warn func(error)) error {
		rec, err := decodeAgreement(row)
		if err != nil {
			return err
		}

		kind := "agreement " + rec.ID
		var parties models.Parties
		if parties.Property, err = r.set.Properties.Get(rec.PropertyID); err != nil {
			return unresolved(err, kind, "property", rec.PropertyID)
		}
		if parties.MainTenant, err = r.set.Tenants.Get(rec.MainTenantID); err != nil {
			return unresolved(err, kind, "tenant", rec.MainTenantID)
		}
		if parties.Owner, err = r.set.Owners.Get(rec.OwnerID); err != nil {
			return unresolved(err, kind, "owner", rec.OwnerID)
		}
		if parties.Host, err = r.set.Hosts.Get(rec.HostID); err != nil {
			return unresolved(err, kind, "host", rec.HostID)
		}

		a := models.NewRentalAgreement(rec.ID, parties, rec.Start, rec.End, rec.Rent, rec.Period, rec.Status)
		if err := r.set.Agreements.Restore(a); err != nil {
			return err
		}

		for _, tenantID := range rec.SubTenantIDs {
			if err := r.set.Agreements.AddSubTenant(rec.ID, tenantID); err != nil {
				warn(unresolved(err, kind, "sub-tenant", tenantID))
			}
		}
		return nil
	}
}

func (r *Reconciler) applyAgreementTenant() rowFunc {
	return func(row []string, _ func(error)) error {
		agreementID, tenantID, err := decodeJoin(row)
		if err != nil {
			return err
		}
		if _, err := r.set.Agreements.Get(agreementID); err != nil {
			return unresolved(err, "sub-tenant join", "agreement", agreementID)
		}
		if _, err := r.set.Tenants.Get(tenantID); err != nil {
			return unresolved(err, "sub-tenant join", "tenant", tenantID)
		}
		return r.set.Agreements.AddSubTenant(agreementID, tenantID)
	}
}

func (r *Reconciler) applyPayment() rowFunc {
	return func(row []string, _ func(error)) error {
		rec, err := decodePayment(row)
		if err != nil {
			return err
		}

		kind := "payment " + rec.ID
		a, err := r.set.Agreements.Get(rec.AgreementID)
		if err != nil {
			return unresolved(err, kind, "agreement", rec.AgreementID)
		}
		t, err := r.set.Tenants.Get(rec.TenantID)
		if err != nil {
			return unresolved(err, kind, "tenant", rec.TenantID)
		}
		return r.set.Agreements.RecordPayment(models.NewPayment(rec.ID, a, t, rec.Date, rec.Amount, rec.Method))
	}
}

// Refresh re-derives agreement statuses and saves everything when any
// status changed. It returns the changed agreement IDs.
func (r *Reconciler) Refresh(ctx context.Context) ([]string, error) {
	changed := r.set.Agreements.RefreshStatuses()
	r.metrics.Transitions(len(changed))
	if len(changed) == 0 {
		return nil, nil
	}

	r.logger.Info("agreement statuses changed", "count", len(changed))
	if err := r.SaveAll(ctx); err != nil {
		return changed, err
	}
	return changed, nil
}

// RecordPortfolio sets the portfolio gauges from the current set.
func (r *Reconciler) RecordPortfolio() {
	if r.metrics == nil {
		return
	}
	c := r.set.Counts()
	r.metrics.SetEntities("owners", c.Owners)
	r.metrics.SetEntities("hosts", c.Hosts)
	r.metrics.SetEntities("tenants", c.Tenants)
	r.metrics.SetEntities("properties", c.Properties)
	r.metrics.SetEntities("agreements", c.Agreements)
	r.metrics.SetEntities("payments", c.Payments)

	byStatus := make(map[string]int)
	for status, n := range r.set.Agreements.StatusCounts() {
		byStatus[string(status)] = n
	}
	r.metrics.SetAgreements(byStatus)
	r.metrics.SetRentalIncome(r.set.Agreements.TotalRentalIncome())
}
