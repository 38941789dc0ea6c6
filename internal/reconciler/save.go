package reconciler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rentaltrack/rentaltrack/internal/models"
	"github.com/rentaltrack/rentaltrack/internal/storage"
)

// snapshot is the encoded contents of some tables.
type snapshot map[storage.Table][][]string

func (r *Reconciler) encodeOwners() [][]string {
	owners := r.set.Owners.List()
	rows := make([][]string, 0, len(owners))
	for _, o := range owners {
		rows = append(rows, encodePerson(&o.Person))
	}
	return rows
}

func (r *Reconciler) encodeHosts() [][]string {
	hosts := r.set.Hosts.List()
	rows := make([][]string, 0, len(hosts))
	for _, h := range hosts {
		rows = append(rows, encodePerson(&h.Person))
	}
	return rows
}

func (r *Reconciler) encodeTenants() [][]string {
	tenants := r.set.Tenants.List()
	rows := make([][]string, 0, len(tenants))
	for _, t := range tenants {
		rows = append(rows, encodePerson(&t.Person))
	}
	return rows
}

func sortedIDs[T any](items []T, id func(T) string) []string {
	ids := make([]string, len(items))
	for i, v := range items {
		ids[i] = id(v)
	}
	slices.Sort(ids)
	return ids
}

// encodeProperties returns the property rows and the two property join
// tables, each ordered by parent ID and then child ID.
func (r *Reconciler) encodeProperties() (props, hosts, tenants [][]string) {
	props, hosts, tenants = [][]string{}, [][]string{}, [][]string{}
	for _, p := range r.set.Properties.List() {
		props = append(props, encodeProperty(p))
		for _, id := range sortedIDs(p.Hosts(), func(h *models.Host) string { return h.ID }) {
			hosts = append(hosts, []string{p.ID, id})
		}
		for _, id := range sortedIDs(p.Tenants(), func(t *models.Tenant) string { return t.ID }) {
			tenants = append(tenants, []string{p.ID, id})
		}
	}
	return props, hosts, tenants
}

// encodeAgreements returns the agreement rows and the sub-tenant join
// table. Sub-tenants keep their order within an agreement.
func (r *Reconciler) encodeAgreements() (agreements, subTenants [][]string) {
	agreements, subTenants = [][]string{}, [][]string{}
	for _, a := range r.set.Agreements.List() {
		agreements = append(agreements, encodeAgreement(a))
		for _, t := range a.SubTenants() {
			subTenants = append(subTenants, []string{a.ID, t.ID})
		}
	}
	return agreements, subTenants
}

func (r *Reconciler) encodePayments() [][]string {
	payments := r.set.Agreements.Payments()
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, encodePayment(p))
	}
	return rows
}

func (r *Reconciler) snapshotAll() snapshot {
	props, hosts, tenants := r.encodeProperties()
	agreements, subTenants := r.encodeAgreements()
	return snapshot{
		storage.TableOwners:                  r.encodeOwners(),
		storage.TableHosts:                   r.encodeHosts(),
		storage.TableTenants:                 r.encodeTenants(),
		storage.TableProperties:              props,
		storage.TablePropertyHosts:           hosts,
		storage.TablePropertyTenants:         tenants,
		storage.TableRentalAgreements:        agreements,
		storage.TableRentalAgreementsTenants: subTenants,
		storage.TablePayments:                r.encodePayments(),
	}
}

// write stores every table of snap concurrently. The snapshot is already
// encoded, so the graph is not read while writing.
func (r *Reconciler) write(ctx context.Context, snap snapshot) error {
	g, gctx := errgroup.WithContext(ctx)
	for table, rows := range snap {
		g.Go(func() error {
			if err := r.store.WriteTable(gctx, table, rows); err != nil {
				return fmt.Errorf("saving %s: %w", table, err)
			}
			r.metrics.Saved(string(table), len(rows))
			return nil
		})
	}
	return g.Wait()
}

// SaveAll writes every table.
func (r *Reconciler) SaveAll(ctx context.Context) error {
	start := time.Now()
	if err := r.write(ctx, r.snapshotAll()); err != nil {
		return err
	}

	d := time.Since(start)
	r.metrics.ObserveSave(d)
	r.RecordPortfolio()
	r.logger.Debug("saved portfolio", "duration", d)
	return nil
}

// PendingSave is a save running in the background.
type PendingSave struct {
	done chan struct{}
	err  error
}

// Wait blocks until the save finishes and returns its error. Callers must
// Wait before the next mutation they expect to be persisted separately.
func (p *PendingSave) Wait() error {
	<-p.done
	return p.err
}

// SaveAllAsync encodes the graph immediately and writes it in the
// background. The graph may be mutated once SaveAllAsync returns, but the
// caller must Wait before starting another save.
func (r *Reconciler) SaveAllAsync(ctx context.Context) *PendingSave {
	start := time.Now()
	snap := r.snapshotAll()
	p := &PendingSave{done: make(chan struct{})}

	go func() {
		defer close(p.done)
		if p.err = r.write(ctx, snap); p.err != nil {
			r.logger.Error("background save failed", "error", p.err)
			return
		}
		r.metrics.ObserveSave(time.Since(start))
	}()
	return p
}

// SaveOwners writes the owners table.
func (r *Reconciler) SaveOwners(ctx context.Context) error {
	return r.write(ctx, snapshot{storage.TableOwners: r.encodeOwners()})
}

// SaveHosts writes the hosts table.
func (r *Reconciler) SaveHosts(ctx context.Context) error {
	return r.write(ctx, snapshot{storage.TableHosts: r.encodeHosts()})
}

// SaveTenants writes the tenants table.
func (r *Reconciler) SaveTenants(ctx context.Context) error {
	return r.write(ctx, snapshot{storage.TableTenants: r.encodeTenants()})
}

// SaveProperties writes the properties table and both property join tables.
func (r *Reconciler) SaveProperties(ctx context.Context) error {
	props, hosts, tenants := r.encodeProperties()
	return r.write(ctx, snapshot{
		storage.TableProperties:      props,
		storage.TablePropertyHosts:   hosts,
		storage.TablePropertyTenants: tenants,
	})
}

// SaveAgreements writes the agreements table and the sub-tenant join table.
// Occupancy can change with agreement status, so the property↔tenant table
// is written too.
func (r *Reconciler) SaveAgreements(ctx context.Context) error {
	agreements, subTenants := r.encodeAgreements()
	_, _, tenants := r.encodeProperties()
	return r.write(ctx, snapshot{
		storage.TableRentalAgreements:        agreements,
		storage.TableRentalAgreementsTenants: subTenants,
		storage.TablePropertyTenants:         tenants,
	})
}

// SavePayments writes the payments table.
func (r *Reconciler) SavePayments(ctx context.Context) error {
	return r.write(ctx, snapshot{storage.TablePayments: r.encodePayments()})
}

// CopyTo writes every table of the current graph into dst.
func (r *Reconciler) CopyTo(ctx context.Context, dst storage.Store) error {
	return New(dst, r.set, WithLogger(r.logger)).SaveAll(ctx)
}

// Describe renders a snapshot of the graph as one line per table, in load
// order, for diagnostics.
func (r *Reconciler) Describe() string {
	snap := r.snapshotAll()
	var b strings.Builder
	for _, table := range storage.Tables {
		fmt.Fprintf(&b, "%-28s %d\n", table.FileName(), len(snap[table]))
	}
	return b.String()
}
