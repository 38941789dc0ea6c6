// Package manager holds the keyed in-memory stores for every entity kind.
// Each manager enforces the invariants of its kind and cascades relationship
// changes through the registrar functions in the models package.
//
// Managers are not safe for concurrent mutation. Callers that save in the
// background must wait for the save before mutating again.
package manager

import (
	"log/slog"

	"github.com/rentaltrack/rentaltrack/internal/util"
)

// Option configures a Set.
type Option func(*options)

type options struct {
	clock  util.Clock
	logger *slog.Logger
}

// WithClock sets the clock used for agreement status derivation.
func WithClock(c util.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the logger used for notices such as ignored sub-tenant changes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Set wires the five managers together so each can resolve foreign keys
// through its siblings.
type Set struct {
	Owners     *OwnerManager
	Hosts      *HostManager
	Tenants    *TenantManager
	Properties *PropertyManager
	Agreements *RentalAgreementManager
}

// NewSet creates an empty, fully wired set of managers.
func NewSet(opts ...Option) *Set {
	o := options{
		clock:  util.SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Set{}
	s.Owners = newOwnerManager(o.logger)
	s.Hosts = newHostManager(o.logger)
	s.Tenants = newTenantManager(o.logger)
	s.Properties = newPropertyManager(s, o.logger)
	s.Agreements = newRentalAgreementManager(s, o.clock, o.logger)
	return s
}

// Clock returns the clock driving status derivation.
func (s *Set) Clock() util.Clock {
	return s.Agreements.clock
}

// Counts summarises how many entities of each kind are held.
type Counts struct {
	Owners     int
	Hosts      int
	Tenants    int
	Properties int
	Agreements int
	Payments   int
}

// Counts returns the number of entities per kind.
func (s *Set) Counts() Counts {
	return Counts{
		Owners:     s.Owners.Count(),
		Hosts:      s.Hosts.Count(),
		Tenants:    s.Tenants.Count(),
		Properties: s.Properties.Count(),
		Agreements: s.Agreements.Count(),
		Payments:   len(s.Agreements.payments),
	}
}
