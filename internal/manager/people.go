package manager

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rentaltrack/rentaltrack/internal/models"
	"github.com/rentaltrack/rentaltrack/internal/validation"
)

// Person sort criteria, shared by owners, hosts and tenants.
const (
	SortByID    = "id"
	SortByName  = "name"
	SortByDOB   = "dob"
	SortByEmail = "email"
)

type personal interface {
	Base() *models.Person
}

// personBook is the keyed store behind the three person managers.
type personBook[T personal] struct {
	kind   string
	byID   map[string]T
	emails *validation.EmailIndex
	logger *slog.Logger
}

func newPersonBook[T personal](kind string, logger *slog.Logger) *personBook[T] {
	return &personBook[T]{
		kind:   kind,
		byID:   make(map[string]T),
		emails: validation.NewEmailIndex(),
		logger: logger,
	}
}

func (b *personBook[T]) emailTaken(p *models.Person) error {
	if b.emails.Taken(p.Email, p.ID) {
		return fmt.Errorf("%s email %q already in use: %w: %w",
			b.kind, p.Email, models.ErrDuplicateKey, models.ErrValidation)
	}
	return nil
}

func (b *personBook[T]) add(v T) error {
	p := v.Base()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("adding %s: %w", b.kind, err)
	}
	if _, ok := b.byID[p.ID]; ok {
		return models.DuplicateKey(b.kind, "id", p.ID)
	}
	if err := b.emailTaken(p); err != nil {
		return err
	}

	b.byID[p.ID] = v
	b.emails.Put(p.ID, p.Email)
	b.logger.Debug("added "+b.kind, "id", p.ID)
	return nil
}

// update copies the scalar fields of v into the stored entity. Person
// records carry no foreign keys, so the stored pointer and all of its links
// are kept.
func (b *personBook[T]) update(v T) (T, error) {
	p := v.Base()
	stored, ok := b.byID[p.ID]
	if !ok {
		var zero T
		return zero, models.NotFound(b.kind, p.ID)
	}
	if err := p.Validate(); err != nil {
		var zero T
		return zero, fmt.Errorf("updating %s: %w", b.kind, err)
	}
	if err := b.emailTaken(p); err != nil {
		var zero T
		return zero, err
	}

	sp := stored.Base()
	sp.FullName = p.FullName
	sp.DateOfBirth = p.DateOfBirth
	sp.Email = p.Email
	b.emails.Put(sp.ID, sp.Email)
	b.logger.Debug("updated "+b.kind, "id", p.ID)
	return stored, nil
}

func (b *personBook[T]) get(id string) (T, error) {
	v, ok := b.byID[id]
	if !ok {
		var zero T
		return zero, models.NotFound(b.kind, id)
	}
	return v, nil
}

func (b *personBook[T]) remove(id string) {
	delete(b.byID, id)
	b.emails.Remove(id)
	b.logger.Debug("deleted "+b.kind, "id", id)
}

func (b *personBook[T]) list() []T {
	return sortedValues(b.byID)
}

func (b *personBook[T]) sorted(criterion string) ([]T, error) {
	var cmpFn func(a, b T) int
	switch normalizeCriterion(criterion) {
	case SortByID:
		cmpFn = byString(func(v T) string { return v.Base().ID })
	case SortByName, "fullname":
		cmpFn = byString(func(v T) string { return v.Base().FullName })
	case SortByDOB, "dateofbirth":
		cmpFn = byTime(func(v T) time.Time { return v.Base().DateOfBirth })
	case SortByEmail:
		cmpFn = byString(func(v T) string { return v.Base().Email })
	default:
		return nil, models.InvalidArgumentf("unknown %s sort criterion %q", b.kind, criterion)
	}

	items := make([]T, 0, len(b.byID))
	for _, v := range b.byID {
		items = append(items, v)
	}
	return sortedByKey(items, func(v T) string { return v.Base().ID }, cmpFn), nil
}

func (b *personBook[T]) search(keyword string) []T {
	var out []T
	for _, v := range b.list() {
		p := v.Base()
		if containsFold(keyword, p.ID, p.FullName, p.Email) {
			out = append(out, v)
		}
	}
	return out
}

func (b *personBook[T]) byEmail(email string) (T, error) {
	id, ok := b.emails.Holder(email)
	if !ok {
		var zero T
		return zero, models.NotFound(b.kind+" email", email)
	}
	return b.byID[id], nil
}
