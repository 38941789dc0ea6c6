// Package validation holds contact-format checks and the per-role email
// uniqueness index used by the person managers.
package validation

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$`)

// IsValidEmail reports whether s looks like local@domain.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeEmail folds an address for case-insensitive comparison.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmailIndex tracks which entity holds each address within one role.
// Lookups are case-insensitive.
type EmailIndex struct {
	holders map[string]string
	byID    map[string]string
}

// NewEmailIndex creates an empty index.
func NewEmailIndex() *EmailIndex {
	return &EmailIndex{
		holders: make(map[string]string),
		byID:    make(map[string]string),
	}
}

// Holder returns the ID holding email, if any.
func (x *EmailIndex) Holder(email string) (string, bool) {
	id, ok := x.holders[NormalizeEmail(email)]
	return id, ok
}

// Taken reports whether email is held by an entity other than exceptID.
// Pass an empty exceptID to test for any holder.
func (x *EmailIndex) Taken(email, exceptID string) bool {
	id, ok := x.Holder(email)
	return ok && id != exceptID
}

// Put records email as held by id, releasing any address id held before.
func (x *EmailIndex) Put(id, email string) {
	x.Remove(id)
	key := NormalizeEmail(email)
	x.holders[key] = id
	x.byID[id] = key
}

// Remove releases the address held by id.
func (x *EmailIndex) Remove(id string) {
	key, ok := x.byID[id]
	if !ok {
		return
	}
	delete(x.byID, id)
	if x.holders[key] == id {
		delete(x.holders, key)
	}
}

// Len returns the number of indexed addresses.
func (x *EmailIndex) Len() int {
	return len(x.holders)
}
