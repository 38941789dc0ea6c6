// Package util provides identifier, date and clock helpers shared across rentaltrack.
package util

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// DeterministicID builds a reproducible version 4 layout UUID from seed.
// Intended for tests and seeded demo data.
func DeterministicID(seed int64) string {
	var id uuid.UUID

	binary.BigEndian.PutUint64(id[0:8], uint64(seed))
	binary.BigEndian.PutUint64(id[8:16], uint64(seed*31))

	id[6] = (id[6] & 0x0F) | 0x40
	id[8] = (id[8] & 0x3F) | 0x80

	return id.String()
}
