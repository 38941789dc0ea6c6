// Package storage defines the table-oriented record store the reconciler
// reads and writes. A store knows nothing about entities: every table is an
// ordered list of rows of string fields.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrStorageUnavailable marks a store that cannot be read or written at all,
// such as a missing data directory. It is the only fatal load condition.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrMalformedRow marks a row a store could not parse.
var ErrMalformedRow = errors.New("malformed row")

// RowError describes one unparseable row. Line is the 1-based row position.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrMalformedRow, e.Err}
}

// MalformedRowsError is returned by ReadTable together with the rows that
// did parse. Each malformed row is a nil entry in those rows, so positions
// stay aligned with the stored order.
type MalformedRowsError struct {
	Table Table
	Rows  []*RowError
}

func (e *MalformedRowsError) Error() string {
	return fmt.Sprintf("%s: %d malformed rows", e.Table, len(e.Rows))
}

func (e *MalformedRowsError) Unwrap() error {
	return ErrMalformedRow
}

// At returns the error for the row at line, or nil. It is safe on a nil
// receiver.
func (e *MalformedRowsError) At(line int) error {
	if e == nil {
		return nil
	}
	for _, r := range e.Rows {
		if r.Line == line {
			return r
		}
	}
	return nil
}

// Table names one record file.
type Table string

const (
	TableOwners                  Table = "owners"
	TableHosts                   Table = "hosts"
	TableTenants                 Table = "tenants"
	TableProperties              Table = "properties"
	TablePropertyHosts           Table = "properties_hosts"
	TablePropertyTenants         Table = "properties_tenants"
	TableRentalAgreements        Table = "rental_agreements"
	TableRentalAgreementsTenants Table = "rental_agreements_tenants"
	TablePayments                Table = "payments"
)

// Tables lists every table in load order.
var Tables = []Table{
	TableOwners,
	TableHosts,
	TableTenants,
	TableProperties,
	TablePropertyHosts,
	TablePropertyTenants,
	TableRentalAgreements,
	TableRentalAgreementsTenants,
	TablePayments,
}

// Valid returns true if the table is known.
func (t Table) Valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

// FileName returns the flat-file name of the table.
func (t Table) FileName() string {
	return string(t) + ".txt"
}

// Store reads and writes whole tables.
//
// ReadTable returns no rows and no error for a table that was never
// written. Unparseable rows are reported with a *MalformedRowsError next to
// the rows that did parse; any other error means the table could not be
// read. WriteTable replaces the table's contents.
type Store interface {
	ReadTable(ctx context.Context, table Table) ([][]string, error)
	WriteTable(ctx context.Context, table Table, rows [][]string) error
}
