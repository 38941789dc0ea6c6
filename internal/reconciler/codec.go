package reconciler

import (
	"strconv"
	"strings"
	"time"

	"github.com/rentaltrack/rentaltrack/internal/models"
	"github.com/rentaltrack/rentaltrack/internal/util"
)

// Record widths.
const (
	personFields          = 4
	propertyFields        = 12
	legacyPropertyFields  = 13
	joinFields            = 2
	agreementFields       = 10
	paymentFields         = 6
	tenantListSeparator   = ";"
	legacyHostIDSeparator = ";"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func checkWidth(row []string, want int) error {
	if len(row) < want {
		return models.Validationf("expected at least %d fields, got %d", want, len(row))
	}
	return nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, models.Validationf("%s: %q is not a number", name, s)
	}
	return v, nil
}

// parseOptionalInt reads a blank field as zero.
func parseOptionalInt(name, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, models.Validationf("%s: %q is not an integer", name, s)
	}
	return v, nil
}

func parseOptionalFloat(name, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return parseFloat(name, s)
}

func parseOptionalBool(name, s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, models.Validationf("%s: %q is not a boolean", name, s)
	}
	return v, nil
}

func parseDate(name, s string) (time.Time, error) {
	t, err := util.ParseDate(s)
	if err != nil {
		return time.Time{}, models.Validationf("%s: %q is not a yyyy-MM-dd date", name, s)
	}
	return t, nil
}

// splitIDs splits a ';'-joined ID list, dropping blanks.
func splitIDs(s, sep string) []string {
	var out []string
	for _, id := range strings.Split(s, sep) {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func encodePerson(p *models.Person) []string {
	return []string{p.ID, p.FullName, util.FormatDate(p.DateOfBirth), p.Email}
}

func decodePerson(row []string) (models.Person, error) {
	if err := checkWidth(row, personFields); err != nil {
		return models.Person{}, err
	}
	dob, err := parseDate("date_of_birth", field(row, 2))
	if err != nil {
		return models.Person{}, err
	}
	return models.Person{
		ID:          field(row, 0),
		FullName:    field(row, 1),
		DateOfBirth: dob,
		Email:       field(row, 3),
	}, nil
}

// propertyRecord is a decoded property row before its owner is resolved.
type propertyRecord struct {
	ID          string
	Kind        models.PropertyKind
	Address     string
	Price       float64
	Status      models.PropertyStatus
	OwnerID     string
	Residential models.ResidentialDetails
	Commercial  models.CommercialDetails
	HostIDs     []string
}

func (rec propertyRecord) build(owner *models.Owner) *models.Property {
	if rec.Kind == models.PropertyKindCommercial {
		return models.NewCommercialProperty(rec.ID, rec.Address, rec.Price, rec.Status, owner, rec.Commercial)
	}
	return models.NewResidentialProperty(rec.ID, rec.Address, rec.Price, rec.Status, owner, rec.Residential)
}

func encodeProperty(p *models.Property) []string {
	row := []string{
		p.ID,
		string(p.Kind),
		p.Address,
		formatFloat(p.Price),
		string(p.Status),
		p.OwnerID(),
		"", "", "",
		"", "", "",
	}
	if d := p.Residential; d != nil {
		row[6] = strconv.Itoa(d.Bedrooms)
		row[7] = strconv.FormatBool(d.HasGarden)
		row[8] = strconv.FormatBool(d.PetFriendly)
	}
	if d := p.Commercial; d != nil {
		row[9] = d.BusinessType
		row[10] = strconv.Itoa(d.ParkingSpaces)
		row[11] = formatFloat(d.SquareFootage)
	}
	return row
}

// decodeProperty accepts the canonical 12-field row and the legacy 13-field
// row whose last field lists host IDs.
func decodeProperty(row []string) (propertyRecord, error) {
	var rec propertyRecord
	if err := checkWidth(row, propertyFields); err != nil {
		return rec, err
	}

	rec.ID = field(row, 0)
	rec.Kind = models.PropertyKind(strings.ToUpper(field(row, 1)))
	rec.Address = field(row, 2)
	rec.Status = models.PropertyStatus(strings.ToUpper(field(row, 4)))
	rec.OwnerID = field(row, 5)
	if !rec.Kind.Valid() {
		return rec, models.Validationf("invalid property kind: %q", field(row, 1))
	}

	var err error
	if rec.Price, err = parseFloat("price", field(row, 3)); err != nil {
		return rec, err
	}

	switch rec.Kind {
	case models.PropertyKindResidential:
		if rec.Residential.Bedrooms, err = parseOptionalInt("bedrooms", field(row, 6)); err != nil {
			return rec, err
		}
		if rec.Residential.HasGarden, err = parseOptionalBool("has_garden", field(row, 7)); err != nil {
			return rec, err
		}
		if rec.Residential.PetFriendly, err = parseOptionalBool("pet_friendly", field(row, 8)); err != nil {
			return rec, err
		}
	case models.PropertyKindCommercial:
		rec.Commercial.BusinessType = field(row, 9)
		if rec.Commercial.ParkingSpaces, err = parseOptionalInt("parking_spaces", field(row, 10)); err != nil {
			return rec, err
		}
		if rec.Commercial.SquareFootage, err = parseOptionalFloat("square_footage", field(row, 11)); err != nil {
			return rec, err
		}
	}

	if len(row) >= legacyPropertyFields {
		rec.HostIDs = splitIDs(field(row, 12), legacyHostIDSeparator)
	}
	return rec, nil
}

func decodeJoin(row []string) (parentID, childID string, err error) {
	if err := checkWidth(row, joinFields); err != nil {
		return "", "", err
	}
	parentID, childID = field(row, 0), field(row, 1)
	if parentID == "" || childID == "" {
		return "", "", models.Validationf("join record needs two IDs")
	}
	return parentID, childID, nil
}

// agreementRecord is a decoded agreement row before its keys are resolved.
type agreementRecord struct {
	ID           string
	PropertyID   string
	MainTenantID string
	SubTenantIDs []string
	OwnerID      string
	HostID       string
	Start        time.Time
	End          time.Time
	Rent         float64
	Period       models.RentalPeriod
	Status       models.AgreementStatus
}

// encodeAgreement writes the main tenant only; sub-tenants live in their
// own join table.
func encodeAgreement(a *models.RentalAgreement) []string {
	var propertyID, tenantID, ownerID, hostID string
	if p := a.Property(); p != nil {
		propertyID = p.ID
	}
	if t := a.MainTenant(); t != nil {
		tenantID = t.ID
	}
	if o := a.Owner(); o != nil {
		ownerID = o.ID
	}
	if h := a.Host(); h != nil {
		hostID = h.ID
	}
	return []string{
		a.ID,
		propertyID,
		tenantID,
		ownerID,
		hostID,
		util.FormatDate(a.StartDate),
		util.FormatDate(a.EndDate),
		formatFloat(a.RentAmount),
		string(a.Period),
		string(a.Status),
	}
}

// decodeAgreement accepts both a single main-tenant ID and the legacy
// ';'-joined tenant list (main tenant first) in the third field.
func decodeAgreement(row []string) (agreementRecord, error) {
	var rec agreementRecord
	if err := checkWidth(row, agreementFields); err != nil {
		return rec, err
	}

	rec.ID = field(row, 0)
	rec.PropertyID = field(row, 1)
	tenants := splitIDs(field(row, 2), tenantListSeparator)
	if len(tenants) == 0 {
		return rec, models.Validationf("agreement has no tenant")
	}
	rec.MainTenantID = tenants[0]
	rec.SubTenantIDs = tenants[1:]
	rec.OwnerID = field(row, 3)
	rec.HostID = field(row, 4)

	var err error
	if rec.Start, err = parseDate("start_date", field(row, 5)); err != nil {
		return rec, err
	}
	if rec.End, err = parseDate("end_date", field(row, 6)); err != nil {
		return rec, err
	}
	if rec.Rent, err = parseFloat("rent_amount", field(row, 7)); err != nil {
		return rec, err
	}

	rec.Period = models.RentalPeriod(strings.ToUpper(field(row, 8)))
	if !rec.Period.Valid() {
		return rec, models.Validationf("invalid rental period: %q", field(row, 8))
	}
	rec.Status = models.AgreementStatus(strings.ToUpper(field(row, 9)))
	if !rec.Status.Valid() {
		return rec, models.Validationf("invalid agreement status: %q", field(row, 9))
	}
	return rec, nil
}

type paymentRecord struct {
	ID          string
	AgreementID string
	TenantID    string
	Date        time.Time
	Amount      float64
	Method      string
}

func encodePayment(p *models.Payment) []string {
	var agreementID, tenantID string
	if a := p.Agreement(); a != nil {
		agreementID = a.ID
	}
	if t := p.Tenant(); t != nil {
		tenantID = t.ID
	}
	return []string{p.ID, agreementID, tenantID, util.FormatDate(p.Date), formatFloat(p.Amount), p.Method}
}

func decodePayment(row []string) (paymentRecord, error) {
	var rec paymentRecord
	if err := checkWidth(row, paymentFields); err != nil {
		return rec, err
	}

	rec.ID = field(row, 0)
	rec.AgreementID = field(row, 1)
	rec.TenantID = field(row, 2)
	rec.Method = field(row, 5)

	var err error
	if rec.Date, err = parseDate("date", field(row, 3)); err != nil {
		return rec, err
	}
	if rec.Amount, err = parseFloat("amount", field(row, 4)); err != nil {
		return rec, err
	}
	return rec, nil
}
