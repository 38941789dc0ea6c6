package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentaltrack/rentaltrack/internal/models"
	"github.com/rentaltrack/rentaltrack/internal/util"
)

// Fixture dates. Agreements built by FixtureAgreement run for calendar 2024.
var (
	FixtureStart = util.Date(2024, time.January, 1)
	FixtureEnd   = util.Date(2024, time.December, 31)
)

func shortID() string {
	return uuid.New().String()[:8]
}

// FixtureOwner creates an unregistered owner with a unique ID and email.
func FixtureOwner(overrides ...func(*models.Owner)) *models.Owner {
	id := "O-" + shortID()
	owner := models.NewOwner(id, "Olivia Owner", util.Date(1970, time.March, 14), id+"@owners.test")

	for _, override := range overrides {
		override(owner)
	}

	return owner
}

// FixtureHost creates an unregistered host with a unique ID and email.
func FixtureHost(overrides ...func(*models.Host)) *models.Host {
	id := "H-" + shortID()
	host := models.NewHost(id, "Harry Host", util.Date(1985, time.July, 2), id+"@hosts.test")

	for _, override := range overrides {
		override(host)
	}

	return host
}

// FixtureTenant creates an unregistered tenant with a unique ID and email.
func FixtureTenant(overrides ...func(*models.Tenant)) *models.Tenant {
	id := "T-" + shortID()
	tenant := models.NewTenant(id, "Tara Tenant", util.Date(1995, time.November, 23), id+"@tenants.test")

	for _, override := range overrides {
		override(tenant)
	}

	return tenant
}

// FixtureResidentialProperty creates an available residential property
// owned by owner.
func FixtureResidentialProperty(owner *models.Owner, overrides ...func(*models.Property)) *models.Property {
	id := "P-" + shortID()
	property := models.NewResidentialProperty(id, "12 Garden Row", 450000, models.PropertyStatusAvailable, owner,
		models.ResidentialDetails{Bedrooms: 3, HasGarden: true, PetFriendly: false})

	for _, override := range overrides {
		override(property)
	}

	return property
}

// FixtureCommercialProperty creates an available commercial property owned
// by owner.
func FixtureCommercialProperty(owner *models.Owner, overrides ...func(*models.Property)) *models.Property {
	id := "P-" + shortID()
	property := models.NewCommercialProperty(id, "1 Market Street", 1250000.5, models.PropertyStatusAvailable, owner,
		models.CommercialDetails{BusinessType: "Retail", ParkingSpaces: 12, SquareFootage: 2400.5})

	for _, override := range overrides {
		override(property)
	}

	return property
}

// FixtureAgreement creates a monthly agreement over FixtureStart..FixtureEnd
// binding the given parties.
func FixtureAgreement(parties models.Parties, overrides ...func(*models.RentalAgreement)) *models.RentalAgreement {
	id := "RA-" + shortID()
	agreement := models.NewRentalAgreement(id, parties, FixtureStart, FixtureEnd, 1800, models.RentalPeriodMonthly, models.AgreementStatusNew)

	for _, override := range overrides {
		override(agreement)
	}

	return agreement
}

// FixturePayment creates a bank transfer payment against agreement.
func FixturePayment(agreement *models.RentalAgreement, tenant *models.Tenant, overrides ...func(*models.Payment)) *models.Payment {
	id := "PAY-" + shortID()
	payment := models.NewPayment(id, agreement, tenant, util.Date(2024, time.February, 1), 1800, "BANK_TRANSFER")

	for _, override := range overrides {
		override(payment)
	}

	return payment
}
