package application

import (
	"time"

	"github.com/shopspring/decimal"
)

// Patch is a partial update to an application. Only non-nil fields are
// applied; nil means "leave the current value alone".
type Patch struct {
	Name                      *string
	DateOfBirth               *time.Time
	IDDocument                *string
	AccountType               *AccountType
	StartingBalance           *decimal.Decimal
	MonthlySalary             *decimal.Decimal
	InterestedInOtherProducts *bool
	Email                     *string
	Address                   *AddressPatch
}

// AddressPatch merges into the address at the same per-field granularity,
// so a client can set just the postcode without resending the street.
type AddressPatch struct {
	StreetName  *string
	HouseNumber *string
	PostCode    *string
	City        *string
}

// Apply copies every present field of the patch onto the application.
// Pure data transfer; validation is a separate step.
func (p Patch) Apply(app *Application) {
	if p.Name != nil {
		app.Name = p.Name
	}

	if p.DateOfBirth != nil {
		app.DateOfBirth = p.DateOfBirth
	}

	if p.IDDocument != nil {
		app.IDDocument = p.IDDocument
	}

	if p.AccountType != nil {
		app.AccountType = p.AccountType
	}

	if p.StartingBalance != nil {
		app.StartingBalance = p.StartingBalance
	}

	if p.MonthlySalary != nil {
		app.MonthlySalary = p.MonthlySalary
	}

	if p.InterestedInOtherProducts != nil {
		app.InterestedInOtherProducts = p.InterestedInOtherProducts
	}

	if p.Email != nil {
		app.Email = p.Email
	}

	if p.Address != nil {
		if app.Address == nil {
			app.Address = &Address{}
		}

		if p.Address.StreetName != nil {
			app.Address.StreetName = p.Address.StreetName
		}

		if p.Address.HouseNumber != nil {
			app.Address.HouseNumber = p.Address.HouseNumber
		}

		if p.Address.PostCode != nil {
			app.Address.PostCode = p.Address.PostCode
		}

		if p.Address.City != nil {
			app.Address.City = p.Address.City
		}
	}
}
