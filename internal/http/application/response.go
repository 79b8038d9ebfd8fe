package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"onboarding/internal/application"
)

type applicationResponse struct {
	ID                        uuid.UUID                `json:"id"`
	Status                    application.Status       `json:"status"`
	Name                      *string                  `json:"name,omitempty"`
	Address                   *addressResponse         `json:"address,omitempty"`
	DateOfBirth               *string                  `json:"dateOfBirth,omitempty"`
	IDDocument                *string                  `json:"idDocument,omitempty"`
	AccountType               *application.AccountType `json:"accountType,omitempty"`
	StartingBalance           *decimal.Decimal         `json:"startingBalance,omitempty"`
	MonthlySalary             *decimal.Decimal         `json:"monthlySalary,omitempty"`
	InterestedInOtherProducts *bool                    `json:"interestedInOtherProducts,omitempty"`
	Email                     *string                  `json:"email,omitempty"`
	CreatedAt                 time.Time                `json:"createdAt"`
	UpdatedAt                 time.Time                `json:"updatedAt"`
}

type addressResponse struct {
	StreetName  *string `json:"streetName,omitempty"`
	HouseNumber *string `json:"houseNumber,omitempty"`
	PostCode    *string `json:"postCode,omitempty"`
	City        *string `json:"city,omitempty"`
}

func toResponse(app *application.Application) applicationResponse {
	resp := applicationResponse{
		ID:                        app.ID,
		Status:                    app.Status,
		Name:                      app.Name,
		IDDocument:                app.IDDocument,
		AccountType:               app.AccountType,
		StartingBalance:           app.StartingBalance,
		MonthlySalary:             app.MonthlySalary,
		InterestedInOtherProducts: app.InterestedInOtherProducts,
		Email:                     app.Email,
		CreatedAt:                 app.CreatedAt.UTC(),
		UpdatedAt:                 app.UpdatedAt.UTC(),
	}

	if app.DateOfBirth != nil {
		dob := app.DateOfBirth.Format(time.DateOnly)
		resp.DateOfBirth = &dob
	}

	if app.Address != nil {
		resp.Address = &addressResponse{
			StreetName:  app.Address.StreetName,
			HouseNumber: app.Address.HouseNumber,
			PostCode:    app.Address.PostCode,
			City:        app.Address.City,
		}
	}

	return resp
}
