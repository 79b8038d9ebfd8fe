package application

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an account application.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusCompleted Status = "COMPLETED"
)

// AccountType is the kind of bank account being applied for.
type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
)

// ParseAccountType validates a raw account type value against the closed set.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountTypeSavings, AccountTypeCurrent:
		return AccountType(s), nil
	}

	return "", errors.New("unknown account type")
}

var (
	ErrNotFound = errors.New("application not found")

	// ErrCompleted is returned on any attempt to mutate a terminal application.
	ErrCompleted = errors.New("application is already completed")

	// ErrVersionConflict indicates a concurrent writer committed first.
	// Callers should re-fetch and retry.
	ErrVersionConflict = errors.New("application was modified concurrently")
)

// Application is a bank-account-opening application. All customer-supplied
// fields are optional until submission; nil means the field was never set.
type Application struct {
	ID      uuid.UUID
	Version int64
	Status  Status

	Name                      *string
	DateOfBirth               *time.Time // date precision, time part ignored
	IDDocument                *string
	AccountType               *AccountType
	StartingBalance           *decimal.Decimal
	MonthlySalary             *decimal.Decimal
	InterestedInOtherProducts *bool
	Email                     *string
	Address                   *Address

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address is the applicant's residential address.
type Address struct {
	StreetName  *string
	HouseNumber *string
	PostCode    *string
	City        *string
}

// Completed reports whether the application has reached its terminal state.
func (a *Application) Completed() bool {
	return a.Status == StatusCompleted
}
