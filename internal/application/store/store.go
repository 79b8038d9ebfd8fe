package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"onboarding/internal/application"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectApplicationColumns = `
	id, version, status, name, date_of_birth, id_document, account_type,
	starting_balance, monthly_salary, interested_in_other_products, email,
	street_name, house_number, post_code, city, created_at, updated_at
`

// scanApplication reads an application row in selectApplicationColumns order.
func scanApplication(s scanner) (*application.Application, error) {
	var app application.Application

	var statusStr string

	var accountType *string

	var startingBalance, monthlySalary decimal.NullDecimal

	var streetName, houseNumber, postCode, city *string

	if err := s.Scan(
		&app.ID, &app.Version, &statusStr, &app.Name, &app.DateOfBirth,
		&app.IDDocument, &accountType,
		&startingBalance, &monthlySalary, &app.InterestedInOtherProducts, &app.Email,
		&streetName, &houseNumber, &postCode, &city,
		&app.CreatedAt, &app.UpdatedAt,
	); err != nil {
		return nil, err
	}

	app.Status = application.Status(statusStr)

	if accountType != nil {
		at := application.AccountType(*accountType)
		app.AccountType = &at
	}

	if startingBalance.Valid {
		app.StartingBalance = &startingBalance.Decimal
	}

	if monthlySalary.Valid {
		app.MonthlySalary = &monthlySalary.Decimal
	}

	if streetName != nil || houseNumber != nil || postCode != nil || city != nil {
		app.Address = &application.Address{
			StreetName:  streetName,
			HouseNumber: houseNumber,
			PostCode:    postCode,
			City:        city,
		}
	}

	return &app, nil
}

func (s *Store) Create(ctx context.Context, app *application.Application) error {
	query := `
		INSERT INTO applications (
			version, status, name, date_of_birth, id_document, account_type,
			starting_balance, monthly_salary, interested_in_other_products, email,
			street_name, house_number, post_code, city, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	app.Version = 1
	street, house, postCode, city := addressArgs(app.Address)

	err := s.db.QueryRowContext(ctx, query,
		app.Version,
		string(app.Status),
		app.Name,
		app.DateOfBirth,
		app.IDDocument,
		accountTypeArg(app.AccountType),
		app.StartingBalance,
		app.MonthlySalary,
		app.InterestedInOtherProducts,
		app.Email,
		street, house, postCode, city,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*application.Application, error) {
	query := `SELECT ` + selectApplicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, application.ErrNotFound
		}

		return nil, fmt.Errorf("getting application: %w", err)
	}

	return app, nil
}

// Update writes the application guarded by the version it was read at.
// A concurrent writer bumps the version first and this write matches no
// row, which surfaces as ErrVersionConflict.
func (s *Store) Update(ctx context.Context, app *application.Application) error {
	query := `
		UPDATE applications
		SET version = version + 1,
		    status = $2,
		    name = $3,
		    date_of_birth = $4,
		    id_document = $5,
		    account_type = $6,
		    starting_balance = $7,
		    monthly_salary = $8,
		    interested_in_other_products = $9,
		    email = $10,
		    street_name = $11,
		    house_number = $12,
		    post_code = $13,
		    city = $14,
		    updated_at = NOW()
		WHERE id = $1 AND version = $15
		RETURNING version, updated_at
	`

	street, house, postCode, city := addressArgs(app.Address)

	err := s.db.QueryRowContext(ctx, query,
		app.ID,
		string(app.Status),
		app.Name,
		app.DateOfBirth,
		app.IDDocument,
		accountTypeArg(app.AccountType),
		app.StartingBalance,
		app.MonthlySalary,
		app.InterestedInOtherProducts,
		app.Email,
		street, house, postCode, city,
		app.Version,
	).Scan(&app.Version, &app.UpdatedAt)
	if err == nil {
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("updating application: %w", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, app.ID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking application existence: %w", err)
	}

	if exists {
		return application.ErrVersionConflict
	}

	return application.ErrNotFound
}

func (s *Store) List(ctx context.Context) ([]*application.Application, error) {
	query := `SELECT ` + selectApplicationColumns + ` FROM applications ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var apps []*application.Application

	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}

		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	return apps, nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM applications`); err != nil {
		return fmt.Errorf("deleting applications: %w", err)
	}

	return nil
}

// Arg helpers keep NULLs explicit for the driver.

func accountTypeArg(at *application.AccountType) any {
	if at == nil {
		return nil
	}

	return string(*at)
}

func addressArgs(a *application.Address) (street, house, postCode, city *string) {
	if a == nil {
		return nil, nil, nil, nil
	}

	return a.StreetName, a.HouseNumber, a.PostCode, a.City
}
