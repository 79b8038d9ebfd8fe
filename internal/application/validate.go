package application

import (
	"fmt"
	"net/mail"
	"regexp"
	"time"
)

// Violation is a single failed constraint. Field uses dotted notation for
// nested values, e.g. "address.postCode".
type Violation struct {
	Field   string
	Message string
}

// Violations collects every failed constraint for one validation pass.
type Violations []Violation

// Map renders the violations as a field -> message map for the wire.
func (v Violations) Map() map[string]string {
	m := make(map[string]string, len(v))
	for _, viol := range v {
		m[viol.Field] = viol.Message
	}

	return m
}

// ValidationError reports that a record failed one or more constraints.
// It always carries the complete set of violations, never just the first.
type ValidationError struct {
	Violations Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d violation(s)", len(e.Violations))
}

// Rule checks one constraint and reports any violations it finds.
type Rule func(app *Application, report func(field, message string))

// RuleSet is a named, composable group of rules evaluated together.
type RuleSet []Rule

// DefaultRules are format constraints applied on every persist, draft or not.
var DefaultRules = RuleSet{
	dateOfBirthInPast,
	postCodeFormat,
	emailFormat,
	amountsNotNegative,
}

// SubmitRules are the presence constraints enforced only when an
// application transitions to COMPLETED.
var SubmitRules = RuleSet{
	requireName,
	requireDateOfBirth,
	requireIDDocument,
	requireAccountType,
	requireAddress,
}

// Validate runs every rule in the given sets against the application and
// returns the full list of violations, or nil when all rules pass.
func Validate(app *Application, sets ...RuleSet) Violations {
	var violations Violations

	report := func(field, message string) {
		violations = append(violations, Violation{Field: field, Message: message})
	}

	for _, set := range sets {
		for _, rule := range set {
			rule(app, report)
		}
	}

	return violations
}

var postCodePattern = regexp.MustCompile(`^\d{4}\s?[a-zA-Z]{2}$`)

func dateOfBirthInPast(app *Application, report func(field, message string)) {
	if app.DateOfBirth == nil {
		return
	}

	y, m, d := time.Now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	if !app.DateOfBirth.Before(today) {
		report("dateOfBirth", "Date of Birth must be in the past")
	}
}

func postCodeFormat(app *Application, report func(field, message string)) {
	if app.Address == nil || app.Address.PostCode == nil {
		return
	}

	if !postCodePattern.MatchString(*app.Address.PostCode) {
		report("address.postCode", "Postcode must be 4 digits followed by 2 letters (e.g., 1000 AA)")
	}
}

func emailFormat(app *Application, report func(field, message string)) {
	if app.Email == nil {
		return
	}

	if addr, err := mail.ParseAddress(*app.Email); err != nil || addr.Address != *app.Email {
		report("email", "Email must be valid")
	}
}

func amountsNotNegative(app *Application, report func(field, message string)) {
	if app.StartingBalance != nil && app.StartingBalance.IsNegative() {
		report("startingBalance", "Starting Balance must be positive")
	}

	if app.MonthlySalary != nil && app.MonthlySalary.IsNegative() {
		report("monthlySalary", "Monthly Salary must be positive")
	}
}

func requireName(app *Application, report func(field, message string)) {
	if app.Name == nil {
		report("name", "Name is required")
	}
}

func requireDateOfBirth(app *Application, report func(field, message string)) {
	if app.DateOfBirth == nil {
		report("dateOfBirth", "Date of Birth is required")
	}
}

func requireIDDocument(app *Application, report func(field, message string)) {
	if app.IDDocument == nil {
		report("idDocument", "ID Document is required")
	}
}

func requireAccountType(app *Application, report func(field, message string)) {
	if app.AccountType == nil {
		report("accountType", "Account Type is required")
	}
}

func requireAddress(app *Application, report func(field, message string)) {
	if app.Address == nil {
		report("address", "Address is required")
		return
	}

	if app.Address.StreetName == nil {
		report("address.streetName", "Street Name is required")
	}

	if app.Address.HouseNumber == nil {
		report("address.houseNumber", "House Number is required")
	}

	if app.Address.PostCode == nil {
		report("address.postCode", "Postcode is required")
	}

	if app.Address.City == nil {
		report("address.city", "City is required")
	}
}
