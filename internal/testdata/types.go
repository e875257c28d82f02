// Package testdata resolves natural-language field hints in test steps
// ("a valid email", "my username") into generated values, and generates
// realistic values for a closed set of recognized field kinds.
package testdata

// FieldKind is the closed set of field types the resolver recognizes.
type FieldKind string

const (
	FieldUsername        FieldKind = "username"
	FieldFirstName        FieldKind = "first_name"
	FieldLastName         FieldKind = "last_name"
	FieldFullName          FieldKind = "full_name"
	FieldEmail             FieldKind = "email"
	FieldPhone             FieldKind = "phone"
	FieldPassword          FieldKind = "password"
	FieldConfirmPassword   FieldKind = "confirm_password"
	FieldStreetAddress     FieldKind = "street_address"
	FieldCity              FieldKind = "city"
	FieldState             FieldKind = "state"
	FieldZip               FieldKind = "zip"
	FieldCountry           FieldKind = "country"
	FieldCompany           FieldKind = "company"
	FieldJobTitle          FieldKind = "job_title"
	FieldDateOfBirth       FieldKind = "date_of_birth"
	FieldDate              FieldKind = "date"
	FieldAge               FieldKind = "age"
	FieldQuantity          FieldKind = "quantity"
	FieldDescription       FieldKind = "description"
	FieldURL               FieldKind = "url"
)
