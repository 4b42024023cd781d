// Package validation holds the whitelist rules applied to speaker registration input.
// The same rules run in the client controller (advisory) and in the submission
// service (authoritative).
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field names a validated registration field.
type Field string

const (
	FieldFullName       Field = "full_name"
	FieldCompanyName    Field = "company_name"
	FieldPosition       Field = "position"
	FieldEmail          Field = "email"
	FieldPhoneNumber    Field = "phone_number"
	FieldPrivacyConsent Field = "privacy_consent"
)

// MaxNameLength bounds full_name and company_name.
const MaxNameLength = 100

// Messages reported for each rule. They are shown verbatim to the person filling the form.
const (
	MsgFullNameRequired = "Full Name is required"
	MsgFullNameTooLong  = "Name is too long (max 100 chars)"
	MsgFullNameInvalid  = "Name contains invalid characters (Letters only)"
	MsgCompanyRequired  = "Company Name is required"
	MsgCompanyTooLong   = "Company name is too long"
	MsgCompanyInvalid   = "Company name contains invalid characters"
	MsgPositionRequired = "Position is required"
	MsgPositionInvalid  = "Position contains invalid characters"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email format"
	MsgPhoneInvalid     = "Invalid phone number format (e.g., +62812345678)"
	MsgConsentRequired  = "You must agree to the Privacy Notice to register."
)

var (
	nameRegex       = regexp.MustCompile(`^[a-zA-Z\s.'-]+$`)
	companyPosRegex = regexp.MustCompile(`^[a-zA-Z0-9\s.,&'()-]+$`)
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex      = regexp.MustCompile(`^[+]?[0-9\s-]{10,15}$`)
)

// FieldError is the single rejection reason for one field.
type FieldError struct {
	Field   Field
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Input is the raw registration form as seen by the validator.
// PhoneNumber is nil when the field was not provided.
type Input struct {
	FullName       string
	CompanyName    string
	Position       string
	Email          string
	PhoneNumber    *string
	PrivacyConsent bool
}

// Registration checks every field in a fixed order
// (full_name, company_name, position, email, phone_number, privacy_consent)
// and returns the first failure, or nil.
func Registration(in Input) *FieldError {
	if err := FullName(in.FullName); err != nil {
		return err
	}
	if err := CompanyName(in.CompanyName); err != nil {
		return err
	}
	if err := Position(in.Position); err != nil {
		return err
	}
	if err := Email(in.Email); err != nil {
		return err
	}
	if in.PhoneNumber != nil {
		if err := PhoneNumber(*in.PhoneNumber); err != nil {
			return err
		}
	}
	return PrivacyConsent(in.PrivacyConsent)
}

// FullName accepts letters, whitespace, dots, apostrophes and dashes, up to 100 characters.
func FullName(v string) *FieldError {
	switch {
	case strings.TrimSpace(v) == "":
		return fail(FieldFullName, MsgFullNameRequired)
	case utf8.RuneCountInString(v) > MaxNameLength:
		return fail(FieldFullName, MsgFullNameTooLong)
	case !nameRegex.MatchString(v):
		return fail(FieldFullName, MsgFullNameInvalid)
	}
	return nil
}

// CompanyName accepts alphanumerics and . , & ' ( ) - plus whitespace, up to 100 characters.
func CompanyName(v string) *FieldError {
	switch {
	case strings.TrimSpace(v) == "":
		return fail(FieldCompanyName, MsgCompanyRequired)
	case utf8.RuneCountInString(v) > MaxNameLength:
		return fail(FieldCompanyName, MsgCompanyTooLong)
	case !companyPosRegex.MatchString(v):
		return fail(FieldCompanyName, MsgCompanyInvalid)
	}
	return nil
}

// Position uses the company character set and has no length rule of its own.
func Position(v string) *FieldError {
	switch {
	case strings.TrimSpace(v) == "":
		return fail(FieldPosition, MsgPositionRequired)
	case !companyPosRegex.MatchString(v):
		return fail(FieldPosition, MsgPositionInvalid)
	}
	return nil
}

// Email checks the local@domain.tld shape only.
func Email(v string) *FieldError {
	switch {
	case strings.TrimSpace(v) == "":
		return fail(FieldEmail, MsgEmailRequired)
	case !emailRegex.MatchString(v):
		return fail(FieldEmail, MsgEmailInvalid)
	}
	return nil
}

// PhoneNumber validates a present phone value. An empty string counts as absent.
func PhoneNumber(v string) *FieldError {
	if v == "" {
		return nil
	}
	if !phoneRegex.MatchString(v) {
		return fail(FieldPhoneNumber, MsgPhoneInvalid)
	}
	return nil
}

// PrivacyConsent must be explicitly true.
func PrivacyConsent(v bool) *FieldError {
	if !v {
		return fail(FieldPrivacyConsent, MsgConsentRequired)
	}
	return nil
}

func fail(f Field, msg string) *FieldError {
	return &FieldError{Field: f, Message: msg}
}
