// Package validx holds the input format checks shared by the HTTP handlers
// and the SDK. Every check is a pure function over its input; nothing here
// keeps state between calls.
package validx

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	reasonRequired = "required"

	PasswordMinLength = 8
	PasswordMaxLength = 128
	EmailMaxLength    = 254
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)+$`)
	reCode  = regexp.MustCompile(`^[0-9]{6}$`)
)

// Result is the outcome of one or more checks. Problems maps a field name to
// a human readable reason and is nil when Valid is true.
type Result struct {
	Valid    bool
	Problems map[string]string
}

// OK returns a passing Result.
func OK() Result {
	return Result{Valid: true}
}

func fail(field, reason string) Result {
	return Result{Problems: map[string]string{field: reason}}
}

// Merge combines results; the first reason recorded for a field wins.
func Merge(results ...Result) Result {
	out := OK()
	for _, r := range results {
		if r.Valid {
			continue
		}
		out.Valid = false
		if out.Problems == nil {
			out.Problems = make(map[string]string, len(r.Problems))
		}
		for field, reason := range r.Problems {
			if _, seen := out.Problems[field]; !seen {
				out.Problems[field] = reason
			}
		}
	}
	return out
}

// Email checks the address shape. It does not lower-case or otherwise
// normalise the input; see NormalizeEmail.
func Email(field, email string) Result {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return fail(field, reasonRequired)
	case len(email) > EmailMaxLength:
		return fail(field, "too long (max 254)")
	case !reEmail.MatchString(email):
		return fail(field, "invalid email address")
	}
	return OK()
}

// NormalizeEmail returns the canonical stored form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Password applies the account password policy: 8 to 128 characters with at
// least one letter and one digit.
func Password(field, password string) Result {
	n := utf8.RuneCountInString(password)
	switch {
	case password == "":
		return fail(field, reasonRequired)
	case n < PasswordMinLength:
		return fail(field, "too short (min 8)")
	case n > PasswordMaxLength:
		return fail(field, "too long (max 128)")
	}

	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fail(field, "must contain a letter and a digit")
	}
	return OK()
}

// ResetCode checks that code is exactly six ASCII digits. Leading zeros are
// significant.
func ResetCode(field, code string) Result {
	switch {
	case code == "":
		return fail(field, reasonRequired)
	case !reCode.MatchString(code):
		return fail(field, "must be exactly 6 digits")
	}
	return OK()
}

// Required checks that a free-form value is not blank.
func Required(field, value string) Result {
	if strings.TrimSpace(value) == "" {
		return fail(field, reasonRequired)
	}
	return OK()
}
