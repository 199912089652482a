package validators

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/spf13/viper"
)

var (
	ErrPasswordTooShort  = errors.New("password is too short")
	ErrPasswordTooLong   = errors.New("password is too long")
	ErrPasswordEmpty     = errors.New("no password provided")
	ErrPasswordNoUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordNoDigit   = errors.New("password must contain a digit")
	ErrPasswordNoSpecial = errors.New("password must contain a special character")
)

const maxPasswordSize = 255

// LeakChecker reports whether a password shows up in known breach dumps.
// Implementations must never fail the caller, see security.PwnedClient
type LeakChecker interface {
	CheckLeaked(ctx context.Context, password string) (leaked bool, count int)
}

// PasswordReport is the outcome of the full password security validation
type PasswordReport struct {
	Valid     bool   `json:"valid"`
	Leaked    bool   `json:"leaked"`
	LeakCount int    `json:"leak_count,omitempty"`
	Message   string `json:"message,omitempty"`
}

// PasswordValidator enforces the locally configured length and character
// class rules. Rules are read from the security.password config block
func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	minLen := viper.GetInt("security.password.min_length")
	if minLen <= 0 {
		minLen = 8
	}

	if len(p) < minLen {
		return ErrPasswordTooShort
	}

	if len(p) > maxPasswordSize {
		return ErrPasswordTooLong
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool

	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if viper.GetBool("security.password.require_upper") && !hasUpper {
		return ErrPasswordNoUpper
	}

	if viper.GetBool("security.password.require_lower") && !hasLower {
		return ErrPasswordNoLower
	}

	if viper.GetBool("security.password.require_digit") && !hasDigit {
		return ErrPasswordNoDigit
	}

	if viper.GetBool("security.password.require_special") && !hasSpecial {
		return ErrPasswordNoSpecial
	}

	return nil
}

// ValidatePasswordSecurity runs the local rules first and only reaches out
// to the breach database when they pass, so bad passwords never cost a
// network round trip
func ValidatePasswordSecurity(ctx context.Context, p string, lc LeakChecker) PasswordReport {
	if err := PasswordValidator(p); err != nil {
		return PasswordReport{Message: err.Error()}
	}

	if lc == nil {
		return PasswordReport{Valid: true}
	}

	leaked, count := lc.CheckLeaked(ctx, p)
	if !leaked {
		return PasswordReport{Valid: true}
	}

	msg := "This password has appeared in a data breach. Please choose a different one"
	if count > 1 {
		msg = fmt.Sprintf("This password has appeared in %d known data breaches. Please choose a different one", count)
	}

	return PasswordReport{
		Leaked:    true,
		LeakCount: count,
		Message:   msg,
	}
}
