package validators

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func setPasswordPolicy(t *testing.T) {
	t.Helper()

	viper.Set("security.password.min_length", 8)
	viper.Set("security.password.require_upper", true)
	viper.Set("security.password.require_lower", true)
	viper.Set("security.password.require_digit", true)
	viper.Set("security.password.require_special", true)

	t.Cleanup(viper.Reset)
}

// recordingChecker counts lookups and answers with a fixed verdict
type recordingChecker struct {
	calls  int
	leaked bool
	count  int
}

func (c *recordingChecker) CheckLeaked(ctx context.Context, password string) (bool, int) {
	c.calls++
	return c.leaked, c.count
}

func TestPasswordValidator(t *testing.T) {
	setPasswordPolicy(t)

	cases := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "Str0ng!pass", nil},
		{"empty", "", ErrPasswordEmpty},
		{"too short", "Ab1!x", ErrPasswordTooShort},
		{"too long", "Ab1!" + strings.Repeat("x", 300), ErrPasswordTooLong},
		{"no upper", "str0ng!pass", ErrPasswordNoUpper},
		{"no lower", "STR0NG!PASS", ErrPasswordNoLower},
		{"no digit", "Strong!pass", ErrPasswordNoDigit},
		{"no special", "Str0ngpass", ErrPasswordNoSpecial},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := PasswordValidator(tc.password)

			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestValidatePasswordSecurityAcceptsCleanPassword(t *testing.T) {
	setPasswordPolicy(t)

	lc := &recordingChecker{}
	report := ValidatePasswordSecurity(context.Background(), "Str0ng!pass", lc)

	assert.True(t, report.Valid)
	assert.False(t, report.Leaked)
	assert.Equal(t, 1, lc.calls)
}

func TestValidatePasswordSecurityRejectsLeaked(t *testing.T) {
	setPasswordPolicy(t)

	lc := &recordingChecker{leaked: true, count: 50000}
	report := ValidatePasswordSecurity(context.Background(), "Str0ng!pass", lc)

	assert.False(t, report.Valid)
	assert.True(t, report.Leaked)
	assert.Equal(t, 50000, report.LeakCount)
	assert.Contains(t, report.Message, "50000")
}

func TestValidatePasswordSecuritySkipsLookupOnRuleFailure(t *testing.T) {
	setPasswordPolicy(t)

	// Passwords that fail the local rules never cost a network round trip
	lc := &recordingChecker{leaked: true, count: 50000}
	report := ValidatePasswordSecurity(context.Background(), "weak", lc)

	assert.False(t, report.Valid)
	assert.False(t, report.Leaked)
	assert.Zero(t, lc.calls)
	assert.NotEmpty(t, report.Message)
}

func TestValidatePasswordSecurityWithoutChecker(t *testing.T) {
	setPasswordPolicy(t)

	report := ValidatePasswordSecurity(context.Background(), "Str0ng!pass", nil)

	assert.True(t, report.Valid)
	assert.False(t, report.Leaked)
}
