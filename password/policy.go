package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrPolicy is the sentinel wrapped by every [PolicyError].
var ErrPolicy = errors.New("password policy violation")

// Policy describes the local complexity rules applied before any network
// call is made.
type Policy struct {
	MinLength    int
	RequireUpper bool
	RequireLower bool
	RequireDigit bool
}

// DefaultPolicy returns the baseline policy: at least 8 characters with an
// upper-case letter, a lower-case letter, and a digit.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:    8,
		RequireUpper: true,
		RequireLower: true,
		RequireDigit: true,
	}
}

// PolicyError reports every rule the candidate password failed.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("password does not meet requirements: %s", strings.Join(e.Violations, "; "))
}

func (e *PolicyError) Unwrap() error {
	return ErrPolicy
}

// Validate checks the candidate against the policy. It returns nil on
// success or a *PolicyError listing all violations.
func (p Policy) Validate(candidate string) error {
	var violations []string

	if len(candidate) < p.MinLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters", p.MinLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range candidate {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if p.RequireUpper && !hasUpper {
		violations = append(violations, "must contain an upper-case letter")
	}
	if p.RequireLower && !hasLower {
		violations = append(violations, "must contain a lower-case letter")
	}
	if p.RequireDigit && !hasDigit {
		violations = append(violations, "must contain a digit")
	}

	if len(violations) > 0 {
		return &PolicyError{Violations: violations}
	}
	return nil
}
