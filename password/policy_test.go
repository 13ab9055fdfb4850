package password

import (
	"errors"
	"strings"
	"testing"
)

func TestPolicyValidate(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		password string
		wantErr  bool
		contains string
	}{
		{"valid", "Sunlit42x", false, ""},
		{"too short", "abc", true, "at least 8"},
		{"missing upper", "sunlit42x", true, "upper-case"},
		{"missing lower", "SUNLIT42X", true, "lower-case"},
		{"missing digit", "Sunlitxyz", true, "digit"},
		{"empty", "", true, "at least 8"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Validate(tc.password)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("Validate(%q) = %v, want nil", tc.password, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate(%q) = nil, want error", tc.password)
			}
			if !errors.Is(err, ErrPolicy) {
				t.Fatalf("error does not wrap ErrPolicy: %v", err)
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.contains)
			}
		})
	}
}

func TestPolicyValidate_ReportsAllViolations(t *testing.T) {
	err := DefaultPolicy().Validate("ab")
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected *PolicyError, got %T", err)
	}
	// Too short, no upper, no digit.
	if len(policyErr.Violations) != 3 {
		t.Fatalf("violations = %v, want 3 entries", policyErr.Violations)
	}
}
