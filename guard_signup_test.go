package sessionguard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cobaltgrid/sessionguard/password"
)

func TestSignUpWeakPasswordRejectedLocally(t *testing.T) {
	f := newFixture(t)

	_, err := f.guard.SignUp(context.Background(), "new@example.com", "abc", SignUpOptions{})
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("err = %v, want ErrPasswordPolicy", err)
	}

	var policyErr *password.PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("err = %T, want *password.PolicyError", err)
	}
	if len(policyErr.Violations) < 2 {
		t.Errorf("violations = %v, want every failed rule reported", policyErr.Violations)
	}

	// Local rejection must never reach the network.
	if _, signUp, _, _ := f.provider.calls(); signUp != 0 {
		t.Errorf("provider sign-up calls = %d, want 0", signUp)
	}
	if got := f.guard.metrics.Value(MetricSignUpRejected); got != 1 {
		t.Errorf("rejected counter = %d", got)
	}
}

func TestSignUpAlreadyRegistered(t *testing.T) {
	f := newFixture(t)
	f.provider.mu.Lock()
	f.provider.signUpErr = errors.New("User already registered")
	f.provider.mu.Unlock()

	_, err := f.guard.SignUp(context.Background(), "new@example.com", "Str0ngPass", SignUpOptions{})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestSignUpConfirmationRequired(t *testing.T) {
	f := newFixture(t)
	f.provider.mu.Lock()
	f.provider.confirmationRequired = true
	f.provider.mu.Unlock()

	result, err := f.guard.SignUp(context.Background(), "new@example.com", "Str0ngPass", SignUpOptions{})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if !result.ConfirmationRequired {
		t.Error("ConfirmationRequired should be true")
	}
	if result.Session != nil {
		t.Error("no session until the email is confirmed")
	}
	if got := f.guard.State(); got != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", got)
	}
}

func TestSignUpAutoSignIn(t *testing.T) {
	f := newFixture(t)
	start := f.clock.Now()

	result, err := f.guard.SignUp(context.Background(), "new@example.com", "Str0ngPass", SignUpOptions{RedirectURL: "https://app.example.com/welcome"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if result.ConfirmationRequired {
		t.Error("ConfirmationRequired should be false")
	}
	if result.Session == nil {
		t.Fatal("auto sign-in should yield a session")
	}
	if !result.Session.ExpiresAt.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("ExpiresAt = %v", result.Session.ExpiresAt)
	}
	if got := f.guard.State(); got != StateAuthenticated {
		t.Errorf("state = %v, want authenticated", got)
	}
	if got := f.guard.metrics.Value(MetricSignUpSuccess); got != 1 {
		t.Errorf("sign-up success counter = %d", got)
	}
}
