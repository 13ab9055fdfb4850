package sessionguard

import (
	"errors"
	"fmt"
	"time"

	"github.com/cobaltgrid/sessionguard/password"
)

var (
	// ErrLockedOut is returned when sign-in is rejected by the lockout
	// tracker before any provider call is made.
	ErrLockedOut = errors.New("too many failed sign-in attempts")
	// ErrInvalidCredentials is the fixed user-facing rejection for a bad
	// email/password pair. Provider phrasing is never passed through.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotConfirmed is returned when the provider requires email
	// confirmation before the account can sign in.
	ErrEmailNotConfirmed = errors.New("email not confirmed, check your inbox for the confirmation link")
	// ErrAlreadyRegistered is returned on sign-up for an existing account.
	ErrAlreadyRegistered = errors.New("an account with this email already exists, sign in instead")
	// ErrProviderUnavailable covers any other provider or network failure.
	ErrProviderUnavailable = errors.New("authentication service unavailable")
	// ErrPasswordPolicy is the sentinel wrapped by local password policy
	// rejections; sign-up never reaches the network when it is returned.
	ErrPasswordPolicy = password.ErrPolicy
	// ErrSignInInFlight rejects a sign-in attempted while another is pending.
	ErrSignInInFlight = errors.New("sign-in already in progress")
	// ErrRefreshInFlight rejects a refresh attempted while another is pending.
	ErrRefreshInFlight = errors.New("refresh already in progress")
	// ErrNotAuthenticated is returned by operations that require a session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrGuardClosed is returned after Close.
	ErrGuardClosed = errors.New("guard closed")
)

// LockoutError carries the remaining lockout window. It wraps [ErrLockedOut]
// and its message always states the remaining minutes.
type LockoutError struct {
	RetryAfter time.Duration
}

func (e *LockoutError) Error() string {
	minutes := int(e.RetryAfter.Minutes())
	if e.RetryAfter > time.Duration(minutes)*time.Minute {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("too many failed sign-in attempts, try again in %d minute(s)", minutes)
}

func (e *LockoutError) Unwrap() error {
	return ErrLockedOut
}
