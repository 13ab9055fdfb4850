package sessionguard

import "time"

// State is the guard's position in the session lifecycle.
type State uint8

const (
	// StateUnauthenticated means no session exists.
	StateUnauthenticated State = iota
	// StateAuthenticating means a sign-in call is in flight.
	StateAuthenticating
	// StateAuthenticated means a valid session exists.
	StateAuthenticated
	// StateExpiring means the session is inside the warning window. It is
	// transient: the guard immediately attempts a refresh and resolves to
	// Authenticated or Expired.
	StateExpiring
	// StateExpired means the session passed its expiry; the guard collapses
	// it to Unauthenticated via forced sign-out.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateExpiring:
		return "expiring"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Session is the client-side record of an authenticated login. Its expiry
// is tracked independently of any provider-side token lifetime: ExpiresAt
// is reset to now + TTL at issuance and on every refresh, never extended
// in place.
// LastActivityAt stamps interaction recency only and never moves ExpiresAt.
type Session struct {
	ID             string
	User           UserIdentity
	AccessToken    string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	LastActivityAt time.Time
}
