package sessionguard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cobaltgrid/sessionguard/internal/lockout"
	"github.com/cobaltgrid/sessionguard/storage"
	"github.com/google/uuid"
)

// Guard owns the authenticated-session state machine: sign-in with lockout
// protection, sign-up with local password policy, proactive refresh, hard
// expiry, and activity-recency tracking.
//
// Guard instances are created through [Builder.Build] and are safe for
// concurrent use. Overlapping sign-in or refresh calls are rejected rather
// than raced: at most one of each is in flight at any time.
type Guard struct {
	config   Config
	provider AuthProvider
	storage  storage.Store
	lockout  *lockout.Tracker
	clock    Clock
	audit    *auditDispatcher
	metrics  *Metrics
	notifier Notifier
	monitor  *ActivityMonitor

	mu            sync.Mutex
	state         State
	session       *Session
	signInFlight  bool
	refreshFlight bool
	checkStop     chan struct{}
	unsubscribe   func()
	closed        bool

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// SignIn authenticates with the provider. The lockout tracker is consulted
// first: a locked client fails immediately with a [*LockoutError] and no
// provider call is made. A credential failure increments the lockout
// counter; success resets it.
func (g *Guard) SignIn(ctx context.Context, email, password string) (*Session, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, ErrGuardClosed
	}
	if g.signInFlight {
		g.mu.Unlock()
		return nil, ErrSignInInFlight
	}
	if locked, remaining := g.lockout.Status(); locked {
		g.mu.Unlock()
		g.metricInc(MetricSignInLockedOut)
		lockErr := &LockoutError{RetryAfter: remaining}
		g.emitAudit(ctx, auditEventSignInLockedOut, email, "", false, ErrLockedOut, nil)
		g.notify(NoticeLockedOut, lockErr.Error())
		return nil, lockErr
	}
	g.signInFlight = true
	prevState := g.state
	if g.state == StateUnauthenticated {
		g.state = StateAuthenticating
	}
	g.mu.Unlock()

	providerSession, err := g.provider.SignIn(ctx, email, password)

	g.mu.Lock()
	g.signInFlight = false
	if err != nil || providerSession == nil {
		if g.state == StateAuthenticating {
			g.state = prevState
		}
		g.lockout.RecordFailure()
		g.mu.Unlock()

		if err == nil {
			err = errors.New("provider returned no session")
		}
		classified := classifyProviderError(err)
		g.metricInc(MetricSignInFailure)
		g.emitAudit(ctx, auditEventSignIn, email, "", false, classified, nil)
		return nil, classified
	}

	g.lockout.RecordSuccess()
	sess := g.adoptProviderSessionLocked(providerSession)
	snapshot := *sess
	g.mu.Unlock()

	g.metricInc(MetricSignInSuccess)
	g.emitAudit(ctx, auditEventSignIn, snapshot.User.Email, snapshot.ID, true, nil, nil)
	g.persistSession(ctx, snapshot)

	return &snapshot, nil
}

// SignUp registers a new account. The password policy is applied locally
// before any network call; a policy violation wraps [ErrPasswordPolicy].
// When the provider requires email confirmation the guard stays
// unauthenticated; otherwise the new session is adopted as a sign-in.
func (g *Guard) SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*SignUpResult, error) {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return nil, ErrGuardClosed
	}

	if err := g.config.Password.Validate(password); err != nil {
		g.metricInc(MetricSignUpRejected)
		g.emitAudit(ctx, auditEventSignUp, email, "", false, err, map[string]string{"stage": "local_validation"})
		return nil, err
	}

	outcome, err := g.provider.SignUp(ctx, email, password, opts)
	if err != nil {
		classified := classifyProviderError(err)
		g.metricInc(MetricSignUpRejected)
		g.emitAudit(ctx, auditEventSignUp, email, "", false, classified, nil)
		return nil, classified
	}

	result := &SignUpResult{
		User:                 outcome.User,
		ConfirmationRequired: outcome.ConfirmationRequired || outcome.Session == nil,
	}

	if !result.ConfirmationRequired {
		g.mu.Lock()
		g.lockout.RecordSuccess()
		sess := g.adoptProviderSessionLocked(outcome.Session)
		snapshot := *sess
		g.mu.Unlock()

		g.persistSession(ctx, snapshot)
		result.Session = &snapshot
	}

	g.metricInc(MetricSignUpSuccess)
	g.emitAudit(ctx, auditEventSignUp, email, "", true, nil, map[string]string{
		"confirmation_required": fmt.Sprintf("%t", result.ConfirmationRequired),
	})

	return result, nil
}

// Refresh renews the session with the provider and resets the expiry clock
// to now + TTL. A failed refresh is terminal: the guard signs out
// immediately (fail closed, no in-place retry).
func (g *Guard) Refresh(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGuardClosed
	}
	if g.session == nil || (g.state != StateAuthenticated && g.state != StateExpiring) {
		g.mu.Unlock()
		return ErrNotAuthenticated
	}
	if g.refreshFlight {
		g.mu.Unlock()
		return ErrRefreshInFlight
	}
	g.refreshFlight = true
	email := g.session.User.Email
	sessionID := g.session.ID
	g.mu.Unlock()

	providerSession, err := g.provider.Refresh(ctx)

	g.mu.Lock()
	g.refreshFlight = false
	if err != nil || providerSession == nil {
		g.mu.Unlock()

		if err == nil {
			err = errors.New("provider returned no session")
		}
		classified := fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		g.metricInc(MetricRefreshFailure)
		g.emitAudit(ctx, auditEventRefresh, email, sessionID, false, classified, nil)
		g.forceSignOut(ctx, NoticeSessionExpired, "your session has ended, please sign in again", auditEventSessionExpired)
		return classified
	}

	if g.session == nil {
		// Signed out while the refresh was in flight; drop the result.
		g.mu.Unlock()
		return ErrNotAuthenticated
	}

	now := g.clock()
	g.session.AccessToken = providerSession.AccessToken
	g.session.ExpiresAt = now.Add(g.config.Session.TTL)
	g.state = StateAuthenticated
	snapshot := *g.session
	g.mu.Unlock()

	g.metricInc(MetricRefreshSuccess)
	g.emitAudit(ctx, auditEventRefresh, snapshot.User.Email, snapshot.ID, true, nil, nil)
	g.bestEffortStore(ctx, storage.KeySessionExpiry, storage.FormatTime(snapshot.ExpiresAt), snapshot)

	return nil
}

// SignOut ends the session: provider sign-out, storage clear, in-memory
// clear. The lockout tracker is left untouched — signing out is not a
// security-failure event.
func (g *Guard) SignOut(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGuardClosed
	}
	if g.session == nil {
		g.mu.Unlock()
		return nil
	}
	email := g.session.User.Email
	sessionID := g.session.ID
	g.clearSessionLocked()
	g.mu.Unlock()

	// Provider failure does not resurrect the local session.
	_ = g.provider.SignOut(ctx)
	g.clearStorage(ctx, email, sessionID)

	g.metricInc(MetricSignOut)
	g.emitAudit(ctx, auditEventSignOut, email, sessionID, true, nil, nil)

	return nil
}

// RecordActivity stamps interaction recency. It is a no-op unless a
// non-expired session exists, and it never moves the expiry clock — only a
// refresh does that.
func (g *Guard) RecordActivity(ctx context.Context) {
	g.mu.Lock()
	if g.session == nil || (g.state != StateAuthenticated && g.state != StateExpiring) {
		g.mu.Unlock()
		return
	}
	now := g.clock()
	if !now.Before(g.session.ExpiresAt) {
		// Already past expiry; the periodic check owns the transition.
		g.mu.Unlock()
		return
	}
	g.session.LastActivityAt = now
	snapshot := *g.session
	g.mu.Unlock()

	g.metricInc(MetricActivityRecorded)
	g.bestEffortStore(ctx, storage.KeyLastActivity, storage.FormatTime(now), snapshot)
}

// State returns the current lifecycle state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// IsAuthenticated reports whether a valid session exists. The transient
// Expiring state still counts: the session remains valid inside the
// warning window.
func (g *Guard) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StateAuthenticated || g.state == StateExpiring
}

// Session returns a copy of the current session, or nil.
func (g *Guard) Session() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return nil
	}
	snapshot := *g.session
	return &snapshot
}

// LockoutStatus reports whether sign-in is currently blocked and for how
// much longer.
func (g *Guard) LockoutStatus() (bool, time.Duration) {
	return g.lockout.Status()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (g *Guard) MetricsSnapshot() MetricsSnapshot {
	if g == nil || g.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return g.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped under
// backpressure.
func (g *Guard) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// Close releases every resource on any exit path: the periodic check, the
// provider subscription, the activity monitor, and the audit dispatcher.
// Close is idempotent.
func (g *Guard) Close() {
	if g == nil {
		return
	}
	g.closeOnce.Do(func() {
		g.mu.Lock()
		g.closed = true
		g.stopExpiryLoopLocked()
		unsubscribe := g.unsubscribe
		g.unsubscribe = nil
		monitor := g.monitor
		g.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		if monitor != nil {
			monitor.Close()
		}
		g.wg.Wait()
		g.audit.Close()
	})
}

func (g *Guard) metricInc(id MetricID) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Inc(id)
}

func (g *Guard) notify(kind NoticeKind, message string) {
	if g.notifier == nil {
		return
	}
	g.notifier.Notify(Notice{Kind: kind, Message: message, At: g.clock()})
}

// adoptProviderSessionLocked mints the client-side session record and
// enters Authenticated. Callers hold g.mu.
func (g *Guard) adoptProviderSessionLocked(providerSession *ProviderSession) *Session {
	now := g.clock()
	sess := &Session{
		ID:             uuid.NewString(),
		User:           providerSession.User,
		AccessToken:    providerSession.AccessToken,
		IssuedAt:       now,
		ExpiresAt:      now.Add(g.config.Session.TTL),
		LastActivityAt: now,
	}
	g.session = sess
	g.state = StateAuthenticated
	g.startExpiryLoopLocked()
	return sess
}

// classifyProviderError rewrites provider failures into the fixed
// user-facing taxonomy. Only two provider phrasings are recognized beyond
// sentinel matches; everything else is a provider failure.
func classifyProviderError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, ErrEmailNotConfirmed):
		return ErrEmailNotConfirmed
	case errors.Is(err, ErrAlreadyRegistered):
		return ErrAlreadyRegistered
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "invalid") && strings.Contains(message, "credentials"):
		return ErrInvalidCredentials
	case strings.Contains(message, "email not confirmed"):
		return ErrEmailNotConfirmed
	case strings.Contains(message, "already registered") || strings.Contains(message, "already exists"):
		return ErrAlreadyRegistered
	default:
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
}
