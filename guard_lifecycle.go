package sessionguard

import (
	"context"
	"fmt"
	"time"

	"github.com/cobaltgrid/sessionguard/storage"
	"github.com/google/uuid"
)

// Restore rebuilds guard state after a process restart. The provider is
// the source of truth for whether a session exists; the persisted expiry
// decides whether it is still usable. A persisted expiry already in the
// past fails closed: provider sign-out, storage clear, stay
// unauthenticated.
func (g *Guard) Restore(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGuardClosed
	}
	g.mu.Unlock()

	providerSession, err := g.provider.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if providerSession == nil {
		return nil
	}

	now := g.clock()

	var expiresAt time.Time
	if raw, ok, rerr := g.storage.Retrieve(ctx, storage.KeySessionExpiry); rerr == nil && ok {
		if parsed, perr := storage.ParseTime(raw); perr == nil {
			expiresAt = parsed
		}
	}

	if !expiresAt.IsZero() && !now.Before(expiresAt) {
		g.metricInc(MetricSessionExpired)
		_ = g.provider.SignOut(ctx)
		g.clearStorage(ctx, providerSession.User.Email, "")
		g.notify(NoticeSessionExpired, "your session has ended, please sign in again")
		g.emitAudit(ctx, auditEventSessionExpired, providerSession.User.Email, "", false, nil, map[string]string{"stage": "restore"})
		return nil
	}

	// No persisted expiry (cleared storage, first run after an upgrade):
	// the provider session is trusted and the clock starts fresh.
	minted := expiresAt.IsZero()
	if minted {
		expiresAt = now.Add(g.config.Session.TTL)
	}

	lastActivity := now
	if raw, ok, rerr := g.storage.Retrieve(ctx, storage.KeyLastActivity); rerr == nil && ok {
		if parsed, perr := storage.ParseTime(raw); perr == nil {
			lastActivity = parsed
		}
	}

	g.mu.Lock()
	sess := &Session{
		ID:             uuid.NewString(),
		User:           providerSession.User,
		AccessToken:    providerSession.AccessToken,
		IssuedAt:       now,
		ExpiresAt:      expiresAt,
		LastActivityAt: lastActivity,
	}
	g.session = sess
	g.state = StateAuthenticated
	g.startExpiryLoopLocked()
	snapshot := *sess
	g.mu.Unlock()

	g.metricInc(MetricSessionRestored)
	g.emitAudit(ctx, auditEventSessionRestored, snapshot.User.Email, snapshot.ID, true, nil, nil)
	if minted {
		g.bestEffortStore(ctx, storage.KeySessionExpiry, storage.FormatTime(snapshot.ExpiresAt), snapshot)
	}

	return nil
}

// CheckNow runs one expiry evaluation immediately, outside the periodic
// schedule. Useful after a wake-from-suspend where ticks were missed.
func (g *Guard) CheckNow(ctx context.Context) {
	g.checkExpiry(ctx)
}

// checkExpiry is the periodic evaluation: hard expiry first, then the
// warning window, then the refresh threshold. Refresh runs with the mutex
// released; its failure path performs the forced sign-out itself.
func (g *Guard) checkExpiry(ctx context.Context) {
	g.mu.Lock()
	if g.session == nil || (g.state != StateAuthenticated && g.state != StateExpiring) {
		g.mu.Unlock()
		return
	}
	remaining := g.session.ExpiresAt.Sub(g.clock())

	switch {
	case remaining <= 0:
		g.mu.Unlock()
		g.metricInc(MetricSessionExpired)
		g.forceSignOut(ctx, NoticeSessionExpired, "your session has ended, please sign in again", auditEventSessionExpired)

	case remaining <= g.config.Session.WarningWindow:
		g.state = StateExpiring
		g.mu.Unlock()
		_ = g.Refresh(ctx)

	case remaining <= g.config.Session.RefreshThreshold:
		g.mu.Unlock()
		_ = g.Refresh(ctx)

	default:
		g.mu.Unlock()
	}
}

// forceSignOut collapses the session without user intent: hard expiry,
// failed refresh, or a remote revocation surfaced mid-flight. Unlike
// SignOut it always emits a notice.
func (g *Guard) forceSignOut(ctx context.Context, kind NoticeKind, message, auditType string) {
	g.mu.Lock()
	if g.session == nil {
		g.mu.Unlock()
		return
	}
	email := g.session.User.Email
	sessionID := g.session.ID
	g.clearSessionLocked()
	g.mu.Unlock()

	_ = g.provider.SignOut(ctx)
	g.clearStorage(ctx, email, sessionID)
	g.notify(kind, message)
	g.emitAudit(ctx, auditType, email, sessionID, false, nil, nil)
}

// handleProviderEvent reacts to pushes from the provider's own state
// stream. Provider events are authoritative: a cross-tab sign-out or
// background token refresh must win over local state. Events caused by an
// in-flight local call are ignored; the call's own path handles them.
func (g *Guard) handleProviderEvent(event AuthEvent, providerSession *ProviderSession) {
	ctx := context.Background()

	switch event {
	case EventSignedOut:
		g.mu.Lock()
		if g.session == nil {
			g.mu.Unlock()
			return
		}
		email := g.session.User.Email
		sessionID := g.session.ID
		g.clearSessionLocked()
		g.mu.Unlock()

		g.clearStorage(ctx, email, sessionID)
		g.metricInc(MetricRemoteSignOut)
		g.notify(NoticeSignedOutRemotely, "you have been signed out")
		g.emitAudit(ctx, auditEventProviderPush, email, sessionID, true, nil, map[string]string{"event": event.String()})

	case EventTokenRefreshed:
		if providerSession == nil {
			return
		}
		g.mu.Lock()
		if g.session == nil || g.refreshFlight {
			g.mu.Unlock()
			return
		}
		now := g.clock()
		g.session.AccessToken = providerSession.AccessToken
		g.session.ExpiresAt = now.Add(g.config.Session.TTL)
		g.state = StateAuthenticated
		snapshot := *g.session
		g.mu.Unlock()

		g.metricInc(MetricRefreshSuccess)
		g.emitAudit(ctx, auditEventProviderPush, snapshot.User.Email, snapshot.ID, true, nil, map[string]string{"event": event.String()})
		g.bestEffortStore(ctx, storage.KeySessionExpiry, storage.FormatTime(snapshot.ExpiresAt), snapshot)

	case EventSignedIn:
		if providerSession == nil {
			return
		}
		g.mu.Lock()
		if g.session != nil || g.signInFlight || g.closed {
			g.mu.Unlock()
			return
		}
		sess := g.adoptProviderSessionLocked(providerSession)
		snapshot := *sess
		g.mu.Unlock()

		g.metricInc(MetricSignInSuccess)
		g.emitAudit(ctx, auditEventProviderPush, snapshot.User.Email, snapshot.ID, true, nil, map[string]string{"event": event.String()})
		g.persistSession(ctx, snapshot)
	}
}

// clearSessionLocked drops the in-memory session and stops the periodic
// check. Callers hold g.mu.
func (g *Guard) clearSessionLocked() {
	g.session = nil
	g.state = StateUnauthenticated
	g.stopExpiryLoopLocked()
}

func (g *Guard) startExpiryLoopLocked() {
	if g.checkStop != nil || g.closed {
		return
	}

	stop := make(chan struct{})
	g.checkStop = stop
	interval := g.config.Session.CheckInterval

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				g.checkExpiry(context.Background())
			case <-stop:
				return
			}
		}
	}()
}

func (g *Guard) stopExpiryLoopLocked() {
	if g.checkStop != nil {
		close(g.checkStop)
		g.checkStop = nil
	}
}

// persistSession writes the full security blob: expiry, activity recency,
// and the preferences document.
func (g *Guard) persistSession(ctx context.Context, sess Session) {
	g.bestEffortStore(ctx, storage.KeySessionExpiry, storage.FormatTime(sess.ExpiresAt), sess)
	g.bestEffortStore(ctx, storage.KeyLastActivity, storage.FormatTime(sess.LastActivityAt), sess)

	prefs, err := storage.EncodePreferences(storage.Preferences{
		Email:     sess.User.Email,
		LastLogin: sess.IssuedAt,
	})
	if err == nil {
		g.bestEffortStore(ctx, storage.KeyUserPreferences, prefs, sess)
	}
}

// bestEffortStore persists a single key. A write failure degrades the
// next reload, not the live session, so it is recorded and swallowed.
func (g *Guard) bestEffortStore(ctx context.Context, key, value string, sess Session) {
	if err := g.storage.Store(ctx, key, value); err != nil {
		g.metricInc(MetricStorageWriteFailure)
		g.emitAudit(ctx, auditEventStorageWriteFail, sess.User.Email, sess.ID, false, err, map[string]string{"key": key})
	}
}

func (g *Guard) clearStorage(ctx context.Context, email, sessionID string) {
	if err := g.storage.ClearAll(ctx); err != nil {
		g.metricInc(MetricStorageWriteFailure)
		g.emitAudit(ctx, auditEventStorageWriteFail, email, sessionID, false, err, map[string]string{"key": "*"})
	}
}
