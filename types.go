package sessionguard

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/cobaltgrid/sessionguard/internal/audit"
)

// Clock supplies the current time. Injectable through [Builder.WithClock]
// so lifecycle behavior can be tested deterministically.
type Clock func() time.Time

// UserIdentity is the opaque identity echoed by the provider.
type UserIdentity struct {
	ID    string
	Email string
}

// ProviderSession is the provider's view of an authenticated login. The
// access token is an opaque bearer credential: forwarded, never inspected.
type ProviderSession struct {
	AccessToken string
	User        UserIdentity
}

// AuthEvent identifies a push notification from the provider's auth state
// stream. Provider events are as authoritative as local calls: an external
// SignedOut collapses the guard to unauthenticated exactly like a local
// sign-out.
type AuthEvent uint8

const (
	// EventSignedIn signals a session established outside this guard.
	EventSignedIn AuthEvent = iota
	// EventSignedOut signals the provider invalidated the session.
	EventSignedOut
	// EventTokenRefreshed signals the provider rotated the access token.
	EventTokenRefreshed
)

func (e AuthEvent) String() string {
	switch e {
	case EventSignedIn:
		return "SIGNED_IN"
	case EventSignedOut:
		return "SIGNED_OUT"
	case EventTokenRefreshed:
		return "TOKEN_REFRESHED"
	default:
		return "UNKNOWN"
	}
}

// SignUpOptions carries provider-specific sign-up parameters.
type SignUpOptions struct {
	RedirectURL string
}

// SignUpOutcome is the provider's response to a sign-up request. Session is
// nil when the provider requires email confirmation before first sign-in.
type SignUpOutcome struct {
	Session              *ProviderSession
	User                 UserIdentity
	ConfirmationRequired bool
}

// AuthProvider is the boundary to the remote authentication backend.
// Implementations must be safe for concurrent use.
//
// Providers should return [ErrInvalidCredentials], [ErrEmailNotConfirmed],
// or [ErrAlreadyRegistered] where those conditions apply; any other error
// is classified as a provider failure.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*ProviderSession, error)
	SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*SignUpOutcome, error)
	Refresh(ctx context.Context) (*ProviderSession, error)
	SignOut(ctx context.Context) error
	// CurrentSession returns the provider's persisted session, or nil when
	// none exists. Used on process start to restore a login.
	CurrentSession(ctx context.Context) (*ProviderSession, error)
	// OnAuthStateChange registers a callback for push events. The returned
	// function unsubscribes it.
	OnAuthStateChange(fn func(AuthEvent, *ProviderSession)) (unsubscribe func())
}

// SignUpResult is returned by [Guard.SignUp]. Session is non-nil only when
// the provider signed the new account in immediately.
type SignUpResult struct {
	User                 UserIdentity
	Session              *Session
	ConfirmationRequired bool
}

// NoticeKind classifies out-of-band user notices.
type NoticeKind uint8

const (
	// NoticeSessionExpired is raised when hard expiry forces sign-out.
	NoticeSessionExpired NoticeKind = iota
	// NoticeLockedOut is raised when the lockout window blocks sign-in.
	NoticeLockedOut
	// NoticeSignedOutRemotely is raised when a provider push event ends
	// the session.
	NoticeSignedOutRemotely
)

// Notice is a user-visible message delivered outside the error-return path,
// for events that are not responses to a direct user action.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(notice Notice)
}

// NoOpNotifier discards all notices.
type NoOpNotifier struct{}

func (NoOpNotifier) Notify(Notice) {}

// ChannelNotifier buffers notices in a channel; full buffers drop.
type ChannelNotifier struct {
	notices chan Notice
}

// NewChannelNotifier creates a ChannelNotifier with the given capacity.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelNotifier{notices: make(chan Notice, buffer)}
}

func (n *ChannelNotifier) Notify(notice Notice) {
	select {
	case n.notices <- notice:
	default:
	}
}

func (n *ChannelNotifier) Notices() <-chan Notice {
	return n.notices
}

// AuditEvent is a structured audit record emitted by the guard.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the guard's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpAuditSink is an [AuditSink] that silently discards all events.
type NoOpAuditSink = internalaudit.NoOpSink

// ChannelAuditSink is a buffered channel-based [AuditSink].
type ChannelAuditSink = internalaudit.ChannelSink

// JSONWriterAuditSink is an [AuditSink] that writes JSON-encoded events to
// an [io.Writer].
type JSONWriterAuditSink = internalaudit.JSONWriterSink

// NewChannelAuditSink creates a [ChannelAuditSink] with the given capacity.
func NewChannelAuditSink(buffer int) *ChannelAuditSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterAuditSink creates a [JSONWriterAuditSink] that writes to w.
func NewJSONWriterAuditSink(w io.Writer) *JSONWriterAuditSink {
	return internalaudit.NewJSONWriterSink(w)
}
