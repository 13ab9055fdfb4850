package localauth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cobaltgrid/sessionguard"
	"github.com/cobaltgrid/sessionguard/password"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config tunes the local provider.
type Config struct {
	// SigningKey signs issued access tokens (HS256). Required.
	SigningKey []byte
	// TokenTTL is the embedded JWT lifetime. Defaults to one hour. Note the
	// guard tracks its own session expiry independently of this value.
	TokenTTL time.Duration
	// RequireEmailConfirmation makes sign-up return a confirmation-required
	// outcome and blocks sign-in until ConfirmEmail is called.
	RequireEmailConfirmation bool
	// Hash overrides the argon2id cost parameters. Zero uses the defaults.
	Hash password.HashConfig
	// Clock overrides the time source.
	Clock func() time.Time
}

type account struct {
	id        string
	email     string
	hash      string
	confirmed bool
}

// Provider is an in-memory implementation of
// [sessionguard.AuthProvider].
type Provider struct {
	cfg    Config
	hasher *password.Hasher
	clock  func() time.Time

	mu       sync.Mutex
	accounts map[string]*account
	current  *sessionguard.ProviderSession
	subs     map[int]func(sessionguard.AuthEvent, *sessionguard.ProviderSession)
	nextSub  int
}

// NewProvider validates cfg and returns an empty Provider.
func NewProvider(cfg Config) (*Provider, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("signing key required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}

	hashCfg := cfg.Hash
	if hashCfg == (password.HashConfig{}) {
		hashCfg = password.DefaultHashConfig()
	}
	hasher, err := password.NewHasher(hashCfg)
	if err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Provider{
		cfg:      cfg,
		hasher:   hasher,
		clock:    clock,
		accounts: map[string]*account{},
		subs:     map[int]func(sessionguard.AuthEvent, *sessionguard.ProviderSession){},
	}, nil
}

// Seed registers a confirmed account directly, bypassing sign-up. Intended
// for test and example setup.
func (p *Provider) Seed(email, plaintext string) error {
	hash, err := p.hasher.Hash(plaintext)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return sessionguard.ErrAlreadyRegistered
	}
	p.accounts[email] = &account{
		id:        uuid.NewString(),
		email:     email,
		hash:      hash,
		confirmed: true,
	}
	return nil
}

// ConfirmEmail marks a pending account as confirmed.
func (p *Provider) ConfirmEmail(email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if !ok {
		return errors.New("no such account")
	}
	acct.confirmed = true
	return nil
}

func (p *Provider) SignIn(ctx context.Context, email, plaintext string) (*sessionguard.ProviderSession, error) {
	p.mu.Lock()
	acct, ok := p.accounts[email]
	p.mu.Unlock()

	if !ok {
		return nil, sessionguard.ErrInvalidCredentials
	}

	match, err := p.hasher.Verify(plaintext, acct.hash)
	if err != nil || !match {
		return nil, sessionguard.ErrInvalidCredentials
	}
	if !acct.confirmed {
		return nil, sessionguard.ErrEmailNotConfirmed
	}

	session, err := p.issueSession(acct)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = session
	p.mu.Unlock()

	p.broadcast(sessionguard.EventSignedIn, session)
	return session, nil
}

func (p *Provider) SignUp(ctx context.Context, email, plaintext string, opts sessionguard.SignUpOptions) (*sessionguard.SignUpOutcome, error) {
	hash, err := p.hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return nil, sessionguard.ErrAlreadyRegistered
	}
	acct := &account{
		id:        uuid.NewString(),
		email:     email,
		hash:      hash,
		confirmed: !p.cfg.RequireEmailConfirmation,
	}
	p.accounts[email] = acct
	p.mu.Unlock()

	outcome := &sessionguard.SignUpOutcome{
		User:                 sessionguard.UserIdentity{ID: acct.id, Email: acct.email},
		ConfirmationRequired: p.cfg.RequireEmailConfirmation,
	}
	if outcome.ConfirmationRequired {
		return outcome, nil
	}

	session, err := p.issueSession(acct)
	if err != nil {
		return nil, err
	}
	outcome.Session = session

	p.mu.Lock()
	p.current = session
	p.mu.Unlock()

	p.broadcast(sessionguard.EventSignedIn, session)
	return outcome, nil
}

func (p *Provider) Refresh(ctx context.Context) (*sessionguard.ProviderSession, error) {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()

	if current == nil {
		return nil, errors.New("no active session")
	}

	p.mu.Lock()
	acct := p.accounts[current.User.Email]
	p.mu.Unlock()
	if acct == nil {
		return nil, errors.New("account removed")
	}

	// Token rotation: every refresh mints a fresh JWT with a new jti.
	session, err := p.issueSession(acct)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = session
	p.mu.Unlock()

	p.broadcast(sessionguard.EventTokenRefreshed, session)
	return session, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	hadSession := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if hadSession {
		p.broadcast(sessionguard.EventSignedOut, nil)
	}
	return nil
}

func (p *Provider) CurrentSession(ctx context.Context) (*sessionguard.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *Provider) OnAuthStateChange(fn func(sessionguard.AuthEvent, *sessionguard.ProviderSession)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// RevokeSession invalidates the active session and pushes a SIGNED_OUT
// event, simulating a revocation from another device or tab.
func (p *Provider) RevokeSession() {
	p.mu.Lock()
	hadSession := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if hadSession {
		p.broadcast(sessionguard.EventSignedOut, nil)
	}
}

func (p *Provider) issueSession(acct *account) (*sessionguard.ProviderSession, error) {
	now := p.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   acct.id,
		"email": acct.email,
		"iat":   now.Unix(),
		"exp":   now.Add(p.cfg.TokenTTL).Unix(),
		"jti":   uuid.NewString(),
	})

	signed, err := token.SignedString(p.cfg.SigningKey)
	if err != nil {
		return nil, err
	}

	return &sessionguard.ProviderSession{
		AccessToken: signed,
		User:        sessionguard.UserIdentity{ID: acct.id, Email: acct.email},
	}, nil
}

// broadcast fans an event out without holding the lock: subscribers may
// call back into the provider.
func (p *Provider) broadcast(event sessionguard.AuthEvent, session *sessionguard.ProviderSession) {
	p.mu.Lock()
	fns := make([]func(sessionguard.AuthEvent, *sessionguard.ProviderSession), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(event, session)
	}
}
