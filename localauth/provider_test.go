package localauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cobaltgrid/sessionguard"
	"github.com/cobaltgrid/sessionguard/password"
	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

// cheapHash keeps argon2id affordable in tests.
func cheapHash() password.HashConfig {
	return password.HashConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
}

func newTestProvider(t *testing.T, cfg Config) *Provider {
	t.Helper()

	if cfg.SigningKey == nil {
		cfg.SigningKey = testSigningKey
	}
	if cfg.Hash == (password.HashConfig{}) {
		cfg.Hash = cheapHash()
	}

	p, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func TestSignInIssuesJWT(t *testing.T) {
	p := newTestProvider(t, Config{TokenTTL: 30 * time.Minute})
	if err := p.Seed("user@example.com", "Str0ngPass"); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	session, err := p.SignIn(context.Background(), "user@example.com", "Str0ngPass")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	token, err := jwt.Parse(session.AccessToken, func(*jwt.Token) (interface{}, error) {
		return testSigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type %T", token.Claims)
	}
	if claims["email"] != "user@example.com" {
		t.Errorf("email claim = %v", claims["email"])
	}
	if claims["sub"] != session.User.ID {
		t.Errorf("sub claim = %v, want %q", claims["sub"], session.User.ID)
	}
	if claims["jti"] == "" || claims["jti"] == nil {
		t.Error("jti claim missing")
	}
}

func TestSignInWrongPassword(t *testing.T) {
	p := newTestProvider(t, Config{})
	if err := p.Seed("user@example.com", "Str0ngPass"); err != nil {
		t.Fatal(err)
	}

	if _, err := p.SignIn(context.Background(), "user@example.com", "wrong"); !errors.Is(err, sessionguard.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := p.SignIn(context.Background(), "ghost@example.com", "Str0ngPass"); !errors.Is(err, sessionguard.ErrInvalidCredentials) {
		t.Errorf("unknown account err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignUpAndConfirmationFlow(t *testing.T) {
	p := newTestProvider(t, Config{RequireEmailConfirmation: true})
	ctx := context.Background()

	outcome, err := p.SignUp(ctx, "new@example.com", "Str0ngPass", sessionguard.SignUpOptions{})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if !outcome.ConfirmationRequired || outcome.Session != nil {
		t.Fatalf("outcome = %+v, want confirmation required", outcome)
	}

	if _, err := p.SignIn(ctx, "new@example.com", "Str0ngPass"); !errors.Is(err, sessionguard.ErrEmailNotConfirmed) {
		t.Fatalf("pre-confirmation sign-in err = %v", err)
	}

	if err := p.ConfirmEmail("new@example.com"); err != nil {
		t.Fatalf("ConfirmEmail: %v", err)
	}
	if _, err := p.SignIn(ctx, "new@example.com", "Str0ngPass"); err != nil {
		t.Fatalf("post-confirmation sign-in: %v", err)
	}
}

func TestSignUpDuplicate(t *testing.T) {
	p := newTestProvider(t, Config{})
	ctx := context.Background()

	if _, err := p.SignUp(ctx, "new@example.com", "Str0ngPass", sessionguard.SignUpOptions{}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := p.SignUp(ctx, "new@example.com", "Other1Pass", sessionguard.SignUpOptions{}); !errors.Is(err, sessionguard.ErrAlreadyRegistered) {
		t.Errorf("duplicate err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	p := newTestProvider(t, Config{})
	if err := p.Seed("user@example.com", "Str0ngPass"); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first, err := p.SignIn(ctx, "user@example.com", "Str0ngPass")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	second, err := p.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.AccessToken == first.AccessToken {
		t.Error("refresh must rotate the access token")
	}

	current, err := p.CurrentSession(ctx)
	if err != nil || current == nil || current.AccessToken != second.AccessToken {
		t.Errorf("CurrentSession = %+v err=%v", current, err)
	}
}

func TestRefreshWithoutSession(t *testing.T) {
	p := newTestProvider(t, Config{})
	if _, err := p.Refresh(context.Background()); err == nil {
		t.Error("refresh without session should fail")
	}
}

func TestAuthStateStream(t *testing.T) {
	p := newTestProvider(t, Config{})
	if err := p.Seed("user@example.com", "Str0ngPass"); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	type push struct {
		event   sessionguard.AuthEvent
		session *sessionguard.ProviderSession
	}
	var pushes []push
	unsubscribe := p.OnAuthStateChange(func(e sessionguard.AuthEvent, s *sessionguard.ProviderSession) {
		pushes = append(pushes, push{e, s})
	})

	if _, err := p.SignIn(ctx, "user@example.com", "Str0ngPass"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.SignOut(ctx); err != nil {
		t.Fatal(err)
	}

	want := []sessionguard.AuthEvent{
		sessionguard.EventSignedIn,
		sessionguard.EventTokenRefreshed,
		sessionguard.EventSignedOut,
	}
	if len(pushes) != len(want) {
		t.Fatalf("pushes = %d, want %d", len(pushes), len(want))
	}
	for i, w := range want {
		if pushes[i].event != w {
			t.Errorf("push %d = %v, want %v", i, pushes[i].event, w)
		}
	}
	if pushes[2].session != nil {
		t.Error("SIGNED_OUT push carries no session")
	}

	unsubscribe()
	if _, err := p.SignIn(ctx, "user@example.com", "Str0ngPass"); err != nil {
		t.Fatal(err)
	}
	if len(pushes) != len(want) {
		t.Error("unsubscribed callback must not fire")
	}
}

func TestRevokeSessionPushesSignedOut(t *testing.T) {
	p := newTestProvider(t, Config{})
	if err := p.Seed("user@example.com", "Str0ngPass"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.SignIn(context.Background(), "user@example.com", "Str0ngPass"); err != nil {
		t.Fatal(err)
	}

	var got []sessionguard.AuthEvent
	p.OnAuthStateChange(func(e sessionguard.AuthEvent, _ *sessionguard.ProviderSession) {
		got = append(got, e)
	})

	p.RevokeSession()

	if len(got) != 1 || got[0] != sessionguard.EventSignedOut {
		t.Errorf("events = %v, want single SIGNED_OUT", got)
	}
	if current, _ := p.CurrentSession(context.Background()); current != nil {
		t.Error("session should be revoked")
	}
}
