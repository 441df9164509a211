package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrExpired     = errors.New("session expired")
	ErrForbidden   = errors.New("operation not permitted")
)

type Capability int

const (
	CapRead Capability = iota + 1
	CapWrite
)

func (c Capability) String() string {
	switch c {
	case CapRead:
		return "read"
	case CapWrite:
		return "write"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// Claims is the subset of a Supabase access token the console reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Session describes who the console talks to the API as. The token signature is never
// checked here; the API does that on every request.
type Session struct {
	Token     string
	Subject   string
	Email     string
	Role      string
	ExpiresAt time.Time
	// Opaque is set when the token is not a JWT and carries no claims.
	Opaque bool
}

// New builds a session from a bearer token. An empty token yields an anonymous session.
func New(token string) Session {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Session{}
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{Token: token, Opaque: true}
	}

	s := Session{
		Token:   token,
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return s
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

func (s Session) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Can reports whether the session grants c right now.
func (s Session) Can(c Capability) bool {
	return s.CanAt(c, time.Now())
}

func (s Session) CanAt(c Capability, now time.Time) bool {
	return s.check(c, now) == nil
}

func (s Session) check(c Capability, now time.Time) error {
	if !s.Authenticated() {
		return ErrNotSignedIn
	}
	if s.ExpiredAt(now) {
		return fmt.Errorf("%w at %s", ErrExpired, s.ExpiresAt.Format(time.RFC3339))
	}
	switch c {
	case CapRead, CapWrite:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrForbidden, c)
	}
}

// Describe is a one-line human summary for the session command.
func (s Session) Describe(now time.Time) string {
	switch {
	case !s.Authenticated():
		return "anonymous (no API token configured)"
	case s.Opaque:
		return "signed in with an opaque API token"
	}

	who := s.Email
	if who == "" {
		who = s.Subject
	}
	if who == "" {
		who = "unknown user"
	}
	line := "signed in as " + who
	if s.Role != "" {
		line += " (" + s.Role + ")"
	}
	if !s.ExpiresAt.IsZero() {
		if s.ExpiredAt(now) {
			line += ", expired " + s.ExpiresAt.Format(time.RFC3339)
		} else {
			line += ", expires " + s.ExpiresAt.Format(time.RFC3339)
		}
	}
	return line
}

type contextKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, anonymous when there is none.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(contextKey{}).(Session)
	return s
}

// Require fails unless the session in ctx grants c.
func Require(ctx context.Context, c Capability) error {
	return FromContext(ctx).check(c, time.Now())
}
