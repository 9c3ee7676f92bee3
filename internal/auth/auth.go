// Package auth verifies bearer tokens and carries the caller's identity
// through request contexts. Tokens are issued elsewhere.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
)

// LocalOwnerID is the identity used for every request when authentication
// is disabled.
const LocalOwnerID = "local-user"

// Principal is the authenticated caller.
type Principal struct {
	ID    string
	Email string
}

// Verifier turns a bearer token into a Principal.
type Verifier interface {
	Verify(token string) (*Principal, error)
}

// Claims is the token payload: the user id and email, plus the standard claims.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type jwtVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier verifies HS256 tokens signed with secret.
func NewJWTVerifier(secret string) Verifier {
	return &jwtVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (v *jwtVerifier) Verify(token string) (*Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", app_errors.ErrUnauthorized)
	}
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %v", app_errors.ErrUnauthorized, err)
	}
	id := claims.ID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return nil, fmt.Errorf("%w: token has no user id", app_errors.ErrUnauthorized)
	}
	return &Principal{ID: id, Email: claims.Email}, nil
}

type localVerifier struct{}

// NewLocalVerifier accepts every request as LocalOwnerID. For development only.
func NewLocalVerifier() Verifier { return localVerifier{} }

func (localVerifier) Verify(string) (*Principal, error) {
	return &Principal{ID: LocalOwnerID}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

type contextKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the Principal stored by WithPrincipal.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok && p != nil
}

// ErrNoPrincipal is returned by OwnerID for unauthenticated contexts.
var ErrNoPrincipal = errors.New("no authenticated principal in context")

// OwnerID returns the id of the authenticated caller.
func OwnerID(ctx context.Context) (string, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return "", fmt.Errorf("%w: %v", app_errors.ErrUnauthorized, ErrNoPrincipal)
	}
	return p.ID, nil
}
