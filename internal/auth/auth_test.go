package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTVerifier(t *testing.T) {
	verifier := NewJWTVerifier(secret)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("valid token with id claim", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{
			ID: "user-1", Email: "a@b.co",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
		})
		p, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, &Principal{ID: "user-1", Email: "a@b.co"}, p)
	})

	t.Run("subject is used when id is absent", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2", ExpiresAt: future},
		})
		p, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-2", p.ID)
	})

	invalid := map[string]string{
		"empty":      "",
		"garbage":    "not-a-token",
		"bad secret": sign(t, jwt.SigningMethodHS256, []byte("other"), Claims{ID: "u"}),
		"expired": sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{
			ID: "u", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		}),
		"wrong algorithm": sign(t, jwt.SigningMethodHS512, []byte(secret), Claims{ID: "u"}),
		"no identity":     sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{}),
	}
	for name, token := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(token)
			assert.ErrorIs(t, err, app_errors.ErrUnauthorized)
		})
	}
}

func TestLocalVerifier(t *testing.T) {
	p, err := NewLocalVerifier().Verify("")
	require.NoError(t, err)
	assert.Equal(t, LocalOwnerID, p.ID)
}

func TestBearerToken(t *testing.T) {
	testCases := map[string]string{
		"Bearer abc.def":  "abc.def",
		"bearer   xyz ":   "xyz",
		"Basic dXNlcjpw":  "",
		"":                "",
		"Bearer":          "",
	}
	for header, expected := range testCases {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		assert.Equal(t, expected, BearerToken(r), "header %q", header)
	}
}

func TestOwnerID(t *testing.T) {
	_, err := OwnerID(context.Background())
	assert.ErrorIs(t, err, app_errors.ErrUnauthorized)

	ctx := WithPrincipal(context.Background(), &Principal{ID: "user-7"})
	owner, err := OwnerID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-7", owner)
}
