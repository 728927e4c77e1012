package middleware

import (
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/note-vault/internal/config"
)

func TestRateKeyIsolatesUsers(t *testing.T) {
	a := rateKeyFrom("ratelimit", testContext("/v1/notes", "", uint64(1)))
	b := rateKeyFrom("ratelimit", testContext("/v1/notes", "", uint64(2)))

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, ":user:1:")
	assert.Contains(t, b, ":user:2:")
}

func TestRateKeyCarriesAuthenticatedUser(t *testing.T) {
	// The limiter runs behind JWTAuth on protected routes, so the
	// context carries user_id and the key must not degrade to anon.
	key := rateKeyFrom("ratelimit", testContext("/v1/notes", "", uint64(42)))
	assert.NotContains(t, key, ":user:anon:")
	assert.Contains(t, key, ":user:42:")
}

func TestRateKeyAnonymousOnAuthRoutes(t *testing.T) {
	key := rateKeyFrom("ratelimit", testContext("/v1/auth/login", "", nil))
	assert.Contains(t, key, ":user:anon:")
}

func TestRateKeyIsolatesRoutes(t *testing.T) {
	a := rateKeyFrom("ratelimit", testContext("/v1/notes", "", uint64(1)))
	b := rateKeyFrom("ratelimit", testContext("/v1/categories", "", uint64(1)))
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "/v1/notes"))
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return nil
	})

	assert.NoError(t, h(testContext("/v1/notes", "", uint64(1))))
	assert.True(t, called)
}
