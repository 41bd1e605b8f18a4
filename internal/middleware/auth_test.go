package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"rehire/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func newAuthApp(rdb *redis.Client) *fiber.App {
	app := fiber.New()
	app.Get("/test", AuthRequired(testSecret, rdb), func(c *fiber.Ctx) error {
		userID, _ := UserIDFromCtx(c)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": userID})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := newAuthApp(nil)

	valid, _, err := IssueToken(testSecret, 123, time.Now())
	require.NoError(t, err)
	expired, _, err := IssueToken(testSecret, 123, time.Now().Add(-2*TokenLifetime))
	require.NoError(t, err)
	wrongSecret, _, err := IssueToken("another-secret-another-secret-another", 123, time.Now())
	require.NoError(t, err)

	foreignAudience := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.Itoa(123),
		"iss": TokenIssuer,
		"aud": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	foreign, err := foreignAudience.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK, 123},
		{"Missing Header", "", http.StatusUnauthorized, 0},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0},
		{"Malformed Token", "Bearer malformed.token.here", http.StatusUnauthorized, 0},
		{"Expired Token", "Bearer " + expired, http.StatusUnauthorized, 0},
		{"Wrong Secret", "Bearer " + wrongSecret, http.StatusUnauthorized, 0},
		{"Foreign Audience", "Bearer " + foreign, http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]uint
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedUserID, body["userID"])
				return
			}

			var envelope models.Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
			assert.False(t, envelope.Success)
			assert.NotEmpty(t, envelope.Message)
		})
	}
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := newAuthApp(rdb)
	now := time.Now()
	token, claims, err := IssueToken(testSecret, 7, now)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, RevokeToken(context.Background(), rdb, claims, now))
	assert.True(t, mr.Exists(revokedTokenPrefix+claims.JTI))
	ttl := mr.TTL(revokedTokenPrefix + claims.JTI)
	assert.InDelta(t, TokenLifetime.Seconds(), ttl.Seconds(), 5)

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_RedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	app := newAuthApp(rdb)
	token, _, err := IssueToken(testSecret, 9, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParseToken_RoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	token, issued, err := IssueToken(testSecret, 42, now)
	require.NoError(t, err)

	parsed, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)
	assert.Equal(t, issued.JTI, parsed.JTI)
	assert.True(t, parsed.ExpiresAt.Equal(now.Add(TokenLifetime)))
}

func TestRevokeToken_ExpiredIsNoop(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	claims := &TokenClaims{UserID: 1, JTI: "abc", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, RevokeToken(context.Background(), rdb, claims, time.Now()))
	assert.False(t, mr.Exists(revokedTokenPrefix+"abc"))
}
