// Package middleware provides authentication, logging, tracing and metrics middleware.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"rehire/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TokenIssuer   = "rehire-api"
	TokenAudience = "rehire-client"
	TokenLifetime = 7 * 24 * time.Hour

	revokedTokenPrefix = "revoked_jti:"
	claimsLocalKey     = "tokenClaims"
)

// TokenClaims is the subset of JWT claims the application relies on.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// IssueToken signs an HS256 session token for userID.
func IssueToken(secret string, userID uint, now time.Time) (string, *TokenClaims, error) {
	jti := uuid.NewString()
	expiresAt := now.Add(TokenLifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        jti,
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, &TokenClaims{UserID: userID, JTI: jti, ExpiresAt: expiresAt}, nil
}

// ParseToken verifies signature, issuer, audience and time claims.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, errors.New("invalid subject claim")
	}

	out := &TokenClaims{UserID: uint(userID), JTI: claims.ID}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// RevokeToken blacklists the token's jti until it would have expired anyway.
func RevokeToken(ctx context.Context, rdb *redis.Client, claims *TokenClaims, now time.Time) error {
	if rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, revokedTokenPrefix+claims.JTI, "1", ttl).Err()
}

// IsTokenRevoked reports whether jti was revoked by a logout.
func IsTokenRevoked(ctx context.Context, rdb *redis.Client, jti string) (bool, error) {
	if rdb == nil || jti == "" {
		return false, nil
	}
	n, err := rdb.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AuthRequired enforces a valid, unrevoked bearer token. rdb may be nil, in
// which case revocation is not checked.
func AuthRequired(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, models.NewUnauthenticatedError("Authorization required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid authorization header format"))
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid or expired token"))
		}

		revoked, err := IsTokenRevoked(c.UserContext(), rdb, claims.JTI)
		if err != nil {
			// Redis outages must not lock every user out.
			Logger.WarnContext(c.UserContext(), "token revocation check failed", slog.String("error", err.Error()))
		} else if revoked {
			return models.RespondWithError(c, models.NewUnauthenticatedError("Token has been revoked"))
		}

		c.Locals("userID", claims.UserID)
		c.Locals(claimsLocalKey, claims)
		ctx := context.WithValue(c.UserContext(), UserIDKey, claims.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// UserIDFromCtx returns the authenticated user id stored by AuthRequired.
func UserIDFromCtx(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// ClaimsFromCtx returns the parsed token claims stored by AuthRequired.
func ClaimsFromCtx(c *fiber.Ctx) (*TokenClaims, bool) {
	claims, ok := c.Locals(claimsLocalKey).(*TokenClaims)
	return claims, ok
}
