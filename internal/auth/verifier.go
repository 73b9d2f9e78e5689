// Package auth issues and verifies access tokens and decides resource ownership.
package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"devconnector/internal/config"
	"devconnector/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the verified claim carried by an access token.
type Identity struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

// Claims is the JWT payload of an access token.
type Claims struct {
	jwt.RegisteredClaims
}

// Verifier issues and validates HS256 access tokens.
type Verifier struct {
	secret      []byte
	issuer      string
	audience    string
	ttl         time.Duration
	revocations RevocationStore
	now         func() time.Time
}

// NewVerifier builds a Verifier from cfg. revocations may be nil.
func NewVerifier(cfg *config.Config, revocations RevocationStore) *Verifier {
	return &Verifier{
		secret:      []byte(cfg.JWTSecret),
		issuer:      cfg.JWTIssuer,
		audience:    cfg.JWTAudience,
		ttl:         cfg.TokenTTL(),
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue signs a token for userID.
func (v *Verifier) Issue(userID uint) (string, Identity, error) {
	now := v.now()
	id := Identity{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(v.ttl),
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    v.issuer,
			Audience:  jwt.ClaimStrings{v.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
			ID:        id.TokenID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", Identity{}, models.NewInternalError(err)
	}
	return signed, id, nil
}

// Verify validates tokenString and returns the identity it carries.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, models.NewNoTokenError()
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Identity{}, models.NewInvalidTokenError(err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil || userID == 0 {
		return Identity{}, models.NewInvalidTokenError(errors.New("invalid subject claim"))
	}

	id := Identity{UserID: uint(userID), TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}

	if v.revocations != nil && id.TokenID != "" {
		revoked, err := v.revocations.IsRevoked(ctx, id.TokenID)
		if err != nil {
			// Revocation lookups fail open.
			return id, nil
		}
		if revoked {
			return Identity{}, models.NewInvalidTokenError(errors.New("token revoked"))
		}
	}

	return id, nil
}

// Revoke blacklists the token behind id until it would have expired anyway.
func (v *Verifier) Revoke(ctx context.Context, id Identity) error {
	if v.revocations == nil || id.TokenID == "" {
		return nil
	}
	ttl := id.ExpiresAt.Sub(v.now())
	if ttl <= 0 {
		return nil
	}
	return v.revocations.Revoke(ctx, id.TokenID, ttl)
}
