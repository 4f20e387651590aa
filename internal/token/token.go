// Package token issues and verifies the access and refresh JWTs. The two
// token kinds are signed with distinct secrets so that leaking one never
// compromises the other.
package token

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/errors"
)

// AccessClaims are carried by short-lived access tokens.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by long-lived refresh tokens. They identify
// the user only; everything else is re-fetched at refresh time.
type RefreshClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Codec signs and verifies both token kinds.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string

	// now is swappable in tests.
	now func() time.Time
}

// NewCodec constructs a codec with the given secrets and lifetimes.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        "stock-trade",
		now:           time.Now,
	}
}

// IssueAccessToken mints a signed access token for the user.
func (c *Codec) IssueAccessToken(userID, email string) (string, error) {
	now := c.now()
	claims := &AccessClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	if err != nil {
		return "", errors.Internal("failed to sign access token", err)
	}
	return signed, nil
}

// IssueRefreshToken mints a signed refresh token for the user.
func (c *Codec) IssueRefreshToken(userID string) (string, error) {
	now := c.now()
	claims := &RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	if err != nil {
		return "", errors.Internal("failed to sign refresh token", err)
	}
	return signed, nil
}

// VerifyAccess verifies a token against the access secret, distinguishing
// expiry from every other verification failure.
func (c *Codec) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(tokenString, claims, c.accessSecret, "token expired", "invalid token"); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh verifies a token against the refresh secret.
func (c *Codec) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(tokenString, claims, c.refreshSecret, "refresh token expired", "invalid refresh token"); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) verify(tokenString string, claims jwt.Claims, secret []byte, expiredMsg, invalidMsg string) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithTimeFunc(c.now))

	switch {
	case err == nil && parsed.Valid:
		return nil
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return errors.ExpiredToken(expiredMsg)
	case err != nil:
		return errors.InvalidToken(invalidMsg, err)
	default:
		return errors.InvalidToken(invalidMsg, nil)
	}
}
