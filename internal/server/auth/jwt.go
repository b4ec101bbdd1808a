package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager issues and verifies HS256 access tokens. Tokens are
// stateless; nothing is stored server-side.
type TokenManager struct {
	secret   []byte
	issuer   string
	validity time.Duration
	now      func() time.Time
}

func NewTokenManager(secret []byte, issuer string, validity time.Duration) *TokenManager {
	return &TokenManager{secret: secret, issuer: issuer, validity: validity, now: time.Now}
}

// Issue signs a token for p with iat = now and exp = now + validity.
func (m *TokenManager) Issue(p models.Principal) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   p.Subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.validity)),
		ID:        uuid.NewString(),
	})
	return token.SignedString(m.secret)
}

// Verify checks the signature, issuer and expiry of tokenString and returns
// the principal it names. A token is expired once now reaches exp.
func (m *TokenManager) Verify(tokenString string) (models.Principal, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Principal{}, common.ErrTokenExpired
		}
		return models.Principal{}, common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return models.Principal{}, common.ErrInvalidToken
	}
	return models.Principal{Subject: claims.Subject}, nil
}
