package tokens

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-pos-console/internal/config"
	"github.com/jrsteele09/go-pos-console/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const issuer = "pos-stub-backend"

var ErrInvalidAccessToken = errors.New("invalid access token")

// AccessClaims are the claims carried by a stub access token.
type AccessClaims struct {
	Roles   []string `json:"roles,omitempty"`
	IsAdmin bool     `json:"is_admin"`
	jwtlib.RegisteredClaims
}

// Issuer creates and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	expiry time.Duration
}

func NewIssuer(cfg config.StubConfig) *Issuer {
	return &Issuer{
		secret: []byte(cfg.GetSigningSecret()),
		expiry: cfg.GetAccessTokenExpiry(),
	}
}

// Create signs an access token for user and returns it with its expiry.
func (i *Issuer) Create(user *users.User) (string, time.Time, error) {
	now := NowTimeFunc()
	exp := now.Add(i.expiry)

	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, string(r))
	}

	claims := AccessClaims{
		Roles:   roles,
		IsAdmin: user.Admin(),
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID, // The user the token was issued to
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
			ID:        uuid.New().String(), // Unique token ID for revocation
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses rawToken and checks its signature, issuer and expiry.
func (i *Issuer) Verify(rawToken string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwtlib.ParseWithClaims(rawToken, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwtlib.WithIssuer(issuer),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccessToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}
