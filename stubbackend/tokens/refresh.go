package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-pos-console/internal/config"
)

const refreshTokenLength = 32

var (
	ErrRefreshNotFound = errors.New("refresh token not found")
	ErrRefreshExpired  = errors.New("refresh token expired")
)

// StoredRefreshToken is the server-side record behind an opaque refresh cookie.
type StoredRefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// RefreshManager creates, rotates and revokes refresh tokens. One live token per user.
type RefreshManager struct {
	expiry time.Duration

	lock    sync.Mutex
	tokens  map[string]*StoredRefreshToken
	userIDs map[string]string // user ID to token
}

func NewRefreshManager(cfg config.StubConfig) *RefreshManager {
	return &RefreshManager{
		expiry:  cfg.GetRefreshTokenExpiry(),
		tokens:  make(map[string]*StoredRefreshToken),
		userIDs: make(map[string]string),
	}
}

// Create issues a new refresh token for userID, revoking any previous one.
func (m *RefreshManager) Create(userID string) (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	tokenStr := hex.EncodeToString(tokenBytes)

	m.lock.Lock()
	defer m.lock.Unlock()
	if existing, ok := m.userIDs[userID]; ok {
		delete(m.tokens, existing)
	}
	m.tokens[tokenStr] = &StoredRefreshToken{Token: tokenStr, UserID: userID, Iat: NowTimeFunc()}
	m.userIDs[userID] = tokenStr
	return tokenStr, nil
}

// Rotate validates token and replaces it with a new one for the same user.
func (m *RefreshManager) Rotate(token string) (userID, next string, err error) {
	rt, err := m.get(token)
	if err != nil {
		return "", "", err
	}
	next, err = m.Create(rt.UserID)
	if err != nil {
		return "", "", err
	}
	return rt.UserID, next, nil
}

// Revoke deletes token. Unknown tokens are ignored.
func (m *RefreshManager) Revoke(token string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if rt, ok := m.tokens[token]; ok {
		delete(m.userIDs, rt.UserID)
		delete(m.tokens, token)
	}
}

// RevokeUser deletes whatever refresh token userID holds.
func (m *RefreshManager) RevokeUser(userID string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if token, ok := m.userIDs[userID]; ok {
		delete(m.tokens, token)
		delete(m.userIDs, userID)
	}
}

// Expiry is how long a refresh token stays valid.
func (m *RefreshManager) Expiry() time.Duration {
	return m.expiry
}

func (m *RefreshManager) get(token string) (*StoredRefreshToken, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	rt, ok := m.tokens[token]
	if !ok {
		return nil, ErrRefreshNotFound
	}
	if NowTimeFunc().Sub(rt.Iat) > m.expiry {
		delete(m.userIDs, rt.UserID)
		delete(m.tokens, token)
		return nil, ErrRefreshExpired
	}
	return rt, nil
}
