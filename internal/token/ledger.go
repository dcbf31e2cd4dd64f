package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"gorm.io/gorm"

	"course-management-server/internal/models"
)

var (
	// ErrTokenNotFound is returned when no ledger entry matches the token
	// string.
	ErrTokenNotFound = errors.New("refresh token not found")
	// ErrTokenRevoked is returned on refresh attempts with a revoked token.
	ErrTokenRevoked = errors.New("refresh token has been revoked")
	// ErrTokenExpired is returned on refresh attempts past the token's
	// expiry. The ledger entry is deleted at that point.
	ErrTokenExpired = errors.New("refresh token has expired, please login again")
)

// Ledger persists opaque refresh tokens and enforces the single active token
// per user policy: issuing a token for a user revokes any previous non-revoked
// one in the same transaction.
type Ledger struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewLedger creates a Ledger over db with the given refresh token lifetime.
func NewLedger(db *gorm.DB, ttl time.Duration) *Ledger {
	return &Ledger{DB: db, TTL: ttl}
}

// newTokenString returns a 256-bit random opaque token string.
func newTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issue revokes the user's currently active refresh token, if any, and
// creates a fresh one. Both steps run in one transaction: the revocation is
// never committed without the new token. The revoking UPDATE takes row locks,
// so concurrent logins by the same user serialize and the last committed
// login ends up holding the only active token.
func (l *Ledger) Issue(user *models.User) (*models.RefreshToken, error) {
	tokenString, err := newTokenString()
	if err != nil {
		return nil, err
	}

	refreshToken := &models.RefreshToken{
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(l.TTL),
		IsRevoked: false,
	}

	err = l.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND is_revoked = ?", user.ID, false).
			Update("is_revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(refreshToken).Error
	})
	if err != nil {
		return nil, err
	}

	return refreshToken, nil
}

// FindByToken looks up a ledger entry by its opaque token string.
func (l *Ledger) FindByToken(tokenString string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := l.DB.Where("token = ?", tokenString).First(&refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &refreshToken, nil
}

// VerifyNotExpired checks the token against the clock. Expired tokens are
// deleted from the ledger and ErrTokenExpired is returned; there is no
// background sweeper, cleanup happens only here.
func (l *Ledger) VerifyNotExpired(refreshToken *models.RefreshToken) error {
	if !refreshToken.Expired(time.Now()) {
		return nil
	}
	if err := l.DB.Delete(refreshToken).Error; err != nil {
		return err
	}
	return ErrTokenExpired
}

// Revoke marks the token with the given string as revoked. Revoking an
// already-revoked token repeats the same mutation; unknown tokens are an
// error.
func (l *Ledger) Revoke(tokenString string) error {
	refreshToken, err := l.FindByToken(tokenString)
	if err != nil {
		return err
	}
	refreshToken.IsRevoked = true
	return l.DB.Save(refreshToken).Error
}

// RevokeAll revokes every active refresh token of a user. Used on
// administrative account actions such as user deletion.
func (l *Ledger) RevokeAll(userID string) error {
	return l.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error
}
