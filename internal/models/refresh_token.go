package models

import (
	"time"
)

// RefreshToken represents one entry of the refresh token ledger. The token
// string is opaque and random, not a JWT. At most one non-revoked token may
// exist per user at any time; issuing a new one revokes the previous.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	Token     string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	// Define the relationship to User
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
