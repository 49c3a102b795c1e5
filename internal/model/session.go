package model

import (
	"time"

	"dormdigest/internal/pkg"
)

// SessionID binds an opaque token to an email address. Token uniqueness is
// the issuer's job; the column carries only a lookup index.
type SessionID struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID string    `gorm:"column:session_id;size:32;not null;index"`
	EmailAddr string    `gorm:"size:64;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (SessionID) TableName() string { return "session_ids" }

func (s *SessionID) Validate() error {
	if s.SessionID == "" {
		return pkg.Validationf("session token required")
	}
	if err := maxChars("session token", s.SessionID, SessionIDLength); err != nil {
		return err
	}
	return validateEmail("session email", s.EmailAddr, true)
}
