package model

import (
	"dormdigest/internal/pkg"
)

// MemberPrivilege is the role a user holds inside one club.
type MemberPrivilege int

const (
	MemberNormal  MemberPrivilege = 0
	MemberOfficer MemberPrivilege = 1
)

func (p MemberPrivilege) Valid() bool {
	switch p {
	case MemberNormal, MemberOfficer:
		return true
	}
	return false
}

func (p MemberPrivilege) String() string {
	switch p {
	case MemberNormal:
		return "normal"
	case MemberOfficer:
		return "officer"
	}
	return "unknown"
}

type Club struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Abbreviation string `gorm:"column:abbrev;size:32" json:"abbrev,omitempty"`
	ExecEmail    string `gorm:"size:64" json:"exec_email,omitempty"`
}

func (Club) TableName() string { return "clubs" }

func (c *Club) Validate() error {
	if c.Name == "" {
		return pkg.Validationf("club name required")
	}
	if err := maxChars("club name", c.Name, ClubNameLength); err != nil {
		return err
	}
	if err := maxChars("club abbreviation", c.Abbreviation, ClubAbbrevLength); err != nil {
		return err
	}
	return validateEmail("exec email", c.ExecEmail, false)
}

// ClubMembership maps a user to a club. The (user, club) pair is not unique.
type ClubMembership struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint64          `gorm:"not null;index" json:"user_id"`
	ClubID          uint64          `gorm:"not null;index" json:"club_id"`
	MemberPrivilege MemberPrivilege `gorm:"not null;default:0" json:"member_privilege"`
}

func (ClubMembership) TableName() string { return "club_memberships" }

func (m *ClubMembership) Validate() error {
	if !m.MemberPrivilege.Valid() {
		return pkg.Validationf("unknown member privilege %d", m.MemberPrivilege)
	}
	return nil
}
