package model

import (
	"time"
	"unicode/utf8"

	"dormdigest/internal/pkg"
)

// UserPrivilege is the site-level role of a user.
type UserPrivilege int

const (
	UserNormal UserPrivilege = 0
	UserAdmin  UserPrivilege = 1
)

func (p UserPrivilege) Valid() bool {
	switch p {
	case UserNormal, UserAdmin:
		return true
	}
	return false
}

func (p UserPrivilege) String() string {
	switch p {
	case UserNormal:
		return "normal"
	case UserAdmin:
		return "admin"
	}
	return "unknown"
}

type User struct {
	ID        uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string        `gorm:"uniqueIndex;size:64;not null" json:"email"`
	Privilege UserPrivilege `gorm:"column:user_privilege;not null;default:0" json:"user_privilege"`
	CreatedAt time.Time     `json:"-"`
	UpdatedAt time.Time     `json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Privilege == UserAdmin }

func (u *User) Validate() error {
	if err := validateEmail("email", u.Email, true); err != nil {
		return err
	}
	if !u.Privilege.Valid() {
		return pkg.Validationf("unknown user privilege %d", u.Privilege)
	}
	return nil
}

func validateEmail(field, email string, required bool) error {
	if required && email == "" {
		return pkg.Validationf("%s required", field)
	}
	return maxChars(field, email, EmailLength)
}

func maxChars(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return pkg.Validationf("%s is %d characters, limit %d", field, n, limit)
	}
	return nil
}
