package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known marketplace roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Email        string   `gorm:"uniqueIndex;size:120;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         Role     `gorm:"size:20;not null;default:OWNER"`
	Profile      *Profile `gorm:"constraint:OnDelete:CASCADE"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// DisplayName prefers the profile name and falls back to the email local part.
func (u *User) DisplayName() string {
	if u.Profile != nil {
		name := strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName)
		if name != "" {
			return name
		}
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}
