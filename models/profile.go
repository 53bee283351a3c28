package models

import "gorm.io/gorm"

type Profile struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex;not null"`
	FirstName string `gorm:"size:80"`
	LastName  string `gorm:"size:80"`
	AvatarURL string `gorm:"size:500"`
}
