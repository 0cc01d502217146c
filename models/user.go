package models

import "gorm.io/gorm"

// User is a back-office operator account.
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null" json:"username" binding:"required"`
	Password string `gorm:"not null" json:"password" binding:"required"`
}
