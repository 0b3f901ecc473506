package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID         string         `json:"id" gorm:"primaryKey;size:36"`
	Name       string         `json:"name" gorm:"not null"`
	Email      string         `json:"email" gorm:"uniqueIndex;not null"`
	Password   string         `json:"-" gorm:"not null"`
	Avatar     string         `json:"avatar"`
	IsEducator bool           `json:"is_educator" gorm:"not null;default:false"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
