package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	Username          string         `json:"username" gorm:"not null;uniqueIndex"`
	PasswordHash      string         `json:"-" gorm:"not null"`
	Name              string         `json:"name" gorm:"not null"`
	Grade             string         `json:"grade" gorm:"not null"`
	Age               *int           `json:"age,omitempty"`
	Email             string         `json:"email,omitempty" gorm:"index"`
	Phone             *string        `json:"phone,omitempty"`
	PreferredLanguage string         `json:"preferred_language" gorm:"default:'en'"`
	IsSetupComplete   bool           `json:"is_setup_complete" gorm:"default:false"`
	Assessments       []Assessment   `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
