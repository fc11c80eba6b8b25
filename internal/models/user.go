package models

import (
	"time"

	"citamed/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	FirstName    string         `gorm:"size:100;not null" json:"first_name"`
	LastName     string         `gorm:"size:100;not null" json:"last_name"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // patient | doctor
	Specialty    string         `gorm:"size:100" json:"specialty,omitempty"` // doctors only
	Active       bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsDoctor() bool  { return u.Role == domain.RoleDoctor }
func (u *User) IsPatient() bool { return u.Role == domain.RolePatient }

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
