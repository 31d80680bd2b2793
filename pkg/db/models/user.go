package models

import (
	"time"

	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a staff account allowed to operate the POS.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Email        string           `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name         string           `gorm:"column:name;not null"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Role         enums.MemberRole `gorm:"column:role;type:text;not null;default:'staff'"`
	IsActive     bool             `gorm:"column:is_active;not null"`
	LastLoginAt  *time.Time       `gorm:"column:last_login_at"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
