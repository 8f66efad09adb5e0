package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	ChatID    int64  `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `gorm:"type:varchar(20);default:'employee'" json:"role"`
}

// BeforeCreate выдает идентификатор новой записи
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == string(RoleAdmin)
}

// SetRole устанавливает роль
func (u *User) SetRole(role Role) {
	u.Role = string(role)
}

// FullName - имя для отчетов, при пустом имени используется username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (User) TableName() string {
	return "users"
}
