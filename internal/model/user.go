package model

import (
	"time"
)

// User statuses. Disabled employees keep their rows (and their lead
// assignments) but cannot log in and are excluded from assignment pickers.
const (
	UserStatusEnable  = "enable"
	UserStatusDisable = "disable"
)

// User is an account that can sign in to the console: the organization owner
// or an employee. Role decides which route subtree the console mounts.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"type:text" validate:"required"`
	Email          string    `json:"email" gorm:"type:text;uniqueIndex" validate:"required,email"`
	PasswordHash   string    `json:"-" gorm:"column:password;type:text"`
	Role           string    `json:"role" gorm:"type:text" validate:"required,oneof=owner employee"`
	Phone          string    `json:"phone,omitempty" gorm:"type:text"`
	Status         string    `json:"status,omitempty" gorm:"type:text;default:enable"` // enable or disable
	ProfilePic     string    `json:"profile_pic,omitempty" gorm:"type:text"`
	OrganizationID uint      `json:"organization_id" gorm:"index" validate:"required"`
	CreatedAt      time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserUpdateColumns lists the columns a general employee edit may touch.
// Password and role changes go through dedicated paths.
func UserUpdateColumns() []string {
	return []string{
		"name",
		"email",
		"phone",
		"profile_pic",
	}
}
