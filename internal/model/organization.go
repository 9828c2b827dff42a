package model

import (
	"time"

	"github.com/campuskul/crm-console-api/pkg/logger"
	"go.uber.org/zap"
)

// Organization is the tenant boundary. Every other entity carries its ID.
type Organization struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:text" validate:"required"`
	Email     string    `json:"email,omitempty" gorm:"type:text"`
	Phone     string    `json:"phone,omitempty" gorm:"type:text"`
	Address   string    `json:"address,omitempty" gorm:"type:text"`
	Logo      string    `json:"logo,omitempty" gorm:"type:text"` // Stored file path, served by the static route
	Timezone  string    `json:"timezone,omitempty" gorm:"type:text;default:UTC"`
	CreatedAt time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Organization model.
func (Organization) TableName() string {
	return "organizations"
}

// Location resolves the organization's IANA timezone, falling back to UTC.
// Follow-up day boundaries are computed in this location.
func (o *Organization) Location() *time.Location {
	if o == nil || o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		logger.Log.Warn("Unknown organization timezone, falling back to UTC",
			zap.String("timezone", o.Timezone), zap.Uint("organization_id", o.ID))
		return time.UTC
	}
	return loc
}
