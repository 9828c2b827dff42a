package model

import (
	"time"
)

// Stage statuses. Disabled stages are excluded from new-lead pickers and
// pipeline columns but may still be referenced by existing leads.
const (
	StageStatusEnable  = "enable"
	StageStatusDisable = "disable"
)

// DefaultStageNames is the pipeline seeded for a freshly registered
// organization, in order.
var DefaultStageNames = []string{"New", "Contacted", "Qualified", "Won", "Lost"}

// Stage is an organization-defined step in the sales pipeline. Leads
// reference a stage by its NAME, not its ID: renaming a stage leaves
// historical leads pointing at the old name, which falls back to neutral
// rendering in the console. That is the inherited contract, kept on purpose.
type Stage struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	StageName      string    `json:"stage_name" gorm:"type:text;index:idx_stages_org_name,unique,composite:org_name" validate:"required"`
	StageOrder     int       `json:"stage_order" gorm:"index"`
	StageStatus    string    `json:"stage_status" gorm:"type:text;default:enable"` // enable or disable
	OrganizationID uint      `json:"organization_id" gorm:"index:idx_stages_org_name,unique,composite:org_name"`
	CreatedAt      time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Stage model.
func (Stage) TableName() string {
	return "stages"
}

// StageOrderUpdate is one element of an atomic reorder batch.
type StageOrderUpdate struct {
	ID    uint `json:"id" validate:"required"`
	Order int  `json:"order" validate:"required,gte=1"`
}
