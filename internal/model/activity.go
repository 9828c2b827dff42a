package model

import (
	"time"

	"gorm.io/datatypes"
)

// Activity types appended to a lead's timeline. The log is written
// server-side only; clients are pure consumers.
const (
	ActivityLeadCreated       = "lead_created"
	ActivityLeadUpdated       = "lead_updated"
	ActivityStageChanged      = "stage_changed"
	ActivityFollowUpAdded     = "follow_up_added"
	ActivityFollowUpCompleted = "follow_up_completed"
)

// Activity is one immutable timeline entry for a lead.
type Activity struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	LeadID          uint           `json:"lead_id" gorm:"index"`
	ActivityType    string         `json:"activity_type" gorm:"type:text"`
	TimelineDetails datatypes.JSON `json:"timeline_details" gorm:"type:jsonb"`
	OrganizationID  uint           `json:"organization_id" gorm:"index"`
	CreatedAt       time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Activity model.
func (Activity) TableName() string {
	return "activities"
}

// ActorRef identifies the user behind a timeline entry.
type ActorRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TimelineDetails is the discriminated payload stored in the jsonb column.
// Exactly one of CreatedBy/UpdatedBy/ChangedBy is set depending on the
// activity type; Meta carries either a field diff map (lead_updated), an
// old/new status pair (stage_changed) or a follow-up shaped object.
type TimelineDetails struct {
	Action    string                 `json:"action"`
	CreatedBy *ActorRef              `json:"created_by,omitempty"`
	UpdatedBy *ActorRef              `json:"updated_by,omitempty"`
	ChangedBy *ActorRef              `json:"changed_by,omitempty"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}
