package model

import (
	"time"

	"github.com/campuskul/crm-console-api/pkg/utils"
)

// Follow-up status buckets. Done is terminal; the other three are a function
// of follow_up_at and the organization-local clock, never stored.
const (
	FollowUpStatusUpcoming = "Upcoming"
	FollowUpStatusToday    = "Today"
	FollowUpStatusOverdue  = "Overdue"
	FollowUpStatusDone     = "Done"
)

// FollowUpOutcomes is the fixed enumeration recorded when a follow-up is
// completed.
var FollowUpOutcomes = []string{
	"Connected",
	"Not reachable",
	"Meeting scheduled",
	"Closed won",
	"Closed lost",
	"Other",
}

// IsValidOutcome reports whether the value is one of FollowUpOutcomes.
func IsValidOutcome(outcome string) bool {
	for _, o := range FollowUpOutcomes {
		if o == outcome {
			return true
		}
	}
	return false
}

// FollowUp is a scheduled or completed contact action tied to exactly one
// lead. Status is derived, not a column: see DeriveFollowUpStatus.
type FollowUp struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	LeadID           uint       `json:"lead_id" gorm:"index" validate:"required"`
	FollowUpAt       time.Time  `json:"follow_up_at" validate:"required"`
	Note             string     `json:"note,omitempty" gorm:"type:text"`
	IsCompleted      bool       `json:"is_completed" gorm:"default:false;index"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Outcome          string     `json:"outcome,omitempty" gorm:"type:text"`
	NextFollowUpNote string     `json:"next_follow_up_note,omitempty" gorm:"type:text"`
	NextFollowUp     *time.Time `json:"next_follow_up,omitempty"`
	OrganizationID   uint       `json:"organization_id" gorm:"index"`
	CreatedAt        time.Time  `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at,omitempty" gorm:"autoUpdateTime"`

	// Populated in API responses; the sql column does not exist.
	Status string `json:"status" gorm:"-"`

	Lead *Lead `json:"lead,omitempty" gorm:"foreignKey:LeadID"`
}

// TableName specifies the table name for the FollowUp model.
func (FollowUp) TableName() string {
	return "follow_ups"
}

// DeriveFollowUpStatus is the single source of truth for the status bucket.
// Boundaries are inclusive at the start of the local day: a follow-up at
// exactly midnight today is Today, one instant before is Overdue, and
// anything from tomorrow midnight onward is Upcoming.
func DeriveFollowUpStatus(followUpAt, now time.Time, completed bool, loc *time.Location) string {
	if completed {
		return FollowUpStatusDone
	}
	startOfDay := utils.StartOfDay(now, loc)
	endOfDay := utils.EndOfDay(now, loc)
	switch {
	case followUpAt.Before(startOfDay):
		return FollowUpStatusOverdue
	case followUpAt.Before(endOfDay):
		return FollowUpStatusToday
	default:
		return FollowUpStatusUpcoming
	}
}

// ApplyStatus stamps the derived status onto the record for serialization.
func (f *FollowUp) ApplyStatus(now time.Time, loc *time.Location) {
	f.Status = DeriveFollowUpStatus(f.FollowUpAt, now, f.IsCompleted, loc)
}

// FollowUpCounts is the aggregate read behind the header badge.
type FollowUpCounts struct {
	Overdue  int64 `json:"overdue"`
	Today    int64 `json:"today"`
	Upcoming int64 `json:"upcoming"`
}

// FollowUpListFilter filters the follow-up list endpoint.
type FollowUpListFilter struct {
	Search         string // Matches lead name/phone of the parent lead
	FollowUpStatus string // Upcoming, Today, Overdue or Done
	Page           int
	PerPage        int
}

// Normalize clamps paging values to sane defaults.
func (f *FollowUpListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
}

// Offset returns the row offset for the current page.
func (f *FollowUpListFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

// PagedFollowUps is one page of follow-ups plus the total row count.
type PagedFollowUps struct {
	FollowUps []FollowUp `json:"follow_ups"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	PerPage   int        `json:"per_page"`
}
