package model

import (
	"time"
)

// Lead sources offered by the console forms.
var LeadSources = []string{"Referral", "Website", "Facebook", "Linkedin"}

// Lead priorities. Optional on a lead.
var LeadPriorities = []string{"Low", "Medium", "High"}

// Lead is the primary business entity: a prospective customer tracked
// through the organization's pipeline. Status holds the literal stage name
// (see Stage). No transition graph is enforced: any stage can move to any
// other, matching the console which offers every stage in every dropdown.
type Lead struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	LeadName          string     `json:"lead_name" gorm:"type:text" validate:"required"`
	PhoneNumber       string     `json:"phone_number" gorm:"type:text" validate:"required"`
	Email             string     `json:"email,omitempty" gorm:"type:text" validate:"omitempty,email"`
	CompanyName       string     `json:"company_name,omitempty" gorm:"type:text"`
	LeadSource        string     `json:"lead_source,omitempty" gorm:"type:text" validate:"omitempty,oneof=Referral Website Facebook Linkedin"`
	Status            string     `json:"status" gorm:"type:text;index" validate:"required"`
	AssignedOwnerID   uint       `json:"assigned_owner_id" gorm:"index" validate:"required"`
	ExpectedDealValue *float64   `json:"expected_deal_value,omitempty"`
	Priority          *string    `json:"priority,omitempty" gorm:"type:text" validate:"omitempty,oneof=Low Medium High"`
	Note              string     `json:"note,omitempty" gorm:"type:text"`
	NextFollowUp      *time.Time `json:"next_follow_up,omitempty" gorm:"index"`
	OrganizationID    uint       `json:"organization_id" gorm:"index"`
	CreatedAt         time.Time  `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at,omitempty" gorm:"autoUpdateTime"`

	AssignedOwner *User `json:"assigned_owner,omitempty" gorm:"foreignKey:AssignedOwnerID"`
}

// TableName specifies the table name for the Lead model.
func (Lead) TableName() string {
	return "leads"
}

// FieldDiff is one entry of a lead_updated activity meta map.
type FieldDiff struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// LeadListFilter is the conjunction of filters accepted by the lead list
// endpoints. Zero values mean "not filtered". FromDate/ToDate apply to the
// lead's creation date.
type LeadListFilter struct {
	Search          string
	Status          string
	AssignedOwnerID uint
	LeadSource      string
	Priority        string
	FollowUpStatus  string // Overdue, Today or Upcoming, computed over next_follow_up
	// DayStart/DayEnd bound "today" in the organization's timezone. Set by the
	// caller whenever FollowUpStatus is present.
	DayStart time.Time
	DayEnd   time.Time
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PerPage  int
}

// DefaultPerPage is the fixed page size used when a list request does not
// specify one.
const DefaultPerPage = 10

// Normalize clamps paging values to sane defaults.
func (f *LeadListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
}

// Offset returns the row offset for the current page.
func (f *LeadListFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

// PagedLeads is one page of a lead list plus the total row count for the
// console's pager.
type PagedLeads struct {
	Leads   []Lead `json:"leads"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}
