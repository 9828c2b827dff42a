package model

import "time"

// Request payloads accepted by the API layer. Validation tags drive the
// field-keyed 422 error maps.

// LoginPayload is the credentials body for /auth/login.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterPayload creates an organization together with its owner account.
type RegisterPayload struct {
	OrganizationName string `json:"organization_name" validate:"required"`
	Timezone         string `json:"timezone"`
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	Phone            string `json:"phone"`
}

// StagePayload creates or updates a pipeline stage.
type StagePayload struct {
	StageName  string `json:"stage_name" validate:"required"`
	StageOrder int    `json:"stage_order" validate:"omitempty,gte=1"`
}

// EmployeePayload creates or updates an employee account.
type EmployeePayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Phone    string `json:"phone"`
}

// LeadPayload creates or updates a lead. Status is only honored on create;
// stage transitions go through the dedicated change-stage operation so they
// always produce a distinct timeline entry.
type LeadPayload struct {
	LeadName          string   `json:"lead_name" validate:"required"`
	PhoneNumber       string   `json:"phone_number" validate:"required"`
	Email             string   `json:"email" validate:"omitempty,email"`
	CompanyName       string   `json:"company_name"`
	LeadSource        string   `json:"lead_source" validate:"omitempty,oneof=Referral Website Facebook Linkedin"`
	Status            string   `json:"status" validate:"required"`
	AssignedOwnerID   uint     `json:"assigned_owner_id" validate:"required"`
	ExpectedDealValue *float64 `json:"expected_deal_value"`
	Priority          *string  `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Note              string   `json:"note"`
	NextFollowUp      *time.Time `json:"next_follow_up"`
}

// ChangeStagePayload moves a lead to another pipeline stage.
type ChangeStagePayload struct {
	Status string `json:"status" validate:"required"`
}

// FollowUpPayload schedules a new follow-up for a lead.
type FollowUpPayload struct {
	LeadID     uint      `json:"lead_id" validate:"required"`
	FollowUpAt time.Time `json:"follow_up_at" validate:"required"`
	Note       string    `json:"note"`
}

// CompleteFollowUpPayload marks a follow-up as done. NextFollowUp, when
// set, chains a successor follow-up in the same transaction.
type CompleteFollowUpPayload struct {
	FollowUpID       uint       `json:"follow_up_id" validate:"required"`
	Outcome          string     `json:"outcome" validate:"required"`
	NextFollowUpNote string     `json:"next_follow_up_note"`
	NextFollowUp     *time.Time `json:"next_follow_up"`
}

// LoginResult is the /auth/login response body.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// OrganizationPayload updates the organization profile.
type OrganizationPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Timezone string `json:"timezone"`
}

// ProfilePayload updates the caller's own profile.
type ProfilePayload struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
}

// ImportRowError reports the validation failures of one rejected import
// row. Row numbers are 1-based over data rows, the header excluded.
type ImportRowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// ImportSummary is the result of a bulk lead import. Partial failure is a
// normal, successful outcome: failed rows are itemized, the rest are saved.
type ImportSummary struct {
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}

// LeadRef is the minimal lead shape used by the follow-up lead picker.
type LeadRef struct {
	ID       uint   `json:"id"`
	LeadName string `json:"lead_name"`
}

// StageLeadCount is one slice of the dashboard's by-stage breakdown.
type StageLeadCount struct {
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

// ClosedDeals aggregates won/lost leads for the dashboard.
type ClosedDeals struct {
	WonCount  int64   `json:"won_count"`
	LostCount int64   `json:"lost_count"`
	WonValue  float64 `json:"won_value"`
	LostValue float64 `json:"lost_value"`
}

// DashboardSummary is the payload behind the owner and employee dashboards.
// The employee variant is the same shape scoped to assigned leads.
type DashboardSummary struct {
	TotalLeads     int64            `json:"total_leads"`
	LeadsByStage   []StageLeadCount `json:"leads_by_stage"`
	Stages         []Stage          `json:"stages"`
	Closed         ClosedDeals      `json:"closed"`
	MonthlyRevenue float64          `json:"monthly_revenue"`
	FollowUps      FollowUpCounts   `json:"follow_ups"`
}
