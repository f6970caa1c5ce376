package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member statuses. Status is stored as entered by staff (manual overrides like
// Frozen/Inactive live here); the authoritative display status is derived by
// the member service from the stored facts.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusFrozen   = "Frozen"
	StatusDue      = "Due"
	StatusSessions = "Sessions" // coaching sessions finished
)

// Member represents an enrolled gym member. Calendar-date fields are stored
// in the canonical YYYY-MM-DD form.
type Member struct {
	ID                    int64          `json:"id" db:"id"`
	GymNumber             string         `json:"gym_number" db:"gym_number"`
	Name                  string         `json:"name" db:"name" binding:"required"`
	Phone                 *string        `json:"phone,omitempty" db:"phone"`
	Email                 *string        `json:"email,omitempty" db:"email"`
	MembershipType        string         `json:"membership_type" db:"membership_type"`
	Status                string         `json:"status" db:"status"`
	SubscriptionStartDate *string        `json:"subscription_start_date,omitempty" db:"subscription_start_date"`
	DueDate               *string        `json:"due_date,omitempty" db:"due_date"`
	HasCoach              bool           `json:"has_coach" db:"has_coach"`
	CoachName             *string        `json:"coach_name,omitempty" db:"coach_name"`
	TrainingType          *string        `json:"training_type,omitempty" db:"training_type"`
	TotalSessions         int            `json:"total_sessions" db:"total_sessions"`
	SessionsUsed          int            `json:"sessions_used" db:"sessions_used"`
	SessionExpiryDate     *string        `json:"session_expiry_date,omitempty" db:"session_expiry_date"`
	LockerStartDate       *string        `json:"locker_start_date,omitempty" db:"locker_start_date"`
	LockerDueDate         *string        `json:"locker_due_date,omitempty" db:"locker_due_date"`
	MembershipFeeLastPaid *string        `json:"membership_fee_last_paid,omitempty" db:"membership_fee_last_paid"`
	MembershipFeeDueDate  *string        `json:"membership_fee_due_date,omitempty" db:"membership_fee_due_date"`
	ClassID               *int64         `json:"class_id,omitempty" db:"class_id"`
	Details               *string        `json:"details,omitempty" db:"details"`
	History               []HistoryEntry `json:"history,omitempty"`
	CreatedAt             time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at" db:"updated_at"`
}

// HistoryEntry is one line of a member's or walk-in client's append-only
// activity log.
type HistoryEntry struct {
	ID            int64            `json:"id" db:"id"`
	Timestamp     time.Time        `json:"timestamp" db:"timestamp"`
	Type          string           `json:"type" db:"type"`
	Title         string           `json:"title" db:"title"`
	Details       *string          `json:"details,omitempty" db:"details"`
	PaymentAmount *decimal.Decimal `json:"payment_amount,omitempty" db:"payment_amount"`
}

// History entry types.
const (
	HistoryTypePayment    = "payment"
	HistoryTypeRenewal    = "renewal"
	HistoryTypeSession    = "session"
	HistoryTypeEnrollment = "enrollment"
	HistoryTypeNote       = "note"
)

// MemberFilters defines the available filters for querying members.
type MemberFilters struct {
	Status   *string `form:"status"`
	HasCoach *bool   `form:"has_coach"`
	ClassID  *int64  `form:"class_id"`
	Search   *string `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
