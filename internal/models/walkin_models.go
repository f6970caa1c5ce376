package models

import "time"

// WalkinClient is a non-member client tracked by name/contact. A walk-in may
// carry at most one session pack at a time.
type WalkinClient struct {
	ID            int64          `json:"id" db:"id"`
	Name          string         `json:"name" db:"name" binding:"required"`
	Phone         *string        `json:"phone,omitempty" db:"phone"`
	Email         *string        `json:"email,omitempty" db:"email"`
	LastVisitDate *string        `json:"last_visit_date,omitempty" db:"last_visit_date"`
	SessionPlan   *SessionPlan   `json:"session_plan,omitempty"`
	History       []HistoryEntry `json:"history,omitempty"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// SessionPlan is a walk-in client's prepaid session pack.
type SessionPlan struct {
	Name                string  `json:"name" db:"session_plan_name"`
	Total               int     `json:"total" db:"session_plan_total"`
	Used                int     `json:"used" db:"session_plan_used"`
	LastSessionUsedDate *string `json:"last_session_used_date,omitempty" db:"last_session_used_date"`
}
