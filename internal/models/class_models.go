package models

import "time"

// Class is a scheduled group class with an optional assigned coach.
type Class struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	CoachName *string   `json:"coach_name,omitempty" db:"coach_name"`
	Schedule  *string   `json:"schedule,omitempty" db:"schedule"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ClassAttendance is the roster snapshot for one class on one date.
// Re-marking the same (class, date) pair replaces the prior entry.
type ClassAttendance struct {
	ClassID          int64    `json:"class_id" db:"class_id"`
	Date             string   `json:"date" db:"date"` // YYYY-MM-DD
	PresentMemberIDs []string `json:"present_member_ids"`
}
