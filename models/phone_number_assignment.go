package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment statuses
const (
	AssignmentStatusActive = "active"
	AssignmentStatusEnded  = "ended"
)

// PhoneNumberAssignment records one assignment episode of a number to a user.
// At most one active row may exist per phone_number_id; rows are ended, never
// deleted, and anchor billing entries through AssignmentID.
// Table: phone_number_assignments
type PhoneNumberAssignment struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_pn_assignments_uuid" json:"uuid"`

	PhoneNumberID uint `gorm:"not null;index:idx_pn_assignments_number" json:"phone_number_id"`
	UserID        uint `gorm:"not null;index:idx_pn_assignments_user" json:"user_id"`
	AssignedBy    uint `gorm:"not null" json:"assigned_by"`

	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`
	Status     string    `gorm:"size:10;not null;default:'active';index:idx_pn_assignments_status" json:"status"`

	BillingStartDate time.Time  `gorm:"not null" json:"billing_start_date"`
	BillingEndDate   *time.Time `json:"billing_end_date,omitempty"`

	MonthlyRate  float64 `gorm:"type:numeric(12,4);not null" json:"monthly_rate"`
	SetupFee     float64 `gorm:"type:numeric(12,4);not null" json:"setup_fee"`
	Currency     string  `gorm:"size:3;not null" json:"currency"`
	BillingCycle string  `gorm:"size:10;not null;default:'monthly'" json:"billing_cycle"`

	UnassignedAt     *time.Time `json:"unassigned_at,omitempty"`
	UnassignedBy     *uint      `json:"unassigned_by,omitempty"`
	UnassignedReason *string    `gorm:"size:255" json:"unassigned_reason,omitempty"`

	Notes *string `gorm:"size:500" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	PhoneNumber *PhoneNumber `gorm:"foreignKey:PhoneNumberID" json:"phone_number,omitempty"`
	User        *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PhoneNumberAssignment) TableName() string {
	return "phone_number_assignments"
}

// IsActive reports whether this episode is still open
func (a *PhoneNumberAssignment) IsActive() bool {
	return a.Status == AssignmentStatusActive
}

// PhoneNumberAssignmentFilter represents filter criteria for assignment queries
type PhoneNumberAssignmentFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	PhoneNumberID *uint
	UserID        *uint
	Status        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
