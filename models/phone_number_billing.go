package models

import (
	"time"

	"github.com/google/uuid"
)

// Billing entry statuses
const (
	BillingStatusPending   = "pending"
	BillingStatusProcessed = "processed"
	BillingStatusCancelled = "cancelled"
	BillingStatusFailed    = "failed"
)

// Billing transaction types
const (
	TransactionTypeSetupFee   = "setup_fee"
	TransactionTypeMonthlyFee = "monthly_fee"
	TransactionTypeRefund     = "refund"
)

// PhoneNumberBilling is a ledger entry charged later by the external billing
// processor. Amount is signed: refunds carry a negative amount. Cancelled
// entries always carry a FailureReason. Entries are never mutated once
// processed; that transition belongs to the external system.
// Table: phone_number_billings
type PhoneNumberBilling struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_pn_billings_uuid" json:"uuid"`

	PhoneNumberID uint  `gorm:"not null;index:idx_pn_billings_number" json:"phone_number_id"`
	UserID        uint  `gorm:"not null;index:idx_pn_billings_user" json:"user_id"`
	AssignmentID  *uint `gorm:"index:idx_pn_billings_assignment" json:"assignment_id,omitempty"`

	BillingPeriodStart time.Time  `gorm:"not null" json:"billing_period_start"`
	BillingPeriodEnd   *time.Time `json:"billing_period_end,omitempty"`

	Amount   float64 `gorm:"type:numeric(12,4);not null" json:"amount"`
	Currency string  `gorm:"size:3;not null" json:"currency"`

	Status          string    `gorm:"size:20;not null;default:'pending';index:idx_pn_billings_status" json:"status"`
	BillingDate     time.Time `gorm:"not null" json:"billing_date"`
	TransactionType string    `gorm:"size:20;not null;index:idx_pn_billings_tx_type" json:"transaction_type"`

	Notes         *string `gorm:"size:500" json:"notes,omitempty"`
	FailureReason *string `gorm:"size:500" json:"failure_reason,omitempty"`
	ProcessedBy   *string `gorm:"size:100" json:"processed_by,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (PhoneNumberBilling) TableName() string {
	return "phone_number_billings"
}

// IsPending reports whether the entry is still waiting for the billing processor
func (b *PhoneNumberBilling) IsPending() bool {
	return b.Status == BillingStatusPending
}

// PhoneNumberBillingFilter represents filter criteria for billing queries
type PhoneNumberBillingFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	PhoneNumberID   *uint
	UserID          *uint
	AssignmentID    *uint
	Status          *string
	TransactionType *string
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}
