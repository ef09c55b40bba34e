package models

import (
	"time"
)

// Notification log statuses
const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// Notification categories
const (
	NotificationTypeNumberAssigned   = "number_assigned"
	NotificationTypeNumberUnassigned = "number_unassigned"
	NotificationTypeBulkPurchase     = "bulk_purchase_summary"
)

// NotificationLog records the outcome of one outbound email dispatch.
// Dispatch failures are logged here and never propagated to the caller.
// Table: notification_logs
type NotificationLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Recipient string `gorm:"size:255;not null;index:idx_notification_logs_recipient" json:"recipient"`
	Subject   string `gorm:"size:255;not null" json:"subject"`
	Type      string `gorm:"size:30;not null;index:idx_notification_logs_type" json:"type"`
	Status    string `gorm:"size:10;not null" json:"status"`

	PhoneNumberID *uint   `gorm:"index:idx_notification_logs_number" json:"phone_number_id,omitempty"`
	Error         *string `gorm:"size:500" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

// NotificationLogFilter represents filter criteria for notification log queries
type NotificationLogFilter struct {
	ID            *uint
	Recipient     *string
	Type          *string
	Status        *string
	PhoneNumberID *uint
}
