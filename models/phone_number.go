// Package models contains domain entities and business models for the number inventory system
package models

import (
	"time"

	"github.com/google/uuid"
)

// Phone number lifecycle statuses
const (
	PhoneNumberStatusAvailable = "available"
	PhoneNumberStatusAssigned  = "assigned"
	PhoneNumberStatusReserved  = "reserved"
	PhoneNumberStatusSuspended = "suspended"
	PhoneNumberStatusCancelled = "cancelled"
)

// Phone number types
const (
	NumberTypeGeographic = "geographic"
	NumberTypeMobile     = "mobile"
	NumberTypeNational   = "national"
	NumberTypeTollFree   = "toll_free"
	NumberTypeSharedCost = "shared_cost"
	NumberTypeNPV        = "npv"
	NumberTypePremium    = "premium"
)

// Billing cycles
const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// ValidNumberTypes lists every accepted number type
var ValidNumberTypes = []string{
	NumberTypeGeographic,
	NumberTypeMobile,
	NumberTypeNational,
	NumberTypeTollFree,
	NumberTypeSharedCost,
	NumberTypeNPV,
	NumberTypePremium,
}

// IsValidNumberType reports whether t is an accepted number type
func IsValidNumberType(t string) bool {
	for _, v := range ValidNumberTypes {
		if v == t {
			return true
		}
	}
	return false
}

// PhoneNumber represents a provider-owned directory number.
// Status is exactly one of the PhoneNumberStatus* constants at any time.
// status = assigned implies AssignedTo is non-nil; status = available implies
// AssignedTo is nil. The pricing fields are a snapshot of the last resolved
// rate, refreshed at assignment time; the rate deck remains authoritative.
// Table: phone_numbers
type PhoneNumber struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_phone_numbers_uuid" json:"uuid"`

	Number     string `gorm:"size:20;not null;uniqueIndex:uk_phone_numbers_number" json:"number"`
	Country    string `gorm:"size:2;not null;index:idx_phone_numbers_country" json:"country"`
	NumberType string `gorm:"size:20;not null;index:idx_phone_numbers_type" json:"number_type"`

	Status string `gorm:"size:20;not null;default:'available';index:idx_phone_numbers_status" json:"status"`

	AssignedTo *uint      `gorm:"index:idx_phone_numbers_assigned_to" json:"assigned_to,omitempty"`
	AssignedBy *uint      `json:"assigned_by,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`

	UnassignedAt     *time.Time `json:"unassigned_at,omitempty"`
	UnassignedBy     *uint      `json:"unassigned_by,omitempty"`
	UnassignedReason *string    `gorm:"size:255" json:"unassigned_reason,omitempty"`

	MonthlyRate     float64    `gorm:"type:numeric(12,4);not null;default:0" json:"monthly_rate"`
	SetupFee        float64    `gorm:"type:numeric(12,4);not null;default:0" json:"setup_fee"`
	Currency        string     `gorm:"size:3;not null" json:"currency"`
	BillingCycle    string     `gorm:"size:10;not null;default:'monthly'" json:"billing_cycle"`
	NextBillingDate *time.Time `json:"next_billing_date,omitempty"`
	LastBilledDate  *time.Time `json:"last_billed_date,omitempty"`

	RateDeckID    *uint `gorm:"index:idx_phone_numbers_rate_deck" json:"rate_deck_id,omitempty"`
	BackorderOnly *bool `gorm:"default:false;index:idx_phone_numbers_backorder" json:"backorder_only"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	RateDeck *RateDeck `gorm:"foreignKey:RateDeckID" json:"rate_deck,omitempty"`
}

func (PhoneNumber) TableName() string {
	return "phone_numbers"
}

// IsAvailable reports whether the number can enter a new assignment episode
func (p *PhoneNumber) IsAvailable() bool {
	return p.Status == PhoneNumberStatusAvailable
}

// IsAssigned reports whether the number currently belongs to a customer
func (p *PhoneNumber) IsAssigned() bool {
	return p.Status == PhoneNumberStatusAssigned
}

// PhoneNumberFilter represents filter criteria for phone number queries
type PhoneNumberFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Number        *string
	Country       *string
	NumberType    *string
	Status        *string
	AssignedTo    *uint
	RateDeckID    *uint
	BackorderOnly *bool
	Search        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
