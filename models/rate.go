package models

import (
	"time"
)

// RateDeck is a named collection of country/type/prefix-keyed pricing rules.
// Reference data; read-only to the assignment engine.
// Table: rate_decks
type RateDeck struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null;uniqueIndex:uk_rate_decks_name" json:"name"`
	Currency string `gorm:"size:3;not null" json:"currency"`
	IsActive *bool  `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (RateDeck) TableName() string {
	return "rate_decks"
}

// Rate is one pricing rule inside a deck. Prefix is matched against the
// normalized number; the longest matching prefix wins.
// Table: rates
type Rate struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	RateDeckID uint `gorm:"not null;index:idx_rates_deck" json:"rate_deck_id"`

	Country string `gorm:"size:2;not null;index:idx_rates_country" json:"country"`
	Type    string `gorm:"size:20;not null" json:"type"`
	Prefix  string `gorm:"size:20;not null;index:idx_rates_prefix" json:"prefix"`

	Rate     float64 `gorm:"type:numeric(12,4);not null" json:"rate"`
	SetupFee float64 `gorm:"type:numeric(12,4);not null;default:0" json:"setup_fee"`

	EffectiveDate *time.Time `json:"effective_date,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Rate) TableName() string {
	return "rates"
}

// RateFilter represents filter criteria for rate queries
type RateFilter struct {
	ID         *uint
	RateDeckID *uint
	Country    *string
	Type       *string
	Prefix     *string
}

// RateDeckFilter represents filter criteria for rate deck queries
type RateDeckFilter struct {
	ID       *uint
	Name     *string
	IsActive *bool
}
