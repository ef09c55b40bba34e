package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Number lifecycle and billing constants
const (
	// DefaultCurrency is applied when a number carries no currency of its own
	DefaultCurrency = "EUR"

	// MaxBulkPurchaseSize caps one bulk purchase request
	MaxBulkPurchaseSize = 20

	// MaxBulkUnassignSize caps one bulk unassign request
	MaxBulkUnassignSize = 50

	// NotificationTimeout bounds a single outbound email dispatch
	NotificationTimeout = 10 * time.Second

	// RateCacheTTL bounds staleness of cached rate deck rows
	RateCacheTTL = 5 * time.Minute
)
