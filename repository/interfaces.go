// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// PhoneNumberClaim carries the fields written when a number is atomically
// moved from available to assigned. The pricing snapshot is refreshed from
// the rate deck at claim time.
type PhoneNumberClaim struct {
	AssignedTo      uint
	AssignedBy      uint
	AssignedAt      time.Time
	MonthlyRate     float64
	SetupFee        float64
	Currency        string
	BillingCycle    string
	NextBillingDate time.Time
}

// PhoneNumberRelease carries the fields written when a number returns to
// available. The Unassigned* fields are nil for a compensating rollback and
// set for a regular unassignment.
type PhoneNumberRelease struct {
	UnassignedAt     *time.Time
	UnassignedBy     *uint
	UnassignedReason *string
}

// AssignmentEnd carries the fields written when an assignment episode closes
type AssignmentEnd struct {
	BillingEndDate   time.Time
	UnassignedAt     time.Time
	UnassignedBy     uint
	UnassignedReason *string
}

// PhoneNumberRepository defines operations for phone numbers
type PhoneNumberRepository interface {
	Repository[models.PhoneNumber, models.PhoneNumberFilter]
	ByUUID(ctx context.Context, uuid string) (*models.PhoneNumber, error)
	ByNumber(ctx context.Context, number string) (*models.PhoneNumber, error)
	// ClaimForAssignment performs the conditional status transition
	// available -> assigned in a single statement. It returns false when the
	// number was not available anymore (lost race or wrong state).
	ClaimForAssignment(ctx context.Context, id uint, claim PhoneNumberClaim) (bool, error)
	// ReleaseAssignment performs the conditional transition assigned ->
	// available. It returns false when the number was not assigned.
	ReleaseAssignment(ctx context.Context, id uint, release PhoneNumberRelease) (bool, error)
}

// PhoneNumberAssignmentRepository defines operations for assignment episodes
type PhoneNumberAssignmentRepository interface {
	Repository[models.PhoneNumberAssignment, models.PhoneNumberAssignmentFilter]
	ByUUID(ctx context.Context, uuid string) (*models.PhoneNumberAssignment, error)
	ActiveByPhoneNumber(ctx context.Context, phoneNumberID uint) (*models.PhoneNumberAssignment, error)
	ActiveByPhoneNumberAndUser(ctx context.Context, phoneNumberID, userID uint) (*models.PhoneNumberAssignment, error)
	CountActiveByPhoneNumber(ctx context.Context, phoneNumberID uint) (int64, error)
	// End closes an active episode; the row is kept forever as audit history.
	End(ctx context.Context, id uint, end AssignmentEnd) error
}

// PhoneNumberBillingRepository defines operations for billing ledger entries
type PhoneNumberBillingRepository interface {
	Repository[models.PhoneNumberBilling, models.PhoneNumberBillingFilter]
	PendingByAssignment(ctx context.Context, assignmentID uint) ([]*models.PhoneNumberBilling, error)
	PendingByNumberAndUser(ctx context.Context, phoneNumberID, userID uint) ([]*models.PhoneNumberBilling, error)
	// CancelPending flips the given entries to cancelled with a failure
	// reason in one statement; already-processed entries are left untouched.
	CancelPending(ctx context.Context, ids []uint, reason string) (int64, error)
}

// RateRepository defines operations for rate deck rows
type RateRepository interface {
	Repository[models.Rate, models.RateFilter]
	ByDeck(ctx context.Context, rateDeckID uint) ([]*models.Rate, error)
}

// RateDeckRepository defines operations for rate decks
type RateDeckRepository interface {
	Repository[models.RateDeck, models.RateDeckFilter]
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

// NotificationLogRepository defines operations for notification logs
type NotificationLogRepository interface {
	Repository[models.NotificationLog, models.NotificationLogFilter]
}
