// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"log"
	"time"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/app/dto"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// NotificationDispatcher sends best-effort emails after state transitions.
// Implementations must never block a committed transition; failures are
// recorded and swallowed.
type NotificationDispatcher interface {
	NotifyNumberAssigned(ctx context.Context, user *models.User, number *models.PhoneNumber, assignment *models.PhoneNumberAssignment) error
	NotifyNumberUnassigned(ctx context.Context, user *models.User, number *models.PhoneNumber, reason *string) error
	NotifyBulkPurchaseSummary(ctx context.Context, user *models.User, summary *dto.BulkSummary) error
}

// dispatchAsync runs one notification send in the background with a bounded
// timeout. The send outcome never reaches the caller.
func dispatchAsync(send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), utils.NotificationTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			log.Printf("notification dispatch failed: %v", err)
		}
	}()
}

// ToPhoneNumberDTO converts a phone number model to its API representation.
// owner and deck may be nil when the relations are not loaded.
func ToPhoneNumberDTO(number *models.PhoneNumber, owner *models.User, deck *models.RateDeck) dto.PhoneNumberDTO {
	d := dto.PhoneNumberDTO{
		UUID:       number.UUID.String(),
		Number:     number.Number,
		Country:    number.Country,
		NumberType: number.NumberType,
		Status:     number.Status,

		AssignedAt:       utils.FormatPtrRFC3339(number.AssignedAt),
		UnassignedAt:     utils.FormatPtrRFC3339(number.UnassignedAt),
		UnassignedReason: number.UnassignedReason,

		MonthlyRate:     number.MonthlyRate,
		SetupFee:        number.SetupFee,
		Currency:        number.Currency,
		BillingCycle:    number.BillingCycle,
		NextBillingDate: utils.FormatPtrRFC3339(number.NextBillingDate),
		LastBilledDate:  utils.FormatPtrRFC3339(number.LastBilledDate),

		BackorderOnly: utils.IsTrue(number.BackorderOnly),

		CreatedAt: number.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: number.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if owner != nil {
		d.AssignedToUser = &dto.UserRefDTO{
			UUID:      owner.UUID.String(),
			Email:     owner.Email,
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
		}
	}
	if deck != nil {
		d.RateDeck = &dto.RateDeckDTO{
			Name:     deck.Name,
			Currency: deck.Currency,
		}
	}

	return d
}

// ToAssignmentDTO converts an assignment episode to its API representation
func ToAssignmentDTO(assignment *models.PhoneNumberAssignment) dto.AssignmentDTO {
	return dto.AssignmentDTO{
		UUID:             assignment.UUID.String(),
		Status:           assignment.Status,
		AssignedAt:       assignment.AssignedAt.UTC().Format(time.RFC3339),
		BillingStartDate: assignment.BillingStartDate.UTC().Format(time.RFC3339),
		BillingEndDate:   utils.FormatPtrRFC3339(assignment.BillingEndDate),
		MonthlyRate:      assignment.MonthlyRate,
		SetupFee:         assignment.SetupFee,
		Currency:         assignment.Currency,
		BillingCycle:     assignment.BillingCycle,
	}
}
