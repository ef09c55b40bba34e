// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

// OpenLedgerParams carries everything needed to open one assignment episode
// with its initial billing entries.
type OpenLedgerParams struct {
	PhoneNumber  *models.PhoneNumber
	UserID       uint
	AssignedBy   uint
	AssignedAt   time.Time
	BillingStart time.Time
	MonthlyRate  float64
	SetupFee     float64
	Currency     string
	BillingCycle string
	Notes        *string
}

// OpenLedgerResult reports the created episode and its pending entries
type OpenLedgerResult struct {
	Assignment      *models.PhoneNumberAssignment
	Entries         []*models.PhoneNumberBilling
	NextBillingDate time.Time
}

// CloseLedgerParams carries everything needed to settle the ledger of an
// ending episode. RefundAmount nil means no refund entry.
type CloseLedgerParams struct {
	Assignment    *models.PhoneNumberAssignment
	Reason        *string
	CancelPending bool
	RefundAmount  *float64
	ClosedAt      time.Time
}

// CloseLedgerResult reports how many entries were cancelled and the refund
// entry, when one was created.
type CloseLedgerResult struct {
	CancelledCount int64
	Refund         *models.PhoneNumberBilling
}

// LedgerWriter creates and settles billing ledger entries for assignment
// episodes. The external billing processor charges pending entries later;
// this writer never marks anything processed.
type LedgerWriter interface {
	OpenLedger(ctx context.Context, params OpenLedgerParams) (*OpenLedgerResult, error)
	CloseLedger(ctx context.Context, params CloseLedgerParams) (*CloseLedgerResult, error)
}

type LedgerWriterImpl struct {
	assignmentRepo repository.PhoneNumberAssignmentRepository
	billingRepo    repository.PhoneNumberBillingRepository
}

// NewLedgerWriter creates a new ledger writer
func NewLedgerWriter(assignmentRepo repository.PhoneNumberAssignmentRepository, billingRepo repository.PhoneNumberBillingRepository) LedgerWriter {
	return &LedgerWriterImpl{assignmentRepo: assignmentRepo, billingRepo: billingRepo}
}

// NextBillingDate returns the end of the billing period starting at start,
// clamping the day of month (Jan 31 monthly bills next on Feb 28/29).
func NextBillingDate(start time.Time, billingCycle string) time.Time {
	if billingCycle == models.BillingCycleYearly {
		return utils.AddCalendarYears(start, 1)
	}
	return utils.AddCalendarMonths(start, 1)
}

// OpenLedger creates the assignment episode plus its setup fee and first
// period fee entries. The period fee is always the full cycle amount, even
// when the billing start falls mid-month; zero amounts produce no entry.
func (w *LedgerWriterImpl) OpenLedger(ctx context.Context, params OpenLedgerParams) (*OpenLedgerResult, error) {
	number := params.PhoneNumber
	now := utils.UTCNow()
	next := NextBillingDate(params.BillingStart, params.BillingCycle)

	assignment := &models.PhoneNumberAssignment{
		UUID:             uuid.New(),
		PhoneNumberID:    number.ID,
		UserID:           params.UserID,
		AssignedBy:       params.AssignedBy,
		AssignedAt:       params.AssignedAt,
		Status:           models.AssignmentStatusActive,
		BillingStartDate: params.BillingStart,
		MonthlyRate:      params.MonthlyRate,
		SetupFee:         params.SetupFee,
		Currency:         params.Currency,
		BillingCycle:     params.BillingCycle,
		Notes:            params.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := w.assignmentRepo.Save(ctx, assignment); err != nil {
		return nil, err
	}

	var entries []*models.PhoneNumberBilling

	if params.SetupFee > 0 {
		entries = append(entries, &models.PhoneNumberBilling{
			UUID:               uuid.New(),
			PhoneNumberID:      number.ID,
			UserID:             params.UserID,
			AssignmentID:       &assignment.ID,
			BillingPeriodStart: params.BillingStart,
			Amount:             params.SetupFee,
			Currency:           params.Currency,
			Status:             models.BillingStatusPending,
			BillingDate:        params.BillingStart,
			TransactionType:    models.TransactionTypeSetupFee,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}

	if params.MonthlyRate > 0 {
		periodEnd := next
		entries = append(entries, &models.PhoneNumberBilling{
			UUID:               uuid.New(),
			PhoneNumberID:      number.ID,
			UserID:             params.UserID,
			AssignmentID:       &assignment.ID,
			BillingPeriodStart: params.BillingStart,
			BillingPeriodEnd:   &periodEnd,
			Amount:             params.MonthlyRate,
			Currency:           params.Currency,
			Status:             models.BillingStatusPending,
			BillingDate:        params.BillingStart,
			TransactionType:    models.TransactionTypeMonthlyFee,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}

	if len(entries) > 0 {
		if err := w.billingRepo.SaveBatch(ctx, entries); err != nil {
			return nil, err
		}
	}

	return &OpenLedgerResult{
		Assignment:      assignment,
		Entries:         entries,
		NextBillingDate: next,
	}, nil
}

// CloseLedger cancels the pending entries of an ending episode and writes
// the refund entry when requested. Pending entries are collected both by
// assignment id and by the number/user pair so that entries created before
// episode tracking are settled too.
func (w *LedgerWriterImpl) CloseLedger(ctx context.Context, params CloseLedgerParams) (*CloseLedgerResult, error) {
	assignment := params.Assignment
	result := &CloseLedgerResult{}

	if params.CancelPending {
		byAssignment, err := w.billingRepo.PendingByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, err
		}
		byPair, err := w.billingRepo.PendingByNumberAndUser(ctx, assignment.PhoneNumberID, assignment.UserID)
		if err != nil {
			return nil, err
		}

		seen := make(map[uint]bool)
		var ids []uint
		for _, entry := range byAssignment {
			if !seen[entry.ID] {
				seen[entry.ID] = true
				ids = append(ids, entry.ID)
			}
		}
		for _, entry := range byPair {
			if !seen[entry.ID] {
				seen[entry.ID] = true
				ids = append(ids, entry.ID)
			}
		}

		if len(ids) > 0 {
			cancelled, err := w.billingRepo.CancelPending(ctx, ids, cancelReason(params.Reason))
			if err != nil {
				return nil, err
			}
			result.CancelledCount = cancelled
		}
	}

	if params.RefundAmount != nil && *params.RefundAmount > 0 {
		now := utils.UTCNow()
		closedAt := params.ClosedAt
		refund := &models.PhoneNumberBilling{
			UUID:               uuid.New(),
			PhoneNumberID:      assignment.PhoneNumberID,
			UserID:             assignment.UserID,
			AssignmentID:       &assignment.ID,
			BillingPeriodStart: assignment.BillingStartDate,
			BillingPeriodEnd:   &closedAt,
			Amount:             -*params.RefundAmount,
			Currency:           assignment.Currency,
			Status:             models.BillingStatusPending,
			BillingDate:        closedAt,
			TransactionType:    models.TransactionTypeRefund,
			Notes:              params.Reason,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := w.billingRepo.Save(ctx, refund); err != nil {
			return nil, err
		}
		result.Refund = refund
	}

	return result, nil
}

func cancelReason(reason *string) string {
	if reason != nil && *reason != "" {
		return "unassigned: " + *reason
	}
	return "unassigned"
}
