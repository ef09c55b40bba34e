// Package businessflow contains use cases for the number assignment state machine
package businessflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/app/dto"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
	"gorm.io/gorm"
)

// AssignOptions tunes a single assignment operation.
// RequireDirectlyPurchasable rejects backorder-only and deckless numbers,
// which is the self-service purchase rule; admin assignment leaves it off.
type AssignOptions struct {
	SkipNotification           bool
	RequireDirectlyPurchasable bool
}

// UnassignOptions tunes a single unassignment operation
type UnassignOptions struct {
	SkipNotification bool
}

// AssignmentFlow moves numbers between available and assigned.
// Both transitions are single-statement conditional updates, so two
// concurrent calls on the same number cannot both win.
type AssignmentFlow interface {
	Assign(ctx context.Context, numberUUID string, req *dto.AssignPhoneNumberRequest, assignedBy uint, opts AssignOptions, metadata *ClientMetadata) (*dto.AssignPhoneNumberResponse, error)
	Unassign(ctx context.Context, numberUUID string, req *dto.UnassignPhoneNumberRequest, unassignedBy uint, opts UnassignOptions, metadata *ClientMetadata) (*dto.UnassignPhoneNumberResponse, error)
}

type AssignmentFlowImpl struct {
	db             *gorm.DB
	phoneRepo      repository.PhoneNumberRepository
	assignmentRepo repository.PhoneNumberAssignmentRepository
	userRepo       repository.UserRepository
	rateDeckRepo   repository.RateDeckRepository
	resolver       RateResolver
	ledger         LedgerWriter
	dispatcher     NotificationDispatcher
}

// NewAssignmentFlow creates a new assignment flow
func NewAssignmentFlow(
	db *gorm.DB,
	phoneRepo repository.PhoneNumberRepository,
	assignmentRepo repository.PhoneNumberAssignmentRepository,
	userRepo repository.UserRepository,
	rateDeckRepo repository.RateDeckRepository,
	resolver RateResolver,
	ledger LedgerWriter,
	dispatcher NotificationDispatcher,
) AssignmentFlow {
	return &AssignmentFlowImpl{
		db:             db,
		phoneRepo:      phoneRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		rateDeckRepo:   rateDeckRepo,
		resolver:       resolver,
		ledger:         ledger,
		dispatcher:     dispatcher,
	}
}

// Assign moves an available number to a user and opens its billing ledger.
// The number is claimed first with a conditional update; the episode and its
// entries are then written in one transaction. When that transaction fails
// the claim is rolled back so the number does not stay assigned without a
// ledger.
func (f *AssignmentFlowImpl) Assign(ctx context.Context, numberUUID string, req *dto.AssignPhoneNumberRequest, assignedBy uint, opts AssignOptions, metadata *ClientMetadata) (resp *dto.AssignPhoneNumberResponse, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("ASSIGN_PHONE_NUMBER_FAILED", "Failed to assign phone number", err)
		}
	}()

	billingStart, err := parseBillingStartDate(req.BillingStartDate)
	if err != nil {
		return nil, err
	}

	number, err := f.phoneRepo.ByUUID(ctx, numberUUID)
	if err != nil {
		return nil, err
	}
	if number == nil {
		return nil, ErrPhoneNumberNotFound
	}

	user, err := f.userRepo.ByUUID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, ErrUserInactive
	}

	if !number.IsAvailable() {
		return nil, ErrPhoneNumberNotAvailable
	}
	if opts.RequireDirectlyPurchasable && (utils.IsTrue(number.BackorderOnly) || number.RateDeckID == nil) {
		return nil, ErrPhoneNumberNotPurchasable
	}

	active, err := f.assignmentRepo.ActiveByPhoneNumber(ctx, number.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if active.UserID == user.ID {
			return nil, ErrAssignmentAlreadyActive
		}
		return nil, ErrPhoneNumberNotAvailable
	}

	monthlyRate, setupFee := number.MonthlyRate, number.SetupFee
	resolved, err := f.resolver.Resolve(ctx, number.Number, number.Country, number.NumberType, number.RateDeckID)
	if err != nil {
		return nil, err
	}
	if resolved != nil {
		monthlyRate, setupFee = resolved.MonthlyRate, resolved.SetupFee
	}

	currency := number.Currency
	if currency == "" {
		currency = utils.DefaultCurrency
	}
	billingCycle := number.BillingCycle
	if billingCycle == "" {
		billingCycle = models.BillingCycleMonthly
	}

	now := utils.UTCNow()
	if billingStart == nil {
		billingStart = &now
	}
	nextBilling := NextBillingDate(*billingStart, billingCycle)

	claimed, err := f.phoneRepo.ClaimForAssignment(ctx, number.ID, repository.PhoneNumberClaim{
		AssignedTo:      user.ID,
		AssignedBy:      assignedBy,
		AssignedAt:      now,
		MonthlyRate:     monthlyRate,
		SetupFee:        setupFee,
		Currency:        currency,
		BillingCycle:    billingCycle,
		NextBillingDate: nextBilling,
	})
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrPhoneNumberNotAvailable
	}

	var ledger *OpenLedgerResult
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var txErr error
		ledger, txErr = f.ledger.OpenLedger(txCtx, OpenLedgerParams{
			PhoneNumber:  number,
			UserID:       user.ID,
			AssignedBy:   assignedBy,
			AssignedAt:   now,
			BillingStart: *billingStart,
			MonthlyRate:  monthlyRate,
			SetupFee:     setupFee,
			Currency:     currency,
			BillingCycle: billingCycle,
			Notes:        req.Notes,
		})
		return txErr
	})
	if err != nil {
		released, rerr := f.phoneRepo.ReleaseAssignment(ctx, number.ID, repository.PhoneNumberRelease{})
		if rerr != nil || !released {
			log.Printf("compensating release of phone number %s failed (released=%v): %v", number.Number, released, rerr)
		}
		return nil, fmt.Errorf("%w: %v", ErrAssignmentCommitFailed, err)
	}

	fresh, err := f.phoneRepo.ByID(ctx, number.ID)
	if err != nil || fresh == nil {
		fresh = number
	}

	var deck *models.RateDeck
	if fresh.RateDeckID != nil {
		deck, _ = f.rateDeckRepo.ByID(ctx, *fresh.RateDeckID)
	}

	if !opts.SkipNotification {
		dispatchAsync(func(sendCtx context.Context) error {
			return f.dispatcher.NotifyNumberAssigned(sendCtx, user, fresh, ledger.Assignment)
		})
	}

	return &dto.AssignPhoneNumberResponse{
		Message:     "Phone number assigned successfully",
		PhoneNumber: ToPhoneNumberDTO(fresh, user, deck),
		Assignment:  ToAssignmentDTO(ledger.Assignment),
	}, nil
}

// Unassign ends the active episode of an assigned number, releases the
// number back to available, cancels pending ledger entries and optionally
// writes a refund. A number that is not assigned is reported as such, which
// makes a repeated unassign call fail cleanly instead of double-settling.
func (f *AssignmentFlowImpl) Unassign(ctx context.Context, numberUUID string, req *dto.UnassignPhoneNumberRequest, unassignedBy uint, opts UnassignOptions, metadata *ClientMetadata) (resp *dto.UnassignPhoneNumberResponse, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("UNASSIGN_PHONE_NUMBER_FAILED", "Failed to unassign phone number", err)
		}
	}()

	if req.CreateRefund && req.RefundAmount == nil {
		return nil, ErrRefundAmountRequired
	}

	number, err := f.phoneRepo.ByUUID(ctx, numberUUID)
	if err != nil {
		return nil, err
	}
	if number == nil {
		return nil, ErrPhoneNumberNotFound
	}
	if !number.IsAssigned() {
		return nil, ErrPhoneNumberNotAssigned
	}

	active, err := f.assignmentRepo.ActiveByPhoneNumber(ctx, number.ID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrActiveAssignmentNotFound
	}

	owner, err := f.userRepo.ByID(ctx, active.UserID)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	released, err := f.phoneRepo.ReleaseAssignment(ctx, number.ID, repository.PhoneNumberRelease{
		UnassignedAt:     &now,
		UnassignedBy:     &unassignedBy,
		UnassignedReason: req.Reason,
	})
	if err != nil {
		return nil, err
	}
	if !released {
		return nil, ErrPhoneNumberNotAssigned
	}

	cancelPending := req.CancelPendingBilling == nil || *req.CancelPendingBilling

	var refundAmount *float64
	if req.CreateRefund {
		refundAmount = req.RefundAmount
	}

	var settled *CloseLedgerResult
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if txErr := f.assignmentRepo.End(txCtx, active.ID, repository.AssignmentEnd{
			BillingEndDate:   now,
			UnassignedAt:     now,
			UnassignedBy:     unassignedBy,
			UnassignedReason: req.Reason,
		}); txErr != nil {
			return txErr
		}

		var txErr error
		settled, txErr = f.ledger.CloseLedger(txCtx, CloseLedgerParams{
			Assignment:    active,
			Reason:        req.Reason,
			CancelPending: cancelPending,
			RefundAmount:  refundAmount,
			ClosedAt:      now,
		})
		return txErr
	})
	if err != nil {
		log.Printf("ledger settlement failed after releasing phone number %s: %v", number.Number, err)
		return nil, fmt.Errorf("%w: %v", ErrUnassignmentCommitFailed, err)
	}

	var integrityWarning *string
	if count, cerr := f.assignmentRepo.CountActiveByPhoneNumber(ctx, number.ID); cerr == nil && count > 0 {
		warning := fmt.Sprintf("phone number released but %d assignment(s) still active", count)
		integrityWarning = &warning
		log.Printf("integrity warning for phone number %s: %s", number.Number, warning)
	}

	fresh, err := f.phoneRepo.ByID(ctx, number.ID)
	if err != nil || fresh == nil {
		fresh = number
	}

	if !opts.SkipNotification && owner != nil {
		dispatchAsync(func(sendCtx context.Context) error {
			return f.dispatcher.NotifyNumberUnassigned(sendCtx, owner, fresh, req.Reason)
		})
	}

	return &dto.UnassignPhoneNumberResponse{
		Message:           "Phone number unassigned successfully",
		PhoneNumber:       ToPhoneNumberDTO(fresh, nil, nil),
		CancelledBillings: settled.CancelledCount,
		RefundCreated:     settled.Refund != nil,
		IntegrityWarning:  integrityWarning,
	}, nil
}

// parseBillingStartDate accepts RFC3339 or a plain date and returns UTC.
// nil input means the caller should default to now.
func parseBillingStartDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", *raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, ErrInvalidBillingStartDate
}
