// Package businessflow contains use cases for bulk number operations
package businessflow

import (
	"context"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/app/dto"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

// BulkFlow runs multi-number operations item by item. Items are processed
// strictly in request order; one failing item never aborts the rest and
// never rolls back items already committed.
type BulkFlow interface {
	BulkPurchase(ctx context.Context, req *dto.BulkPurchaseRequest, buyerUUID string, metadata *ClientMetadata) (*dto.BulkOperationResponse, error)
	BulkUnassign(ctx context.Context, req *dto.BulkUnassignRequest, unassignedBy uint, metadata *ClientMetadata) (*dto.BulkOperationResponse, error)
}

type BulkFlowImpl struct {
	phoneRepo      repository.PhoneNumberRepository
	userRepo       repository.UserRepository
	assignmentFlow AssignmentFlow
	dispatcher     NotificationDispatcher
}

// NewBulkFlow creates a new bulk flow
func NewBulkFlow(
	phoneRepo repository.PhoneNumberRepository,
	userRepo repository.UserRepository,
	assignmentFlow AssignmentFlow,
	dispatcher NotificationDispatcher,
) BulkFlow {
	return &BulkFlowImpl{
		phoneRepo:      phoneRepo,
		userRepo:       userRepo,
		assignmentFlow: assignmentFlow,
		dispatcher:     dispatcher,
	}
}

// BulkPurchase assigns the requested numbers to the buyer one by one.
// Backorder-only and deckless numbers are rejected per item. Per-item
// notifications are suppressed; one summary email goes out after the loop
// when at least one item succeeded.
func (f *BulkFlowImpl) BulkPurchase(ctx context.Context, req *dto.BulkPurchaseRequest, buyerUUID string, metadata *ClientMetadata) (resp *dto.BulkOperationResponse, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("BULK_PURCHASE_FAILED", "Failed to run bulk purchase", err)
		}
	}()

	buyer, err := f.userRepo.ByUUID(ctx, buyerUUID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, ErrUserNotFound
	}
	if !utils.IsTrue(buyer.IsActive) {
		return nil, ErrUserInactive
	}

	successful := make([]dto.BulkItemSuccess, 0, len(req.PhoneNumberUUIDs))
	failed := make([]dto.BulkItemFailure, 0)
	summary := dto.BulkSummary{Total: len(req.PhoneNumberUUIDs)}
	newUserUUID := buyer.UUID.String()

	for _, numberUUID := range req.PhoneNumberUUIDs {
		number, lookupErr := f.phoneRepo.ByUUID(ctx, numberUUID)
		if lookupErr != nil || number == nil {
			failed = append(failed, dto.BulkItemFailure{
				PhoneNumberUUID: numberUUID,
				Reason:          failureReason(lookupErr, ErrPhoneNumberNotFound),
			})
			continue
		}

		itemResp, itemErr := f.assignmentFlow.Assign(ctx, numberUUID, &dto.AssignPhoneNumberRequest{UserID: newUserUUID}, buyer.ID, AssignOptions{
			SkipNotification:           true,
			RequireDirectlyPurchasable: true,
		}, metadata)
		if itemErr != nil {
			failed = append(failed, dto.BulkItemFailure{
				PhoneNumberUUID: numberUUID,
				Number:          &number.Number,
				Reason:          failureReason(itemErr, nil),
			})
			continue
		}

		successful = append(successful, dto.BulkItemSuccess{
			PhoneNumberUUID: numberUUID,
			Number:          itemResp.PhoneNumber.Number,
			MonthlyRate:     itemResp.Assignment.MonthlyRate,
			SetupFee:        itemResp.Assignment.SetupFee,
			Currency:        itemResp.Assignment.Currency,
			NewUserUUID:     &newUserUUID,
		})
		summary.TotalMonthly += itemResp.Assignment.MonthlyRate
		summary.TotalSetup += itemResp.Assignment.SetupFee
		if summary.Currency == "" {
			summary.Currency = itemResp.Assignment.Currency
		}
	}

	summary.Successful = len(successful)
	summary.Failed = len(failed)

	if len(successful) > 0 {
		summaryCopy := summary
		dispatchAsync(func(sendCtx context.Context) error {
			return f.dispatcher.NotifyBulkPurchaseSummary(sendCtx, buyer, &summaryCopy)
		})
	}

	return &dto.BulkOperationResponse{
		Message:    bulkMessage("purchase", len(successful), len(failed)),
		Successful: successful,
		Failed:     failed,
		Summary:    summary,
	}, nil
}

// BulkUnassign releases the requested numbers one by one with the shared
// reason and refund settings applied to every item.
func (f *BulkFlowImpl) BulkUnassign(ctx context.Context, req *dto.BulkUnassignRequest, unassignedBy uint, metadata *ClientMetadata) (resp *dto.BulkOperationResponse, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("BULK_UNASSIGN_FAILED", "Failed to run bulk unassign", err)
		}
	}()

	if req.CreateRefund && req.RefundAmount == nil {
		return nil, ErrRefundAmountRequired
	}

	successful := make([]dto.BulkItemSuccess, 0, len(req.PhoneNumberUUIDs))
	failed := make([]dto.BulkItemFailure, 0)
	summary := dto.BulkSummary{Total: len(req.PhoneNumberUUIDs)}

	for _, numberUUID := range req.PhoneNumberUUIDs {
		number, lookupErr := f.phoneRepo.ByUUID(ctx, numberUUID)
		if lookupErr != nil || number == nil {
			failed = append(failed, dto.BulkItemFailure{
				PhoneNumberUUID: numberUUID,
				Reason:          failureReason(lookupErr, ErrPhoneNumberNotFound),
			})
			continue
		}

		var previousUserUUID *string
		if number.AssignedTo != nil {
			if prev, prevErr := f.userRepo.ByID(ctx, *number.AssignedTo); prevErr == nil && prev != nil {
				prevUUID := prev.UUID.String()
				previousUserUUID = &prevUUID
			}
		}

		itemResp, itemErr := f.assignmentFlow.Unassign(ctx, numberUUID, &dto.UnassignPhoneNumberRequest{
			Reason:               req.Reason,
			CancelPendingBilling: req.CancelPendingBilling,
			CreateRefund:         req.CreateRefund,
			RefundAmount:         req.RefundAmount,
		}, unassignedBy, UnassignOptions{}, metadata)
		if itemErr != nil {
			failed = append(failed, dto.BulkItemFailure{
				PhoneNumberUUID: numberUUID,
				Number:          &number.Number,
				Reason:          failureReason(itemErr, nil),
			})
			continue
		}

		successful = append(successful, dto.BulkItemSuccess{
			PhoneNumberUUID:   numberUUID,
			Number:            number.Number,
			MonthlyRate:       number.MonthlyRate,
			SetupFee:          number.SetupFee,
			Currency:          itemResp.PhoneNumber.Currency,
			PreviousUserUUID:  previousUserUUID,
			CancelledBillings: itemResp.CancelledBillings,
			RefundCreated:     itemResp.RefundCreated,
		})
		summary.TotalCancelledBillings += itemResp.CancelledBillings
		if itemResp.RefundCreated && req.RefundAmount != nil {
			summary.TotalRefunded += *req.RefundAmount
		}
		if summary.Currency == "" {
			summary.Currency = itemResp.PhoneNumber.Currency
		}
	}

	summary.Successful = len(successful)
	summary.Failed = len(failed)

	return &dto.BulkOperationResponse{
		Message:    bulkMessage("unassign", len(successful), len(failed)),
		Successful: successful,
		Failed:     failed,
		Summary:    summary,
	}, nil
}

// failureReason maps an item error to the reason string reported in the
// itemized response. Unknown errors are reported generically so internal
// details never leak into the payload.
func failureReason(err error, fallback error) string {
	if err == nil {
		if fallback != nil {
			return fallback.Error()
		}
		return "internal error"
	}

	switch {
	case IsPhoneNumberNotFound(err):
		return ErrPhoneNumberNotFound.Error()
	case IsUserNotFound(err):
		return ErrUserNotFound.Error()
	case IsUserInactive(err):
		return ErrUserInactive.Error()
	case IsPhoneNumberNotAvailable(err):
		return ErrPhoneNumberNotAvailable.Error()
	case IsPhoneNumberNotAssigned(err):
		return ErrPhoneNumberNotAssigned.Error()
	case IsAssignmentAlreadyActive(err):
		return ErrAssignmentAlreadyActive.Error()
	case IsPhoneNumberNotPurchasable(err):
		return ErrPhoneNumberNotPurchasable.Error()
	case IsActiveAssignmentNotFound(err):
		return ErrActiveAssignmentNotFound.Error()
	case IsInvalidBillingStartDate(err):
		return ErrInvalidBillingStartDate.Error()
	case IsRefundAmountRequired(err):
		return ErrRefundAmountRequired.Error()
	case IsAssignmentCommitFailed(err):
		return ErrAssignmentCommitFailed.Error()
	case IsUnassignmentCommitFailed(err):
		return ErrUnassignmentCommitFailed.Error()
	default:
		return "internal error"
	}
}

func bulkMessage(operation string, successful, failed int) string {
	switch {
	case failed == 0:
		return "Bulk " + operation + " completed successfully"
	case successful == 0:
		return "Bulk " + operation + " failed for all items"
	default:
		return "Bulk " + operation + " completed with partial success"
	}
}
