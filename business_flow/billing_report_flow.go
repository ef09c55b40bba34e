// Package businessflow contains use cases for admin billing reports
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/app/dto"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
	"github.com/xuri/excelize/v2"
)

// BillingReportFlow exports the billing ledger as a spreadsheet for
// reconciliation against the external billing processor.
type BillingReportFlow interface {
	ExportLedger(ctx context.Context, req *dto.BillingExportRequest, metadata *ClientMetadata) (string, []byte, error)
}

type BillingReportFlowImpl struct {
	billingRepo repository.PhoneNumberBillingRepository
	phoneRepo   repository.PhoneNumberRepository
}

// NewBillingReportFlow creates a new billing report flow
func NewBillingReportFlow(billingRepo repository.PhoneNumberBillingRepository, phoneRepo repository.PhoneNumberRepository) BillingReportFlow {
	return &BillingReportFlowImpl{billingRepo: billingRepo, phoneRepo: phoneRepo}
}

// ExportLedger builds an XLSX workbook with one row per ledger entry and
// returns the suggested filename plus the file bytes.
func (f *BillingReportFlowImpl) ExportLedger(ctx context.Context, req *dto.BillingExportRequest, metadata *ClientMetadata) (string, []byte, error) {
	filter := models.PhoneNumberBillingFilter{
		Status:          req.Status,
		TransactionType: req.TransactionType,
		UserID:          req.UserID,
	}
	if req.CreatedAfter != nil {
		after, perr := time.Parse("2006-01-02", *req.CreatedAfter)
		if perr != nil {
			return "", nil, NewBusinessError("INVALID_DATE_RANGE", "Invalid created_after date", perr)
		}
		filter.CreatedAfter = &after
	}
	if req.CreatedBefore != nil {
		before, perr := time.Parse("2006-01-02", *req.CreatedBefore)
		if perr != nil {
			return "", nil, NewBusinessError("INVALID_DATE_RANGE", "Invalid created_before date", perr)
		}
		filter.CreatedBefore = &before
	}

	entries, err := f.billingRepo.ByFilter(ctx, filter, "id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_LEDGER_FAILED", "Failed to fetch billing entries", err)
	}

	numbers := make(map[uint]string)
	for _, entry := range entries {
		if _, ok := numbers[entry.PhoneNumberID]; ok {
			continue
		}
		number, nerr := f.phoneRepo.ByID(ctx, entry.PhoneNumberID)
		if nerr == nil && number != nil {
			numbers[entry.PhoneNumberID] = number.Number
		}
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "billing_ledger"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "uuid", "phone_number", "user_id", "assignment_id", "transaction_type", "amount", "currency", "status", "billing_date", "period_start", "period_end", "failure_reason", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, entry := range entries {
		var assignmentID any
		if entry.AssignmentID != nil {
			assignmentID = *entry.AssignmentID
		}
		var periodEnd, failureReason string
		if entry.BillingPeriodEnd != nil {
			periodEnd = entry.BillingPeriodEnd.UTC().Format(time.RFC3339)
		}
		if entry.FailureReason != nil {
			failureReason = *entry.FailureReason
		}

		record := []any{
			entry.ID,
			entry.UUID.String(),
			numbers[entry.PhoneNumberID],
			entry.UserID,
			assignmentID,
			entry.TransactionType,
			entry.Amount,
			entry.Currency,
			entry.Status,
			entry.BillingDate.UTC().Format(time.RFC3339),
			entry.BillingPeriodStart.UTC().Format(time.RFC3339),
			periodEnd,
			failureReason,
			entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_LEDGER_FAILED", "Failed to build workbook", err)
	}

	filename := fmt.Sprintf("billing_ledger_%s.xlsx", utils.UTCNow().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}
