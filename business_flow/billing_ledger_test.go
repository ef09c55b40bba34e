package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBillingDate(t *testing.T) {
	t.Run("MonthlyClampsToShorterMonth", func(t *testing.T) {
		start := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)
		next := NextBillingDate(start, models.BillingCycleMonthly)
		assert.Equal(t, time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC), next)
	})

	t.Run("MonthlyLeapYear", func(t *testing.T) {
		start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		next := NextBillingDate(start, models.BillingCycleMonthly)
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("MonthlyMidMonth", func(t *testing.T) {
		start := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		next := NextBillingDate(start, models.BillingCycleMonthly)
		assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("YearlyClampsLeapDay", func(t *testing.T) {
		start := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		next := NextBillingDate(start, models.BillingCycleYearly)
		assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), next)
	})
}

func TestOpenLedger(t *testing.T) {
	ctx := context.Background()
	number := &models.PhoneNumber{ID: 7, UUID: uuid.New(), Number: "+33123456789"}
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("CreatesEpisodeWithSetupAndPeriodFee", func(t *testing.T) {
		assignmentRepo := newFakeAssignmentRepo()
		billingRepo := newFakeBillingRepo()
		writer := NewLedgerWriter(assignmentRepo, billingRepo)

		result, err := writer.OpenLedger(ctx, OpenLedgerParams{
			PhoneNumber:  number,
			UserID:       3,
			AssignedBy:   1,
			AssignedAt:   start,
			BillingStart: start,
			MonthlyRate:  12.5,
			SetupFee:     5.0,
			Currency:     "EUR",
			BillingCycle: models.BillingCycleMonthly,
		})
		require.NoError(t, err)

		assert.Equal(t, models.AssignmentStatusActive, result.Assignment.Status)
		assert.Equal(t, uint(7), result.Assignment.PhoneNumberID)
		assert.Equal(t, uint(3), result.Assignment.UserID)
		assert.Equal(t, start, result.Assignment.BillingStartDate)
		assert.NotZero(t, result.Assignment.ID)
		assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), result.NextBillingDate)

		require.Len(t, result.Entries, 2)
		setup, monthly := result.Entries[0], result.Entries[1]

		assert.Equal(t, models.TransactionTypeSetupFee, setup.TransactionType)
		assert.Equal(t, 5.0, setup.Amount)
		assert.Equal(t, models.BillingStatusPending, setup.Status)
		assert.Equal(t, start, setup.BillingDate)
		assert.Nil(t, setup.BillingPeriodEnd)

		assert.Equal(t, models.TransactionTypeMonthlyFee, monthly.TransactionType)
		assert.Equal(t, 12.5, monthly.Amount)
		assert.Equal(t, models.BillingStatusPending, monthly.Status)
		assert.Equal(t, start, monthly.BillingPeriodStart)
		require.NotNil(t, monthly.BillingPeriodEnd)
		assert.Equal(t, result.NextBillingDate, *monthly.BillingPeriodEnd)
		require.NotNil(t, monthly.AssignmentID)
		assert.Equal(t, result.Assignment.ID, *monthly.AssignmentID)
	})

	t.Run("ZeroSetupFeeProducesNoSetupEntry", func(t *testing.T) {
		writer := NewLedgerWriter(newFakeAssignmentRepo(), newFakeBillingRepo())

		result, err := writer.OpenLedger(ctx, OpenLedgerParams{
			PhoneNumber:  number,
			UserID:       3,
			AssignedBy:   1,
			AssignedAt:   start,
			BillingStart: start,
			MonthlyRate:  12.5,
			SetupFee:     0,
			Currency:     "EUR",
			BillingCycle: models.BillingCycleMonthly,
		})
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, models.TransactionTypeMonthlyFee, result.Entries[0].TransactionType)
	})

	t.Run("ZeroAmountsProduceNoEntries", func(t *testing.T) {
		writer := NewLedgerWriter(newFakeAssignmentRepo(), newFakeBillingRepo())

		result, err := writer.OpenLedger(ctx, OpenLedgerParams{
			PhoneNumber:  number,
			UserID:       3,
			AssignedBy:   1,
			AssignedAt:   start,
			BillingStart: start,
			Currency:     "EUR",
			BillingCycle: models.BillingCycleMonthly,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Entries)
	})

	t.Run("FullPeriodFeeForMidMonthStart", func(t *testing.T) {
		writer := NewLedgerWriter(newFakeAssignmentRepo(), newFakeBillingRepo())
		midMonth := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

		result, err := writer.OpenLedger(ctx, OpenLedgerParams{
			PhoneNumber:  number,
			UserID:       3,
			AssignedBy:   1,
			AssignedAt:   midMonth,
			BillingStart: midMonth,
			MonthlyRate:  30.0,
			Currency:     "EUR",
			BillingCycle: models.BillingCycleMonthly,
		})
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, 30.0, result.Entries[0].Amount)
	})
}

func TestCloseLedger(t *testing.T) {
	ctx := context.Background()

	newAssignment := func() *models.PhoneNumberAssignment {
		return &models.PhoneNumberAssignment{
			ID:               10,
			UUID:             uuid.New(),
			PhoneNumberID:    7,
			UserID:           3,
			Status:           models.AssignmentStatusActive,
			BillingStartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Currency:         "EUR",
		}
	}

	pendingEntry := func(assignmentID *uint) *models.PhoneNumberBilling {
		return &models.PhoneNumberBilling{
			UUID:               uuid.New(),
			PhoneNumberID:      7,
			UserID:             3,
			AssignmentID:       assignmentID,
			BillingPeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Amount:             12.5,
			Currency:           "EUR",
			Status:             models.BillingStatusPending,
			BillingDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			TransactionType:    models.TransactionTypeMonthlyFee,
		}
	}

	t.Run("CancelsPendingEntriesFromBothLookupsOnce", func(t *testing.T) {
		assignment := newAssignment()
		billingRepo := newFakeBillingRepo()
		// one entry anchored to the episode, one orphaned on the number/user pair
		require.NoError(t, billingRepo.Save(ctx, pendingEntry(&assignment.ID)))
		require.NoError(t, billingRepo.Save(ctx, pendingEntry(nil)))
		writer := NewLedgerWriter(newFakeAssignmentRepo(), billingRepo)

		reason := "customer churn"
		result, err := writer.CloseLedger(ctx, CloseLedgerParams{
			Assignment:    assignment,
			Reason:        &reason,
			CancelPending: true,
			ClosedAt:      utils.UTCNow(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.CancelledCount)
		assert.Nil(t, result.Refund)

		status := models.BillingStatusCancelled
		cancelled, err := billingRepo.ByFilter(ctx, models.PhoneNumberBillingFilter{Status: &status}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, cancelled, 2)
		for _, entry := range cancelled {
			require.NotNil(t, entry.FailureReason)
			assert.Equal(t, "unassigned: customer churn", *entry.FailureReason)
		}
	})

	t.Run("ProcessedEntriesAreLeftUntouched", func(t *testing.T) {
		assignment := newAssignment()
		billingRepo := newFakeBillingRepo()
		processed := pendingEntry(&assignment.ID)
		processed.Status = models.BillingStatusProcessed
		require.NoError(t, billingRepo.Save(ctx, processed))
		writer := NewLedgerWriter(newFakeAssignmentRepo(), billingRepo)

		result, err := writer.CloseLedger(ctx, CloseLedgerParams{
			Assignment:    assignment,
			CancelPending: true,
			ClosedAt:      utils.UTCNow(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.CancelledCount)

		fresh, err := billingRepo.ByID(ctx, processed.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BillingStatusProcessed, fresh.Status)
	})

	t.Run("SkipsCancellationWhenDisabled", func(t *testing.T) {
		assignment := newAssignment()
		billingRepo := newFakeBillingRepo()
		require.NoError(t, billingRepo.Save(ctx, pendingEntry(&assignment.ID)))
		writer := NewLedgerWriter(newFakeAssignmentRepo(), billingRepo)

		result, err := writer.CloseLedger(ctx, CloseLedgerParams{
			Assignment:    assignment,
			CancelPending: false,
			ClosedAt:      utils.UTCNow(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.CancelledCount)
	})

	t.Run("RefundEntryCarriesNegativeAmount", func(t *testing.T) {
		assignment := newAssignment()
		billingRepo := newFakeBillingRepo()
		writer := NewLedgerWriter(newFakeAssignmentRepo(), billingRepo)

		closedAt := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
		amount := 6.25
		reason := "goodwill"
		result, err := writer.CloseLedger(ctx, CloseLedgerParams{
			Assignment:    assignment,
			Reason:        &reason,
			CancelPending: false,
			RefundAmount:  &amount,
			ClosedAt:      closedAt,
		})
		require.NoError(t, err)
		require.NotNil(t, result.Refund)

		refund := result.Refund
		assert.Equal(t, models.TransactionTypeRefund, refund.TransactionType)
		assert.Equal(t, -6.25, refund.Amount)
		assert.Equal(t, models.BillingStatusPending, refund.Status)
		assert.Equal(t, "EUR", refund.Currency)
		assert.Equal(t, closedAt, refund.BillingDate)
		require.NotNil(t, refund.AssignmentID)
		assert.Equal(t, assignment.ID, *refund.AssignmentID)
		require.NotNil(t, refund.Notes)
		assert.Equal(t, "goodwill", *refund.Notes)
	})

	t.Run("NonPositiveRefundIsIgnored", func(t *testing.T) {
		assignment := newAssignment()
		writer := NewLedgerWriter(newFakeAssignmentRepo(), newFakeBillingRepo())

		amount := 0.0
		result, err := writer.CloseLedger(ctx, CloseLedgerParams{
			Assignment:    assignment,
			CancelPending: false,
			RefundAmount:  &amount,
			ClosedAt:      utils.UTCNow(),
		})
		require.NoError(t, err)
		assert.Nil(t, result.Refund)
	})
}
