package repository_test

import (
	"testing"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	testingutil "github.com/solusaas-git/ovoky-voip-platform-sub001/testing"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneNumberRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPhoneNumberRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByID", func(t *testing.T) {
			original, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)

			number, err := repo.ByID(ctx, original.ID)
			require.NoError(t, err)
			require.NotNil(t, number)
			assert.Equal(t, original.ID, number.ID)
			assert.Equal(t, original.Number, number.Number)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			number, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, number)
		})

		t.Run("ByUUID", func(t *testing.T) {
			original, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)

			number, err := repo.ByUUID(ctx, original.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, number)
			assert.Equal(t, original.ID, number.ID)
		})

		t.Run("ByUUIDInvalid", func(t *testing.T) {
			_, err := repo.ByUUID(ctx, "not-a-uuid")
			assert.Error(t, err)
		})

		t.Run("ByNumber", func(t *testing.T) {
			original, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)

			number, err := repo.ByNumber(ctx, original.Number)
			require.NoError(t, err)
			require.NotNil(t, number)
			assert.Equal(t, original.ID, number.ID)
		})

		t.Run("ByNumberNotFound", func(t *testing.T) {
			number, err := repo.ByNumber(ctx, "+10000000000")
			assert.NoError(t, err)
			assert.Nil(t, number)
		})

		t.Run("ByFilter", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			available, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			assigned, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			assigned.Status = models.PhoneNumberStatusAssigned
			require.NoError(t, repo.Save(ctx, assigned))

			status := models.PhoneNumberStatusAvailable
			result, err := repo.ByFilter(ctx, models.PhoneNumberFilter{Status: &status}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, result, 1)
			assert.Equal(t, available.ID, result[0].ID)

			country := "fr"
			result, err = repo.ByFilter(ctx, models.PhoneNumberFilter{Country: &country}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, result, 2)

			search := available.Number[1:6]
			result, err = repo.ByFilter(ctx, models.PhoneNumberFilter{Search: &search}, "", 0, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(result), 1)
		})

		t.Run("ByFilterPaging", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			for i := 0; i < 5; i++ {
				_, err := fixtures.CreateTestPhoneNumber(nil)
				require.NoError(t, err)
			}

			page1, err := repo.ByFilter(ctx, models.PhoneNumberFilter{}, "id ASC", 2, 0)
			require.NoError(t, err)
			require.Len(t, page1, 2)

			page2, err := repo.ByFilter(ctx, models.PhoneNumberFilter{}, "id ASC", 2, 2)
			require.NoError(t, err)
			require.Len(t, page2, 2)
			assert.NotEqual(t, page1[0].ID, page2[0].ID)
			assert.Greater(t, page2[0].ID, page1[1].ID)
		})

		t.Run("ClaimForAssignment", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser("admin")
			require.NoError(t, err)

			now := utils.UTCNow()
			claim := repository.PhoneNumberClaim{
				AssignedTo:      user.ID,
				AssignedBy:      admin.ID,
				AssignedAt:      now,
				MonthlyRate:     7.5,
				SetupFee:        2.0,
				Currency:        "EUR",
				BillingCycle:    models.BillingCycleMonthly,
				NextBillingDate: now.AddDate(0, 1, 0),
			}

			claimed, err := repo.ClaimForAssignment(ctx, number.ID, claim)
			require.NoError(t, err)
			assert.True(t, claimed)

			updated, err := repo.ByID(ctx, number.ID)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, models.PhoneNumberStatusAssigned, updated.Status)
			require.NotNil(t, updated.AssignedTo)
			assert.Equal(t, user.ID, *updated.AssignedTo)
			assert.Equal(t, 7.5, updated.MonthlyRate)

			// Second claim must lose because the number is no longer available
			claimed, err = repo.ClaimForAssignment(ctx, number.ID, claim)
			require.NoError(t, err)
			assert.False(t, claimed)
		})

		t.Run("ReleaseAssignment", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser("admin")
			require.NoError(t, err)

			now := utils.UTCNow()
			claimed, err := repo.ClaimForAssignment(ctx, number.ID, repository.PhoneNumberClaim{
				AssignedTo:      user.ID,
				AssignedBy:      admin.ID,
				AssignedAt:      now,
				MonthlyRate:     5.0,
				SetupFee:        1.0,
				Currency:        "EUR",
				BillingCycle:    models.BillingCycleMonthly,
				NextBillingDate: now.AddDate(0, 1, 0),
			})
			require.NoError(t, err)
			require.True(t, claimed)

			reason := "customer request"
			released, err := repo.ReleaseAssignment(ctx, number.ID, repository.PhoneNumberRelease{
				UnassignedAt:     utils.ToPtr(utils.UTCNow()),
				UnassignedBy:     &admin.ID,
				UnassignedReason: &reason,
			})
			require.NoError(t, err)
			assert.True(t, released)

			updated, err := repo.ByID(ctx, number.ID)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, models.PhoneNumberStatusAvailable, updated.Status)
			assert.Nil(t, updated.AssignedTo)
			assert.Nil(t, updated.NextBillingDate)
			require.NotNil(t, updated.UnassignedReason)
			assert.Equal(t, reason, *updated.UnassignedReason)

			// Releasing an already-available number is a no-op
			released, err = repo.ReleaseAssignment(ctx, number.ID, repository.PhoneNumberRelease{})
			require.NoError(t, err)
			assert.False(t, released)
		})

		t.Run("CountAndExists", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)

			count, err := repo.Count(ctx, models.PhoneNumberFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			exists, err := repo.Exists(ctx, models.PhoneNumberFilter{Number: &number.Number})
			require.NoError(t, err)
			assert.True(t, exists)

			missing := "+19999999999"
			exists, err = repo.Exists(ctx, models.PhoneNumberFilter{Number: &missing})
			require.NoError(t, err)
			assert.False(t, exists)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPhoneNumberAssignmentRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPhoneNumberAssignmentRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ActiveByPhoneNumber", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser("admin")
			require.NoError(t, err)

			original, err := fixtures.CreateTestAssignment(number, user.ID, admin.ID)
			require.NoError(t, err)

			active, err := repo.ActiveByPhoneNumber(ctx, number.ID)
			require.NoError(t, err)
			require.NotNil(t, active)
			assert.Equal(t, original.ID, active.ID)
			assert.Equal(t, models.AssignmentStatusActive, active.Status)
		})

		t.Run("ActiveByPhoneNumberNotFound", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)

			active, err := repo.ActiveByPhoneNumber(ctx, number.ID)
			assert.NoError(t, err)
			assert.Nil(t, active)
		})

		t.Run("ActiveByPhoneNumberAndUser", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			other, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser("admin")
			require.NoError(t, err)

			_, err = fixtures.CreateTestAssignment(number, user.ID, admin.ID)
			require.NoError(t, err)

			active, err := repo.ActiveByPhoneNumberAndUser(ctx, number.ID, user.ID)
			require.NoError(t, err)
			assert.NotNil(t, active)

			active, err = repo.ActiveByPhoneNumberAndUser(ctx, number.ID, other.ID)
			require.NoError(t, err)
			assert.Nil(t, active)
		})

		t.Run("End", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser("admin")
			require.NoError(t, err)

			assignment, err := fixtures.CreateTestAssignment(number, user.ID, admin.ID)
			require.NoError(t, err)

			now := utils.UTCNow()
			reason := "migration"
			err = repo.End(ctx, assignment.ID, repository.AssignmentEnd{
				BillingEndDate:   now,
				UnassignedAt:     now,
				UnassignedBy:     admin.ID,
				UnassignedReason: &reason,
			})
			require.NoError(t, err)

			ended, err := repo.ByID(ctx, assignment.ID)
			require.NoError(t, err)
			require.NotNil(t, ended)
			assert.Equal(t, models.AssignmentStatusEnded, ended.Status)
			require.NotNil(t, ended.BillingEndDate)
			require.NotNil(t, ended.UnassignedReason)
			assert.Equal(t, reason, *ended.UnassignedReason)

			// The episode row stays as history but is no longer active
			active, err := repo.ActiveByPhoneNumber(ctx, number.ID)
			require.NoError(t, err)
			assert.Nil(t, active)
		})

		t.Run("OneActiveEpisodePerNumber", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser("admin")
			require.NoError(t, err)

			_, err = fixtures.CreateTestAssignment(number, user.ID, admin.ID)
			require.NoError(t, err)

			// The partial unique index rejects a second active episode
			_, err = fixtures.CreateTestAssignment(number, user.ID, admin.ID)
			assert.Error(t, err)

			count, err := repo.CountActiveByPhoneNumber(ctx, number.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("ByFilterByUser", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser("admin")
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				number, err := fixtures.CreateTestPhoneNumber(nil)
				require.NoError(t, err)
				_, err = fixtures.CreateTestAssignment(number, user.ID, admin.ID)
				require.NoError(t, err)
			}

			result, err := repo.ByFilter(ctx, models.PhoneNumberAssignmentFilter{UserID: &user.ID}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, result, 3)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPhoneNumberBillingRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPhoneNumberBillingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("PendingByAssignment", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser("admin")
			require.NoError(t, err)
			assignment, err := fixtures.CreateTestAssignment(number, user.ID, admin.ID)
			require.NoError(t, err)

			_, err = fixtures.CreateTestBillingEntry(number, user.ID, &assignment.ID, models.TransactionTypeSetupFee, 1.5)
			require.NoError(t, err)
			_, err = fixtures.CreateTestBillingEntry(number, user.ID, &assignment.ID, models.TransactionTypeMonthlyFee, 5.0)
			require.NoError(t, err)

			pending, err := repo.PendingByAssignment(ctx, assignment.ID)
			require.NoError(t, err)
			assert.Len(t, pending, 2)
		})

		t.Run("PendingByNumberAndUser", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)
			other, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)

			_, err = fixtures.CreateTestBillingEntry(number, user.ID, nil, models.TransactionTypeMonthlyFee, 5.0)
			require.NoError(t, err)

			pending, err := repo.PendingByNumberAndUser(ctx, number.ID, user.ID)
			require.NoError(t, err)
			assert.Len(t, pending, 1)

			pending, err = repo.PendingByNumberAndUser(ctx, number.ID, other.ID)
			require.NoError(t, err)
			assert.Empty(t, pending)
		})

		t.Run("CancelPending", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)

			pendingEntry, err := fixtures.CreateTestBillingEntry(number, user.ID, nil, models.TransactionTypeSetupFee, 1.5)
			require.NoError(t, err)

			processedEntry, err := fixtures.CreateTestBillingEntry(number, user.ID, nil, models.TransactionTypeMonthlyFee, 5.0)
			require.NoError(t, err)
			processedEntry.Status = models.BillingStatusProcessed
			require.NoError(t, repo.Save(ctx, processedEntry))

			cancelled, err := repo.CancelPending(ctx, []uint{pendingEntry.ID, processedEntry.ID}, "assignment rolled back")
			require.NoError(t, err)
			assert.Equal(t, int64(1), cancelled)

			reloaded, err := repo.ByID(ctx, pendingEntry.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.Equal(t, models.BillingStatusCancelled, reloaded.Status)
			require.NotNil(t, reloaded.FailureReason)
			assert.Equal(t, "assignment rolled back", *reloaded.FailureReason)

			// Processed entries are never rewritten by a cancellation
			untouched, err := repo.ByID(ctx, processedEntry.ID)
			require.NoError(t, err)
			require.NotNil(t, untouched)
			assert.Equal(t, models.BillingStatusProcessed, untouched.Status)
		})

		t.Run("CancelPendingEmptyIDs", func(t *testing.T) {
			cancelled, err := repo.CancelPending(ctx, nil, "nothing")
			require.NoError(t, err)
			assert.Zero(t, cancelled)
		})

		t.Run("ByFilterTransactionType", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)

			_, err = fixtures.CreateTestBillingEntry(number, user.ID, nil, models.TransactionTypeSetupFee, 1.5)
			require.NoError(t, err)
			_, err = fixtures.CreateTestBillingEntry(number, user.ID, nil, models.TransactionTypeRefund, -5.0)
			require.NoError(t, err)

			refund := models.TransactionTypeRefund
			result, err := repo.ByFilter(ctx, models.PhoneNumberBillingFilter{TransactionType: &refund}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, result, 1)
			assert.Equal(t, -5.0, result[0].Amount)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRateRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewRateRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByDeck", func(t *testing.T) {
			deck, err := fixtures.CreateTestRateDeck("FR", models.NumberTypeGeographic, "33", "331", "3312")
			require.NoError(t, err)

			rates, err := repo.ByDeck(ctx, deck.ID)
			require.NoError(t, err)
			assert.Len(t, rates, 3)
		})

		t.Run("ByFilterPrefix", func(t *testing.T) {
			deck, err := fixtures.CreateTestRateDeck("DE", models.NumberTypeGeographic, "49", "4930")
			require.NoError(t, err)

			prefix := "4930"
			result, err := repo.ByFilter(ctx, models.RateFilter{RateDeckID: &deck.ID, Prefix: &prefix}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, result, 1)
			assert.Equal(t, "4930", result[0].Prefix)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUserRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewUserRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUUID", func(t *testing.T) {
			original, err := fixtures.CreateTestUser("user")
			require.NoError(t, err)

			user, err := repo.ByUUID(ctx, original.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, original.ID, user.ID)
			assert.Equal(t, original.Email, user.Email)
		})

		t.Run("ByEmail", func(t *testing.T) {
			original, err := fixtures.CreateTestUser("admin")
			require.NoError(t, err)

			user, err := repo.ByEmail(ctx, original.Email)
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, original.ID, user.ID)
			assert.True(t, user.IsAdmin())
		})

		t.Run("ByEmailNotFound", func(t *testing.T) {
			user, err := repo.ByEmail(ctx, "nonexistent@example.com")
			assert.NoError(t, err)
			assert.Nil(t, user)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestNotificationLogRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewNotificationLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SaveAndFilter", func(t *testing.T) {
			number, err := fixtures.CreateTestPhoneNumber(nil)
			require.NoError(t, err)

			entry := &models.NotificationLog{
				Recipient:     "user@example.com",
				Subject:       "Phone number assigned",
				Type:          models.NotificationTypeNumberAssigned,
				Status:        models.NotificationStatusSent,
				PhoneNumberID: &number.ID,
			}
			require.NoError(t, repo.Save(ctx, entry))
			assert.NotZero(t, entry.ID)

			status := models.NotificationStatusSent
			result, err := repo.ByFilter(ctx, models.NotificationLogFilter{Status: &status}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, result, 1)
			assert.Equal(t, models.NotificationTypeNumberAssigned, result[0].Type)
		})

		t.Run("FailedNotificationKeepsError", func(t *testing.T) {
			entry := &models.NotificationLog{
				Recipient: "user@example.com",
				Subject:   "Phone number unassigned",
				Type:      models.NotificationTypeNumberUnassigned,
				Status:    models.NotificationStatusFailed,
				Error:     utils.ToPtr("smtp connect timeout"),
			}
			require.NoError(t, repo.Save(ctx, entry))

			reloaded, err := repo.ByID(ctx, entry.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			require.NotNil(t, reloaded.Error)
			assert.Equal(t, "smtp connect timeout", *reloaded.Error)
		})

		return nil
	})
	require.NoError(t, err)
}
