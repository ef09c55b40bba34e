// Package testing provides test utilities and database setup for integration tests
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active user with a bcrypt-hashed password
func (tf *TestFixtures) CreateTestUser(role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := rand.Intn(10000000)
	user := &models.User{
		UUID:         uuid.New(),
		Email:        fmt.Sprintf("user.%d@example.com", suffix),
		FirstName:    "John",
		LastName:     "Doe",
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestRateDeck creates a deck with one rate row per given prefix
func (tf *TestFixtures) CreateTestRateDeck(country, numberType string, prefixes ...string) (*models.RateDeck, error) {
	deck := &models.RateDeck{
		Name:     fmt.Sprintf("Test Deck %d", rand.Intn(10000000)),
		Currency: "EUR",
		IsActive: utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(deck).Error; err != nil {
		return nil, fmt.Errorf("failed to create test rate deck: %w", err)
	}

	for i, prefix := range prefixes {
		rate := &models.Rate{
			RateDeckID: deck.ID,
			Country:    country,
			Type:       numberType,
			Prefix:     prefix,
			Rate:       float64(i+1) * 2.5,
			SetupFee:   1.0,
		}
		if err := tf.DB.DB.Create(rate).Error; err != nil {
			return nil, fmt.Errorf("failed to create test rate for prefix %s: %w", prefix, err)
		}
	}

	return deck, nil
}

// CreateTestPhoneNumber creates an available number with a pricing snapshot
func (tf *TestFixtures) CreateTestPhoneNumber(rateDeckID *uint) (*models.PhoneNumber, error) {
	number := &models.PhoneNumber{
		UUID:          uuid.New(),
		Number:        fmt.Sprintf("+3312%07d", rand.Intn(10000000)),
		Country:       "FR",
		NumberType:    models.NumberTypeGeographic,
		Status:        models.PhoneNumberStatusAvailable,
		MonthlyRate:   5.0,
		SetupFee:      1.5,
		Currency:      "EUR",
		BillingCycle:  models.BillingCycleMonthly,
		RateDeckID:    rateDeckID,
		BackorderOnly: utils.ToPtr(false),
	}

	if err := tf.DB.DB.Create(number).Error; err != nil {
		return nil, fmt.Errorf("failed to create test phone number: %w", err)
	}

	return number, nil
}

// CreateTestAssignment opens an active assignment episode for a number
func (tf *TestFixtures) CreateTestAssignment(number *models.PhoneNumber, userID, assignedBy uint) (*models.PhoneNumberAssignment, error) {
	now := utils.UTCNow()
	assignment := &models.PhoneNumberAssignment{
		UUID:             uuid.New(),
		PhoneNumberID:    number.ID,
		UserID:           userID,
		AssignedBy:       assignedBy,
		AssignedAt:       now,
		Status:           models.AssignmentStatusActive,
		BillingStartDate: now,
		MonthlyRate:      number.MonthlyRate,
		SetupFee:         number.SetupFee,
		Currency:         number.Currency,
		BillingCycle:     number.BillingCycle,
	}

	if err := tf.DB.DB.Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test assignment: %w", err)
	}

	return assignment, nil
}

// CreateTestBillingEntry creates one pending ledger entry anchored to an assignment
func (tf *TestFixtures) CreateTestBillingEntry(number *models.PhoneNumber, userID uint, assignmentID *uint, transactionType string, amount float64) (*models.PhoneNumberBilling, error) {
	now := utils.UTCNow()
	entry := &models.PhoneNumberBilling{
		UUID:               uuid.New(),
		PhoneNumberID:      number.ID,
		UserID:             userID,
		AssignmentID:       assignmentID,
		BillingPeriodStart: now,
		Amount:             amount,
		Currency:           number.Currency,
		Status:             models.BillingStatusPending,
		BillingDate:        now,
		TransactionType:    transactionType,
	}

	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create test billing entry: %w", err)
	}

	return entry, nil
}
