// Package businessflow contains the core business logic and use cases for number assignment workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Lookup errors
	ErrPhoneNumberNotFound      = errors.New("phone number not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrUserInactive             = errors.New("user account is inactive")
	ErrActiveAssignmentNotFound = errors.New("active assignment not found")

	// State transition errors
	ErrPhoneNumberNotAvailable   = errors.New("phone number is not available")
	ErrPhoneNumberNotAssigned    = errors.New("phone number is not assigned")
	ErrAssignmentAlreadyActive   = errors.New("assignment already active for this user")
	ErrPhoneNumberNotPurchasable = errors.New("phone number is not directly purchasable")

	// Input errors
	ErrInvalidBillingStartDate = errors.New("billing start date is invalid")
	ErrRefundAmountRequired    = errors.New("refund amount is required when creating a refund")

	// Persistence errors
	ErrAssignmentCommitFailed   = errors.New("assignment could not be recorded")
	ErrUnassignmentCommitFailed = errors.New("unassignment could not be recorded")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsPhoneNumberNotFound(err error) bool {
	return errors.Is(err, ErrPhoneNumberNotFound)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsUserInactive(err error) bool {
	return errors.Is(err, ErrUserInactive)
}

func IsActiveAssignmentNotFound(err error) bool {
	return errors.Is(err, ErrActiveAssignmentNotFound)
}

func IsPhoneNumberNotAvailable(err error) bool {
	return errors.Is(err, ErrPhoneNumberNotAvailable)
}

func IsPhoneNumberNotAssigned(err error) bool {
	return errors.Is(err, ErrPhoneNumberNotAssigned)
}

func IsAssignmentAlreadyActive(err error) bool {
	return errors.Is(err, ErrAssignmentAlreadyActive)
}

func IsPhoneNumberNotPurchasable(err error) bool {
	return errors.Is(err, ErrPhoneNumberNotPurchasable)
}

func IsInvalidBillingStartDate(err error) bool {
	return errors.Is(err, ErrInvalidBillingStartDate)
}

func IsRefundAmountRequired(err error) bool {
	return errors.Is(err, ErrRefundAmountRequired)
}

func IsAssignmentCommitFailed(err error) bool {
	return errors.Is(err, ErrAssignmentCommitFailed)
}

func IsUnassignmentCommitFailed(err error) bool {
	return errors.Is(err, ErrUnassignmentCommitFailed)
}
