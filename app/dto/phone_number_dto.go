// Package dto contains Data Transfer Objects for API request and response structures
package dto

// UserRefDTO is the nested owner reference exposed on transformed numbers
type UserRefDTO struct {
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RateDeckDTO is the nested rate deck reference exposed on transformed numbers
type RateDeckDTO struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// PhoneNumberDTO is the transformed phone number record returned by the API.
// Identifiers are UUID strings and all dates are RFC3339.
type PhoneNumberDTO struct {
	UUID       string `json:"uuid"`
	Number     string `json:"number"`
	Country    string `json:"country"`
	NumberType string `json:"number_type"`
	Status     string `json:"status"`

	AssignedToUser *UserRefDTO `json:"assigned_to_user,omitempty"`
	AssignedAt     *string     `json:"assigned_at,omitempty"`

	UnassignedAt     *string `json:"unassigned_at,omitempty"`
	UnassignedReason *string `json:"unassigned_reason,omitempty"`

	MonthlyRate     float64 `json:"monthly_rate"`
	SetupFee        float64 `json:"setup_fee"`
	Currency        string  `json:"currency"`
	BillingCycle    string  `json:"billing_cycle"`
	NextBillingDate *string `json:"next_billing_date,omitempty"`
	LastBilledDate  *string `json:"last_billed_date,omitempty"`

	RateDeck      *RateDeckDTO `json:"rate_deck,omitempty"`
	BackorderOnly bool         `json:"backorder_only"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AssignmentDTO is the transformed assignment episode record
type AssignmentDTO struct {
	UUID             string  `json:"uuid"`
	Status           string  `json:"status"`
	AssignedAt       string  `json:"assigned_at"`
	BillingStartDate string  `json:"billing_start_date"`
	BillingEndDate   *string `json:"billing_end_date,omitempty"`
	MonthlyRate      float64 `json:"monthly_rate"`
	SetupFee         float64 `json:"setup_fee"`
	Currency         string  `json:"currency"`
	BillingCycle     string  `json:"billing_cycle"`
}

// AssignPhoneNumberRequest is the admin payload to assign a number to a user
type AssignPhoneNumberRequest struct {
	UserID           string  `json:"user_id" validate:"required,uuid4"`
	BillingStartDate *string `json:"billing_start_date,omitempty" validate:"omitempty"`
	Notes            *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// AssignPhoneNumberResponse wraps the transformed number after assignment
type AssignPhoneNumberResponse struct {
	Message     string         `json:"message"`
	PhoneNumber PhoneNumberDTO `json:"phone_number"`
	Assignment  AssignmentDTO  `json:"assignment"`
}

// UnassignPhoneNumberRequest is the admin payload to unassign a number.
// CancelPendingBilling defaults to true when omitted.
type UnassignPhoneNumberRequest struct {
	Reason               *string  `json:"reason,omitempty" validate:"omitempty,max=255"`
	CancelPendingBilling *bool    `json:"cancel_pending_billing,omitempty" validate:"omitempty"`
	CreateRefund         bool     `json:"create_refund,omitempty"`
	RefundAmount         *float64 `json:"refund_amount,omitempty" validate:"omitempty,gt=0"`
}

// UnassignPhoneNumberResponse reports the outcome of an unassignment
type UnassignPhoneNumberResponse struct {
	Message           string         `json:"message"`
	PhoneNumber       PhoneNumberDTO `json:"phone_number"`
	CancelledBillings int64          `json:"cancelled_billings"`
	RefundCreated     bool           `json:"refund_created"`
	IntegrityWarning  *string        `json:"integrity_warning,omitempty"`
}

// BackorderAvailableRequest carries query filters for the backorder listing
type BackorderAvailableRequest struct {
	Page       int     `query:"page" validate:"omitempty,min=1"`
	PageSize   int     `query:"page_size" validate:"omitempty,min=1,max=100"`
	Country    *string `query:"country" validate:"omitempty,len=2"`
	NumberType *string `query:"number_type" validate:"omitempty"`
	Search     *string `query:"search" validate:"omitempty,max=20"`
}

// BackorderNumberItem is one backorder-only number enriched with its resolved rate
type BackorderNumberItem struct {
	UUID        string  `json:"uuid"`
	Number      string  `json:"number"`
	Country     string  `json:"country"`
	NumberType  string  `json:"number_type"`
	MonthlyRate float64 `json:"monthly_rate"`
	SetupFee    float64 `json:"setup_fee"`
	Currency    string  `json:"currency"`
	RatePrefix  *string `json:"rate_prefix,omitempty"`
}

// BackorderAvailableResponse wraps the backorder listing
type BackorderAvailableResponse struct {
	Message    string                `json:"message"`
	Items      []BackorderNumberItem `json:"items"`
	Pagination PaginationDTO         `json:"pagination"`
}

// BillingExportRequest carries query filters for the admin ledger export
type BillingExportRequest struct {
	Status          *string `query:"status" validate:"omitempty,oneof=pending processed cancelled failed"`
	TransactionType *string `query:"transaction_type" validate:"omitempty,oneof=setup_fee monthly_fee refund"`
	UserID          *uint   `query:"user_id" validate:"omitempty,gt=0"`
	CreatedAfter    *string `query:"created_after" validate:"omitempty,datetime=2006-01-02"`
	CreatedBefore   *string `query:"created_before" validate:"omitempty,datetime=2006-01-02"`
}
