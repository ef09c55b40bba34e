// Package dto contains Data Transfer Objects for API request and response structures
package dto

// BulkPurchaseRequest is the self-service payload to purchase numbers in bulk
type BulkPurchaseRequest struct {
	PhoneNumberUUIDs []string `json:"phone_number_uuids" validate:"required,min=1,max=20,dive,uuid4"`
}

// BulkUnassignRequest is the admin payload to unassign numbers in bulk
type BulkUnassignRequest struct {
	PhoneNumberUUIDs     []string `json:"phone_number_uuids" validate:"required,min=1,max=50,dive,uuid4"`
	Reason               *string  `json:"reason,omitempty" validate:"omitempty,max=255"`
	CancelPendingBilling *bool    `json:"cancel_pending_billing,omitempty" validate:"omitempty"`
	CreateRefund         bool     `json:"create_refund,omitempty"`
	RefundAmount         *float64 `json:"refund_amount,omitempty" validate:"omitempty,gt=0"`
}

// BulkItemSuccess carries enough detail to render a per-number receipt
type BulkItemSuccess struct {
	PhoneNumberUUID   string  `json:"phone_number_uuid"`
	Number            string  `json:"number"`
	MonthlyRate       float64 `json:"monthly_rate"`
	SetupFee          float64 `json:"setup_fee"`
	Currency          string  `json:"currency"`
	PreviousUserUUID  *string `json:"previous_user_uuid,omitempty"`
	NewUserUUID       *string `json:"new_user_uuid,omitempty"`
	CancelledBillings int64   `json:"cancelled_billings,omitempty"`
	RefundCreated     bool    `json:"refund_created,omitempty"`
}

// BulkItemFailure records one failed item without aborting the batch
type BulkItemFailure struct {
	PhoneNumberUUID string  `json:"phone_number_uuid"`
	Number          *string `json:"number,omitempty"`
	Reason          string  `json:"reason"`
}

// BulkSummary aggregates counters across the whole batch
type BulkSummary struct {
	Total                  int     `json:"total"`
	Successful             int     `json:"successful"`
	Failed                 int     `json:"failed"`
	TotalMonthly           float64 `json:"total_monthly"`
	TotalSetup             float64 `json:"total_setup"`
	TotalRefunded          float64 `json:"total_refunded"`
	TotalCancelledBillings int64   `json:"total_cancelled_billings"`
	Currency               string  `json:"currency"`
}

// BulkOperationResponse is the itemized outcome of a bulk operation.
// Callers rely on the 200/400/207 status policy derived from it.
type BulkOperationResponse struct {
	Message    string            `json:"message"`
	Successful []BulkItemSuccess `json:"successful"`
	Failed     []BulkItemFailure `json:"failed"`
	Summary    BulkSummary       `json:"summary"`
}

// AllFailed reports whether not a single item went through
func (r *BulkOperationResponse) AllFailed() bool {
	return len(r.Successful) == 0 && len(r.Failed) > 0
}

// PartialSuccess reports whether the batch had both outcomes
func (r *BulkOperationResponse) PartialSuccess() bool {
	return len(r.Successful) > 0 && len(r.Failed) > 0
}
