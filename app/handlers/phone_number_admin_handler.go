// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/app/dto"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/app/middleware"
	businessflow "github.com/solusaas-git/ovoky-voip-platform-sub001/business_flow"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

// PhoneNumberAdminHandlerInterface defines handler methods for admin number operations
type PhoneNumberAdminHandlerInterface interface {
	AssignPhoneNumber(c fiber.Ctx) error
	UnassignPhoneNumber(c fiber.Ctx) error
	BulkUnassign(c fiber.Ctx) error
	ExportBillingLedger(c fiber.Ctx) error
}

// PhoneNumberAdminHandler implements admin number lifecycle endpoints
type PhoneNumberAdminHandler struct {
	assignmentFlow businessflow.AssignmentFlow
	bulkFlow       businessflow.BulkFlow
	reportFlow     businessflow.BillingReportFlow
	validator      *validator.Validate
}

func NewPhoneNumberAdminHandler(assignmentFlow businessflow.AssignmentFlow, bulkFlow businessflow.BulkFlow, reportFlow businessflow.BillingReportFlow) PhoneNumberAdminHandlerInterface {
	return &PhoneNumberAdminHandler{
		assignmentFlow: assignmentFlow,
		bulkFlow:       bulkFlow,
		reportFlow:     reportFlow,
		validator:      validator.New(),
	}
}

func (h *PhoneNumberAdminHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *PhoneNumberAdminHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// AssignPhoneNumber assigns a number to a user and opens its billing episode (admin)
// @Summary Assign Phone Number (Admin)
// @Tags Admin Phone Numbers
// @Accept json
// @Produce json
// @Param uuid path string true "Phone number UUID"
// @Param request body dto.AssignPhoneNumberRequest true "Assignment payload"
// @Success 200 {object} dto.APIResponse{data=dto.AssignPhoneNumberResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Number or user not found"
// @Failure 409 {object} dto.APIResponse "Number not available"
// @Router /api/v1/phone-numbers/{uuid}/assign [post]
func (h *PhoneNumberAdminHandler) AssignPhoneNumber(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok || adminID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	numberUUID := c.Params("uuid")
	if _, err := utils.ParseUUID(numberUUID); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phone number UUID", "INVALID_UUID", nil)
	}

	var req dto.AssignPhoneNumberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	ctx := h.createRequestContext(c, "/api/v1/phone-numbers/:uuid/assign")
	res, err := h.assignmentFlow.Assign(ctx, numberUUID, &req, adminID, businessflow.AssignOptions{}, metadata)
	if err != nil {
		middleware.RecordAssignmentOperation("assign", "failure")
		switch {
		case businessflow.IsPhoneNumberNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Phone number not found", "PHONE_NUMBER_NOT_FOUND", nil)
		case businessflow.IsUserNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		case businessflow.IsUserInactive(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "User account is not active", "USER_INACTIVE", nil)
		case businessflow.IsAssignmentAlreadyActive(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Number is already assigned to this user", "ASSIGNMENT_ALREADY_ACTIVE", nil)
		case businessflow.IsPhoneNumberNotAvailable(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Phone number is not available", "PHONE_NUMBER_NOT_AVAILABLE", nil)
		case businessflow.IsInvalidBillingStartDate(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid billing start date", "INVALID_BILLING_START_DATE", nil)
		}
		log.Println("Assign phone number failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Assignment failed", "ASSIGN_PHONE_NUMBER_FAILED", nil)
	}

	middleware.RecordAssignmentOperation("assign", "success")
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// UnassignPhoneNumber releases a number and closes its billing episode (admin)
// @Summary Unassign Phone Number (Admin)
// @Tags Admin Phone Numbers
// @Accept json
// @Produce json
// @Param uuid path string true "Phone number UUID"
// @Param request body dto.UnassignPhoneNumberRequest true "Unassignment payload"
// @Success 200 {object} dto.APIResponse{data=dto.UnassignPhoneNumberResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Number not found"
// @Failure 409 {object} dto.APIResponse "Number is not assigned"
// @Router /api/v1/phone-numbers/{uuid}/unassign [post]
func (h *PhoneNumberAdminHandler) UnassignPhoneNumber(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok || adminID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	numberUUID := c.Params("uuid")
	if _, err := utils.ParseUUID(numberUUID); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phone number UUID", "INVALID_UUID", nil)
	}

	var req dto.UnassignPhoneNumberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	ctx := h.createRequestContext(c, "/api/v1/phone-numbers/:uuid/unassign")
	res, err := h.assignmentFlow.Unassign(ctx, numberUUID, &req, adminID, businessflow.UnassignOptions{}, metadata)
	if err != nil {
		middleware.RecordAssignmentOperation("unassign", "failure")
		switch {
		case businessflow.IsPhoneNumberNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Phone number not found", "PHONE_NUMBER_NOT_FOUND", nil)
		case businessflow.IsPhoneNumberNotAssigned(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Phone number is not assigned", "PHONE_NUMBER_NOT_ASSIGNED", nil)
		case businessflow.IsActiveAssignmentNotFound(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "No active assignment for this number", "ACTIVE_ASSIGNMENT_NOT_FOUND", nil)
		case businessflow.IsRefundAmountRequired(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Refund amount is required when creating a refund", "REFUND_AMOUNT_REQUIRED", nil)
		}
		log.Println("Unassign phone number failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Unassignment failed", "UNASSIGN_PHONE_NUMBER_FAILED", nil)
	}

	middleware.RecordAssignmentOperation("unassign", "success")
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// BulkUnassign releases a batch of numbers with per-item failure boundaries (admin)
// @Summary Bulk Unassign Phone Numbers (Admin)
// @Tags Admin Phone Numbers
// @Accept json
// @Produce json
// @Param request body dto.BulkUnassignRequest true "Bulk unassign payload"
// @Success 200 {object} dto.APIResponse{data=dto.BulkOperationResponse}
// @Failure 400 {object} dto.APIResponse "Validation error or all items failed"
// @Failure 207 {object} dto.APIResponse "Partial success"
// @Router /api/v1/phone-numbers/bulk-unassign [post]
func (h *PhoneNumberAdminHandler) BulkUnassign(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok || adminID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin authentication required", "ADMIN_AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.BulkUnassignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	ctx := h.createRequestContext(c, "/api/v1/phone-numbers/bulk-unassign")
	res, err := h.bulkFlow.BulkUnassign(ctx, &req, adminID, metadata)
	if err != nil {
		middleware.RecordAssignmentOperation("bulk_unassign", "failure")
		if businessflow.IsRefundAmountRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Refund amount is required when creating refunds", "REFUND_AMOUNT_REQUIRED", nil)
		}
		log.Println("Bulk unassign failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Bulk unassign failed", "BULK_UNASSIGN_FAILED", nil)
	}

	switch {
	case res.AllFailed():
		middleware.RecordAssignmentOperation("bulk_unassign", "failure")
		return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{Success: false, Message: res.Message, Data: res})
	case res.PartialSuccess():
		middleware.RecordAssignmentOperation("bulk_unassign", "partial")
		return c.Status(fiber.StatusMultiStatus).JSON(dto.APIResponse{Success: true, Message: res.Message, Data: res})
	default:
		middleware.RecordAssignmentOperation("bulk_unassign", "success")
		return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
	}
}

// ExportBillingLedger streams the billing ledger as an XLSX attachment (admin)
// @Summary Export Billing Ledger (Admin)
// @Tags Admin Phone Numbers
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Entry status filter"
// @Param transaction_type query string false "Transaction type filter"
// @Success 200 {file} binary "XLSX file"
// @Failure 500 {object} dto.APIResponse "Export failed"
// @Router /api/v1/phone-numbers/billing/export [get]
func (h *PhoneNumberAdminHandler) ExportBillingLedger(c fiber.Ctx) error {
	var req dto.BillingExportRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	ctx := h.createRequestContext(c, "/api/v1/phone-numbers/billing/export")
	filename, data, err := h.reportFlow.ExportLedger(ctx, &req, metadata)
	if err != nil {
		log.Println("Billing ledger export failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Export failed", "BILLING_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *PhoneNumberAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PhoneNumberAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
