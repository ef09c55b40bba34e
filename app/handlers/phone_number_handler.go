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
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

// PhoneNumberHandlerInterface defines handler methods for self-service number operations
type PhoneNumberHandlerInterface interface {
	BulkPurchase(c fiber.Ctx) error
	ListBackorderAvailable(c fiber.Ctx) error
}

// PhoneNumberHandler implements customer-facing number endpoints
type PhoneNumberHandler struct {
	bulkFlow      businessflow.BulkFlow
	backorderFlow businessflow.BackorderFlow
	userRepo      repository.UserRepository
	validator     *validator.Validate
}

func NewPhoneNumberHandler(bulkFlow businessflow.BulkFlow, backorderFlow businessflow.BackorderFlow, userRepo repository.UserRepository) PhoneNumberHandlerInterface {
	return &PhoneNumberHandler{
		bulkFlow:      bulkFlow,
		backorderFlow: backorderFlow,
		userRepo:      userRepo,
		validator:     validator.New(),
	}
}

func (h *PhoneNumberHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *PhoneNumberHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// BulkPurchase purchases a batch of directly purchasable numbers for the
// authenticated user. Items fail independently; the response is itemized.
// @Summary Bulk Purchase Phone Numbers
// @Tags Phone Numbers
// @Accept json
// @Produce json
// @Param request body dto.BulkPurchaseRequest true "Bulk purchase payload"
// @Success 200 {object} dto.APIResponse{data=dto.BulkOperationResponse}
// @Failure 400 {object} dto.APIResponse "Validation error or all items failed"
// @Failure 207 {object} dto.APIResponse "Partial success"
// @Router /api/v1/phone-numbers/purchase/bulk [post]
func (h *PhoneNumberHandler) BulkPurchase(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.BulkPurchaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	ctx := h.createRequestContext(c, "/api/v1/phone-numbers/purchase/bulk")

	buyer, err := h.userRepo.ByID(ctx, userID)
	if err != nil || buyer == nil {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", "USER_NOT_FOUND", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.bulkFlow.BulkPurchase(ctx, &req, buyer.UUID.String(), metadata)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}
		if businessflow.IsUserInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Account is not active", "USER_INACTIVE", nil)
		}
		log.Println("Bulk purchase failed:", err)
		middleware.RecordAssignmentOperation("bulk_purchase", "failure")
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Bulk purchase failed", "BULK_PURCHASE_FAILED", nil)
	}

	return h.bulkOutcome(c, "bulk_purchase", res)
}

// ListBackorderAvailable lists available backorder-only numbers with resolved rates
// @Summary List Backorder Available Numbers
// @Tags Phone Numbers
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param country query string false "Two-letter country code"
// @Param number_type query string false "Number type"
// @Param search query string false "Number search fragment"
// @Success 200 {object} dto.APIResponse{data=dto.BackorderAvailableResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/phone-numbers/backorder-available [get]
func (h *PhoneNumberHandler) ListBackorderAvailable(c fiber.Ctx) error {
	var req dto.BackorderAvailableRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.backorderFlow.ListBackorderAvailable(h.createRequestContext(c, "/api/v1/phone-numbers/backorder-available"), &req, metadata)
	if err != nil {
		log.Println("List backorder available numbers failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list backorder numbers", "LIST_BACKORDER_AVAILABLE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Backorder numbers retrieved", res)
}

// bulkOutcome maps an itemized bulk result onto the 200/400/207 status policy
func (h *PhoneNumberHandler) bulkOutcome(c fiber.Ctx, operation string, res *dto.BulkOperationResponse) error {
	switch {
	case res.AllFailed():
		middleware.RecordAssignmentOperation(operation, "failure")
		return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{Success: false, Message: res.Message, Data: res})
	case res.PartialSuccess():
		middleware.RecordAssignmentOperation(operation, "partial")
		return c.Status(fiber.StatusMultiStatus).JSON(dto.APIResponse{Success: true, Message: res.Message, Data: res})
	default:
		middleware.RecordAssignmentOperation(operation, "success")
		return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
	}
}

func (h *PhoneNumberHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PhoneNumberHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
