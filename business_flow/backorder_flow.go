// Package businessflow contains use cases for the backorder catalog
package businessflow

import (
	"context"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/app/dto"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// BackorderFlow lists backorder-only numbers that are still available,
// enriched with their currently resolved rate.
type BackorderFlow interface {
	ListBackorderAvailable(ctx context.Context, req *dto.BackorderAvailableRequest, metadata *ClientMetadata) (*dto.BackorderAvailableResponse, error)
}

type BackorderFlowImpl struct {
	phoneRepo repository.PhoneNumberRepository
	resolver  RateResolver
}

// NewBackorderFlow creates a new backorder flow
func NewBackorderFlow(phoneRepo repository.PhoneNumberRepository, resolver RateResolver) BackorderFlow {
	return &BackorderFlowImpl{phoneRepo: phoneRepo, resolver: resolver}
}

// ListBackorderAvailable returns a page of available backorder-only numbers.
// Numbers without a deck or a matching prefix fall back to their snapshot
// pricing, so the catalog never hides a number over missing rates.
func (f *BackorderFlowImpl) ListBackorderAvailable(ctx context.Context, req *dto.BackorderAvailableRequest, metadata *ClientMetadata) (resp *dto.BackorderAvailableResponse, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("LIST_BACKORDER_AVAILABLE_FAILED", "Failed to list backorder numbers", err)
		}
	}()

	page := req.Page
	if page < 1 {
		page = defaultPage
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	filter := models.PhoneNumberFilter{
		Status:        utils.ToPtr(models.PhoneNumberStatusAvailable),
		BackorderOnly: utils.ToPtr(true),
		Country:       req.Country,
		NumberType:    req.NumberType,
		Search:        req.Search,
	}

	total, err := f.phoneRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows, err := f.phoneRepo.ByFilter(ctx, filter, "number ASC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]dto.BackorderNumberItem, 0, len(rows))
	for _, number := range rows {
		item := dto.BackorderNumberItem{
			UUID:        number.UUID.String(),
			Number:      number.Number,
			Country:     number.Country,
			NumberType:  number.NumberType,
			MonthlyRate: number.MonthlyRate,
			SetupFee:    number.SetupFee,
			Currency:    number.Currency,
		}
		if item.Currency == "" {
			item.Currency = utils.DefaultCurrency
		}

		resolved, rerr := f.resolver.Resolve(ctx, number.Number, number.Country, number.NumberType, number.RateDeckID)
		if rerr == nil && resolved != nil {
			item.MonthlyRate = resolved.MonthlyRate
			item.SetupFee = resolved.SetupFee
			item.RatePrefix = &resolved.Prefix
		}

		items = append(items, item)
	}

	return &dto.BackorderAvailableResponse{
		Message: "Backorder numbers retrieved successfully",
		Items:   items,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}
