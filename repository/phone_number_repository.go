// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
	"gorm.io/gorm"
)

// PhoneNumberRepositoryImpl implements PhoneNumberRepository interface
type PhoneNumberRepositoryImpl struct {
	*BaseRepository[models.PhoneNumber, models.PhoneNumberFilter]
}

// NewPhoneNumberRepository creates a new phone number repository
func NewPhoneNumberRepository(db *gorm.DB) PhoneNumberRepository {
	return &PhoneNumberRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PhoneNumber, models.PhoneNumberFilter](db),
	}
}

// ByUUID retrieves a phone number by UUID (string)
func (r *PhoneNumberRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.PhoneNumber, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.PhoneNumberFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByNumber retrieves a phone number by its number string
func (r *PhoneNumberRepositoryImpl) ByNumber(ctx context.Context, number string) (*models.PhoneNumber, error) {
	filter := models.PhoneNumberFilter{Number: &number}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *PhoneNumberRepositoryImpl) applyFilter(query *gorm.DB, filter models.PhoneNumberFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Number != nil {
		query = query.Where("number = ?", *filter.Number)
	}
	if filter.Country != nil {
		query = query.Where("UPPER(country) = UPPER(?)", *filter.Country)
	}
	if filter.NumberType != nil {
		query = query.Where("number_type = ?", *filter.NumberType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.RateDeckID != nil {
		query = query.Where("rate_deck_id = ?", *filter.RateDeckID)
	}
	if filter.BackorderOnly != nil {
		query = query.Where("backorder_only = ?", *filter.BackorderOnly)
	}
	if filter.Search != nil {
		query = query.Where("number ILIKE ?", "%"+*filter.Search+"%")
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves phone numbers based on filter criteria
func (r *PhoneNumberRepositoryImpl) ByFilter(ctx context.Context, filter models.PhoneNumberFilter, orderBy string, limit, offset int) ([]*models.PhoneNumber, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PhoneNumber{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var numbers []*models.PhoneNumber
	if err := query.Find(&numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

// Count returns the number of phone numbers matching the filter
func (r *PhoneNumberRepositoryImpl) Count(ctx context.Context, filter models.PhoneNumberFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PhoneNumber{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any phone number matching the filter exists
func (r *PhoneNumberRepositoryImpl) Exists(ctx context.Context, filter models.PhoneNumberFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ClaimForAssignment atomically transitions a number from available to
// assigned. The WHERE clause on status makes two racing claims for the same
// number resolve to exactly one winner.
func (r *PhoneNumberRepositoryImpl) ClaimForAssignment(ctx context.Context, id uint, claim PhoneNumberClaim) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	updates := map[string]any{
		"status":            models.PhoneNumberStatusAssigned,
		"assigned_to":       claim.AssignedTo,
		"assigned_by":       claim.AssignedBy,
		"assigned_at":       claim.AssignedAt,
		"monthly_rate":      claim.MonthlyRate,
		"setup_fee":         claim.SetupFee,
		"currency":          claim.Currency,
		"billing_cycle":     claim.BillingCycle,
		"next_billing_date": claim.NextBillingDate,
		"unassigned_at":     nil,
		"unassigned_by":     nil,
		"unassigned_reason": nil,
		"updated_at":        utils.UTCNow(),
	}

	result := db.Model(&models.PhoneNumber{}).
		Where("id = ? AND status = ?", id, models.PhoneNumberStatusAvailable).
		Updates(updates)
	if result.Error != nil {
		err = result.Error
		return false, err
	}
	return result.RowsAffected > 0, nil
}

// ReleaseAssignment atomically transitions a number from assigned back to
// available, clearing assignment pointers. Used both by unassignment and by
// the compensating rollback after a failed assignment.
func (r *PhoneNumberRepositoryImpl) ReleaseAssignment(ctx context.Context, id uint, release PhoneNumberRelease) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	updates := map[string]any{
		"status":            models.PhoneNumberStatusAvailable,
		"assigned_to":       nil,
		"assigned_by":       nil,
		"assigned_at":       nil,
		"next_billing_date": nil,
		"updated_at":        utils.UTCNow(),
	}
	if release.UnassignedAt != nil {
		updates["unassigned_at"] = *release.UnassignedAt
	}
	if release.UnassignedBy != nil {
		updates["unassigned_by"] = *release.UnassignedBy
	}
	if release.UnassignedReason != nil {
		updates["unassigned_reason"] = *release.UnassignedReason
	}

	result := db.Model(&models.PhoneNumber{}).
		Where("id = ? AND status = ?", id, models.PhoneNumberStatusAssigned).
		Updates(updates)
	if result.Error != nil {
		err = result.Error
		return false, err
	}
	return result.RowsAffected > 0, nil
}
