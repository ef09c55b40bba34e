// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
	"gorm.io/gorm"
)

// PhoneNumberBillingRepositoryImpl implements PhoneNumberBillingRepository interface
type PhoneNumberBillingRepositoryImpl struct {
	*BaseRepository[models.PhoneNumberBilling, models.PhoneNumberBillingFilter]
}

// NewPhoneNumberBillingRepository creates a new billing repository
func NewPhoneNumberBillingRepository(db *gorm.DB) PhoneNumberBillingRepository {
	return &PhoneNumberBillingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PhoneNumberBilling, models.PhoneNumberBillingFilter](db),
	}
}

// PendingByAssignment retrieves pending ledger entries anchored to an assignment
func (r *PhoneNumberBillingRepositoryImpl) PendingByAssignment(ctx context.Context, assignmentID uint) ([]*models.PhoneNumberBilling, error) {
	status := models.BillingStatusPending
	filter := models.PhoneNumberBillingFilter{AssignmentID: &assignmentID, Status: &status}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// PendingByNumberAndUser retrieves pending ledger entries by owner pair.
// Historical entries created before the assignment foreign key existed are
// only reachable this way.
func (r *PhoneNumberBillingRepositoryImpl) PendingByNumberAndUser(ctx context.Context, phoneNumberID, userID uint) ([]*models.PhoneNumberBilling, error) {
	status := models.BillingStatusPending
	filter := models.PhoneNumberBillingFilter{PhoneNumberID: &phoneNumberID, UserID: &userID, Status: &status}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// CancelPending flips the given entries to cancelled in a single statement.
// The status guard keeps entries already processed by the billing processor
// out of the update.
func (r *PhoneNumberBillingRepositoryImpl) CancelPending(ctx context.Context, ids []uint, reason string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
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

	result := db.Model(&models.PhoneNumberBilling{}).
		Where("id IN ? AND status = ?", ids, models.BillingStatusPending).
		Updates(map[string]any{
			"status":         models.BillingStatusCancelled,
			"failure_reason": reason,
			"updated_at":     utils.UTCNow(),
		})
	if result.Error != nil {
		err = result.Error
		return 0, err
	}
	return result.RowsAffected, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *PhoneNumberBillingRepositoryImpl) applyFilter(query *gorm.DB, filter models.PhoneNumberBillingFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.PhoneNumberID != nil {
		query = query.Where("phone_number_id = ?", *filter.PhoneNumberID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.TransactionType != nil {
		query = query.Where("transaction_type = ?", *filter.TransactionType)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves billing entries based on filter criteria
func (r *PhoneNumberBillingRepositoryImpl) ByFilter(ctx context.Context, filter models.PhoneNumberBillingFilter, orderBy string, limit, offset int) ([]*models.PhoneNumberBilling, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PhoneNumberBilling{})

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

	var entries []*models.PhoneNumberBilling
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of billing entries matching the filter
func (r *PhoneNumberBillingRepositoryImpl) Count(ctx context.Context, filter models.PhoneNumberBillingFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PhoneNumberBilling{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any billing entry matching the filter exists
func (r *PhoneNumberBillingRepositoryImpl) Exists(ctx context.Context, filter models.PhoneNumberBillingFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
