// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
	"gorm.io/gorm"
)

// PhoneNumberAssignmentRepositoryImpl implements PhoneNumberAssignmentRepository interface
type PhoneNumberAssignmentRepositoryImpl struct {
	*BaseRepository[models.PhoneNumberAssignment, models.PhoneNumberAssignmentFilter]
}

// NewPhoneNumberAssignmentRepository creates a new assignment repository
func NewPhoneNumberAssignmentRepository(db *gorm.DB) PhoneNumberAssignmentRepository {
	return &PhoneNumberAssignmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PhoneNumberAssignment, models.PhoneNumberAssignmentFilter](db),
	}
}

// ByUUID retrieves an assignment by UUID (string)
func (r *PhoneNumberAssignmentRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.PhoneNumberAssignment, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.PhoneNumberAssignmentFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ActiveByPhoneNumber retrieves the active assignment for a number, if any
func (r *PhoneNumberAssignmentRepositoryImpl) ActiveByPhoneNumber(ctx context.Context, phoneNumberID uint) (*models.PhoneNumberAssignment, error) {
	status := models.AssignmentStatusActive
	filter := models.PhoneNumberAssignmentFilter{PhoneNumberID: &phoneNumberID, Status: &status}
	items, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ActiveByPhoneNumberAndUser retrieves the active assignment for a (number, user) pair, if any
func (r *PhoneNumberAssignmentRepositoryImpl) ActiveByPhoneNumberAndUser(ctx context.Context, phoneNumberID, userID uint) (*models.PhoneNumberAssignment, error) {
	status := models.AssignmentStatusActive
	filter := models.PhoneNumberAssignmentFilter{PhoneNumberID: &phoneNumberID, UserID: &userID, Status: &status}
	items, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// CountActiveByPhoneNumber counts active assignment rows for a number.
// Anything above one (or above zero right after an unassignment) is a
// data-integrity fault the caller must surface.
func (r *PhoneNumberAssignmentRepositoryImpl) CountActiveByPhoneNumber(ctx context.Context, phoneNumberID uint) (int64, error) {
	status := models.AssignmentStatusActive
	return r.Count(ctx, models.PhoneNumberAssignmentFilter{PhoneNumberID: &phoneNumberID, Status: &status})
}

// End closes an active assignment episode
func (r *PhoneNumberAssignmentRepositoryImpl) End(ctx context.Context, id uint, end AssignmentEnd) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
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
		"status":           models.AssignmentStatusEnded,
		"billing_end_date": end.BillingEndDate,
		"unassigned_at":    end.UnassignedAt,
		"unassigned_by":    end.UnassignedBy,
		"updated_at":       utils.UTCNow(),
	}
	if end.UnassignedReason != nil {
		updates["unassigned_reason"] = *end.UnassignedReason
	}

	result := db.Model(&models.PhoneNumberAssignment{}).
		Where("id = ? AND status = ?", id, models.AssignmentStatusActive).
		Updates(updates)
	if result.Error != nil {
		err = result.Error
		return err
	}
	if result.RowsAffected == 0 {
		err = errors.New("assignment is not active")
		return err
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *PhoneNumberAssignmentRepositoryImpl) applyFilter(query *gorm.DB, filter models.PhoneNumberAssignmentFilter) *gorm.DB {
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
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves assignments based on filter criteria
func (r *PhoneNumberAssignmentRepositoryImpl) ByFilter(ctx context.Context, filter models.PhoneNumberAssignmentFilter, orderBy string, limit, offset int) ([]*models.PhoneNumberAssignment, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PhoneNumberAssignment{})

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

	var assignments []*models.PhoneNumberAssignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// Count returns the number of assignments matching the filter
func (r *PhoneNumberAssignmentRepositoryImpl) Count(ctx context.Context, filter models.PhoneNumberAssignmentFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PhoneNumberAssignment{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any assignment matching the filter exists
func (r *PhoneNumberAssignmentRepositoryImpl) Exists(ctx context.Context, filter models.PhoneNumberAssignmentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
