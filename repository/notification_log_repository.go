// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"gorm.io/gorm"
)

// NotificationLogRepositoryImpl implements NotificationLogRepository interface
type NotificationLogRepositoryImpl struct {
	*BaseRepository[models.NotificationLog, models.NotificationLogFilter]
}

// NewNotificationLogRepository creates a new notification log repository
func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &NotificationLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.NotificationLog, models.NotificationLogFilter](db),
	}
}

// applyFilter applies filter criteria to a GORM query
func (r *NotificationLogRepositoryImpl) applyFilter(query *gorm.DB, filter models.NotificationLogFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Recipient != nil {
		query = query.Where("recipient = ?", *filter.Recipient)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PhoneNumberID != nil {
		query = query.Where("phone_number_id = ?", *filter.PhoneNumberID)
	}
	return query
}

// ByFilter retrieves notification logs based on filter criteria
func (r *NotificationLogRepositoryImpl) ByFilter(ctx context.Context, filter models.NotificationLogFilter, orderBy string, limit, offset int) ([]*models.NotificationLog, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.NotificationLog{})

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

	var logs []*models.NotificationLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Count returns the number of notification logs matching the filter
func (r *NotificationLogRepositoryImpl) Count(ctx context.Context, filter models.NotificationLogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.NotificationLog{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any notification log matching the filter exists
func (r *NotificationLogRepositoryImpl) Exists(ctx context.Context, filter models.NotificationLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
