// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"gorm.io/gorm"
)

// RateRepositoryImpl implements RateRepository interface
type RateRepositoryImpl struct {
	*BaseRepository[models.Rate, models.RateFilter]
}

// NewRateRepository creates a new rate repository
func NewRateRepository(db *gorm.DB) RateRepository {
	return &RateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Rate, models.RateFilter](db),
	}
}

// ByDeck retrieves all rates belonging to a rate deck
func (r *RateRepositoryImpl) ByDeck(ctx context.Context, rateDeckID uint) ([]*models.Rate, error) {
	filter := models.RateFilter{RateDeckID: &rateDeckID}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *RateRepositoryImpl) applyFilter(query *gorm.DB, filter models.RateFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.RateDeckID != nil {
		query = query.Where("rate_deck_id = ?", *filter.RateDeckID)
	}
	if filter.Country != nil {
		query = query.Where("UPPER(country) = UPPER(?)", *filter.Country)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Prefix != nil {
		query = query.Where("prefix = ?", *filter.Prefix)
	}
	return query
}

// ByFilter retrieves rates based on filter criteria
func (r *RateRepositoryImpl) ByFilter(ctx context.Context, filter models.RateFilter, orderBy string, limit, offset int) ([]*models.Rate, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Rate{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rates []*models.Rate
	if err := query.Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// Count returns the number of rates matching the filter
func (r *RateRepositoryImpl) Count(ctx context.Context, filter models.RateFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Rate{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any rate matching the filter exists
func (r *RateRepositoryImpl) Exists(ctx context.Context, filter models.RateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RateDeckRepositoryImpl implements RateDeckRepository interface
type RateDeckRepositoryImpl struct {
	*BaseRepository[models.RateDeck, models.RateDeckFilter]
}

// NewRateDeckRepository creates a new rate deck repository
func NewRateDeckRepository(db *gorm.DB) RateDeckRepository {
	return &RateDeckRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RateDeck, models.RateDeckFilter](db),
	}
}

// applyFilter applies filter criteria to a GORM query
func (r *RateDeckRepositoryImpl) applyFilter(query *gorm.DB, filter models.RateDeckFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves rate decks based on filter criteria
func (r *RateDeckRepositoryImpl) ByFilter(ctx context.Context, filter models.RateDeckFilter, orderBy string, limit, offset int) ([]*models.RateDeck, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.RateDeck{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var decks []*models.RateDeck
	if err := query.Find(&decks).Error; err != nil {
		return nil, err
	}
	return decks, nil
}

// Count returns the number of rate decks matching the filter
func (r *RateDeckRepositoryImpl) Count(ctx context.Context, filter models.RateDeckFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.RateDeck{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any rate deck matching the filter exists
func (r *RateDeckRepositoryImpl) Exists(ctx context.Context, filter models.RateDeckFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
