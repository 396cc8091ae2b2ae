package repositories

import (
	"context"

	"buildease/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// estimateRepository implements EstimateRepository interface
type estimateRepository struct {
	db *gorm.DB
}

// NewEstimateRepository creates a new estimate repository
func NewEstimateRepository(db *gorm.DB) EstimateRepository {
	return &estimateRepository{db: db}
}

// CreateWithItems inserts the estimate and all item rows in one transaction.
// A failure on any item insert rolls back the estimate insert as well.
func (r *estimateRepository) CreateWithItems(ctx context.Context, estimate *models.Estimate, items []models.EstimateItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(estimate).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].EstimateID = estimate.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		estimate.Items = items
		return nil
	})
}

// GetByID gets an estimate with its items and stages
func (r *estimateRepository) GetByID(ctx context.Context, id uint) (*models.Estimate, error) {
	var estimate models.Estimate
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Stages").
		First(&estimate, id).Error
	if err != nil {
		return nil, err
	}
	return &estimate, nil
}

// ListByOwner lists an owner's estimates with an optional status filter.
// The total count runs against the same predicate as the page query.
func (r *estimateRepository) ListByOwner(ctx context.Context, ownerID string, status string, offset, limit int) ([]*models.Estimate, int64, error) {
	var estimates []*models.Estimate
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Estimate{}).Where("owner_id = ?", ownerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&estimates).Error

	return estimates, total, err
}

// UpdateWithItems saves the estimate row and replaces its whole item set
// (delete-all-then-reinsert-all) inside one transaction, so concurrent
// readers never observe a half-replaced item set.
func (r *estimateRepository) UpdateWithItems(ctx context.Context, estimate *models.Estimate, items []models.EstimateItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Stages").Save(estimate).Error; err != nil {
			return err
		}
		if err := tx.Where("estimate_id = ?", estimate.ID).Delete(&models.EstimateItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].EstimateID = estimate.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		estimate.Items = items
		return nil
	})
}

// UpdateStatus updates only the lifecycle status column
func (r *estimateRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Estimate{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// DeleteCascade hard-deletes the estimate with all of its item and stage rows
func (r *estimateRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("estimate_id = ?", id).Delete(&models.EstimateItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ConstructionStage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Estimate{}, id).Error
	})
}
