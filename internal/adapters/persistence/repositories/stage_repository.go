package repositories

import (
	"context"

	"buildease/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// stageRepository implements StageRepository interface
type stageRepository struct {
	db *gorm.DB
}

// NewStageRepository creates a new stage repository
func NewStageRepository(db *gorm.DB) StageRepository {
	return &stageRepository{db: db}
}

// Create creates a new construction stage
func (r *stageRepository) Create(ctx context.Context, stage *models.ConstructionStage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

// GetByID gets a stage by ID
func (r *stageRepository) GetByID(ctx context.Context, id uint) (*models.ConstructionStage, error) {
	var stage models.ConstructionStage
	err := r.db.WithContext(ctx).First(&stage, id).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// ListByProject lists stages of a project in insertion order
func (r *stageRepository) ListByProject(ctx context.Context, projectID uint) ([]*models.ConstructionStage, error) {
	var stages []*models.ConstructionStage
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&stages).Error
	return stages, err
}

// Update updates a stage
func (r *stageRepository) Update(ctx context.Context, stage *models.ConstructionStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

// Delete removes a stage
func (r *stageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ConstructionStage{}, id).Error
}
