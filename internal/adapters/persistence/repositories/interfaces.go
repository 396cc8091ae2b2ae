package repositories

import (
	"context"
	"time"

	"buildease/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetBossByCompanyCode(ctx context.Context, code string) (*models.User, error)
	ListByCompanyCode(ctx context.Context, code string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByID(ctx context.Context, id string) (bool, error)
	CompanyCodeInUse(ctx context.Context, code string) (bool, error)
}

// SessionRepository defines session row access. Only the session store may
// use this interface; all other components go through the store.
type SessionRepository interface {
	Get(ctx context.Context, sid string) (*models.Session, error)
	Upsert(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, sid string) error
	// DeleteIfExpired removes the row only when its expiry has passed,
	// in a single statement, and reports whether a row was removed.
	DeleteIfExpired(ctx context.Context, sid string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// EstimateRepository defines estimate aggregate access
type EstimateRepository interface {
	CreateWithItems(ctx context.Context, estimate *models.Estimate, items []models.EstimateItem) error
	GetByID(ctx context.Context, id uint) (*models.Estimate, error)
	ListByOwner(ctx context.Context, ownerID string, status string, offset, limit int) ([]*models.Estimate, int64, error)
	UpdateWithItems(ctx context.Context, estimate *models.Estimate, items []models.EstimateItem) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	DeleteCascade(ctx context.Context, id uint) error
}

// StageRepository defines construction stage access
type StageRepository interface {
	Create(ctx context.Context, stage *models.ConstructionStage) error
	GetByID(ctx context.Context, id uint) (*models.ConstructionStage, error)
	ListByProject(ctx context.Context, projectID uint) ([]*models.ConstructionStage, error)
	Update(ctx context.Context, stage *models.ConstructionStage) error
	Delete(ctx context.Context, id uint) error
}
