package repositories

import (
	"context"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/core/domain"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by login id (exact, case-sensitive match)
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetBossByCompanyCode gets the boss row owning a company code
func (r *userRepository) GetBossByCompanyCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("company_code = ? AND role = ?", code, string(domain.RoleBoss)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByCompanyCode lists all users (boss + employees) sharing a company code
func (r *userRepository) ListByCompanyCode(ctx context.Context, code string) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("company_code = ?", code).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ExistsByID checks if a login id is taken
func (r *userRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CompanyCodeInUse checks if a company code is already issued to a boss
func (r *userRepository) CompanyCodeInUse(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("company_code = ? AND role = ?", code, string(domain.RoleBoss)).
		Count(&count).Error
	return count > 0, err
}
