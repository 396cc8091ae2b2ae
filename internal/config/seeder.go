package config

import (
	"log"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/core/domain"
	"buildease/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	if err := s.seedAdminUser(); err != nil {
		log.Printf("Warning: admin seeder skipped: %v", err)
	}
	return nil
}

// seedAdminUser bootstraps the administrative account from env on first
// boot. Skipped when no ADMIN_ID/ADMIN_PASSWORD are configured or an admin
// already exists.
func (s *Seeder) seedAdminUser() error {
	if s.cfg.Admin.ID == "" || s.cfg.Admin.Password == "" {
		return nil
	}

	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hash, err := password.Hash(s.cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:           s.cfg.Admin.ID,
		PasswordHash: hash,
		Name:         s.cfg.Admin.Name,
		Role:         string(domain.RoleAdmin),
		Status:       string(domain.StatusApproved),
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Admin user created: %s", admin.ID)
	return nil
}
