package repositories

import (
	"context"
	"time"

	"buildease/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Get fetches a session row by sid
func (r *sessionRepository) Get(ctx context.Context, sid string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Upsert inserts or fully replaces the row keyed by sid
func (r *sessionRepository) Upsert(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sid"}},
			UpdateAll: true,
		}).
		Create(session).Error
}

// Delete removes a session row; no-op if the row does not exist
func (r *sessionRepository) Delete(ctx context.Context, sid string) error {
	return r.db.WithContext(ctx).Where("sid = ?", sid).Delete(&models.Session{}).Error
}

// DeleteIfExpired removes the row only if its expiry has passed. A single
// conditional DELETE keeps concurrent readers of an expired row from ever
// both treating it as live.
func (r *sessionRepository) DeleteIfExpired(ctx context.Context, sid string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("sid = ? AND expires_at < ?", sid, now).
		Delete(&models.Session{})
	return res.RowsAffected > 0, res.Error
}

// DeleteExpired removes all rows past their expiry (background sweep)
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
