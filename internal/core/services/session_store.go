package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/core/domain"
	"buildease/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DefaultSessionTTL applies when the payload carries no cookie expiry
const DefaultSessionTTL = 24 * time.Hour

// CookieMeta carries the cookie metadata serialized into the session payload
type CookieMeta struct {
	Expires *time.Time `json:"expires,omitempty"`
}

// SessionPayload is the serialized session state: a denormalized user
// snapshot plus cookie metadata.
type SessionPayload struct {
	User   *models.UserResponse `json:"user"`
	Cookie CookieMeta           `json:"cookie"`
}

// SessionStore owns the sessions table. get/set/destroy plus a background
// hourly sweep of expired rows.
type SessionStore struct {
	sessionRepo repositories.SessionRepository
	ttl         time.Duration
	log         *logger.Logger
	cron        *cron.Cron
}

// NewSessionStore creates a new session store. A non-positive ttl falls back
// to the default.
func NewSessionStore(sessionRepo repositories.SessionRepository, ttl time.Duration, log *logger.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessionRepo: sessionRepo,
		ttl:         ttl,
		log:         log,
	}
}

// Get resolves a session by sid. Missing and expired sessions both return
// (nil, nil); an expired row is deleted on read. Store failures are returned
// to the caller, never folded into an empty session.
func (s *SessionStore) Get(ctx context.Context, sid string) (*SessionPayload, error) {
	session, err := s.sessionRepo.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.log.Error().Err(err).Str("sid", sid).Msg("session read failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionStore, err)
	}

	if session.IsExpired(time.Now()) {
		// Expire-on-read. The conditional delete re-checks expiry so a
		// concurrent writer refreshing the row is not clobbered.
		if _, err := s.sessionRepo.DeleteIfExpired(ctx, sid, time.Now()); err != nil {
			s.log.Error().Err(err).Str("sid", sid).Msg("expired session delete failed")
			return nil, fmt.Errorf("%w: %v", domain.ErrSessionStore, err)
		}
		return nil, nil
	}

	var payload SessionPayload
	if err := json.Unmarshal([]byte(session.Payload), &payload); err != nil {
		s.log.Error().Err(err).Str("sid", sid).Msg("session payload corrupted")
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionStore, err)
	}

	return &payload, nil
}

// Set upserts the session keyed by sid. The expiry comes from the payload's
// cookie expiry when present, else the default TTL. A second Set for the
// same sid fully replaces the prior payload.
func (s *SessionStore) Set(ctx context.Context, sid string, payload *SessionPayload) error {
	expiresAt := time.Now().Add(s.ttl)
	if payload.Cookie.Expires != nil {
		expiresAt = *payload.Cookie.Expires
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSessionStore, err)
	}

	session := &models.Session{
		SID:       sid,
		Payload:   string(raw),
		ExpiresAt: expiresAt,
	}

	if err := s.sessionRepo.Upsert(ctx, session); err != nil {
		s.log.Error().Err(err).Str("sid", sid).Msg("session write failed")
		return fmt.Errorf("%w: %v", domain.ErrSessionStore, err)
	}

	return nil
}

// Destroy deletes the session; succeeds even if the row does not exist
func (s *SessionStore) Destroy(ctx context.Context, sid string) error {
	if err := s.sessionRepo.Delete(ctx, sid); err != nil {
		s.log.Error().Err(err).Str("sid", sid).Msg("session destroy failed")
		return fmt.Errorf("%w: %v", domain.ErrSessionStore, err)
	}
	return nil
}

// StartSweep launches the hourly background sweep of expired rows
func (s *SessionStore) StartSweep() {
	s.cron = cron.New()
	s.cron.AddFunc("@hourly", s.Sweep)
	s.cron.Start()
	s.log.Info().Msg("session sweep scheduled hourly")
}

// StopSweep stops the background sweep
func (s *SessionStore) StopSweep() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep deletes all expired session rows in a single statement
func (s *SessionStore) Sweep() {
	removed, err := s.sessionRepo.DeleteExpired(context.Background(), time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("session sweep removed expired rows")
	}
}
