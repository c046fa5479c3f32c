package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/models"

	"gorm.io/gorm"
)

// DefaultSessionTTL lifetime of a login session, counted from login
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionStore server-side sessions in the sessions table
type SessionStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionStore creates a store; ttl <= 0 selects DefaultSessionTTL.
func NewSessionStore(db *gorm.DB, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{db: db, ttl: ttl, now: time.Now}
}

// TTL session lifetime
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for user and returns it; its ID goes in the cookie.
func (s *SessionStore) Create(ctx context.Context, user *models.User) (*models.Session, error) {
	token, err := models.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := models.Session{
		ID:        token,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &sess, nil
}

// Get returns a live session. Expired sessions are deleted and reported as
// ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	var sess models.Session
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if sess.IsExpired(s.now()) {
		if err := s.Destroy(ctx, id); err != nil {
			slog.Warn("delete expired session", "error", err)
		}
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// Destroy deletes the session; unknown ids are not an error.
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RunJanitor purges expired sessions every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				slog.Error("session janitor", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged expired sessions", "count", n)
			}
		}
	}
}
