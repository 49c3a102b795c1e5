package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
	"dormdigest/internal/repository/mysql"
	"dormdigest/internal/repository/redis"
)

type SessionServiceConfig struct {
	// Cache is optional; without it every validation reads the store.
	Cache    *redis.SessionCache
	Now      func() time.Time
	NewToken func() (string, error)
}

type SessionService struct {
	db       *gorm.DB
	log      *zap.Logger
	cache    *redis.SessionCache
	now      func() time.Time
	newToken func() (string, error)
}

func NewSessionService(db *gorm.DB, log *zap.Logger, cfg SessionServiceConfig) *SessionService {
	s := &SessionService{
		db:       db,
		log:      log,
		cache:    cfg.Cache,
		now:      cfg.Now,
		newToken: cfg.NewToken,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newToken == nil {
		s.newToken = pkg.NewSessionToken
	}
	return s
}

// IssueSession stores a fresh token bound to email and returns it.
func (s *SessionService) IssueSession(ctx context.Context, email string) (string, error) {
	token, err := s.newToken()
	if err != nil {
		return "", err
	}
	row := &model.SessionID{
		SessionID: token,
		EmailAddr: email,
		CreatedAt: s.now().UTC(),
	}
	if err := row.Validate(); err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return (&mysql.SessionRepository{DB: tx}).Create(ctx, row)
	})
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, token, email, row.CreatedAt); err != nil {
			s.log.Warn("cache session", zap.Error(err))
		}
	}
	s.log.Debug("session issued", zap.Uint64("session_row", row.ID))
	return token, nil
}

// ValidateSession returns the email bound to token. The session is expired
// once more than maxAge has passed since it was issued.
func (s *SessionService) ValidateSession(ctx context.Context, token string, maxAge time.Duration) (string, error) {
	if token == "" {
		return "", pkg.NotFoundf("session")
	}

	email, createdAt, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	if s.now().Sub(createdAt) > maxAge {
		return "", pkg.Expiredf("session issued at %s", createdAt.Format(time.RFC3339))
	}
	return email, nil
}

func (s *SessionService) lookup(ctx context.Context, token string) (string, time.Time, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, token)
		if err == nil {
			return cached.Email, cached.CreatedAt, nil
		}
		if !errors.Is(err, redis.ErrSessionMiss) {
			s.log.Warn("read session cache", zap.Error(err))
		}
	}

	row, err := (&mysql.SessionRepository{DB: s.db}).FindLatestByToken(ctx, token)
	if err != nil {
		return "", time.Time{}, err
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, token, row.EmailAddr, row.CreatedAt); err != nil {
			s.log.Warn("cache session", zap.Error(err))
		}
	}
	return row.EmailAddr, row.CreatedAt, nil
}

// RevokeSession deletes every row carrying token. Revoking an unknown token
// is a NotFound error.
func (s *SessionService) RevokeSession(ctx context.Context, token string) error {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, token); err != nil {
			s.log.Warn("evict session", zap.Error(err))
		}
	}
	n, err := (&mysql.SessionRepository{DB: s.db}).DeleteByToken(ctx, token)
	if err != nil {
		return err
	}
	if n == 0 {
		return pkg.NotFoundf("session")
	}
	return nil
}

// PurgeExpired deletes sessions issued more than maxAge ago.
func (s *SessionService) PurgeExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-maxAge)
	n, err := (&mysql.SessionRepository{DB: s.db}).DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired sessions purged", zap.Int64("count", n))
	}
	return n, nil
}
