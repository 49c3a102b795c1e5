package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dormdigest/internal/model"
)

type SessionRepository struct {
	DB *gorm.DB
}

func (r *SessionRepository) Create(ctx context.Context, s *model.SessionID) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

// FindLatestByToken returns the newest row for token; tokens are not
// unique at the store level.
func (r *SessionRepository) FindLatestByToken(ctx context.Context, token string) (*model.SessionID, error) {
	var s model.SessionID
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", token).
		Order("id DESC").
		First(&s).Error
	return &s, notFound(err, "session")
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("session_id = ?", token).Delete(&model.SessionID{})
	return res.RowsAffected, res.Error
}

func (r *SessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.SessionID{})
	return res.RowsAffected, res.Error
}
