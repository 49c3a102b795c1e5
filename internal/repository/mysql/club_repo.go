package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
)

type ClubRepository struct {
	DB *gorm.DB
}

func (r *ClubRepository) Create(ctx context.Context, club *model.Club) error {
	err := r.DB.WithContext(ctx).Create(club).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.Conflictf("club %q already exists", club.Name)
	}
	return err
}

func (r *ClubRepository) FindByID(ctx context.Context, id uint64) (*model.Club, error) {
	var club model.Club
	err := r.DB.WithContext(ctx).First(&club, id).Error
	return &club, notFound(err, "club %d", id)
}

func (r *ClubRepository) FindByName(ctx context.Context, name string) (*model.Club, error) {
	var club model.Club
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&club).Error
	return &club, notFound(err, "club %q", name)
}

func (r *ClubRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Club{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *ClubRepository) List(ctx context.Context, offset, limit int) ([]model.Club, error) {
	var list []model.Club
	err := r.DB.WithContext(ctx).Order("name ASC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}
