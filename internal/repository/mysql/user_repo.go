package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.DB.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.Conflictf("user %q already exists", user.Email)
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, notFound(err, "user %d", id)
}

// FindByIDForUpdate reads the row with a write lock; call it inside a
// transaction so privilege checks see the current value.
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error
	return &user, notFound(err, "user %d", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return &user, notFound(err, "user %q", email)
}

func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdatePrivilege(ctx context.Context, id uint64, privilege model.UserPrivilege) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("user_privilege", privilege)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 when the value did not change
		if ok, err := r.Exists(ctx, id); err != nil || ok {
			return err
		}
		return pkg.NotFoundf("user %d", id)
	}
	return nil
}

// notFound converts gorm's miss into the shared taxonomy and leaves other
// errors untouched.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.NotFoundf(format, args...)
	}
	return err
}
