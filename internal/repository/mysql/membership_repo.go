package mysql

import (
	"context"

	"gorm.io/gorm"

	"dormdigest/internal/model"
)

type MembershipRepository struct {
	DB *gorm.DB
}

// Add always inserts a new row; repeated calls for the same pair produce
// duplicate memberships.
func (r *MembershipRepository) Add(ctx context.Context, m *model.ClubMembership) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

// Leave removes every membership row of the pair and reports how many went.
func (r *MembershipRepository) Leave(ctx context.Context, userID, clubID uint64) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND club_id = ?", userID, clubID).
		Delete(&model.ClubMembership{})
	return res.RowsAffected, res.Error
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID uint64) ([]model.ClubMembership, error) {
	var list []model.ClubMembership
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *MembershipRepository) ListByClub(ctx context.Context, clubID uint64) ([]model.ClubMembership, error) {
	var list []model.ClubMembership
	err := r.DB.WithContext(ctx).Where("club_id = ?", clubID).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *MembershipRepository) HasPrivilege(ctx context.Context, userID, clubID uint64, privilege model.MemberPrivilege) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.ClubMembership{}).
		Where("user_id = ? AND club_id = ? AND member_privilege = ?", userID, clubID, privilege).
		Count(&count).Error
	return count > 0, err
}
