package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
	"dormdigest/internal/repository/mysql"
)

// authorize fails with pkg.ErrAuthorization unless actingID is a site admin
// or, when clubID is set, an officer of that club. The acting user's row is
// read with a lock through db, which must be the transaction performing the
// guarded write.
func authorize(ctx context.Context, db *gorm.DB, actingID uint64, clubID *uint64) error {
	ok, err := isAuthorized(ctx, db, actingID, clubID, true)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.Authorizationf("user %d may not moderate this club", actingID)
	}
	return nil
}

func isAuthorized(ctx context.Context, db *gorm.DB, userID uint64, clubID *uint64, lock bool) (bool, error) {
	users := &mysql.UserRepository{DB: db}
	find := users.FindByID
	if lock {
		find = users.FindByIDForUpdate
	}
	user, err := find(ctx, userID)
	if errors.Is(err, pkg.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if user.IsAdmin() {
		return true, nil
	}
	if clubID == nil {
		return false, nil
	}
	members := &mysql.MembershipRepository{DB: db}
	return members.HasPrivilege(ctx, userID, *clubID, model.MemberOfficer)
}
