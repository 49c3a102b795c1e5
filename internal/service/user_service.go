package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
	"dormdigest/internal/repository/mysql"
)

type UserService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{db: db, log: log}
}

// CreateUser stores email verbatim; case folding is the caller's choice.
func (s *UserService) CreateUser(ctx context.Context, email string, privilege model.UserPrivilege) (*model.User, error) {
	user := &model.User{Email: email, Privilege: privilege}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &mysql.UserRepository{DB: tx}
		_, err := repo.FindByEmail(ctx, email)
		if err == nil {
			return pkg.Conflictf("user %q already exists", email)
		}
		if !errors.Is(err, pkg.ErrNotFound) {
			return err
		}
		return repo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.Uint64("user_id", user.ID), zap.Stringer("privilege", user.Privilege))
	return user, nil
}

// EnsureUser returns the user for email, creating a NORMAL one on first
// contact.
func (s *UserService) EnsureUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err == nil || !errors.Is(err, pkg.ErrNotFound) {
		return user, err
	}
	user, err = s.CreateUser(ctx, email, model.UserNormal)
	if errors.Is(err, pkg.ErrConflict) {
		// lost a race with a concurrent first contact
		return s.GetUserByEmail(ctx, email)
	}
	return user, err
}

func (s *UserService) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	repo := &mysql.UserRepository{DB: s.db}
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	repo := &mysql.UserRepository{DB: s.db}
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetPrivilege changes targetID's site privilege. actingID must be an admin
// at the moment of the write.
func (s *UserService) SetPrivilege(ctx context.Context, targetID uint64, privilege model.UserPrivilege, actingID uint64) error {
	if !privilege.Valid() {
		return pkg.Validationf("unknown user privilege %d", privilege)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := authorize(ctx, tx, actingID, nil); err != nil {
			return err
		}
		repo := &mysql.UserRepository{DB: tx}
		if _, err := repo.FindByIDForUpdate(ctx, targetID); err != nil {
			return err
		}
		return repo.UpdatePrivilege(ctx, targetID, privilege)
	})
	if err != nil {
		return err
	}
	s.log.Info("user privilege changed",
		zap.Uint64("user_id", targetID),
		zap.Stringer("privilege", privilege),
		zap.Uint64("acting_user_id", actingID))
	return nil
}

// GrantAdmin promotes the user for email without an acting admin. It exists
// to bootstrap the first administrator from the command line.
func (s *UserService) GrantAdmin(ctx context.Context, email string) (*model.User, error) {
	user, err := s.EnsureUser(ctx, email)
	if err != nil {
		return nil, err
	}
	repo := &mysql.UserRepository{DB: s.db}
	if err := repo.UpdatePrivilege(ctx, user.ID, model.UserAdmin); err != nil {
		return nil, err
	}
	user.Privilege = model.UserAdmin
	s.log.Info("admin granted", zap.Uint64("user_id", user.ID))
	return user, nil
}

// IsAuthorized reports whether userID may moderate events of clubID: a site
// admin always may, otherwise only an officer of that club. A nil clubID
// admits admins only.
func (s *UserService) IsAuthorized(ctx context.Context, userID uint64, clubID *uint64) (bool, error) {
	return isAuthorized(ctx, s.db.WithContext(ctx), userID, clubID, false)
}
