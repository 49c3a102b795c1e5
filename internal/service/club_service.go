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

type ClubService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewClubService(db *gorm.DB, log *zap.Logger) *ClubService {
	return &ClubService{db: db, log: log}
}

func (s *ClubService) CreateClub(ctx context.Context, name, abbrev, execEmail string) (*model.Club, error) {
	club := &model.Club{Name: name, Abbreviation: abbrev, ExecEmail: execEmail}
	if err := club.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &mysql.ClubRepository{DB: tx}
		_, err := repo.FindByName(ctx, name)
		if err == nil {
			return pkg.Conflictf("club %q already exists", name)
		}
		if !errors.Is(err, pkg.ErrNotFound) {
			return err
		}
		return repo.Create(ctx, club)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("club created", zap.Uint64("club_id", club.ID), zap.String("name", club.Name))
	return club, nil
}

func (s *ClubService) GetClub(ctx context.Context, id uint64) (*model.Club, error) {
	repo := &mysql.ClubRepository{DB: s.db}
	club, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return club, nil
}

func (s *ClubService) ListClubs(ctx context.Context, page, size int) ([]model.Club, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	repo := &mysql.ClubRepository{DB: s.db}
	return repo.List(ctx, (page-1)*size, size)
}

// AddMembership inserts a membership row. Both ends must exist. The same
// pair may be added twice; de-duplication is left to the caller.
func (s *ClubService) AddMembership(ctx context.Context, userID, clubID uint64, privilege model.MemberPrivilege) (*model.ClubMembership, error) {
	m := &model.ClubMembership{UserID: userID, ClubID: clubID, MemberPrivilege: privilege}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := requireClub(ctx, tx, clubID); err != nil {
			return err
		}
		return (&mysql.MembershipRepository{DB: tx}).Add(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("membership added",
		zap.Uint64("user_id", userID),
		zap.Uint64("club_id", clubID),
		zap.Stringer("privilege", privilege))
	return m, nil
}

// LeaveClub deletes every membership of userID in clubID.
func (s *ClubService) LeaveClub(ctx context.Context, userID, clubID uint64) error {
	repo := &mysql.MembershipRepository{DB: s.db}
	n, err := repo.Leave(ctx, userID, clubID)
	if err != nil {
		return err
	}
	if n == 0 {
		return pkg.NotFoundf("membership of user %d in club %d", userID, clubID)
	}
	s.log.Info("membership removed", zap.Uint64("user_id", userID), zap.Uint64("club_id", clubID), zap.Int64("rows", n))
	return nil
}

func (s *ClubService) Members(ctx context.Context, clubID uint64) ([]model.ClubMembership, error) {
	repo := &mysql.MembershipRepository{DB: s.db}
	return repo.ListByClub(ctx, clubID)
}

func (s *ClubService) Memberships(ctx context.Context, userID uint64) ([]model.ClubMembership, error) {
	repo := &mysql.MembershipRepository{DB: s.db}
	return repo.ListByUser(ctx, userID)
}

func requireUser(ctx context.Context, db *gorm.DB, id uint64) error {
	ok, err := (&mysql.UserRepository{DB: db}).Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.Referencef("user %d does not exist", id)
	}
	return nil
}

func requireClub(ctx context.Context, db *gorm.DB, id uint64) error {
	ok, err := (&mysql.ClubRepository{DB: db}).Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.Referencef("club %d does not exist", id)
	}
	return nil
}
