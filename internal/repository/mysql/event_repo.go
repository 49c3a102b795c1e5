package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
)

type EventRepository struct {
	DB *gorm.DB
}

// EventFilter narrows List. Zero value lists everything, newest first.
type EventFilter struct {
	ApprovedOnly bool
	ClubID       *uint64
	Offset       int
	Limit        int
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.DB.WithContext(ctx).Create(event).Error
}

func (r *EventRepository) FindByID(ctx context.Context, id uint64) (*model.Event, error) {
	var event model.Event
	err := r.DB.WithContext(ctx).First(&event, id).Error
	return &event, notFound(err, "event %d", id)
}

func (r *EventRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Event, error) {
	var event model.Event
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error
	return &event, notFound(err, "event %d", id)
}

func (r *EventRepository) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	q := r.DB.WithContext(ctx).Model(&model.Event{})
	if f.ApprovedOnly {
		q = q.Where("approved = ?", true)
	}
	if f.ClubID != nil {
		q = q.Where("club_id = ?", *f.ClubID)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []model.Event
	err := q.Order("id DESC").Find(&list).Error
	return list, err
}

func (r *EventRepository) SetApproved(ctx context.Context, id uint64, approved bool, now time.Time) error {
	res := r.DB.WithContext(ctx).Model(&model.Event{}).
		Where("id = ?", id).
		Updates(map[string]any{"approved": approved, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkg.NotFoundf("event %d", id)
	}
	return nil
}

func (r *EventRepository) AddTags(ctx context.Context, eventID uint64, tags []int) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]model.EventTag, len(tags))
	for i, tag := range tags {
		rows[i] = model.EventTag{EventID: eventID, TagValue: tag}
	}
	return r.DB.WithContext(ctx).Create(&rows).Error
}

func (r *EventRepository) Tags(ctx context.Context, eventID uint64) ([]int, error) {
	var tags []int
	err := r.DB.WithContext(ctx).Model(&model.EventTag{}).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Pluck("event_tag", &tags).Error
	return tags, err
}

// Delete removes the event's tags and description chunks before the event
// row itself. Run it inside a transaction.
func (r *EventRepository) Delete(ctx context.Context, id uint64) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("event_id = ?", id).Delete(&model.EventTag{}).Error; err != nil {
		return err
	}
	if err := db.Where("event_id = ?", id).Delete(&model.EventDescription{}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkg.NotFoundf("event %d", id)
	}
	return nil
}
