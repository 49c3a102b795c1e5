package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dormdigest/internal/model"
	"dormdigest/internal/repository/mysql"
)

// EventInput is what the ingestion side supplies for a new event.
type EventInput struct {
	ClubID               *uint64
	Title                string
	Location             string
	CTALink              string
	StartDate            *datatypes.Date
	EndDate              *datatypes.Date
	StartTime            *datatypes.Time
	EndTime              *datatypes.Time
	Tags                 []int
	DescriptionPlaintext string
	DescriptionHTML      string
}

// EventFilter selects events for the list projections.
type EventFilter = mysql.EventFilter

type EventServiceConfig struct {
	// ChunkSize bounds each description row in bytes.
	ChunkSize int
	// ExcerptLength is the character budget of the summary description.
	ExcerptLength int
	Listeners     []ApprovalListener
	Now           func() time.Time
}

type EventService struct {
	db        *gorm.DB
	log       *zap.Logger
	chunkSize int
	excerpt   int
	listeners []ApprovalListener
	now       func() time.Time
}

func NewEventService(db *gorm.DB, log *zap.Logger, cfg EventServiceConfig) *EventService {
	s := &EventService{
		db:        db,
		log:       log,
		chunkSize: cfg.ChunkSize,
		excerpt:   cfg.ExcerptLength,
		listeners: cfg.Listeners,
		now:       cfg.Now,
	}
	if s.chunkSize <= 0 {
		s.chunkSize = model.DescriptionChunkSize
	}
	if s.excerpt <= 0 {
		s.excerpt = 100
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *EventService) descriptions(db *gorm.DB) *mysql.DescriptionRepository {
	return &mysql.DescriptionRepository{DB: db, ChunkSize: s.chunkSize}
}

// CreateEvent stores the event, its tags and both description variants in
// one transaction and returns the new id. The event starts unapproved.
func (s *EventService) CreateEvent(ctx context.Context, submitterID uint64, in EventInput) (uint64, error) {
	event := &model.Event{
		UserID:    submitterID,
		ClubID:    in.ClubID,
		Title:     in.Title,
		Location:  in.Location,
		CTALink:   in.CTALink,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if err := event.Validate(); err != nil {
		return 0, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(ctx, tx, submitterID); err != nil {
			return err
		}
		if in.ClubID != nil {
			if err := requireClub(ctx, tx, *in.ClubID); err != nil {
				return err
			}
		}

		events := &mysql.EventRepository{DB: tx}
		if err := events.Create(ctx, event); err != nil {
			return err
		}
		if err := events.AddTags(ctx, event.ID, in.Tags); err != nil {
			return err
		}

		descs := s.descriptions(tx)
		if _, err := descs.Store(ctx, event.ID, model.Plaintext, in.DescriptionPlaintext); err != nil {
			return err
		}
		_, err := descs.Store(ctx, event.ID, model.HTML, in.DescriptionHTML)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("event created",
		zap.Uint64("event_id", event.ID),
		zap.Uint64("user_id", submitterID),
		zap.Int("tags", len(in.Tags)))
	return event.ID, nil
}

// Approve marks the event public. The acting user must be a site admin or
// an officer of the event's club, checked inside the same transaction.
func (s *EventService) Approve(ctx context.Context, eventID, actingUserID uint64) error {
	var event *model.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := &mysql.EventRepository{DB: tx}
		var err error
		if event, err = events.FindByIDForUpdate(ctx, eventID); err != nil {
			return err
		}
		if err := authorize(ctx, tx, actingUserID, event.ClubID); err != nil {
			return err
		}
		return events.SetApproved(ctx, eventID, true, s.now().UTC())
	})
	if err != nil {
		s.log.Debug("approve rejected", zap.Uint64("event_id", eventID), zap.Uint64("acting_user_id", actingUserID), zap.Error(err))
		return err
	}

	s.log.Info("event approved", zap.Uint64("event_id", eventID), zap.Uint64("acting_user_id", actingUserID))
	s.notifyApproved(ctx, event, actingUserID)
	return nil
}

// DeleteEvent removes the event and its dependents. The submitter, a site
// admin, or an officer of the event's club may delete.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, actingUserID uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := &mysql.EventRepository{DB: tx}
		event, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event.UserID != actingUserID {
			if err := authorize(ctx, tx, actingUserID, event.ClubID); err != nil {
				return err
			}
		}
		return events.Delete(ctx, eventID)
	})
	if err != nil {
		return err
	}
	s.log.Info("event deleted", zap.Uint64("event_id", eventID), zap.Uint64("acting_user_id", actingUserID))
	return nil
}

// ReplaceDescription overwrites one description variant atomically.
func (s *EventService) ReplaceDescription(ctx context.Context, eventID uint64, contentType model.ContentType, text string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := (&mysql.EventRepository{DB: tx}).FindByIDForUpdate(ctx, eventID); err != nil {
			return err
		}
		_, err := s.descriptions(tx).Replace(ctx, eventID, contentType, text)
		return err
	})
}

// LoadDescription reassembles one variant; maxLength < 0 means the whole
// text.
func (s *EventService) LoadDescription(ctx context.Context, eventID uint64, contentType model.ContentType, maxLength int) (string, error) {
	return s.descriptions(s.db).Load(ctx, eventID, contentType, maxLength)
}

func (s *EventService) Summary(ctx context.Context, eventID uint64) (*model.EventSummary, error) {
	event, err := (&mysql.EventRepository{DB: s.db}).FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, event)
}

func (s *EventService) Full(ctx context.Context, eventID uint64) (*model.EventFull, error) {
	events := &mysql.EventRepository{DB: s.db}
	event, err := events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tags, err := events.Tags(ctx, eventID)
	if err != nil {
		return nil, err
	}
	descs := s.descriptions(s.db)
	plain, err := descs.Load(ctx, eventID, model.Plaintext, -1)
	if err != nil {
		return nil, err
	}
	html, err := descs.Load(ctx, eventID, model.HTML, -1)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []int{}
	}
	return &model.EventFull{
		EventBase:       event.Base(),
		UserID:          event.UserID,
		ClubID:          event.ClubID,
		Tags:            tags,
		Description:     plain,
		DescriptionHTML: html,
	}, nil
}

func (s *EventService) Serialize(ctx context.Context, eventID uint64) (*model.EventSerialized, error) {
	event, err := (&mysql.EventRepository{DB: s.db}).FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.serialize(ctx, event)
}

func (s *EventService) ListSummaries(ctx context.Context, f EventFilter) ([]model.EventSummary, error) {
	list, err := (&mysql.EventRepository{DB: s.db}).List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]model.EventSummary, 0, len(list))
	for i := range list {
		sum, err := s.summarize(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, nil
}

// Feed returns serialization projections for external consumers.
func (s *EventService) Feed(ctx context.Context, f EventFilter) ([]model.EventSerialized, error) {
	list, err := (&mysql.EventRepository{DB: s.db}).List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]model.EventSerialized, 0, len(list))
	for i := range list {
		ser, err := s.serialize(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *ser)
	}
	return out, nil
}

// summarize builds the excerpt from plaintext, falling back to HTML.
func (s *EventService) summarize(ctx context.Context, event *model.Event) (*model.EventSummary, error) {
	descs := s.descriptions(s.db)
	excerpt, err := descs.Load(ctx, event.ID, model.Plaintext, s.excerpt)
	if err != nil {
		return nil, err
	}
	if excerpt == "" {
		if excerpt, err = descs.Load(ctx, event.ID, model.HTML, s.excerpt); err != nil {
			return nil, err
		}
	}
	return &model.EventSummary{EventBase: event.Base(), Description: excerpt}, nil
}

func (s *EventService) serialize(ctx context.Context, event *model.Event) (*model.EventSerialized, error) {
	descs := s.descriptions(s.db)
	plain, err := descs.Load(ctx, event.ID, model.Plaintext, -1)
	if err != nil {
		return nil, err
	}
	html, err := descs.Load(ctx, event.ID, model.HTML, -1)
	if err != nil {
		return nil, err
	}
	description := plain
	if html != "" {
		description = html
	}
	return &model.EventSerialized{
		ID:              event.ID,
		Name:            event.Title,
		Location:        event.Location,
		Link:            event.CTALink,
		Description:     description,
		DescriptionText: plain,
		Schedule:        event.Schedule(),
	}, nil
}

// notifyApproved runs after commit; listener failures are logged and do not
// undo the approval.
func (s *EventService) notifyApproved(ctx context.Context, event *model.Event, actingUserID uint64) {
	if len(s.listeners) == 0 {
		return
	}
	ser, err := s.serialize(ctx, event)
	if err != nil {
		s.log.Error("serialize approved event", zap.Uint64("event_id", event.ID), zap.Error(err))
		return
	}
	approved := model.ApprovedEvent{Event: *ser, ClubID: event.ClubID, ApprovedBy: actingUserID}
	if submitter, err := (&mysql.UserRepository{DB: s.db}).FindByID(ctx, event.UserID); err == nil {
		approved.SubmitterEmail = submitter.Email
	}

	for _, l := range s.listeners {
		if err := l.EventApproved(ctx, approved); err != nil {
			s.log.Error("approval listener failed", zap.Uint64("event_id", event.ID), zap.Error(err))
		}
	}
}
