package model

import (
	"time"

	"gorm.io/datatypes"

	"dormdigest/internal/pkg"
)

// ContentType distinguishes the description variants of an event.
type ContentType int

const (
	Plaintext ContentType = 0
	HTML      ContentType = 1
)

// ContentTypes lists every variant in preference order for plaintext readers.
var ContentTypes = []ContentType{Plaintext, HTML}

func (t ContentType) Valid() bool {
	switch t {
	case Plaintext, HTML:
		return true
	}
	return false
}

func (t ContentType) String() string {
	switch t {
	case Plaintext:
		return "plaintext"
	case HTML:
		return "html"
	}
	return "unknown"
}

// Event is owned by nobody; it references its submitter and club by id.
type Event struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	UserID    uint64          `gorm:"not null;index"`
	ClubID    *uint64         `gorm:"index"`
	Title     string          `gorm:"size:256"`
	Location  string          `gorm:"size:128;default:''"`
	CTALink   string          `gorm:"column:cta_link;size:512"`
	StartDate *datatypes.Date `gorm:"index"`
	EndDate   *datatypes.Date
	StartTime *datatypes.Time
	EndTime   *datatypes.Time
	Approved  bool `gorm:"not null;default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Event) TableName() string { return "events" }

func (e *Event) Validate() error {
	if err := maxChars("title", e.Title, EventTitleLength); err != nil {
		return err
	}
	if err := maxChars("location", e.Location, EventLocationLength); err != nil {
		return err
	}
	return maxChars("link", e.CTALink, EventLinkLength)
}

type EventTag struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	EventID  uint64 `gorm:"not null;index"`
	TagValue int    `gorm:"column:event_tag;not null;default:0"`
}

func (EventTag) TableName() string { return "event_tags" }

// EventDescription is one chunk of a description. Rows sharing EventID and
// ContentType concatenate, ordered by ContentIndex, into the full text.
type EventDescription struct {
	ID           uint64      `gorm:"primaryKey;autoIncrement"`
	EventID      uint64      `gorm:"not null;index:idx_event_descriptions_seq,priority:1"`
	ContentType  ContentType `gorm:"not null;index:idx_event_descriptions_seq,priority:2"`
	ContentIndex int         `gorm:"not null;index:idx_event_descriptions_seq,priority:3"`
	Data         string      `gorm:"type:text;not null;default:''"`
}

func (EventDescription) TableName() string { return "event_descriptions" }

// Validate checks the row against limit, the chunk size in bytes.
func (d *EventDescription) Validate(limit int) error {
	if !d.ContentType.Valid() {
		return pkg.Validationf("unknown content type %d", d.ContentType)
	}
	if d.ContentIndex < 0 {
		return pkg.Validationf("negative content index %d", d.ContentIndex)
	}
	if len(d.Data) > limit {
		return pkg.Validationf("description chunk is %d bytes, limit %d", len(d.Data), limit)
	}
	return nil
}
