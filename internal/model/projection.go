package model

// EventBase carries the fields shared by every read shape.
type EventBase struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Link     string `json:"link"`
	Approved bool   `json:"approved"`
	Schedule
}

// EventSummary is the list shape: a short description excerpt only.
type EventSummary struct {
	EventBase
	Description string `json:"desc"`
}

// EventFull carries both complete description variants.
type EventFull struct {
	EventBase
	UserID          uint64  `json:"user_id"`
	ClubID          *uint64 `json:"club_id"`
	Tags            []int   `json:"tags"`
	Description     string  `json:"desc"`
	DescriptionHTML string  `json:"desc_html"`
}

// EventSerialized is the shape handed to feeds and other consumers.
// Description prefers HTML; DescriptionText is always the plaintext.
type EventSerialized struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	Location        string `json:"location"`
	Link            string `json:"link,omitempty"`
	Description     string `json:"description"`
	DescriptionText string `json:"description_text"`
	Schedule
}

// ApprovedEvent is delivered to approval listeners after commit.
type ApprovedEvent struct {
	Event          EventSerialized `json:"event"`
	ClubID         *uint64         `json:"club_id"`
	SubmitterEmail string          `json:"submitter_email"`
	ApprovedBy     uint64          `json:"approved_by"`
}

func (e *Event) Base() EventBase {
	return EventBase{
		ID:       e.ID,
		Title:    e.Title,
		Location: e.Location,
		Link:     e.CTALink,
		Approved: e.Approved,
		Schedule: e.Schedule(),
	}
}
