package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
)

// EventApprovedType tags approval messages on the feed topic.
const EventApprovedType = "event.approved"

// ApprovalListener is told about an event after its approval commits.
type ApprovalListener interface {
	EventApproved(ctx context.Context, ev model.ApprovedEvent) error
}

// KafkaListener publishes approved events keyed by event id.
type KafkaListener struct {
	Producer *pkg.KafkaProducer
}

func (l *KafkaListener) EventApproved(ctx context.Context, ev model.ApprovedEvent) error {
	return l.Producer.PublishJSON(ctx, strconv.FormatUint(ev.Event.ID, 10), EventApprovedType, ev)
}

// MailListener mails the submitter.
type MailListener struct {
	Mailer *pkg.Mailer
}

func (l *MailListener) EventApproved(_ context.Context, ev model.ApprovedEvent) error {
	if ev.SubmitterEmail == "" {
		return nil
	}
	body, err := pkg.ApprovalHTML(pkg.ApprovalNotice{
		Title:    ev.Event.Name,
		Location: ev.Event.Location,
		When:     describeWhen(ev.Event.Schedule),
		Link:     ev.Event.Link,
	})
	if err != nil {
		return err
	}
	return l.Mailer.Send(ev.SubmitterEmail, fmt.Sprintf("Approved: %s", ev.Event.Name), body)
}

type LogListener struct {
	Log *zap.Logger
}

func (l *LogListener) EventApproved(_ context.Context, ev model.ApprovedEvent) error {
	l.Log.Info("approval published",
		zap.Uint64("event_id", ev.Event.ID),
		zap.String("title", ev.Event.Name),
		zap.Uint64("approved_by", ev.ApprovedBy))
	return nil
}

// describeWhen joins the set schedule fields, e.g. "2024-03-08 19:00:00Z to 21:00:00Z".
func describeWhen(s model.Schedule) string {
	var parts []string
	for _, p := range []*string{s.StartDate, s.StartTime} {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	if s.EndDate != nil || s.EndTime != nil {
		parts = append(parts, "to")
		for _, p := range []*string{s.EndDate, s.EndTime} {
			if p != nil {
				parts = append(parts, *p)
			}
		}
	}
	return strings.Join(parts, " ")
}
