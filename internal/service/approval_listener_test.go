package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func strp(s string) *string { return &s }

func TestKafkaListenerPublishesApprovedEvent(t *testing.T) {
	w := &captureWriter{}
	l := &KafkaListener{Producer: pkg.NewKafkaProducerWithWriter(w, "dormdigest.events.approved")}

	ev := model.ApprovedEvent{
		Event:          model.EventSerialized{ID: 7, Name: "Blitz Night", Description: "<p>x</p>", DescriptionText: "x"},
		SubmitterEmail: "a@mit.edu",
		ApprovedBy:     3,
	}
	require.NoError(t, l.EventApproved(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "7", string(w.msgs[0].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	event := got["event"].(map[string]any)
	assert.Equal(t, "Blitz Night", event["name"])
	assert.Equal(t, "x", event["description_text"])
	assert.Nil(t, event["start_date"])
	assert.Equal(t, "a@mit.edu", got["submitter_email"])
}

func TestDescribeWhen(t *testing.T) {
	tests := []struct {
		name string
		s    model.Schedule
		want string
	}{
		{"empty", model.Schedule{}, ""},
		{"date only", model.Schedule{StartDate: strp("2024-03-08")}, "2024-03-08"},
		{"range", model.Schedule{StartDate: strp("2024-03-08"), StartTime: strp("19:00:00Z"), EndTime: strp("21:00:00Z")}, "2024-03-08 19:00:00Z to 21:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeWhen(tt.s))
		})
	}
}

func TestMailListenerSkipsUnknownSubmitter(t *testing.T) {
	l := &MailListener{Mailer: pkg.NewMailer(pkg.SMTPConfig{Host: "127.0.0.1", Port: 1})}
	assert.NoError(t, l.EventApproved(context.Background(), model.ApprovedEvent{}))
}
