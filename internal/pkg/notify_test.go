package pkg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaProducerPublishJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaProducerWithWriter(w, "events")

	require.NoError(t, p.PublishJSON(context.Background(), "42", "event.approved", map[string]int{"id": 42}))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, "event.approved", string(msg.Headers[0].Value))

	var body map[string]int
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, 42, body["id"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaProducerWrapsWriteErrors(t *testing.T) {
	down := errors.New("broker down")
	p := NewKafkaProducerWithWriter(&fakeWriter{err: down}, "events")

	err := p.PublishJSON(context.Background(), "1", "event.approved", struct{}{})
	assert.True(t, errors.Is(err, down))
	assert.Contains(t, err.Error(), "events")
}

func TestApprovalMail(t *testing.T) {
	body, err := ApprovalHTML(ApprovalNotice{Title: "Chess <Blitz>", When: "2024-03-08 19:00:00Z"})
	require.NoError(t, err)
	assert.Contains(t, body, "Chess &lt;Blitz&gt;")
	assert.Contains(t, body, "When: 2024-03-08 19:00:00Z")
	assert.NotContains(t, body, "Location:")

	m := NewMailer(SMTPConfig{Host: "smtp.example.edu", Port: 587, Username: "noreply@example.edu"})
	var buf bytes.Buffer
	_, err = m.Compose("a@mit.edu", "Approved: Blitz", body).WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "From: noreply@example.edu")
	assert.Contains(t, buf.String(), "To: a@mit.edu")
	assert.Contains(t, buf.String(), "Subject: Approved: Blitz")
}
