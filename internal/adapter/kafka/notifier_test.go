package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSerializeToMessage(t *testing.T) {
	at := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	n := domain.Notification{Source: "GDACS", Message: "db down", At: at}

	msg, err := serializeToMessage(n)
	require.NoError(t, err)

	assert.Equal(t, []byte("GDACS"), msg.Key)
	assert.JSONEq(t, `{"source":"GDACS","message":"db down","at":"2024-04-26T15:10:00Z"}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "source", msg.Headers[0].Key)
	assert.Equal(t, []byte("GDACS"), msg.Headers[0].Value)
	assert.Equal(t, "raised_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(at.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestNotifier_Notify(t *testing.T) {
	w := &fakeWriter{}
	p := &Notifier{writer: w, logger: discardLogger()}

	p.Notify(context.Background(), domain.Notification{Source: "EONET", Message: "EONET payload malformed: not an array"})

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("EONET"), w.msgs[0].Key)
}

func TestNotifier_NotifySwallowsPublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := &Notifier{writer: w, logger: discardLogger()}

	assert.NotPanics(t, func() {
		p.Notify(context.Background(), domain.Notification{Source: "Disease", Message: "oops"})
	})
	assert.Empty(t, w.msgs)
}

func TestNotifier_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &Notifier{writer: w, logger: discardLogger()}

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
