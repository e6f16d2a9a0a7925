package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishRatesSynced(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, "exchange-rates", slog.New(slog.NewTextHandler(io.Discard, nil)))
	at := time.Date(2025, 6, 10, 16, 30, 2, 0, time.UTC)
	p.now = func() time.Time { return at }

	d9 := civil.Date{Year: 2025, Month: 6, Day: 9}
	d10 := civil.Date{Year: 2025, Month: 6, Day: 10}
	result := domain.SyncResult{Trigger: domain.TriggerColdStart, Window: domain.SyncWindow{From: d9, To: d10}, Inserted: 3}
	rates := []domain.ExchangeRate{
		{Date: d10, CurrencyName: "USD"},
		{Date: d9, CurrencyName: "USD"},
		{Date: d10, CurrencyName: "JPY"},
	}

	require.NoError(t, p.PublishRatesSynced(context.Background(), result, rates))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "2025-06-09..2025-06-10", string(msg.Key))
	assert.Equal(t, at, msg.Time)

	var event RatesSyncedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, RatesSyncedEventName, event.Event)
	assert.Equal(t, "cold-start", event.Trigger)
	assert.Equal(t, "2025-06-09", event.FromDate)
	assert.Equal(t, "2025-06-10", event.ToDate)
	assert.Equal(t, 3, event.Inserted)
	assert.Equal(t, []string{"2025-06-09", "2025-06-10"}, event.Dates)
	assert.Equal(t, []string{"JPY", "USD"}, event.Currencies)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishRatesSyncedWriteFailure(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := newKafkaPublisher(w, "exchange-rates", nil)

	err := p.PublishRatesSynced(context.Background(), domain.SyncResult{}, []domain.ExchangeRate{{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
