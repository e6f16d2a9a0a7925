// Package events publishes sync notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
	"github.com/segmentio/kafka-go"
)

// RatesSyncedEventName identifies the event emitted after a cycle inserted rates.
const RatesSyncedEventName = "rates.synced"

const writeTimeout = 10 * time.Second

// RatesSyncedEvent is the JSON payload of a rates.synced message.
type RatesSyncedEvent struct {
	Event      string    `json:"event"`
	Trigger    string    `json:"trigger"`
	FromDate   string    `json:"fromDate"`
	ToDate     string    `json:"toDate"`
	Inserted   int       `json:"inserted"`
	Dates      []string  `json:"dates"`
	Currencies []string  `json:"currencies"`
	OccurredAt time.Time `json:"occurredAt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes rates.synced events to a single topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}, topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{writer: w, topic: topic, logger: logger, now: time.Now}
}

// PublishRatesSynced emits one event describing the rates committed by a cycle.
func (p *KafkaPublisher) PublishRatesSynced(ctx context.Context, result domain.SyncResult, rates []domain.ExchangeRate) error {
	event := newRatesSyncedEvent(result, rates, p.now().UTC())

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", RatesSyncedEventName, err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(result.Window.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(RatesSyncedEventName)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event to %s: %w", RatesSyncedEventName, p.topic, err)
	}

	p.logger.Debug("Published rates synced event",
		slog.String("topic", p.topic),
		slog.Int("inserted", event.Inserted),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newRatesSyncedEvent(result domain.SyncResult, rates []domain.ExchangeRate, at time.Time) RatesSyncedEvent {
	dates := map[string]struct{}{}
	currencies := map[string]struct{}{}
	for _, r := range rates {
		dates[r.Date.String()] = struct{}{}
		currencies[r.CurrencyName] = struct{}{}
	}

	return RatesSyncedEvent{
		Event:      RatesSyncedEventName,
		Trigger:    string(result.Trigger),
		FromDate:   normalize.FormatDate(result.Window.From, normalize.UpstreamDateLayout),
		ToDate:     normalize.FormatDate(result.Window.To, normalize.UpstreamDateLayout),
		Inserted:   len(rates),
		Dates:      sortedKeys(dates),
		Currencies: sortedKeys(currencies),
		OccurredAt: at,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
