// Package events publishes recorded financial events to Kafka.
package events

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
)

// MessageWriter is the subset of *kafka.Writer used by the publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublisherConfig holds configuration for the outbox publisher.
type PublisherConfig struct {
	Brokers   string // Comma separated host:port list
	Topic     string
	PollEvery time.Duration
	BatchSize int
}

// Publisher relays outbox events to Kafka. Delivery is at-least-once:
// events are marked published only after the broker acknowledged them.
type Publisher struct {
	repo      adapter.OutboxRepository
	writer    MessageWriter
	topic     string
	pollEvery time.Duration
	batchSize int
}

// NewPublisher creates a publisher writing to the configured brokers.
// It returns nil when no brokers are configured.
func NewPublisher(repo adapter.OutboxRepository, cfg PublisherConfig) *Publisher {
	brokers := splitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return NewPublisherWithWriter(repo, writer, cfg)
}

// NewPublisherWithWriter creates a publisher on top of an existing writer.
func NewPublisherWithWriter(repo adapter.OutboxRepository, writer MessageWriter, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Publisher{
		repo:      repo,
		writer:    writer,
		topic:     cfg.Topic,
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
	}
}

// Run polls the outbox until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	slog.Info("Outbox publisher started", "topic", p.topic, "poll_every", p.pollEvery)
	defer func() {
		if err := p.writer.Close(); err != nil {
			slog.Warn("Failed to close kafka writer", "error", err)
		}
	}()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox publisher shutting down")
			return
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil {
				slog.Error("Outbox publish failed", "error", err)
			}
		}
	}
}

// PublishBatch publishes one batch of unpublished events and returns how many were sent.
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	records, err := p.repo.FetchUnpublished(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(records))
	for _, r := range records {
		headers := []kafka.Header{
			{Key: "event_id", Value: []byte(r.ID.String())},
			{Key: "event_type", Value: []byte(r.EventType)},
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(r.AggregateID),
			Value:   r.Payload,
			Headers: injectTraceHeaders(recordContext(ctx, r), headers),
			Time:    r.CreatedAt,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	if err := p.repo.MarkPublished(ctx, ids); err != nil {
		return 0, err
	}

	slog.Debug("Outbox events published", "count", len(records))
	return len(records), nil
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// recordContext restores the trace of the request that recorded the event.
// Events stored without one fall back to ctx.
func recordContext(ctx context.Context, event *entity.OutboxEvent) context.Context {
	if len(event.TraceContext) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(event.TraceContext))
}

// injectTraceHeaders appends W3C trace context headers to Kafka headers.
func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
