package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

type fakeWriter struct {
	messages []kafka.Message
	fail     error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.fail != nil {
		return w.fail
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeOutbox struct {
	events    []*entity.OutboxEvent
	published map[uuid.UUID]bool
}

func newFakeOutbox(events ...*entity.OutboxEvent) *fakeOutbox {
	return &fakeOutbox{events: events, published: make(map[uuid.UUID]bool)}
}

func (o *fakeOutbox) FetchUnpublished(_ context.Context, limit int) ([]*entity.OutboxEvent, error) {
	var pending []*entity.OutboxEvent
	for _, e := range o.events {
		if !o.published[e.ID] && len(pending) < limit {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

func (o *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		o.published[id] = true
	}
	return nil
}

func mustEvent(t *testing.T, eventType, date string) *entity.OutboxEvent {
	t.Helper()
	event, err := entity.NewOutboxEvent(eventType, date, map[string]string{"report_date": date})
	if err != nil {
		t.Fatalf("failed to build event: %v", err)
	}
	return event
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublisher_PublishBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks events", func(t *testing.T) {
		first := mustEvent(t, entity.EventTypeProfitRecorded, "2024-03-01")
		second := mustEvent(t, entity.EventTypeConsumptionRecorded, "2024-03-02")
		outbox := newFakeOutbox(first, second)
		writer := &fakeWriter{}
		publisher := NewPublisherWithWriter(outbox, writer, PublisherConfig{Topic: "finance"})

		n, err := publisher.PublishBatch(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 2 || len(writer.messages) != 2 {
			t.Fatalf("expected 2 messages, got n=%d written=%d", n, len(writer.messages))
		}

		msg := writer.messages[0]
		if string(msg.Key) != "2024-03-01" {
			t.Errorf("expected key to be the report date, got %s", msg.Key)
		}
		if header(msg, "event_id") != first.ID.String() || header(msg, "event_type") != entity.EventTypeProfitRecorded {
			t.Errorf("unexpected headers %+v", msg.Headers)
		}
		var payload map[string]string
		if err := json.Unmarshal(msg.Value, &payload); err != nil || payload["report_date"] != "2024-03-01" {
			t.Errorf("unexpected payload %s", msg.Value)
		}
		if !outbox.published[first.ID] || !outbox.published[second.ID] {
			t.Error("expected both events marked published")
		}

		// Nothing left to publish.
		if n, _ := publisher.PublishBatch(ctx); n != 0 {
			t.Errorf("expected empty second batch, got %d", n)
		}
	})

	t.Run("respects batch size", func(t *testing.T) {
		outbox := newFakeOutbox(
			mustEvent(t, entity.EventTypeSalaryRecorded, "2024-03-01"),
			mustEvent(t, entity.EventTypeSalaryRecorded, "2024-03-01"),
			mustEvent(t, entity.EventTypeSalaryRecorded, "2024-03-01"),
		)
		publisher := NewPublisherWithWriter(outbox, &fakeWriter{}, PublisherConfig{BatchSize: 2})

		if n, _ := publisher.PublishBatch(ctx); n != 2 {
			t.Errorf("expected 2, got %d", n)
		}
		if n, _ := publisher.PublishBatch(ctx); n != 1 {
			t.Errorf("expected 1, got %d", n)
		}
	})

	t.Run("write failure leaves events unpublished", func(t *testing.T) {
		event := mustEvent(t, entity.EventTypeProfitRecorded, "2024-03-01")
		outbox := newFakeOutbox(event)
		publisher := NewPublisherWithWriter(outbox, &fakeWriter{fail: errors.New("broker down")}, PublisherConfig{})

		if _, err := publisher.PublishBatch(ctx); err == nil {
			t.Fatal("expected error")
		}
		if outbox.published[event.ID] {
			t.Error("expected event to stay unpublished")
		}
	})

	t.Run("propagates trace context", func(t *testing.T) {
		otel.SetTextMapPropagator(propagation.TraceContext{})

		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		tracedCtx := trace.ContextWithSpanContext(ctx, spanCtx)

		writer := &fakeWriter{}
		publisher := NewPublisherWithWriter(newFakeOutbox(mustEvent(t, entity.EventTypeProfitRecorded, "2024-03-01")), writer, PublisherConfig{})
		if _, err := publisher.PublishBatch(tracedCtx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
		if got := header(writer.messages[0], "traceparent"); got != want {
			t.Errorf("expected traceparent %s, got %s", want, got)
		}
	})

	t.Run("stored trace context wins over the poller", func(t *testing.T) {
		otel.SetTextMapPropagator(propagation.TraceContext{})

		pollerTraceID, _ := trace.TraceIDFromHex("11111111111111111111111111111111")
		pollerSpanID, _ := trace.SpanIDFromHex("2222222222222222")
		pollerCtx := trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    pollerTraceID,
			SpanID:     pollerSpanID,
			TraceFlags: trace.FlagsSampled,
		}))

		recorded := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
		event := mustEvent(t, entity.EventTypeSalaryRecorded, "2024-03-01")
		event.TraceContext = map[string]string{"traceparent": recorded}

		writer := &fakeWriter{}
		publisher := NewPublisherWithWriter(newFakeOutbox(event), writer, PublisherConfig{})
		if _, err := publisher.PublishBatch(pollerCtx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := header(writer.messages[0], "traceparent"); got != recorded {
			t.Errorf("expected recorded traceparent %s, got %s", recorded, got)
		}
	})
}

func TestPublisher_RunClosesWriter(t *testing.T) {
	writer := &fakeWriter{}
	publisher := NewPublisherWithWriter(newFakeOutbox(), writer, PublisherConfig{PollEvery: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		publisher.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
	if !writer.closed {
		t.Error("expected writer to be closed")
	}
}

func TestNewPublisher_NoBrokers(t *testing.T) {
	if p := NewPublisher(newFakeOutbox(), PublisherConfig{Brokers: " , "}); p != nil {
		t.Error("expected nil publisher without brokers")
	}
	if got := splitBrokers("a:9092, b:9092,,"); len(got) != 2 || got[1] != "b:9092" {
		t.Errorf("unexpected brokers %v", got)
	}
}
