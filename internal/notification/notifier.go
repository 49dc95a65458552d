package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of kafka.Writer the notifier uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Notifier forwards leave and balance job events. Without a writer it only
// logs them.
type Notifier struct {
	writer MessageWriter
	topic  string
	logger *slog.Logger
}

func NewNotifier(writer MessageWriter, topic string, logger *slog.Logger) *Notifier {
	return &Notifier{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// NewFromConfig writes to Kafka when brokers are configured and only logs
// otherwise.
func NewFromConfig(cfg internal.NotificationConfig, logger *slog.Logger) *Notifier {
	if w := NewKafkaWriter(cfg); w != nil {
		logger.Info("kafka notifications enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.Topic)
		return NewNotifier(w, cfg.Topic, logger)
	}
	logger.Info("kafka not configured, notifications are logged only")
	return NewNotifier(nil, cfg.Topic, logger)
}

// NewKafkaWriter returns nil when no brokers are configured.
func NewKafkaWriter(cfg internal.NotificationConfig) *kafka.Writer {
	if !cfg.KafkaEnabled() {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// Register subscribes the notifier to every event it forwards.
func (n *Notifier) Register(bus *events.EventBus) {
	for _, eventType := range events.LeaveEventTypes {
		bus.Subscribe(eventType, n.HandleLeaveEvent)
	}
	bus.Subscribe(events.EventTypeBalanceJobCompleted, n.HandleJobCompleted)
}

func (n *Notifier) HandleLeaveEvent(ctx context.Context, event events.Event) error {
	leaveEvent, ok := event.(*events.LeaveEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}

	n.logger.Info("leave notification",
		"event_type", leaveEvent.EventType(),
		"leave_request_id", leaveEvent.LeaveRequestID,
		"employee_id", leaveEvent.EmployeeID,
		"status", leaveEvent.Status,
		"message", leaveEvent.Message)

	return n.write(ctx, strconv.FormatInt(leaveEvent.EmployeeID, 10), leaveEvent)
}

func (n *Notifier) HandleJobCompleted(ctx context.Context, event events.Event) error {
	jobEvent, ok := event.(*events.BalanceJobCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}

	n.logger.Info("balance job notification",
		"job", jobEvent.Job,
		"run_id", jobEvent.RunID,
		"period", jobEvent.Period,
		"processed", jobEvent.Processed,
		"failed", jobEvent.Failed)

	return n.write(ctx, jobEvent.Job, jobEvent)
}

func (n *Notifier) write(ctx context.Context, key string, event events.Event) error {
	if n.writer == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Topic: n.topic,
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "event_id", Value: []byte(event.EventID())},
		},
		Time: event.OccurredAt(),
	})
	if err != nil {
		return fmt.Errorf("write %s to kafka: %w", event.EventType(), err)
	}
	return nil
}

func (n *Notifier) Close() error {
	if n.writer == nil {
		return nil
	}
	return n.writer.Close()
}
