package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/segmentio/kafka-go"
)

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func (m *mockWriter) written() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kafka.Message(nil), m.messages...)
}

var _ = Describe("Notifier", func() {
	var (
		writer   *mockWriter
		notifier *notification.Notifier
		ctx      context.Context
	)

	approver := int64(2)
	approved := events.NewLeaveEvent(events.EventTypeLeaveApproved, events.LeaveEventParams{
		LeaveRequestID: 41,
		EmployeeID:     7,
		ApproverID:     &approver,
		LeaveType:      "earned_leave",
		Status:         "APPROVED",
		FromDate:       "2026-03-02",
		ToDate:         "2026-03-03",
		NumOfDays:      2,
		Message:        "Leave approved by Arjun",
	})

	BeforeEach(func() {
		writer = &mockWriter{}
		notifier = notification.NewNotifier(writer, "leave-events", logger.Discard())
		ctx = context.Background()
	})

	It("should write one message keyed by employee id", func() {
		// When a leave event is handled
		Expect(notifier.HandleLeaveEvent(ctx, approved)).To(Succeed())

		// Then a single message lands on the topic
		msgs := writer.written()
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Topic).To(Equal("leave-events"))
		Expect(string(msgs[0].Key)).To(Equal("7"))
		Expect(msgs[0].Headers).To(ContainElement(kafka.Header{Key: "event_type", Value: []byte(events.EventTypeLeaveApproved)}))

		var body map[string]interface{}
		Expect(json.Unmarshal(msgs[0].Value, &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("leave_request_id", BeNumerically("==", 41)))
		Expect(body).To(HaveKeyWithValue("message", "Leave approved by Arjun"))
	})

	It("should key job completions by job name", func() {
		event := events.NewBalanceJobCompletedEvent("monthly_accrual", "run-1", "2026-03", 10, 2, 0)

		Expect(notifier.HandleJobCompleted(ctx, event)).To(Succeed())

		msgs := writer.written()
		Expect(msgs).To(HaveLen(1))
		Expect(string(msgs[0].Key)).To(Equal("monthly_accrual"))
	})

	It("should return writer failures", func() {
		// Given a broker that refuses writes
		writer.err = errors.New("leader not available")

		// When an event is handled
		err := notifier.HandleLeaveEvent(ctx, approved)

		// Then the failure is reported to the bus
		Expect(err).To(MatchError(ContainSubstring("leader not available")))
	})

	It("should reject events of the wrong shape", func() {
		err := notifier.HandleLeaveEvent(ctx, events.BaseEvent{Type: events.EventTypeLeaveApproved})

		Expect(err).To(HaveOccurred())
		Expect(writer.written()).To(BeEmpty())
	})

	It("should only log when kafka is not configured", func() {
		logOnly := notification.NewFromConfig(internal.NotificationConfig{Topic: "leave-events"}, logger.Discard())

		Expect(logOnly.HandleLeaveEvent(ctx, approved)).To(Succeed())
		Expect(logOnly.Close()).To(Succeed())
	})

	It("should receive every leave event published on the bus", func() {
		// Given the notifier registered on a bus
		bus := events.NewEventBus(logger.Discard())
		notifier.Register(bus)

		// When each lifecycle event is published
		for _, eventType := range events.LeaveEventTypes {
			Expect(bus.Publish(ctx, events.NewLeaveEvent(eventType, events.LeaveEventParams{EmployeeID: 7}))).To(Succeed())
		}
		bus.Wait()

		// Then one message per event is written
		Expect(writer.written()).To(HaveLen(len(events.LeaveEventTypes)))
	})

	It("should close the writer", func() {
		Expect(notifier.Close()).To(Succeed())
		Expect(writer.closed).To(BeTrue())
	})
})
