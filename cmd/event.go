package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/leave-management/internal/approval"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish sample events through the event bus and the configured notification sink.`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample event",
	Long:  `Publish a sample leave or balance job event to check the notification sink end to end.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(args[0])
	},
}

var (
	eventData       string
	eventEmployeeID int64
)

func publishSampleEvent(eventType string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	lg := setupLogger(cfg)

	bus := events.NewEventBus(lg)
	notifier := notification.NewFromConfig(cfg.Notification, lg)
	notifier.Register(bus)
	defer notifier.Close()

	event, err := sampleEvent(eventType)
	if err != nil {
		return err
	}

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.Publish(context.Background(), event); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	bus.Wait()

	lg.Info("sample event published")
	return nil
}

func sampleEvent(eventType string) (events.Event, error) {
	if eventType == events.EventTypeBalanceJobCompleted {
		return events.NewBalanceJobCompletedEvent("cli", "cli-run", time.Now().Format("2006-01"), 0, 0, 0), nil
	}
	for _, t := range events.LeaveEventTypes {
		if t != eventType {
			continue
		}
		today := time.Now().Format("2006-01-02")
		return events.NewLeaveEvent(eventType, events.LeaveEventParams{
			EmployeeID: eventEmployeeID,
			LeaveType:  leavetype.EarnedLeave,
			Status:     string(approval.StatusPending),
			FromDate:   today,
			ToDate:     today,
			NumOfDays:  1,
			Message:    eventData,
		}), nil
	}
	return nil, fmt.Errorf("unknown event type %q", eventType)
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "sample event from cli", "event message")
	publishEventCmd.Flags().Int64Var(&eventEmployeeID, "employee", 1, "employee id carried by leave events")

	eventCmd.AddCommand(publishEventCmd)
}
