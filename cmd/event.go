package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/wanderhub/internal/core/events"
	"github.com/frahmantamala/wanderhub/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish account events to an in-process bus to check the registered handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a test event",
	Long:      `Publish a test account event (user.registered or user.deactivated) for debugging`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypeUserRegistered, events.EventTypeUserDeactivated},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	eventEmail  string
	eventUserID int64
	eventSync   bool
)

// registerAccountEventHandlers is where outbound notifications attach. Mail delivery
// lives outside this service, so the handlers record what would be sent.
func registerAccountEventHandlers(bus *events.EventBus, lg *slog.Logger) {
	bus.Subscribe(events.EventTypeUserRegistered, func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.UserRegisteredEvent)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", event.EventType())
		}
		logger.From(ctx).Info("welcome notification queued",
			"event_id", e.EventID(),
			"user_id", e.UserID,
			"email", e.Email)
		return nil
	})

	bus.Subscribe(events.EventTypeUserDeactivated, func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.UserDeactivatedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", event.EventType())
		}
		logger.From(ctx).Info("deactivation notification queued",
			"event_id", e.EventID(),
			"user_id", e.UserID,
			"by_user", e.ByUser)
		return nil
	})

	lg.Debug("account event handlers registered")
}

func publishTestEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := logger.LoggerWrapper()

	bus := events.NewEventBus(lg)
	registerAccountEventHandlers(bus, lg)

	var event events.Event
	switch eventType {
	case events.EventTypeUserRegistered:
		event = events.NewUserRegisteredEvent(eventUserID, eventEmail, "cli", 0)
	case events.EventTypeUserDeactivated:
		event = events.NewUserDeactivatedEvent(eventUserID, eventEmail, 0)
	default:
		return fmt.Errorf("unknown event type %q", eventType)
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID(), "sync", eventSync)
	if eventSync {
		if err := bus.PublishSync(ctx, event); err != nil {
			return fmt.Errorf("failed to publish event: %w", err)
		}
		lg.Info("test event published successfully")
		return nil
	}

	if err := bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	bus.Close()
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := bus.Wait(waitCtx); err != nil {
		return err
	}

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventEmail, "email", "test@example.com", "email carried by the event")
	publishEventCmd.Flags().Int64Var(&eventUserID, "user-id", 1, "user id carried by the event")
	publishEventCmd.Flags().BoolVar(&eventSync, "sync", false, "run handlers inline and fail on the first handler error")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
