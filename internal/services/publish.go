package services

import (
	"context"

	"go.uber.org/zap"

	"saldo/internal/events"
	"saldo/internal/logger"
)

func serviceLog() *zap.SugaredLogger {
	return logger.Named("services")
}

// publish delivers an event after commit. Delivery failures are logged and
// never fail the write that produced the event.
func publish(publisher events.Publisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(context.Background(), event); err != nil {
		serviceLog().Warnw("failed to publish event",
			"type", event.Type,
			"resource_id", event.ResourceID,
			"error", err,
		)
	}
}
