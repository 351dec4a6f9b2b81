package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/flowgen/internal/service"
)

// StartNotificationWorker subscribes the notification service to intake
// events. Delivery runs synchronously on the publishing goroutine; there is
// no queue to drain on shutdown.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification service not configured; intake events will go unobserved")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification worker subscribed to intake events")
}
