package worker

import (
	"github.com/spec-kit/ticket-report-service/internal/service"
)

// StartReportWorkers registers event handlers for report lifecycle events.
func StartReportWorkers(notifications *service.NotificationService, archive *service.ArchiveService) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if archive != nil {
		archive.RegisterHandlers()
	}
}
