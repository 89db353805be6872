package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/events"
	"github.com/spec-kit/ticket-report-service/internal/repository"
	"github.com/spec-kit/ticket-report-service/internal/status"
)

// ArchiveService copies terminal run records from the status store into the
// durable run archive. Status entries expire; the archive does not.
type ArchiveService struct {
	dispatcher events.Dispatcher
	runs       repository.ReportRunRepository
	status     status.Store
	logger     *zap.Logger
}

// NewArchiveService creates the service. A nil repository disables archiving.
func NewArchiveService(dispatcher events.Dispatcher, runs repository.ReportRunRepository, store status.Store, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{
		dispatcher: dispatcher,
		runs:       runs,
		status:     store,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to terminal report events.
func (a *ArchiveService) RegisterHandlers() {
	if a.dispatcher == nil || a.runs == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventReportGenerated, a.handleTerminal)
	a.dispatcher.Subscribe(events.EventReportFailed, a.handleTerminal)
}

func (a *ArchiveService) handleTerminal(ctx context.Context, event events.Event) error {
	run, err := a.status.Get(ctx, event.TicketID)
	if err != nil || run == nil {
		a.logger.Warn("run status unavailable for archiving",
			zap.Int("ticket_id", event.TicketID),
			zap.Error(err))
		return nil
	}
	if err := a.runs.Archive(ctx, *run); err != nil {
		a.logger.Error("archiving report run",
			zap.Int("ticket_id", event.TicketID),
			zap.String("run_id", run.RunID),
			zap.Error(err))
	}
	return nil
}
