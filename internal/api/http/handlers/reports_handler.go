package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-report-service/internal/api/dto"
	"github.com/spec-kit/ticket-report-service/internal/domain"
	"github.com/spec-kit/ticket-report-service/internal/repository"
	"github.com/spec-kit/ticket-report-service/internal/status"
	apperrors "github.com/spec-kit/ticket-report-service/pkg/util"
)

// ReportsHandler serves run status and archived run history.
type ReportsHandler struct {
	status status.Store
	runs   repository.ReportRunRepository
}

// NewReportsHandler constructs handler. runs may be nil when the archive
// is disabled; the history endpoint then reports the archive as absent.
func NewReportsHandler(store status.Store, runs repository.ReportRunRepository) *ReportsHandler {
	return &ReportsHandler{status: store, runs: runs}
}

// GetRunStatus GET /reports/:ticketID/status.
func (h *ReportsHandler) GetRunStatus(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}

	run, err := h.status.Get(c.UserContext(), ticketID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if run == nil {
		return apperrors.NewNotFound("report run", map[string]any{"ticket_id": ticketID})
	}

	return c.JSON(fiber.Map{"data": runStatusResponse(run)})
}

// GetRunHistory GET /reports/:ticketID/history. Serves archived terminal
// runs, newest first; live status records expire but these do not.
func (h *ReportsHandler) GetRunHistory(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	if h.runs == nil {
		return apperrors.NewNotFound("report run archive", nil)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	runs, err := h.runs.ListByTicket(c.UserContext(), ticketID, limit, offset)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	items := make([]dto.RunStatusResponse, 0, len(runs))
	for i := range runs {
		items = append(items, runStatusResponse(&runs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketIDParam(c *fiber.Ctx) (int, error) {
	ticketID, err := strconv.Atoi(c.Params("ticketID"))
	if err != nil || ticketID <= 0 {
		return 0, apperrors.NewValidationError("ticketID must be a positive integer", nil)
	}
	return ticketID, nil
}

func runStatusResponse(run *domain.ReportRun) dto.RunStatusResponse {
	resp := dto.RunStatusResponse{
		RunID:     run.RunID,
		TicketID:  run.TicketID,
		State:     string(run.State),
		Reason:    string(run.Reason),
		Detail:    run.Detail,
		ReportKey: run.ReportKey,
		ReportURI: run.ReportURI,
		StartedAt: run.StartedAt.Format(time.RFC3339),
	}
	if run.FinishedAt != nil {
		resp.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return resp
}
