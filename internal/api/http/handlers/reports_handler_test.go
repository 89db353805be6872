package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-report-service/internal/domain"
	"github.com/spec-kit/ticket-report-service/internal/repository"
	"github.com/spec-kit/ticket-report-service/internal/status"
)

type fakeRunRepository struct {
	runs []domain.ReportRun
}

func (r *fakeRunRepository) Archive(_ context.Context, run domain.ReportRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeRunRepository) ListByTicket(_ context.Context, ticketID int, _, _ int) ([]domain.ReportRun, error) {
	var out []domain.ReportRun
	for _, run := range r.runs {
		if run.TicketID == ticketID {
			out = append(out, run)
		}
	}
	return out, nil
}

func newReportsApp(store status.Store, runs repository.ReportRunRepository) *fiber.App {
	app := fiber.New()
	handler := NewReportsHandler(store, runs)
	app.Get("/reports/:ticketID/status", handler.GetRunStatus)
	app.Get("/reports/:ticketID/history", handler.GetRunHistory)
	return app
}

func TestGetRunStatus(t *testing.T) {
	store := status.NewMemoryStore()
	run := domain.NewReportRun(42)
	run.State = domain.RunStateDone
	run.ReportKey = "glpi_ticket_42.pdf"
	now := time.Now().UTC()
	run.FinishedAt = &now
	require.NoError(t, store.Record(context.Background(), run))

	app := newReportsApp(store, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/42/status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data struct {
			RunID     string `json:"run_id"`
			State     string `json:"state"`
			ReportKey string `json:"report_key"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, run.RunID, payload.Data.RunID)
	assert.Equal(t, "DONE", payload.Data.State)
	assert.Equal(t, "glpi_ticket_42.pdf", payload.Data.ReportKey)
}

func TestGetRunStatusUnknownTicket(t *testing.T) {
	app := newReportsApp(status.NewMemoryStore(), nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/99/status", nil))
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetRunHistory(t *testing.T) {
	runs := &fakeRunRepository{}
	first := domain.NewReportRun(7)
	first.State = domain.RunStateFailed
	first.Reason = domain.ReasonBackendUnavailable
	second := domain.NewReportRun(7)
	second.State = domain.RunStateDone
	require.NoError(t, runs.Archive(context.Background(), first))
	require.NoError(t, runs.Archive(context.Background(), second))
	require.NoError(t, runs.Archive(context.Background(), domain.NewReportRun(8)))

	app := newReportsApp(status.NewMemoryStore(), runs)

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/7/history", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data []struct {
			RunID string `json:"run_id"`
			State string `json:"state"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Data, 2)
	assert.Equal(t, first.RunID, payload.Data[0].RunID)
	assert.Equal(t, second.RunID, payload.Data[1].RunID)
}

func TestGetRunHistoryArchiveDisabled(t *testing.T) {
	app := newReportsApp(status.NewMemoryStore(), nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/7/history", nil))
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusOK, resp.StatusCode)
}
