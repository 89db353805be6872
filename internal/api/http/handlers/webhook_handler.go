package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/api/dto"
	"github.com/spec-kit/ticket-report-service/internal/auth"
	apperrors "github.com/spec-kit/ticket-report-service/pkg/util"
)

// Dispatcher starts a background report run for a ticket.
type Dispatcher interface {
	Dispatch(ticketID int)
}

// WebhookHandler receives helpdesk notifications and dispatches report runs.
type WebhookHandler struct {
	pipeline Dispatcher
	logger   *zap.Logger
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(pipeline Dispatcher, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline, logger: logger}
}

// Receive POST /webhook. GLPI posts a JSON array of events; a bare object
// is accepted too. The whole batch is validated before any run starts, so
// a rejected payload never leaves runs behind. The request is acknowledged
// before any run completes; run outcomes are observable through the status
// endpoint, never through this response.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	events, err := parseEvents(c.Body())
	if err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	source, _ := auth.SourceFromContext(c)

	var ticketIDs []int
	for _, event := range events {
		if !strings.EqualFold(event.Event, "add") || !strings.EqualFold(event.ItemType, "Ticket") {
			h.logger.Debug("ignoring webhook event",
				zap.String("event", event.Event),
				zap.String("itemtype", event.ItemType),
				zap.String("source", source))
			continue
		}
		if event.ItemsID <= 0 {
			return apperrors.NewValidationError("items_id must be a positive integer", nil)
		}
		ticketIDs = append(ticketIDs, int(event.ItemsID))
	}

	if len(ticketIDs) == 0 {
		return c.JSON(fiber.Map{"message": "no ticket events to process"})
	}

	for _, ticketID := range ticketIDs {
		h.pipeline.Dispatch(ticketID)
		h.logger.Info("report run dispatched",
			zap.Int("ticket_id", ticketID),
			zap.String("source", source))
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.WebhookAccepted{
		Message:   "report generation started",
		TicketIDs: ticketIDs,
	})
}

func parseEvents(body []byte) ([]dto.WebhookEvent, error) {
	var events []dto.WebhookEvent
	if err := json.Unmarshal(body, &events); err == nil {
		return events, nil
	}

	var single dto.WebhookEvent
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []dto.WebhookEvent{single}, nil
}
