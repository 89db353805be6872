package events

import (
	"time"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportGenerated EventType = "report_generated"
	EventReportFailed    EventType = "report_failed"
)

// Event represents a pipeline lifecycle event.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int         `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportGeneratedPayload payload.
type ReportGeneratedPayload struct {
	RunID     string `json:"run_id"`
	ReportKey string `json:"report_key"`
	ReportURI string `json:"report_uri"`
}

// ReportFailedPayload payload.
type ReportFailedPayload struct {
	RunID  string               `json:"run_id"`
	Reason domain.FailureReason `json:"reason"`
	Detail string               `json:"detail,omitempty"`
}
