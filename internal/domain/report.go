package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FieldName identifies one of the structured fields extracted from a ticket.
type FieldName string

const (
	FieldAffectedSystems FieldName = "affected_systems"
	FieldErrorMessages   FieldName = "error_messages"
	FieldAffectedUsers   FieldName = "affected_users"
	FieldStartTime       FieldName = "start_time"
	FieldSuspectedCauses FieldName = "suspected_causes"
	FieldResolutionSteps FieldName = "resolution_steps"
)

// NotFound is the sentinel recorded when a field cannot be extracted. It
// distinguishes absence from an empty string.
const NotFound = "Not Found"

// Fields returns the fixed extraction field set in presentation order.
func Fields() []FieldName {
	return []FieldName{
		FieldAffectedSystems,
		FieldErrorMessages,
		FieldAffectedUsers,
		FieldStartTime,
		FieldSuspectedCauses,
		FieldResolutionSteps,
	}
}

// Label returns the human heading used for the field in rendered reports.
func (f FieldName) Label() string {
	switch f {
	case FieldAffectedSystems:
		return "Affected Systems"
	case FieldErrorMessages:
		return "Error Messages"
	case FieldAffectedUsers:
		return "Affected Users"
	case FieldStartTime:
		return "Start Time"
	case FieldSuspectedCauses:
		return "Suspected Causes"
	case FieldResolutionSteps:
		return "Resolution Steps"
	}
	return string(f)
}

// ExtractionResult maps every field in Fields() to a cleaned value or the
// NotFound sentinel. Keys are never added or removed at runtime.
type ExtractionResult map[FieldName]string

// NewExtractionResult returns a result with every field preset to NotFound.
func NewExtractionResult() ExtractionResult {
	result := make(ExtractionResult, len(Fields()))
	for _, field := range Fields() {
		result[field] = NotFound
	}
	return result
}

// SourceRef records the provenance of report content.
type SourceRef struct {
	SourceID   int    `json:"source_id"`
	SourceType string `json:"source_type"`
}

// ReportSection is one labeled block of the narrative summary.
type ReportSection struct {
	Label string
	Body  string
}

// Report is the final artifact handed to the report sink. It is constructed
// once, after both summarization and extraction have completed, and consumed
// once.
type Report struct {
	TicketID   int
	Title      string
	Sections   []ReportSection
	Extraction ExtractionResult
	Sources    []SourceRef
}

// StorageKey is the deterministic object key the report is stored under.
// Re-running the same ticket overwrites the previous artifact.
func (r *Report) StorageKey() string {
	return fmt.Sprintf("glpi_ticket_%d.pdf", r.TicketID)
}

// RunState enumerates pipeline run states.
type RunState string

const (
	RunStateFetching    RunState = "FETCHING"
	RunStateSummarizing RunState = "SUMMARIZING"
	RunStateExtracting  RunState = "EXTRACTING"
	RunStateAssembling  RunState = "ASSEMBLING"
	RunStatePublishing  RunState = "PUBLISHING"
	RunStateDone        RunState = "DONE"
	RunStateFailed      RunState = "FAILED"
)

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == RunStateDone || s == RunStateFailed
}

// FailureReason classifies terminal failures.
type FailureReason string

const (
	ReasonTicketNotFound        FailureReason = "TICKET_NOT_FOUND"
	ReasonBackendUnavailable    FailureReason = "BACKEND_UNAVAILABLE"
	ReasonRenderOrUploadFailure FailureReason = "RENDER_OR_UPLOAD_FAILURE"
)

// ReportRun is the status record kept per ticket so operators can observe
// fire-and-forget run outcomes without polling logs.
type ReportRun struct {
	RunID      string        `json:"run_id"`
	TicketID   int           `json:"ticket_id"`
	State      RunState      `json:"state"`
	Reason     FailureReason `json:"reason,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	ReportKey  string        `json:"report_key,omitempty"`
	ReportURI  string        `json:"report_uri,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// NewReportRun starts a status record for the given ticket.
func NewReportRun(ticketID int) ReportRun {
	return ReportRun{
		RunID:     uuid.NewString(),
		TicketID:  ticketID,
		State:     RunStateFetching,
		StartedAt: time.Now().UTC(),
	}
}
