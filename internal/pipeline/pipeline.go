// Package pipeline orchestrates one ticket's journey from webhook event to
// published report: fetch within a scoped session, summarize and extract
// concurrently, assemble, publish. A run is a fire-and-forget unit of work;
// its failures are contained to the run and surfaced through the status
// store and lifecycle events, never through the webhook response.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/domain"
	"github.com/spec-kit/ticket-report-service/internal/events"
	"github.com/spec-kit/ticket-report-service/internal/observability"
	"github.com/spec-kit/ticket-report-service/internal/report"
	"github.com/spec-kit/ticket-report-service/internal/status"
)

// TicketSource opens per-run sessions against the helpdesk API.
type TicketSource interface {
	Acquire(ctx context.Context) (TicketSession, error)
}

// TicketSession is a scoped session handle. Release must be idempotent.
type TicketSession interface {
	Fetch(ctx context.Context, ticketID int) (*domain.Ticket, error)
	Release(ctx context.Context)
}

// Summarizer produces the raw narrative summary for a ticket.
type Summarizer interface {
	Summarize(ctx context.Context, ticket *domain.Ticket, instruction string) (string, error)
}

// Extractor resolves the structured field set from ticket text.
type Extractor interface {
	ExtractAll(ctx context.Context, ticketText string) domain.ExtractionResult
}

// Cleaner normalizes generated text.
type Cleaner interface {
	Clean(raw string) string
	CleanDedup(raw string) string
}

// Sink publishes an assembled report and returns its URI.
type Sink interface {
	Publish(ctx context.Context, rep *domain.Report) (string, error)
}

// Dependencies bundles pipeline collaborators.
type Dependencies struct {
	Source     TicketSource
	Summarizer Summarizer
	Extractor  Extractor
	Cleaner    Cleaner
	Sink       Sink
	Status     status.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	RunTimeout time.Duration
}

// Pipeline converts tickets into published reports.
type Pipeline struct {
	source     TicketSource
	summarizer Summarizer
	extractor  Extractor
	cleaner    Cleaner
	sink       Sink
	status     status.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	runTimeout time.Duration
}

// New constructs the pipeline.
func New(deps Dependencies) *Pipeline {
	timeout := deps.RunTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &Pipeline{
		source:     deps.Source,
		summarizer: deps.Summarizer,
		extractor:  deps.Extractor,
		cleaner:    deps.Cleaner,
		sink:       deps.Sink,
		status:     deps.Status,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		runTimeout: timeout,
	}
}

// Dispatch starts a background run for the ticket. It returns immediately;
// the caller has already acknowledged the webhook and does not observe the
// outcome. Runs are uncoordinated: concurrent tickets each get their own
// session and their own deadline.
func (p *Pipeline) Dispatch(ticketID int) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("pipeline run panicked",
					zap.Int("ticket_id", ticketID),
					zap.Any("panic", r),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.runTimeout)
		defer cancel()
		p.Process(ctx, ticketID)
	}()
}

// Process runs the full state machine synchronously and returns the
// terminal status record. Exported for tests and for callers that want to
// wait on completion.
func (p *Pipeline) Process(ctx context.Context, ticketID int) domain.ReportRun {
	run := domain.NewReportRun(ticketID)
	p.record(ctx, run)

	session, err := p.source.Acquire(ctx)
	if err != nil {
		return p.fail(ctx, run, domain.ReasonBackendUnavailable, fmt.Errorf("acquiring session: %w", err))
	}
	defer func() {
		// Release with its own deadline so session cleanup survives run
		// cancellation and timeouts.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		session.Release(releaseCtx)
	}()

	ticket, err := session.Fetch(ctx, ticketID)
	if err != nil {
		return p.fail(ctx, run, domain.ReasonBackendUnavailable, fmt.Errorf("fetching ticket: %w", err))
	}
	if ticket.Empty() {
		return p.fail(ctx, run, domain.ReasonTicketNotFound, fmt.Errorf("ticket %d absent or empty", ticketID))
	}

	// Summarization and extraction both depend on the fetched content but
	// not on each other; run them in parallel and join before assembly.
	run = p.transition(ctx, run, domain.RunStateSummarizing)
	run = p.transition(ctx, run, domain.RunStateExtracting)

	var (
		wg         sync.WaitGroup
		summary    string
		summaryErr error
		extraction domain.ExtractionResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		// Stage goroutines must not take the process down; a panic here
		// would also strand the deferred session release.
		defer func() {
			if r := recover(); r != nil {
				summaryErr = fmt.Errorf("summarizing panicked: %v", r)
			}
		}()
		raw, err := p.summarizer.Summarize(ctx, ticket, buildInstruction(ticket))
		if err != nil {
			summaryErr = err
			return
		}
		summary = p.cleaner.Clean(raw)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("extraction panicked",
					zap.Int("ticket_id", ticketID),
					zap.Any("panic", r),
				)
				extraction = domain.NewExtractionResult()
			}
		}()
		extraction = p.extractor.ExtractAll(ctx, ticket.Content)
	}()
	wg.Wait()

	if summaryErr != nil {
		return p.fail(ctx, run, domain.ReasonBackendUnavailable, summaryErr)
	}

	run = p.transition(ctx, run, domain.RunStateAssembling)
	rep := p.assemble(ticket, summary, extraction)

	run = p.transition(ctx, run, domain.RunStatePublishing)
	uri, err := p.sink.Publish(ctx, rep)
	if err != nil {
		return p.fail(ctx, run, domain.ReasonRenderOrUploadFailure, err)
	}

	return p.done(ctx, run, rep.StorageKey(), uri)
}

// buildInstruction renders the fixed summary prompt for a ticket. The
// wording is deterministic for a given ticket id; grounding content is
// supplied by retrieval, not inlined here.
func buildInstruction(ticket *domain.Ticket) string {
	return fmt.Sprintf(`You are an expert IT support assistant. Analyze the helpdesk ticket provided in the context and write a concise, well-structured summary with these sections:

1. Problem Description: what is the problem, when did it start, who is affected, and where.
2. Troubleshooting Steps: the steps already taken to diagnose the issue, as bullet points.
3. Solution: the solution described in the ticket, or "No solution provided."
4. Key Information: the ticket ID (%d) and any other identifiers.`, ticket.ID)
}

// assemble builds the report from the cleaned summary and the extraction
// result. The key-information section additionally gets the dedup pass,
// since the backend tends to restate identifiers it already listed.
func (p *Pipeline) assemble(ticket *domain.Ticket, summary string, extraction domain.ExtractionResult) *domain.Report {
	sections := report.SplitSections(summary)
	for i, section := range sections {
		if section.Label == "Key Information" {
			sections[i].Body = p.cleaner.CleanDedup(section.Body)
		}
	}

	title := fmt.Sprintf("Ticket Analysis - #%d", ticket.ID)
	if name := strings.TrimSpace(ticket.Name); name != "" {
		title = fmt.Sprintf("%s: %s", title, name)
	}

	return &domain.Report{
		TicketID:   ticket.ID,
		Title:      title,
		Sections:   sections,
		Extraction: extraction,
		Sources: []domain.SourceRef{
			{SourceID: ticket.ID, SourceType: domain.ChunkSourceType},
		},
	}
}

func (p *Pipeline) transition(ctx context.Context, run domain.ReportRun, state domain.RunState) domain.ReportRun {
	run.State = state
	p.record(ctx, run)
	return run
}

func (p *Pipeline) done(ctx context.Context, run domain.ReportRun, key, uri string) domain.ReportRun {
	now := time.Now().UTC()
	run.State = domain.RunStateDone
	run.ReportKey = key
	run.ReportURI = uri
	run.FinishedAt = &now
	p.record(ctx, run)

	p.metrics.RecordPipelineRun(string(domain.RunStateDone))
	p.logger.Info("pipeline run completed",
		zap.Int("ticket_id", run.TicketID),
		zap.String("run_id", run.RunID),
		zap.String("report_uri", uri),
	)
	p.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventReportGenerated,
		TicketID:  run.TicketID,
		Timestamp: now,
		Payload: events.ReportGeneratedPayload{
			RunID:     run.RunID,
			ReportKey: key,
			ReportURI: uri,
		},
	})
	return run
}

func (p *Pipeline) fail(ctx context.Context, run domain.ReportRun, reason domain.FailureReason, cause error) domain.ReportRun {
	now := time.Now().UTC()
	run.State = domain.RunStateFailed
	run.Reason = reason
	run.FinishedAt = &now
	if cause != nil {
		run.Detail = cause.Error()
	}
	p.record(ctx, run)

	p.metrics.RecordPipelineRun(string(domain.RunStateFailed) + "|" + string(reason))
	p.logger.Error("pipeline run failed",
		zap.Int("ticket_id", run.TicketID),
		zap.String("run_id", run.RunID),
		zap.String("reason", string(reason)),
		zap.Error(cause),
	)
	p.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventReportFailed,
		TicketID:  run.TicketID,
		Timestamp: now,
		Payload: events.ReportFailedPayload{
			RunID:  run.RunID,
			Reason: reason,
			Detail: run.Detail,
		},
	})
	return run
}

func (p *Pipeline) record(ctx context.Context, run domain.ReportRun) {
	if p.status == nil {
		return
	}
	if err := p.status.Record(ctx, run); err != nil {
		p.logger.Warn("recording run status",
			zap.Int("ticket_id", run.TicketID),
			zap.Error(err),
		)
	}
}

func (p *Pipeline) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	_ = p.dispatcher.Publish(ctx, event)
}
