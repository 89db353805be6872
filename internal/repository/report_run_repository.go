package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

// ReportRunRepository archives terminal run records. The archive is an
// audit trail; live run status is served from the status store.
type ReportRunRepository interface {
	Archive(ctx context.Context, run domain.ReportRun) error
	ListByTicket(ctx context.Context, ticketID int, limit, offset int) ([]domain.ReportRun, error)
}

type reportRunRepository struct {
	pool *pgxpool.Pool
}

// NewReportRunRepository instantiates repository.
func NewReportRunRepository(pool *pgxpool.Pool) ReportRunRepository {
	return &reportRunRepository{pool: pool}
}

func (r *reportRunRepository) Archive(ctx context.Context, run domain.ReportRun) error {
	const query = `
        INSERT INTO report_runs (run_id, ticket_id, state, failure_reason, detail, report_key, report_uri, started_at, finished_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (run_id) DO UPDATE SET
            state=EXCLUDED.state, failure_reason=EXCLUDED.failure_reason, detail=EXCLUDED.detail,
            report_key=EXCLUDED.report_key, report_uri=EXCLUDED.report_uri, finished_at=EXCLUDED.finished_at`
	_, err := r.pool.Exec(ctx, query,
		run.RunID,
		run.TicketID,
		string(run.State),
		nullableString(string(run.Reason)),
		nullableString(run.Detail),
		nullableString(run.ReportKey),
		nullableString(run.ReportURI),
		run.StartedAt,
		run.FinishedAt,
	)
	return err
}

func (r *reportRunRepository) ListByTicket(ctx context.Context, ticketID int, limit, offset int) ([]domain.ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT run_id, ticket_id, state, failure_reason, detail, report_key, report_uri, started_at, finished_at
        FROM report_runs WHERE ticket_id=$1
        ORDER BY started_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.ReportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (domain.ReportRun, error) {
	var (
		run                                  domain.ReportRun
		state                                string
		reason, detail, reportKey, reportURI *string
	)
	err := row.Scan(&run.RunID, &run.TicketID, &state, &reason, &detail, &reportKey, &reportURI, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return domain.ReportRun{}, err
	}
	run.State = domain.RunState(state)
	if reason != nil {
		run.Reason = domain.FailureReason(*reason)
	}
	if detail != nil {
		run.Detail = *detail
	}
	if reportKey != nil {
		run.ReportKey = *reportKey
	}
	if reportURI != nil {
		run.ReportURI = *reportURI
	}
	return run, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
