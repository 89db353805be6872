package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, got)

	run := domain.NewReportRun(5)
	require.NoError(t, store.Record(ctx, run))

	got, err = store.Get(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, domain.RunStateFetching, got.State)
}

func TestMemoryStoreOverwritesPerTicket(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	run := domain.NewReportRun(9)
	require.NoError(t, store.Record(ctx, run))

	run.State = domain.RunStateDone
	run.ReportKey = "glpi_ticket_9.pdf"
	require.NoError(t, store.Record(ctx, run))

	got, err := store.Get(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.RunStateDone, got.State)
	assert.Equal(t, "glpi_ticket_9.pdf", got.ReportKey)
}
