// Package status keeps per-ticket run status records so operators can
// observe fire-and-forget pipeline outcomes without polling logs.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

// Store records and retrieves the latest run status per ticket.
type Store interface {
	Record(ctx context.Context, run domain.ReportRun) error
	Get(ctx context.Context, ticketID int) (*domain.ReportRun, error)
}

func runKey(ticketID int) string {
	return fmt.Sprintf("report_run:%d", ticketID)
}

// redisStore keeps records in Redis with a TTL.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Record(ctx context.Context, run domain.ReportRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run status: %w", err)
	}
	return s.client.Set(ctx, runKey(run.TicketID), payload, s.ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, ticketID int) (*domain.ReportRun, error) {
	payload, err := s.client.Get(ctx, runKey(ticketID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var run domain.ReportRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("decoding run status: %w", err)
	}
	return &run, nil
}

// memoryStore is the in-process fallback used when Redis is not configured,
// and in tests.
type memoryStore struct {
	mu   sync.RWMutex
	runs map[int]domain.ReportRun
}

// NewMemoryStore builds an in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{runs: make(map[int]domain.ReportRun)}
}

func (s *memoryStore) Record(_ context.Context, run domain.ReportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.TicketID] = run
	return nil
}

func (s *memoryStore) Get(_ context.Context, ticketID int) (*domain.ReportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[ticketID]
	if !ok {
		return nil, nil
	}
	return &run, nil
}
