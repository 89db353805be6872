// Package extract pulls named structured fields out of raw ticket text.
//
// Each field carries a strategy: a pattern matcher where the ticket format
// is reliable enough for one, and a completion prompt as fallback. Rules are
// tried first and take precedence over the backend; the two are never
// blended. Strategy choice is data in the table below, not control flow.
package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

// Completer issues a single-shot, non-retrieval completion request.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type fieldStrategy struct {
	match  func(string) string // nil when the field has no reliable pattern
	prompt string
}

var strategies = map[domain.FieldName]fieldStrategy{
	domain.FieldAffectedSystems: {
		prompt: "List the systems, services, or devices affected in this ticket. Reply with the names only.",
	},
	domain.FieldErrorMessages: {
		match:  matchErrorMessages,
		prompt: "Quote the exact error messages reported in this ticket. Reply with the messages only.",
	},
	domain.FieldAffectedUsers: {
		match:  matchAffectedUsers,
		prompt: "List the names of the users affected in this ticket. Reply with the names only.",
	},
	domain.FieldStartTime: {
		match:  matchStartTime,
		prompt: "When did the issue in this ticket start? Reply with the time and date only.",
	},
	domain.FieldSuspectedCauses: {
		match:  matchSuspectedCauses,
		prompt: "What are the suspected causes of the issue in this ticket? Reply with the causes only.",
	},
	domain.FieldResolutionSteps: {
		match:  matchResolutionSteps,
		prompt: "What steps resolved the issue in this ticket? Reply with the steps only.",
	},
}

// Extractor resolves every field of the fixed set against ticket text.
type Extractor struct {
	completer Completer
	logger    *zap.Logger
}

// NewExtractor constructs the extractor.
func NewExtractor(completer Completer, logger *zap.Logger) *Extractor {
	return &Extractor{completer: completer, logger: logger}
}

// Extract resolves a single field. It returns the NotFound sentinel for
// absent values and for backend failures; it never returns an error, so one
// field can never abort extraction of the others.
func (e *Extractor) Extract(ctx context.Context, field domain.FieldName, ticketText string) string {
	if strings.TrimSpace(ticketText) == "" {
		return domain.NotFound
	}

	strategy, ok := strategies[field]
	if !ok {
		return domain.NotFound
	}

	if strategy.match != nil {
		if value := strategy.match(ticketText); value != "" {
			return value
		}
	}

	return e.complete(ctx, field, strategy.prompt, ticketText)
}

// ExtractAll resolves every field independently. The returned map always
// contains the full field set.
func (e *Extractor) ExtractAll(ctx context.Context, ticketText string) domain.ExtractionResult {
	result := domain.NewExtractionResult()
	if strings.TrimSpace(ticketText) == "" {
		return result
	}
	for _, field := range domain.Fields() {
		result[field] = e.Extract(ctx, field, ticketText)
	}
	return result
}

func (e *Extractor) complete(ctx context.Context, field domain.FieldName, directive, ticketText string) string {
	prompt := fmt.Sprintf("%s\n\nTicket:\n%s", directive, ticketText)

	response, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("field extraction fell back to sentinel",
			zap.String("field", string(field)),
			zap.Error(err),
		)
		return domain.NotFound
	}

	value := scrubResponse(response)
	if value == "" || isNotFoundAnswer(value) {
		return domain.NotFound
	}
	return value
}

// isNotFoundAnswer recognizes the backend declaring absence in its own words.
func isNotFoundAnswer(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none", "not found", "n/a", "unknown", "no solution provided":
		return true
	}
	return false
}
