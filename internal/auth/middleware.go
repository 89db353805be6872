package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticket-report-service/pkg/util"
)

const sourceKey = "webhook_source"

// WebhookMiddleware validates bearer tokens on the webhook endpoint. When no
// token manager is configured the check is disabled and all callers pass.
type WebhookMiddleware struct {
	tokens *TokenManager
}

// NewWebhookMiddleware constructs middleware. tokens may be nil.
func NewWebhookMiddleware(tokens *TokenManager) *WebhookMiddleware {
	return &WebhookMiddleware{tokens: tokens}
}

// Handle enforces authentication when configured.
func (m *WebhookMiddleware) Handle(c *fiber.Ctx) error {
	if m.tokens == nil {
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(sourceKey, claims.Source)
	return c.Next()
}

// SourceFromContext retrieves the authenticated webhook source.
func SourceFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(sourceKey)
	if val == nil {
		return "", false
	}
	source, ok := val.(string)
	return source, ok
}
