package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/checkin-service/pkg/util/errorutil"
)

const handleKey = "session_handle"

// CookieMiddleware binds every request to a workflow handle carried in a signed cookie.
type CookieMiddleware struct {
	tokens     *TokenManager
	cookieName string
	ttl        time.Duration
	secure     bool
	logger     *zap.Logger
}

// NewCookieMiddleware constructs middleware.
func NewCookieMiddleware(tokens *TokenManager, cookieName string, ttl time.Duration, secure bool, logger *zap.Logger) *CookieMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CookieMiddleware{tokens: tokens, cookieName: cookieName, ttl: ttl, secure: secure, logger: logger}
}

// Handle resolves the handle from the cookie, starting a new session when the cookie is
// missing, forged or expired. The cookie is re-issued so its lifetime slides with activity.
func (m *CookieMiddleware) Handle(c *fiber.Ctx) error {
	handle := ""
	if raw := c.Cookies(m.cookieName); raw != "" {
		parsed, err := m.tokens.Parse(raw)
		if err != nil {
			m.logger.Debug("discarding session cookie", zap.Error(err))
		} else {
			handle = parsed
		}
	}
	if handle == "" {
		handle = NewHandle()
	}

	token, err := m.tokens.Issue(handle)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	cookie := &fiber.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if m.ttl > 0 {
		cookie.Expires = time.Now().Add(m.ttl)
	}
	c.Cookie(cookie)

	c.Locals(handleKey, handle)
	return c.Next()
}

// HandleFromContext retrieves the workflow handle bound by the middleware.
func HandleFromContext(c *fiber.Ctx) (string, bool) {
	handle, ok := c.Locals(handleKey).(string)
	return handle, ok && handle != ""
}
