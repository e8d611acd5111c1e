package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/checkin-service/internal/api/http/handlers"
	"github.com/spec-kit/checkin-service/internal/config"
	"github.com/spec-kit/checkin-service/internal/domain"
	"github.com/spec-kit/checkin-service/internal/observability"
	"github.com/spec-kit/checkin-service/internal/psa"
	"github.com/spec-kit/checkin-service/internal/service"
	"github.com/spec-kit/checkin-service/internal/session"
	"github.com/spec-kit/checkin-service/internal/validation"
)

type stubGateway struct {
	description string
	ticketErr   error
}

func (g *stubGateway) CreateCompanyAndContact(context.Context, domain.NewClientProfile) (*psa.CreatedClient, error) {
	return &psa.CreatedClient{CompanyID: "11", ContactID: "22"}, nil
}

func (g *stubGateway) CreateTicket(_ context.Context, _ domain.ClientIdentity, _, description string) (string, error) {
	g.description = description
	if g.ticketErr != nil {
		return "", g.ticketErr
	}
	return "4242", nil
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, phone string) ([]domain.ContactCandidate, error) {
	if phone == "5551234567" {
		return []domain.ContactCandidate{
			{ContactID: "7", CompanyID: "3", Name: "Ana Diaz"},
			{ContactID: "8", CompanyID: "4", Name: "Bo Diaz"},
		}, nil
	}
	return []domain.ContactCandidate{}, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, string) ([]string, error) {
	return []string{"1. Which printer?", "2. Any error code?"}, nil
}

type client struct {
	t      *testing.T
	app    *fiber.App
	cookie *nethttp.Cookie
}

type envelope struct {
	Data struct {
		Step       string                    `json:"step"`
		Next       string                    `json:"next"`
		Notice     string                    `json:"notice"`
		Candidates []domain.ContactCandidate `json:"candidates"`
		Questions  []string                  `json:"questions"`
		TicketID   string                    `json:"ticket_id"`
		Payment    struct {
			Total string `json:"total"`
		} `json:"payment"`
	} `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T, gateway *stubGateway) *client {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	intake := service.NewIntakeService(service.IntakeDependencies{
		Sessions:  session.NewMemoryStore(),
		Gateway:   gateway,
		Resolver:  stubResolver{},
		Generator: stubGenerator{},
		Payment:   config.PaymentConfig{DepositCents: 10000, FeeCents: 300},
		Logger:    logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Minute)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("checkin-service", "test", nil, nil, metrics),
		Intake:  handlers.NewIntakeHandler(intake, validation.New()),
		Session: session.NewCookieMiddleware(session.NewTokenManager("secret", time.Hour), "checkin_session", time.Hour, false, logger),
	})
	return &client{t: t, app: app}
}

func (c *client) do(method, path, contentType, body string) (*nethttp.Response, envelope) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	resp, err := c.app.Test(req)
	require.NoError(c.t, err)
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "checkin_session" {
			c.cookie = &nethttp.Cookie{Name: cookie.Name, Value: cookie.Value}
		}
	}
	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

func (c *client) form(path string, values url.Values) (*nethttp.Response, envelope) {
	return c.do(nethttp.MethodPost, path, fiber.MIMEApplicationForm, values.Encode())
}

func TestCheckinFlowOverHTTP(t *testing.T) {
	gateway := &stubGateway{}
	c := newTestServer(t, gateway)

	resp, env := c.do(nethttp.MethodGet, "/", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "START", env.Data.Step)

	resp, env = c.form("/returning", url.Values{"phone": {"(555) 123-4567"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "DISAMBIGUATING", env.Data.Step)
	assert.Equal(t, "/select-contact", env.Data.Next)
	assert.Len(t, env.Data.Candidates, 2)

	resp, env = c.form("/select-contact", url.Values{"contact_id": {"404"}})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "SELECTION_NOT_FOUND", env.Error.Code)
	assert.Len(t, env.Error.Details["candidates"], 2)

	resp, env = c.do(nethttp.MethodGet, "/select-contact", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "DISAMBIGUATING", env.Data.Step)
	assert.Len(t, env.Data.Candidates, 2)

	resp, env = c.form("/select-contact", url.Values{"contact_id": {"7"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "IDENTIFIED", env.Data.Step)

	resp, env = c.do(nethttp.MethodGet, "/confirm", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "/issue", env.Data.Next)

	resp, env = c.form("/issue", url.Values{"description": {"Printer offline"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "FOLLOWUPS_READY", env.Data.Step)
	assert.Len(t, env.Data.Questions, 2)

	resp, env = c.form("/create-ticket", url.Values{"response_1": {"HP 404"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "4242", env.Data.TicketID)
	assert.Contains(t, gateway.description, "1. Which printer?\nA: HP 404\n2. Any error code?\nA: ")

	resp, env = c.do(nethttp.MethodGet, "/payment", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PAYMENT_PENDING", env.Data.Step)
	assert.Equal(t, "103.00", env.Data.Payment.Total)

	resp, env = c.do(nethttp.MethodPost, "/complete", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "COMPLETE", env.Data.Step)

	_, env = c.do(nethttp.MethodGet, "/", "", "")
	assert.Equal(t, "START", env.Data.Step)
}

func TestMissingPrerequisiteRedirects(t *testing.T) {
	c := newTestServer(t, &stubGateway{})
	resp, _ := c.do(nethttp.MethodGet, "/payment", "", "")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestNewClientValidationAndJSONResponses(t *testing.T) {
	c := newTestServer(t, &stubGateway{})

	resp, env := c.do(nethttp.MethodPost, "/new", fiber.MIMEApplicationJSON, `{"first_name":"Ana"}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	body := `{"first_name":"Ana","last_name":"Diaz","phone":"5551234567","email":"ana@example.com",
		"address":"1 Main St","city":"Hollister","state":"CA","zip":"95023"}`
	resp, env = c.do(nethttp.MethodPost, "/new", fiber.MIMEApplicationJSON, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "IDENTIFIED", env.Data.Step)

	_, _ = c.do(nethttp.MethodGet, "/confirm", "", "")
	_, _ = c.do(nethttp.MethodPost, "/issue", fiber.MIMEApplicationJSON, `{"description":"No wifi"}`)
	resp, env = c.do(nethttp.MethodPost, "/create-ticket", fiber.MIMEApplicationJSON, `{"responses":["a","b"]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "TICKETED", env.Data.Step)

	resp, env = c.do(nethttp.MethodPost, "/create-ticket", fiber.MIMEApplicationJSON, `{"responses":["a","b"]}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)
}

func TestTicketRejectionReturnsBadGateway(t *testing.T) {
	gateway := &stubGateway{ticketErr: &psa.RemoteError{Call: "psa.create_ticket", StatusCode: 400, Body: "bad board"}}
	c := newTestServer(t, gateway)
	c.form("/returning", url.Values{"phone": {"5551234567"}})
	c.form("/select-contact", url.Values{"contact_id": {"8"}})
	c.do(nethttp.MethodGet, "/confirm", "", "")
	c.form("/issue", url.Values{"description": {"Printer offline"}})

	resp, env := c.form("/create-ticket", url.Values{"response_1": {"x"}})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "REMOTE_REJECTED", env.Error.Code)

	_, env = c.do(nethttp.MethodGet, "/", "", "")
	assert.Equal(t, "FOLLOWUPS_READY", env.Data.Step)
}

func TestResetAndHealth(t *testing.T) {
	c := newTestServer(t, &stubGateway{})
	c.form("/returning", url.Values{"phone": {"5551234567"}})

	resp, env := c.do(nethttp.MethodPost, "/reset", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "START", env.Data.Step)

	resp, _ = c.do(nethttp.MethodGet, "/health/ready", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = c.do(nethttp.MethodGet, "/nowhere", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
