package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/checkin-service/internal/api/dto"
	"github.com/spec-kit/checkin-service/internal/domain"
	"github.com/spec-kit/checkin-service/internal/service"
	"github.com/spec-kit/checkin-service/internal/session"
	"github.com/spec-kit/checkin-service/internal/validation"
	apperrors "github.com/spec-kit/checkin-service/pkg/util/errorutil"
)

const responseFieldPrefix = "response_"

// IntakeService is the orchestrator surface the handler drives.
type IntakeService interface {
	Status(ctx context.Context, handle string) (service.Outcome, error)
	SelectionForm(ctx context.Context, handle string) (service.Outcome, error)
	SubmitNewClient(ctx context.Context, handle string, profile domain.NewClientProfile) (service.Outcome, error)
	SubmitPhone(ctx context.Context, handle, phone string) (service.Outcome, error)
	SelectCandidate(ctx context.Context, handle, contactID string) (service.Outcome, error)
	Confirm(ctx context.Context, handle string) (service.Outcome, error)
	IssueForm(ctx context.Context, handle string) (service.Outcome, error)
	SubmitIssue(ctx context.Context, handle, description string) (service.Outcome, error)
	FileTicket(ctx context.Context, handle string, responses map[int]string) (service.Outcome, error)
	ProceedToPayment(ctx context.Context, handle string) (service.Outcome, error)
	Complete(ctx context.Context, handle string) (service.Outcome, error)
	Abandon(ctx context.Context, handle string) (service.Outcome, error)
}

// IntakeHandler exposes the check-in steps.
type IntakeHandler struct {
	service   IntakeService
	validator *validation.Validator
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(intake IntakeService, validator *validation.Validator) *IntakeHandler {
	return &IntakeHandler{service: intake, validator: validator}
}

var nextRoute = map[domain.Step]string{
	domain.StepStart:          "/",
	domain.StepDisambiguating: "/select-contact",
	domain.StepIdentified:     "/confirm",
	domain.StepConfirmed:      "/issue",
	domain.StepFollowupsReady: "/create-ticket",
	domain.StepTicketed:       "/payment",
	domain.StepPaymentPending: "/complete",
	domain.StepComplete:       "/",
}

// Status GET /.
func (h *IntakeHandler) Status(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	out, err := h.service.Status(c.UserContext(), handle)
	return respond(c, out, err)
}

// SubmitNewClient POST /new.
func (h *IntakeHandler) SubmitNewClient(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	var req dto.NewClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile := req.Profile()
	if err := h.validator.Struct(profile); err != nil {
		return err
	}
	out, err := h.service.SubmitNewClient(c.UserContext(), handle, profile)
	return respond(c, out, err)
}

// SubmitPhone POST /returning.
func (h *IntakeHandler) SubmitPhone(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	var req dto.PhoneLookupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	out, err := h.service.SubmitPhone(c.UserContext(), handle, req.Phone)
	return respond(c, out, err)
}

// SelectionForm GET /select-contact.
func (h *IntakeHandler) SelectionForm(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	out, err := h.service.SelectionForm(c.UserContext(), handle)
	return respond(c, out, err)
}

// SelectContact POST /select-contact.
func (h *IntakeHandler) SelectContact(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	var req dto.SelectContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	out, err := h.service.SelectCandidate(c.UserContext(), handle, req.ContactID)
	return respond(c, out, err)
}

// Confirm GET /confirm.
func (h *IntakeHandler) Confirm(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	out, err := h.service.Confirm(c.UserContext(), handle)
	return respond(c, out, err)
}

// IssueForm GET /issue.
func (h *IntakeHandler) IssueForm(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	out, err := h.service.IssueForm(c.UserContext(), handle)
	return respond(c, out, err)
}

// SubmitIssue POST /issue.
func (h *IntakeHandler) SubmitIssue(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	var req dto.IssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	out, err := h.service.SubmitIssue(c.UserContext(), handle, req.Description)
	return respond(c, out, err)
}

// CreateTicket POST /create-ticket.
func (h *IntakeHandler) CreateTicket(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	responses, err := parseResponses(c)
	if err != nil {
		return err
	}
	out, err := h.service.FileTicket(c.UserContext(), handle, responses)
	return respond(c, out, err)
}

// Payment GET /payment.
func (h *IntakeHandler) Payment(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	out, err := h.service.ProceedToPayment(c.UserContext(), handle)
	return respond(c, out, err)
}

// Complete POST /complete.
func (h *IntakeHandler) Complete(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	out, err := h.service.Complete(c.UserContext(), handle)
	return respond(c, out, err)
}

// Reset POST /reset.
func (h *IntakeHandler) Reset(c *fiber.Ctx) error {
	handle, err := handleFrom(c)
	if err != nil {
		return err
	}
	out, err := h.service.Abandon(c.UserContext(), handle)
	return respond(c, out, err)
}

func handleFrom(c *fiber.Ctx) (string, error) {
	handle, ok := session.HandleFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("session required")
	}
	return handle, nil
}

func respond(c *fiber.Ctx, out service.Outcome, err error) error {
	if err != nil {
		return err
	}
	if out.Redirected {
		return c.Redirect("/", http.StatusFound)
	}
	return c.JSON(fiber.Map{"data": stepResponse(out)})
}

func stepResponse(out service.Outcome) dto.StepResponse {
	return dto.StepResponse{
		Step:       out.Step,
		Next:       nextRoute[out.Step],
		Notice:     out.Notice,
		Client:     out.Identity,
		Candidates: out.Candidates,
		Questions:  out.Questions,
		TicketID:   out.TicketID,
		Payment:    dto.NewPaymentView(out.Payment),
	}
}

// parseResponses accepts either a JSON responses array or response_N form fields,
// both keyed 1-based by question position.
func parseResponses(c *fiber.Ctx) (map[int]string, error) {
	responses := map[int]string{}
	if c.Is("json") {
		var req dto.TicketRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return nil, apperrors.NewValidationError("invalid payload", nil)
			}
		}
		for i, answer := range req.Responses {
			responses[i+1] = answer
		}
		return responses, nil
	}

	collect := func(key, value string) {
		if !strings.HasPrefix(key, responseFieldPrefix) {
			return
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(key, responseFieldPrefix))
		if err != nil || idx < 1 {
			return
		}
		responses[idx] = value
	}
	if form, err := c.MultipartForm(); err == nil {
		for key, values := range form.Value {
			if len(values) > 0 {
				collect(key, values[0])
			}
		}
		return responses, nil
	}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		collect(string(key), string(value))
	})
	return responses, nil
}
