package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/checkin-service/internal/config"
	"github.com/spec-kit/checkin-service/internal/domain"
	"github.com/spec-kit/checkin-service/internal/events"
	"github.com/spec-kit/checkin-service/internal/psa"
	"github.com/spec-kit/checkin-service/internal/session"
	apperrors "github.com/spec-kit/checkin-service/pkg/util/errorutil"
)

// NoMatchNotice is shown when a phone search finds nobody.
const NoMatchNotice = "No matching client found."

// ClientGateway is the part of the PSA gateway the orchestrator writes through.
type ClientGateway interface {
	CreateCompanyAndContact(ctx context.Context, profile domain.NewClientProfile) (*psa.CreatedClient, error)
	CreateTicket(ctx context.Context, identity domain.ClientIdentity, summary, description string) (string, error)
}

// CandidateResolver finds candidate identities for a phone number.
type CandidateResolver interface {
	Resolve(ctx context.Context, phone string) ([]domain.ContactCandidate, error)
}

// QuestionGenerator produces follow-up questions for an issue description.
type QuestionGenerator interface {
	Generate(ctx context.Context, issue string) ([]string, error)
}

// IntakeService is the check-in state machine. Each operation reads the session state,
// checks the step is legal, calls out if needed and writes the new state back only on success.
type IntakeService struct {
	sessions   session.Store
	gateway    ClientGateway
	resolver   CandidateResolver
	generator  QuestionGenerator
	dispatcher events.Dispatcher
	payment    config.PaymentConfig
	logger     *zap.Logger
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	Sessions   session.Store
	Gateway    ClientGateway
	Resolver   CandidateResolver
	Generator  QuestionGenerator
	Dispatcher events.Dispatcher
	Payment    config.PaymentConfig
	Logger     *zap.Logger
}

// Outcome is the result of a step request.
// Redirected means a prerequisite was missing and the client must start over.
type Outcome struct {
	Step       domain.Step
	Redirected bool
	Notice     string
	Identity   *domain.ClientIdentity
	Candidates []domain.ContactCandidate
	Questions  []string
	TicketID   string
	Payment    *domain.PaymentSummary
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		sessions:   deps.Sessions,
		gateway:    deps.Gateway,
		resolver:   deps.Resolver,
		generator:  deps.Generator,
		dispatcher: deps.Dispatcher,
		payment:    deps.Payment,
		logger:     logger,
	}
}

func redirectToStart() Outcome {
	return Outcome{Step: domain.StepStart, Redirected: true}
}

// Status reports where the workflow is without changing it.
func (s *IntakeService) Status(ctx context.Context, handle string) (Outcome, error) {
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Step: state.Step, Identity: state.Identity}
	if state.Issue != nil {
		out.Questions = state.Issue.FollowupQuestions
	}
	if state.HasTicket() {
		out.TicketID = state.Ticket.TicketID
	}
	if state.Step == domain.StepDisambiguating && state.LastPhoneSearch != "" {
		candidates, err := s.reresolve(ctx, state)
		if err != nil {
			return Outcome{}, err
		}
		out.Candidates = candidates
	}
	return out, nil
}

// SelectionForm lists the candidates of the pending phone search again.
func (s *IntakeService) SelectionForm(ctx context.Context, handle string) (Outcome, error) {
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if state.Step != domain.StepDisambiguating || state.LastPhoneSearch == "" {
		return redirectToStart(), nil
	}
	candidates, err := s.reresolve(ctx, state)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Step: state.Step, Candidates: candidates}, nil
}

// SubmitNewClient creates the company and contact in the PSA and identifies the client.
func (s *IntakeService) SubmitNewClient(ctx context.Context, handle string, profile domain.NewClientProfile) (Outcome, error) {
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if !isAllowed(actionSubmitNewClient, state.Step) {
		return Outcome{}, apperrors.NewInvalidTransition(string(state.Step), string(actionSubmitNewClient))
	}

	created, err := s.gateway.CreateCompanyAndContact(ctx, profile)
	if err != nil {
		s.logger.Error("new client creation failed",
			zap.String("step", string(state.Step)),
			zap.String("call", "psa.create_company_and_contact"),
			zap.Error(err))
		var partial *psa.PartialCreationError
		if errors.As(err, &partial) {
			s.publish(ctx, handle, state.Step, events.EventPSAPartialCreation, events.PartialCreationPayload{
				CompanyID: partial.CompanyID,
				Error:     partial.Err.Error(),
			})
		}
		return Outcome{}, apperrors.NewRemoteRejected("could not create client record", err)
	}
	for _, w := range created.Warnings {
		s.publish(ctx, handle, state.Step, events.EventPSAWarning, events.PSAWarningPayload{
			Call:      w.Call,
			CompanyID: w.CompanyID,
			ContactID: w.ContactID,
			Message:   w.Message,
		})
	}

	identity := domain.ClientIdentity{
		CompanyID:     created.CompanyID,
		ContactID:     created.ContactID,
		DisplayName:   profile.FullName(),
		Phone:         profile.Phone,
		Email:         profile.Email,
		PostalAddress: profile.PostalAddress(),
	}
	return s.identify(ctx, handle, identity, events.SourceNewClient)
}

// SubmitPhone looks up a returning client. One match identifies the client, several require
// a selection and none leaves the workflow at START with a notice.
func (s *IntakeService) SubmitPhone(ctx context.Context, handle, phone string) (Outcome, error) {
	digits := psa.NormalizePhone(phone)
	if digits == "" {
		return Outcome{}, apperrors.NewValidationError("phone number required", nil)
	}
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if !isAllowed(actionSubmitPhone, state.Step) {
		return Outcome{}, apperrors.NewInvalidTransition(string(state.Step), string(actionSubmitPhone))
	}

	candidates, err := s.resolver.Resolve(ctx, digits)
	if err != nil {
		s.logger.Error("phone lookup failed",
			zap.String("step", string(state.Step)),
			zap.String("call", "psa.find_contacts"),
			zap.Error(err))
		return Outcome{}, apperrors.NewRemoteRejected("client lookup failed", err)
	}

	switch len(candidates) {
	case 0:
		if state.Step == domain.StepDisambiguating {
			state = domain.NewWorkflowState()
			if err := s.save(ctx, handle, state); err != nil {
				return Outcome{}, err
			}
		}
		return Outcome{Step: state.Step, Identity: state.Identity, Notice: NoMatchNotice, Candidates: []domain.ContactCandidate{}}, nil
	case 1:
		return s.identify(ctx, handle, candidates[0].Identity(), events.SourceReturningClient)
	default:
		next := &domain.WorkflowState{Step: domain.StepDisambiguating, LastPhoneSearch: digits}
		if err := s.save(ctx, handle, next); err != nil {
			return Outcome{}, err
		}
		s.publish(ctx, handle, next.Step, events.EventClientSelectionRequired, events.SelectionRequiredPayload{
			CandidateCount: len(candidates),
		})
		return Outcome{Step: next.Step, Candidates: candidates}, nil
	}
}

// SelectCandidate resolves the stored phone again and promotes the chosen contact.
func (s *IntakeService) SelectCandidate(ctx context.Context, handle, contactID string) (Outcome, error) {
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return Outcome{}, apperrors.NewValidationError("please select a contact to continue", nil)
	}
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if !isAllowed(actionSelectCandidate, state.Step) {
		if state.Identity == nil {
			return redirectToStart(), nil
		}
		return Outcome{}, apperrors.NewInvalidTransition(string(state.Step), string(actionSelectCandidate))
	}
	if state.LastPhoneSearch == "" {
		if err := s.save(ctx, handle, domain.NewWorkflowState()); err != nil {
			return Outcome{}, err
		}
		return redirectToStart(), nil
	}

	candidates, err := s.reresolve(ctx, state)
	if err != nil {
		return Outcome{}, err
	}
	for _, candidate := range candidates {
		if candidate.ContactID == contactID {
			return s.identify(ctx, handle, candidate.Identity(), events.SourceSelection)
		}
	}

	s.logger.Warn("selected contact not among candidates",
		zap.String("contact_id", contactID),
		zap.Int("candidates", len(candidates)))
	return Outcome{Step: state.Step, Candidates: candidates}, apperrors.NewSelectionNotFound(contactID, candidates)
}

// Confirm shows the identified client and marks the identity confirmed.
func (s *IntakeService) Confirm(ctx context.Context, handle string) (Outcome, error) {
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if !state.Identity.Valid() {
		return redirectToStart(), nil
	}
	if !isAllowed(actionConfirm, state.Step) {
		return Outcome{}, apperrors.NewInvalidTransition(string(state.Step), string(actionConfirm))
	}
	if state.Step != domain.StepConfirmed {
		state.Step = domain.StepConfirmed
		if err := s.save(ctx, handle, state); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Step: state.Step, Identity: state.Identity}, nil
}

// IssueForm returns what the issue-capture screen needs. It never changes state.
func (s *IntakeService) IssueForm(ctx context.Context, handle string) (Outcome, error) {
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if !state.Identity.Valid() {
		return redirectToStart(), nil
	}
	return Outcome{Step: state.Step, Identity: state.Identity}, nil
}

// SubmitIssue records the description together with its generated follow-up questions.
// A generation failure leaves the stored state untouched.
func (s *IntakeService) SubmitIssue(ctx context.Context, handle, description string) (Outcome, error) {
	if strings.TrimSpace(description) == "" {
		return Outcome{}, apperrors.NewValidationError("description required", nil)
	}
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if !state.Identity.Valid() {
		return redirectToStart(), nil
	}
	if !isAllowed(actionSubmitIssue, state.Step) {
		return Outcome{}, apperrors.NewInvalidTransition(string(state.Step), string(actionSubmitIssue))
	}

	// ISSUE_CAPTURED only lives for the duration of the generation call.
	issue := &domain.IssueRecord{InitialDescription: description}
	questions, err := s.generator.Generate(ctx, issue.InitialDescription)
	if err != nil {
		s.logger.Error("follow-up generation failed",
			zap.String("step", string(domain.StepIssueCaptured)),
			zap.String("call", "textgen.generate"),
			zap.Error(err))
		return Outcome{}, apperrors.NewRemoteRejected("could not prepare follow-up questions", err)
	}
	issue.FollowupQuestions = questions

	state.Issue = issue
	state.Ticket = nil
	state.Step = domain.StepFollowupsReady
	if err := s.save(ctx, handle, state); err != nil {
		return Outcome{}, err
	}
	return Outcome{Step: state.Step, Identity: state.Identity, Questions: questions}, nil
}

// FileTicket pairs responses with questions by 1-based position and files the PSA ticket.
// The ticket id is stored only after the PSA accepted the ticket.
func (s *IntakeService) FileTicket(ctx context.Context, handle string, responses map[int]string) (Outcome, error) {
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if !state.Identity.Valid() || !state.HasFollowups() {
		return redirectToStart(), nil
	}
	if !isAllowed(actionFileTicket, state.Step) {
		return Outcome{}, apperrors.NewInvalidTransition(string(state.Step), string(actionFileTicket))
	}

	answers := state.Issue.PairResponses(responses)
	summary := state.Issue.Summary()
	description := state.Issue.TicketDescription(answers)

	ticketID, err := s.gateway.CreateTicket(ctx, *state.Identity, summary, description)
	if err != nil {
		s.logger.Error("ticket creation failed",
			zap.String("step", string(state.Step)),
			zap.String("call", "psa.create_ticket"),
			zap.String("company_id", state.Identity.CompanyID),
			zap.Error(err))
		return Outcome{}, apperrors.NewRemoteRejected("ticket creation failed", err)
	}

	state.Ticket = &domain.TicketReference{TicketID: ticketID}
	state.Step = domain.StepTicketed
	if err := s.save(ctx, handle, state); err != nil {
		s.logger.Error("ticket filed but session not updated", zap.String("ticket_id", ticketID), zap.Error(err))
		return Outcome{}, err
	}
	s.publish(ctx, handle, state.Step, events.EventTicketFiled, events.TicketFiledPayload{
		TicketID:      ticketID,
		CompanyID:     state.Identity.CompanyID,
		ContactID:     state.Identity.ContactID,
		Summary:       summary,
		QuestionCount: len(answers),
	})
	return Outcome{Step: state.Step, Identity: state.Identity, TicketID: ticketID}, nil
}

// ProceedToPayment moves to the payment hand-off and returns the amounts to display.
func (s *IntakeService) ProceedToPayment(ctx context.Context, handle string) (Outcome, error) {
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if !state.Identity.Valid() || !state.HasTicket() {
		return redirectToStart(), nil
	}
	if !isAllowed(actionProceedToPayment, state.Step) {
		return Outcome{}, apperrors.NewInvalidTransition(string(state.Step), string(actionProceedToPayment))
	}
	if state.Step != domain.StepPaymentPending {
		state.Step = domain.StepPaymentPending
		if err := s.save(ctx, handle, state); err != nil {
			return Outcome{}, err
		}
	}
	summary := s.paymentSummary(state)
	return Outcome{Step: state.Step, Identity: state.Identity, TicketID: state.Ticket.TicketID, Payment: &summary}, nil
}

// Complete ends the workflow and clears every entity from the session.
func (s *IntakeService) Complete(ctx context.Context, handle string) (Outcome, error) {
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if !isAllowed(actionComplete, state.Step) {
		if !state.HasTicket() {
			return redirectToStart(), nil
		}
		return Outcome{}, apperrors.NewInvalidTransition(string(state.Step), string(actionComplete))
	}
	if err := s.clear(ctx, handle); err != nil {
		return Outcome{}, err
	}
	summary := s.paymentSummary(state)
	s.publish(ctx, handle, domain.StepComplete, events.EventCheckinCompleted, events.CheckinCompletedPayload{
		TicketID:   summary.TicketID,
		CompanyID:  state.Identity.CompanyID,
		TotalCents: summary.TotalCents,
	})
	return Outcome{Step: domain.StepComplete, TicketID: summary.TicketID}, nil
}

// Abandon clears the workflow from any state.
func (s *IntakeService) Abandon(ctx context.Context, handle string) (Outcome, error) {
	state, err := s.load(ctx, handle)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.clear(ctx, handle); err != nil {
		return Outcome{}, err
	}
	if state.Step != domain.StepStart {
		s.publish(ctx, handle, state.Step, events.EventCheckinAbandoned, events.CheckinAbandonedPayload{FromStep: state.Step})
	}
	return Outcome{Step: domain.StepStart}, nil
}

func (s *IntakeService) identify(ctx context.Context, handle string, identity domain.ClientIdentity, source events.IdentitySource) (Outcome, error) {
	next := &domain.WorkflowState{Step: domain.StepIdentified, Identity: &identity}
	if err := s.save(ctx, handle, next); err != nil {
		return Outcome{}, err
	}
	s.publish(ctx, handle, next.Step, events.EventClientIdentified, events.ClientIdentifiedPayload{
		Source:    source,
		CompanyID: identity.CompanyID,
		ContactID: identity.ContactID,
	})
	return Outcome{Step: next.Step, Identity: next.Identity}, nil
}

// reresolve repeats the stored phone search; candidates are never kept in the session.
func (s *IntakeService) reresolve(ctx context.Context, state *domain.WorkflowState) ([]domain.ContactCandidate, error) {
	candidates, err := s.resolver.Resolve(ctx, state.LastPhoneSearch)
	if err != nil {
		s.logger.Error("candidate re-resolution failed",
			zap.String("step", string(state.Step)),
			zap.String("call", "psa.find_contacts"),
			zap.Error(err))
		return nil, apperrors.NewRemoteRejected("client lookup failed", err)
	}
	return candidates, nil
}

func (s *IntakeService) paymentSummary(state *domain.WorkflowState) domain.PaymentSummary {
	return domain.NewPaymentSummary(state.Ticket.TicketID, *state.Identity, s.payment.DepositCents, s.payment.FeeCents)
}

func (s *IntakeService) load(ctx context.Context, handle string) (*domain.WorkflowState, error) {
	state, err := s.sessions.Get(ctx, handle)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return state, nil
}

func (s *IntakeService) save(ctx context.Context, handle string, state *domain.WorkflowState) error {
	if err := s.sessions.Set(ctx, handle, state); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *IntakeService) clear(ctx context.Context, handle string) error {
	if err := s.sessions.Clear(ctx, handle); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *IntakeService) publish(ctx context.Context, handle string, step domain.Step, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		SessionHandle: handle,
		Step:          step,
		Timestamp:     time.Now(),
		Payload:       payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
