package domain

import (
	"errors"
	"fmt"
	"time"
)

// Step is the workflow's position in the check-in state machine.
type Step string

const (
	StepStart          Step = "START"
	StepDisambiguating Step = "DISAMBIGUATING"
	StepIdentified     Step = "IDENTIFIED"
	StepConfirmed      Step = "CONFIRMED"
	StepIssueCaptured  Step = "ISSUE_CAPTURED"
	StepFollowupsReady Step = "FOLLOWUPS_READY"
	StepTicketed       Step = "TICKETED"
	StepPaymentPending Step = "PAYMENT_PENDING"
	StepComplete       Step = "COMPLETE"
)

var knownSteps = map[Step]struct{}{
	StepStart:          {},
	StepDisambiguating: {},
	StepIdentified:     {},
	StepConfirmed:      {},
	StepIssueCaptured:  {},
	StepFollowupsReady: {},
	StepTicketed:       {},
	StepPaymentPending: {},
	StepComplete:       {},
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	_, ok := knownSteps[s]
	return ok
}

// ErrInvalidState marks a stored workflow blob whose entities contradict its step.
var ErrInvalidState = errors.New("invalid workflow state")

// WorkflowState is everything a session has accumulated so far.
type WorkflowState struct {
	Step            Step             `json:"step"`
	Identity        *ClientIdentity  `json:"identity,omitempty"`
	LastPhoneSearch string           `json:"last_phone_search,omitempty"`
	Issue           *IssueRecord     `json:"issue,omitempty"`
	Ticket          *TicketReference `json:"ticket,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewWorkflowState returns the state of a fresh session.
func NewWorkflowState() *WorkflowState {
	return &WorkflowState{Step: StepStart}
}

// HasFollowups reports whether an issue with generated questions exists.
func (w *WorkflowState) HasFollowups() bool {
	return w.Issue != nil && len(w.Issue.FollowupQuestions) > 0
}

// HasTicket reports whether a ticket was filed.
func (w *WorkflowState) HasTicket() bool {
	return w.Ticket != nil && w.Ticket.TicketID != ""
}

// Validate checks the entities a step depends on are present.
func (w *WorkflowState) Validate() error {
	if w == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidState)
	}
	if !w.Step.Valid() {
		return fmt.Errorf("%w: unknown step %q", ErrInvalidState, w.Step)
	}
	switch w.Step {
	case StepIdentified, StepConfirmed, StepIssueCaptured:
		if !w.Identity.Valid() {
			return fmt.Errorf("%w: %s without identity", ErrInvalidState, w.Step)
		}
	case StepFollowupsReady:
		if !w.Identity.Valid() || !w.HasFollowups() {
			return fmt.Errorf("%w: %s without identity or follow-ups", ErrInvalidState, w.Step)
		}
	case StepTicketed, StepPaymentPending:
		if !w.Identity.Valid() || !w.HasTicket() {
			return fmt.Errorf("%w: %s without identity or ticket", ErrInvalidState, w.Step)
		}
	}
	return nil
}
