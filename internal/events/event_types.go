package events

import (
	"time"

	"github.com/spec-kit/checkin-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventClientIdentified        EventType = "client_identified"
	EventClientSelectionRequired EventType = "client_selection_required"
	EventTicketFiled             EventType = "ticket_filed"
	EventCheckinCompleted        EventType = "checkin_completed"
	EventCheckinAbandoned        EventType = "checkin_abandoned"
	EventPSAWarning              EventType = "psa_warning"
	EventPSAPartialCreation      EventType = "psa_partial_creation"
)

// IdentitySource tells how a client was identified.
type IdentitySource string

const (
	SourceNewClient       IdentitySource = "new_client"
	SourceReturningClient IdentitySource = "returning_client"
	SourceSelection       IdentitySource = "selection"
)

// Event represents a workflow event emitted by the orchestrator.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	SessionHandle string      `json:"session_handle"`
	Step          domain.Step `json:"step"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ClientIdentifiedPayload payload.
type ClientIdentifiedPayload struct {
	Source    IdentitySource `json:"source"`
	CompanyID string         `json:"company_id"`
	ContactID string         `json:"contact_id"`
}

// SelectionRequiredPayload payload.
type SelectionRequiredPayload struct {
	CandidateCount int `json:"candidate_count"`
}

// TicketFiledPayload payload.
type TicketFiledPayload struct {
	TicketID      string `json:"ticket_id"`
	CompanyID     string `json:"company_id"`
	ContactID     string `json:"contact_id"`
	Summary       string `json:"summary"`
	QuestionCount int    `json:"question_count"`
}

// CheckinCompletedPayload payload.
type CheckinCompletedPayload struct {
	TicketID   string `json:"ticket_id"`
	CompanyID  string `json:"company_id"`
	TotalCents int64  `json:"total_cents"`
}

// CheckinAbandonedPayload payload.
type CheckinAbandonedPayload struct {
	FromStep domain.Step `json:"from_step"`
}

// PSAWarningPayload payload for a best-effort PSA call that failed.
type PSAWarningPayload struct {
	Call      string `json:"call"`
	CompanyID string `json:"company_id,omitempty"`
	ContactID string `json:"contact_id,omitempty"`
	Message   string `json:"message"`
}

// PartialCreationPayload names a company left without a contact.
type PartialCreationPayload struct {
	CompanyID string `json:"company_id"`
	Error     string `json:"error"`
}
