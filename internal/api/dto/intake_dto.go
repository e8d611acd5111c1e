package dto

import (
	"github.com/spec-kit/checkin-service/internal/domain"
)

// NewClientRequest payload. Field names match the walk-in form.
type NewClientRequest struct {
	Business  string `json:"business" form:"business"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	Phone     string `json:"phone" form:"phone"`
	Email     string `json:"email" form:"email"`
	Address   string `json:"address" form:"address"`
	Address2  string `json:"address2" form:"address2"`
	City      string `json:"city" form:"city"`
	State     string `json:"state" form:"state"`
	Zip       string `json:"zip" form:"zip"`
}

// Profile converts the request to the domain form.
func (r NewClientRequest) Profile() domain.NewClientProfile {
	return domain.NewClientProfile{
		Business:  r.Business,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
		Address2:  r.Address2,
		City:      r.City,
		State:     r.State,
		Zip:       r.Zip,
	}
}

// PhoneLookupRequest payload.
type PhoneLookupRequest struct {
	Phone string `json:"phone" form:"phone"`
}

// SelectContactRequest payload.
type SelectContactRequest struct {
	ContactID string `json:"contact_id" form:"contact_id"`
}

// IssueRequest payload.
type IssueRequest struct {
	Description string `json:"description" form:"description"`
}

// TicketRequest payload. JSON clients send responses in question order; form clients send
// response_1..response_N fields instead.
type TicketRequest struct {
	Responses []string `json:"responses"`
}

// StepResponse is the body of every successful step request.
type StepResponse struct {
	Step       domain.Step               `json:"step"`
	Next       string                    `json:"next,omitempty"`
	Notice     string                    `json:"notice,omitempty"`
	Client     *domain.ClientIdentity    `json:"client,omitempty"`
	Candidates []domain.ContactCandidate `json:"candidates,omitempty"`
	Questions  []string                  `json:"questions,omitempty"`
	TicketID   string                    `json:"ticket_id,omitempty"`
	Payment    *PaymentView              `json:"payment,omitempty"`
}

// PaymentView renders amounts both in cents and as display strings.
type PaymentView struct {
	TicketID     string `json:"ticket_id"`
	DepositCents int64  `json:"deposit_cents"`
	FeeCents     int64  `json:"fee_cents"`
	TotalCents   int64  `json:"total_cents"`
	Deposit      string `json:"deposit"`
	Fee          string `json:"fee"`
	Total        string `json:"total"`
}

// NewPaymentView formats a payment summary.
func NewPaymentView(p *domain.PaymentSummary) *PaymentView {
	if p == nil {
		return nil
	}
	return &PaymentView{
		TicketID:     p.TicketID,
		DepositCents: p.DepositCents,
		FeeCents:     p.FeeCents,
		TotalCents:   p.TotalCents,
		Deposit:      domain.FormatCents(p.DepositCents),
		Fee:          domain.FormatCents(p.FeeCents),
		Total:        domain.FormatCents(p.TotalCents),
	}
}
