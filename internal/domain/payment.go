package domain

import "fmt"

// PaymentSummary is what the hand-off screen displays. Nothing is captured.
type PaymentSummary struct {
	TicketID     string         `json:"ticket_id"`
	Client       ClientIdentity `json:"client"`
	DepositCents int64          `json:"deposit_cents"`
	FeeCents     int64          `json:"fee_cents"`
	TotalCents   int64          `json:"total_cents"`
}

// NewPaymentSummary totals deposit and fee.
func NewPaymentSummary(ticketID string, client ClientIdentity, depositCents, feeCents int64) PaymentSummary {
	return PaymentSummary{
		TicketID:     ticketID,
		Client:       client,
		DepositCents: depositCents,
		FeeCents:     feeCents,
		TotalCents:   depositCents + feeCents,
	}
}

// FormatCents renders an amount as dollars, e.g. 10300 -> "103.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
