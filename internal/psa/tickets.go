package psa

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/checkin-service/internal/domain"
)

type ticketCreateRequest struct {
	Company            Reference `json:"company"`
	Contact            Reference `json:"contact"`
	Summary            string    `json:"summary"`
	InitialDescription string    `json:"initialDescription"`
	Board              Reference `json:"board"`
	Status             Reference `json:"status"`
}

// CreateTicket files a service ticket for the identity on the configured board.
func (c *Client) CreateTicket(ctx context.Context, identity domain.ClientIdentity, summary, description string) (string, error) {
	companyID, err := parseID("company", identity.CompanyID)
	if err != nil {
		return "", err
	}
	contactID, err := parseID("contact", identity.ContactID)
	if err != nil {
		return "", err
	}

	req := ticketCreateRequest{
		Company:            Reference{ID: companyID},
		Contact:            Reference{ID: contactID},
		Summary:            summary,
		InitialDescription: description,
		Board:              Reference{Name: c.cfg.TicketBoard},
		Status:             Reference{Name: c.cfg.TicketStatus},
	}
	resp, err := c.send(ctx, "create_ticket", http.MethodPost, "/service/tickets", nil, req)
	if err != nil {
		return "", err
	}
	if err := c.expect("create_ticket", resp, http.StatusCreated); err != nil {
		return "", err
	}
	var ticket created
	if err := decode("create_ticket", resp, &ticket); err != nil {
		return "", err
	}
	if ticket.ID == 0 {
		return "", errors.New("psa create_ticket: response without id")
	}
	ticketID := formatID(ticket.ID)
	c.logger.Info("ticket created", zap.String("ticket_id", ticketID), zap.String("company_id", identity.CompanyID))
	return ticketID, nil
}
