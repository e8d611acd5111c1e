package psa

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// FindContactsByPhone returns contacts whose default phone equals the digits of phone.
func (c *Client) FindContactsByPhone(ctx context.Context, phone string) ([]Contact, error) {
	digits := NormalizePhone(phone)
	query := url.Values{}
	query.Set("conditions", fmt.Sprintf("defaultPhoneNbr=%q", digits))

	resp, err := c.send(ctx, "find_contacts", http.MethodGet, "/company/contacts", query, nil)
	if err != nil {
		return nil, err
	}
	if err := c.expect("find_contacts", resp, http.StatusOK); err != nil {
		return nil, err
	}
	contacts := []Contact{}
	if err := decode("find_contacts", resp, &contacts); err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []Contact{}
	}
	return contacts, nil
}
