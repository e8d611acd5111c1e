package psa

import (
	"fmt"
	"strconv"
	"strings"
)

// Reference is the PSA's {id|name|identifier} link object.
type Reference struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// CommunicationItem is a typed email or phone entry on a contact.
type CommunicationItem struct {
	Type              Reference `json:"type"`
	Value             string    `json:"value"`
	CommunicationType string    `json:"communicationType"`
	DefaultFlag       bool      `json:"defaultFlag,omitempty"`
}

// Communication item type ids.
const (
	CommunicationTypeEmailID  = 1
	CommunicationTypeMobileID = 4
)

// Contact is the subset of a PSA contact record the check-in flow reads.
type Contact struct {
	ID                 int64               `json:"id"`
	FirstName          string              `json:"firstName"`
	LastName           string              `json:"lastName"`
	Company            *Reference          `json:"company,omitempty"`
	DefaultPhoneNbr    string              `json:"defaultPhoneNbr"`
	CommunicationItems []CommunicationItem `json:"communicationItems"`
}

// Name joins first and last name.
func (c Contact) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Email returns the first Email communication item.
func (c Contact) Email() string {
	for _, item := range c.CommunicationItems {
		if item.CommunicationType == "Email" {
			return item.Value
		}
	}
	return ""
}

// Company is the subset of a PSA company record the check-in flow reads.
type Company struct {
	ID           int64  `json:"id"`
	Identifier   string `json:"identifier"`
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	PhoneNumber  string `json:"phoneNumber"`
}

// Address renders "line1, city, state zip".
func (c Company) Address() string {
	return fmt.Sprintf("%s, %s, %s %s", c.AddressLine1, c.City, c.State, c.Zip)
}

type created struct {
	ID int64 `json:"id"`
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(kind, id string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("psa: invalid %s id %q", kind, id)
	}
	return parsed, nil
}
