package domain

import (
	"fmt"
	"strings"
)

// NewClientProfile is the intake form for a client without a PSA record.
type NewClientProfile struct {
	Business  string `json:"business"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Address   string `json:"address" validate:"required"`
	Address2  string `json:"address2"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
}

// FullName joins first and last name.
func (p NewClientProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CompanyName is the business name, or the person's name for individuals.
func (p NewClientProfile) CompanyName() string {
	if name := strings.TrimSpace(p.Business); name != "" {
		return name
	}
	return p.FullName()
}

// PostalAddress renders the single-line address kept on the identity.
func (p NewClientProfile) PostalAddress() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s, %s, %s %s", p.Address, p.Address2, p.City, p.State, p.Zip))
}
