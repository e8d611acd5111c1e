package domain

// ClientIdentity is one confirmed person+company pair held by a workflow.
// It is replaced wholesale, never patched field by field.
type ClientIdentity struct {
	CompanyID     string `json:"company_id"`
	ContactID     string `json:"contact_id"`
	DisplayName   string `json:"display_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	PostalAddress string `json:"postal_address"`
}

// Valid reports whether the identity references both PSA records.
func (c *ClientIdentity) Valid() bool {
	return c != nil && c.CompanyID != "" && c.ContactID != ""
}

// ContactCandidate is a phone lookup result pending selection.
type ContactCandidate struct {
	ContactID      string `json:"contact_id"`
	CompanyID      string `json:"company_id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
}

// Identity promotes the candidate to a confirmed identity.
func (c ContactCandidate) Identity() ClientIdentity {
	return ClientIdentity{
		CompanyID:     c.CompanyID,
		ContactID:     c.ContactID,
		DisplayName:   c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		PostalAddress: c.CompanyAddress,
	}
}
