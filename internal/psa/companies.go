package psa

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/checkin-service/internal/domain"
)

// Warning is a non-fatal failure of a best-effort call.
type Warning struct {
	Call      string `json:"call"`
	CompanyID string `json:"company_id,omitempty"`
	ContactID string `json:"contact_id,omitempty"`
	Message   string `json:"message"`
}

// CreatedClient is the result of creating a company and its first contact.
type CreatedClient struct {
	CompanyID string
	ContactID string
	Warnings  []Warning
}

type companyCreateRequest struct {
	Identifier   string      `json:"identifier"`
	Name         string      `json:"name"`
	AddressLine1 string      `json:"addressLine1"`
	AddressLine2 string      `json:"addressLine2"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	Zip          string      `json:"zip"`
	PhoneNumber  string      `json:"phoneNumber"`
	Territory    Reference   `json:"territory"`
	Site         Reference   `json:"site"`
	Types        []Reference `json:"types"`
}

type contactCreateRequest struct {
	FirstName          string              `json:"firstName"`
	LastName           string              `json:"lastName"`
	Company            Reference           `json:"company"`
	CommunicationItems []CommunicationItem `json:"communicationItems"`
}

type defaultContactPatch struct {
	ID             int64     `json:"id"`
	DefaultContact Reference `json:"defaultContact"`
}

// CreateCompanyAndContact creates the company, then its contact, then links the contact as
// the company default. The link is best effort and only yields a Warning.
func (c *Client) CreateCompanyAndContact(ctx context.Context, profile domain.NewClientProfile) (*CreatedClient, error) {
	companyName := profile.CompanyName()
	identifier := CompanyIdentifier(companyName)
	c.logger.Info("creating company", zap.String("identifier", identifier))

	companyReq := companyCreateRequest{
		Identifier:   identifier,
		Name:         companyName,
		AddressLine1: profile.Address,
		AddressLine2: profile.Address2,
		City:         profile.City,
		State:        profile.State,
		Zip:          profile.Zip,
		PhoneNumber:  profile.Phone,
		Territory:    Reference{Name: c.cfg.Territory},
		Site:         Reference{Name: c.cfg.SiteName},
		Types:        []Reference{{ID: int64(c.cfg.CompanyTypeID)}},
	}
	resp, err := c.send(ctx, "create_company", http.MethodPost, "/company/companies", nil, companyReq)
	if err != nil {
		return nil, err
	}
	if err := c.expect("create_company", resp, http.StatusCreated); err != nil {
		return nil, err
	}
	var company created
	if err := decode("create_company", resp, &company); err != nil {
		return nil, err
	}
	companyID := formatID(company.ID)

	contactReq := contactCreateRequest{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Company:   Reference{ID: company.ID},
		CommunicationItems: []CommunicationItem{
			{Type: Reference{ID: CommunicationTypeEmailID}, Value: profile.Email, CommunicationType: "Email"},
			{Type: Reference{ID: CommunicationTypeMobileID}, Value: profile.Phone, CommunicationType: "Phone"},
		},
	}
	contactID, err := c.createContact(ctx, contactReq)
	if err != nil {
		c.logger.Error("contact creation failed after company was created",
			zap.String("company_id", companyID), zap.Error(err))
		return nil, &PartialCreationError{CompanyID: companyID, Err: err}
	}

	result := &CreatedClient{CompanyID: companyID, ContactID: formatID(contactID)}
	if err := c.linkDefaultContact(ctx, company.ID, contactID); err != nil {
		c.logger.Warn("default contact link failed", zap.String("company_id", companyID), zap.Error(err))
		result.Warnings = append(result.Warnings, Warning{
			Call:      "link_default_contact",
			CompanyID: companyID,
			ContactID: result.ContactID,
			Message:   err.Error(),
		})
	}
	return result, nil
}

func (c *Client) createContact(ctx context.Context, req contactCreateRequest) (int64, error) {
	resp, err := c.send(ctx, "create_contact", http.MethodPost, "/company/contacts", nil, req)
	if err != nil {
		return 0, err
	}
	if err := c.expect("create_contact", resp, http.StatusCreated); err != nil {
		return 0, err
	}
	var contact created
	if err := decode("create_contact", resp, &contact); err != nil {
		return 0, err
	}
	return contact.ID, nil
}

func (c *Client) linkDefaultContact(ctx context.Context, companyID, contactID int64) error {
	patch := defaultContactPatch{ID: companyID, DefaultContact: Reference{ID: contactID}}
	resp, err := c.send(ctx, "link_default_contact", http.MethodPatch, "/company/companies/"+formatID(companyID), nil, patch)
	if err != nil {
		return err
	}
	if resp.status < 200 || resp.status > 299 {
		return newRemoteError("link_default_contact", resp.status, resp.body)
	}
	return nil
}

// GetCompany fetches a company by id.
func (c *Client) GetCompany(ctx context.Context, companyID int64) (*Company, error) {
	resp, err := c.send(ctx, "get_company", http.MethodGet, "/company/companies/"+formatID(companyID), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := c.expect("get_company", resp, http.StatusOK); err != nil {
		return nil, err
	}
	var company Company
	if err := decode("get_company", resp, &company); err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, errors.New("psa get_company: response without id")
	}
	return &company, nil
}
