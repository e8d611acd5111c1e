package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/checkin-service/internal/domain"
	"github.com/spec-kit/checkin-service/internal/psa"
)

// enrichmentConcurrency bounds parallel company lookups for one phone search.
const enrichmentConcurrency = 4

// ContactDirectory is the part of the PSA gateway the resolver reads from.
type ContactDirectory interface {
	FindContactsByPhone(ctx context.Context, phone string) ([]psa.Contact, error)
	GetCompany(ctx context.Context, companyID int64) (*psa.Company, error)
}

// ContactResolver turns a phone number into candidate identities.
type ContactResolver struct {
	directory ContactDirectory
	logger    *zap.Logger
}

// NewContactResolver constructs the resolver.
func NewContactResolver(directory ContactDirectory, logger *zap.Logger) *ContactResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactResolver{directory: directory, logger: logger}
}

// Resolve returns every contact whose phone digits match, joined with its company.
// Contacts without a company, or whose company lookup fails, are dropped.
// A cancelled or expired ctx is an error rather than an empty result.
// The result is never nil on success.
func (r *ContactResolver) Resolve(ctx context.Context, phone string) ([]domain.ContactCandidate, error) {
	digits := psa.NormalizePhone(phone)
	contacts, err := r.directory.FindContactsByPhone(ctx, digits)
	if err != nil {
		return nil, err
	}

	slots := make([]*domain.ContactCandidate, len(contacts))
	var g errgroup.Group
	g.SetLimit(enrichmentConcurrency)
	for i, contact := range contacts {
		if contact.Company == nil || contact.Company.ID == 0 {
			r.logger.Warn("dropping contact without company", zap.Int64("contact_id", contact.ID))
			continue
		}
		i, contact := i, contact
		g.Go(func() error {
			company, err := r.directory.GetCompany(ctx, contact.Company.ID)
			if err != nil {
				r.logger.Warn("dropping contact after company lookup failed",
					zap.Int64("contact_id", contact.ID),
					zap.Int64("company_id", contact.Company.ID),
					zap.Error(err))
				return nil
			}
			candidate := candidateFrom(contact, company)
			slots[i] = &candidate
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		// enrichment was cut short; an empty result here would read as "no match"
		return nil, fmt.Errorf("enrich contacts: %w", err)
	}

	candidates := make([]domain.ContactCandidate, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			candidates = append(candidates, *slot)
		}
	}
	r.logger.Info("phone lookup resolved",
		zap.Int("contacts", len(contacts)),
		zap.Int("candidates", len(candidates)))
	return candidates, nil
}

func candidateFrom(contact psa.Contact, company *psa.Company) domain.ContactCandidate {
	return domain.ContactCandidate{
		ContactID:      formatInt(contact.ID),
		CompanyID:      formatInt(company.ID),
		Name:           contact.Name(),
		Phone:          contact.DefaultPhoneNbr,
		Email:          contact.Email(),
		CompanyName:    company.Name,
		CompanyAddress: company.Address(),
	}
}
