package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/checkin-service/internal/psa"
)

type fakeDirectory struct {
	mu        sync.Mutex
	contacts  []psa.Contact
	companies map[int64]*psa.Company
	findErr   error
	phones    []string
	cancel    context.CancelFunc
}

func (d *fakeDirectory) FindContactsByPhone(_ context.Context, phone string) ([]psa.Contact, error) {
	d.mu.Lock()
	d.phones = append(d.phones, phone)
	d.mu.Unlock()
	return d.contacts, d.findErr
}

func (d *fakeDirectory) GetCompany(ctx context.Context, id int64) (*psa.Company, error) {
	if d.cancel != nil {
		d.cancel()
		return nil, ctx.Err()
	}
	company, ok := d.companies[id]
	if !ok {
		return nil, &psa.RemoteError{Call: "psa.get_company", StatusCode: 404}
	}
	return company, nil
}

func TestResolveJoinsCompaniesInOrder(t *testing.T) {
	dir := &fakeDirectory{
		contacts: []psa.Contact{
			{ID: 7, FirstName: "Ana", LastName: "Diaz", DefaultPhoneNbr: "5551234567", Company: &psa.Reference{ID: 3}},
			{ID: 8, FirstName: "Bo", LastName: "Diaz", DefaultPhoneNbr: "5551234567", Company: &psa.Reference{ID: 4}},
		},
		companies: map[int64]*psa.Company{
			3: {ID: 3, Name: "Diaz Bakery", AddressLine1: "1 Main St", City: "Hollister", State: "CA", Zip: "95023"},
			4: {ID: 4, Name: "Diaz Garage"},
		},
	}
	resolver := NewContactResolver(dir, nil)

	candidates, err := resolver.Resolve(context.Background(), "(555) 123-4567")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, []string{"5551234567"}, dir.phones)

	assert.Equal(t, "7", candidates[0].ContactID)
	assert.Equal(t, "3", candidates[0].CompanyID)
	assert.Equal(t, "Ana Diaz", candidates[0].Name)
	assert.Equal(t, "1 Main St, Hollister, CA 95023", candidates[0].CompanyAddress)
	assert.Equal(t, "Diaz Garage", candidates[1].CompanyName)
}

func TestResolveDropsUnenrichableContacts(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	dir := &fakeDirectory{
		contacts: []psa.Contact{
			{ID: 7, FirstName: "Ana", Company: &psa.Reference{ID: 3}},
			{ID: 8, FirstName: "Orphan"},
			{ID: 9, FirstName: "Gone", Company: &psa.Reference{ID: 99}},
		},
		companies: map[int64]*psa.Company{3: {ID: 3, Name: "Diaz Bakery"}},
	}

	candidates, err := NewContactResolver(dir, zap.New(core)).Resolve(context.Background(), "5551234567")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "7", candidates[0].ContactID)
	assert.Equal(t, 2, logs.Len())
}

func TestResolveEmptyIsNotNil(t *testing.T) {
	candidates, err := NewContactResolver(&fakeDirectory{}, nil).Resolve(context.Background(), "5551234567")
	require.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
}

func TestResolveSearchFailure(t *testing.T) {
	dir := &fakeDirectory{findErr: errors.New("connection refused")}
	_, err := NewContactResolver(dir, nil).Resolve(context.Background(), "5551234567")
	assert.Error(t, err)
}

func TestResolveReportsCancelledEnrichment(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := &fakeDirectory{
		contacts:  []psa.Contact{{ID: 7, FirstName: "Ana", Company: &psa.Reference{ID: 3}}},
		companies: map[int64]*psa.Company{3: {ID: 3, Name: "Diaz Bakery"}},
		cancel:    cancel,
	}

	candidates, err := NewContactResolver(dir, nil).Resolve(ctx, "5551234567")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, candidates)
}
