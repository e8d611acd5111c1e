package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/checkin-service/internal/events"
	"github.com/spec-kit/checkin-service/internal/repository"
)

type fakeCheckinRepo struct {
	rows []repository.CheckinEvent
	err  error
}

func (r *fakeCheckinRepo) Create(_ context.Context, event *repository.CheckinEvent) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, *event)
	return nil
}

func (r *fakeCheckinRepo) ListByTicket(_ context.Context, ticketID string) ([]repository.CheckinEvent, error) {
	var out []repository.CheckinEvent
	for _, row := range r.rows {
		if row.TicketID != nil && *row.TicketID == ticketID {
			out = append(out, row)
		}
	}
	return out, nil
}

func TestAuditPersistsSelectedEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	repo := &fakeCheckinRepo{}
	NewAuditService(dispatcher, repo, nil).RegisterHandlers()
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:      "e1",
		Type:    events.EventClientIdentified,
		Payload: events.ClientIdentifiedPayload{Source: events.SourceSelection, CompanyID: "3", ContactID: "7"},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:            "e2",
		Type:          events.EventTicketFiled,
		SessionHandle: "h",
		Payload:       events.TicketFiledPayload{TicketID: "4242", CompanyID: "3", ContactID: "7", Summary: "Printer"},
	}))

	require.Len(t, repo.rows, 1)
	row := repo.rows[0]
	assert.Equal(t, "e2", row.EventID)
	assert.Equal(t, "ticket_filed", row.EventType)
	assert.Equal(t, "h", row.SessionHandle)
	require.NotNil(t, row.TicketID)
	assert.Equal(t, "4242", *row.TicketID)
	assert.Equal(t, "3", *row.CompanyID)
	assert.Equal(t, "Printer", row.Payload["summary"])

	byTicket, err := repo.ListByTicket(ctx, "4242")
	require.NoError(t, err)
	assert.Len(t, byTicket, 1)
}

func TestAuditPartialCreationHasNoContact(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	repo := &fakeCheckinRepo{}
	NewAuditService(dispatcher, repo, nil).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		ID:      "e1",
		Type:    events.EventPSAPartialCreation,
		Payload: events.PartialCreationPayload{CompanyID: "11", Error: "contact rejected"},
	}))
	require.Len(t, repo.rows, 1)
	assert.Nil(t, repo.rows[0].ContactID)
	assert.Nil(t, repo.rows[0].TicketID)
	assert.Equal(t, "11", *repo.rows[0].CompanyID)
}

func TestAuditWithoutRepositoryOnlyLogs(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, nil, nil).RegisterHandlers()
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{ID: "e1", Type: events.EventCheckinCompleted}))
}

func TestAuditWriteFailureSurfaces(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, &fakeCheckinRepo{err: errors.New("db down")}, nil).RegisterHandlers()
	err := dispatcher.Publish(context.Background(), events.Event{ID: "e1", Type: events.EventCheckinCompleted})
	assert.Error(t, err)
}
