package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/checkin-service/internal/domain"
)

func ticketedState() *domain.WorkflowState {
	return &domain.WorkflowState{
		Step:     domain.StepTicketed,
		Identity: &domain.ClientIdentity{CompanyID: "3", ContactID: "7", DisplayName: "Ana Diaz"},
		Issue: &domain.IssueRecord{
			InitialDescription: "Printer offline",
			FollowupQuestions:  []string{"1. Which printer?"},
		},
		Ticket: &domain.TicketReference{TicketID: "4242"},
	}
}

func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	fresh, err := store.Get(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, domain.StepStart, fresh.Step)
	assert.Nil(t, fresh.Identity)

	require.NoError(t, store.Set(ctx, "h1", ticketedState()))
	got, err := store.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepTicketed, got.Step)
	assert.Equal(t, "4242", got.Ticket.TicketID)
	assert.Equal(t, []string{"1. Which printer?"}, got.Issue.FollowupQuestions)
	assert.False(t, got.UpdatedAt.IsZero())

	got.Identity.DisplayName = "changed locally"
	again, err := store.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Diaz", again.Identity.DisplayName)

	other, err := store.Get(ctx, "h2")
	require.NoError(t, err)
	assert.Equal(t, domain.StepStart, other.Step)

	require.NoError(t, store.Clear(ctx, "h1"))
	cleared, err := store.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepStart, cleared.Step)
	assert.Nil(t, cleared.Identity)
	assert.Nil(t, cleared.Issue)
	assert.Nil(t, cleared.Ticket)

	assert.ErrorIs(t, store.Set(ctx, "h1", &domain.WorkflowState{Step: domain.StepConfirmed}), domain.ErrInvalidState)
	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyHandle)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	storeContract(t, NewRedisStore(client, time.Hour, nil))
}

func TestRedisStoreTTLAndMalformedBlob(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisStore(client, 10*time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "h1", domain.NewWorkflowState()))
	assert.Equal(t, 10*time.Minute, mr.TTL(key("h1")))

	mr.FastForward(11 * time.Minute)
	expired, err := store.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepStart, expired.Step)

	require.NoError(t, mr.Set(key("h2"), `{"step":"PAYMENT_PENDING"}`))
	lost, err := store.Get(ctx, "h2")
	require.NoError(t, err)
	assert.Equal(t, domain.StepStart, lost.Step)

	require.NoError(t, mr.Set(key("h3"), `not json`))
	garbage, err := store.Get(ctx, "h3")
	require.NoError(t, err)
	assert.Equal(t, domain.StepStart, garbage.Step)
}

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	handle := NewHandle()

	token, err := tm.Issue(handle)
	require.NoError(t, err)
	got, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, handle, got)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.Error(t, err)

	_, err = tm.Parse("garbage")
	assert.Error(t, err)
}

func TestTokenManagerRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", -time.Minute)
	token, err := tm.Issue(NewHandle())
	require.NoError(t, err)
	_, err = tm.Parse(token)
	require.NoError(t, err, "non-positive ttl issues tokens without expiry")

	short := NewTokenManager("secret", time.Nanosecond)
	token, err = short.Issue(NewHandle())
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = short.Parse(token)
	assert.Error(t, err)
}
