package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	d.Subscribe(EventTicketFiled, func(ctx context.Context, e Event) error {
		seen = append(seen, "first")
		return errors.New("audit down")
	})
	d.Subscribe(EventTicketFiled, func(ctx context.Context, e Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventCheckinCompleted, func(ctx context.Context, e Event) error {
		seen = append(seen, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketFiled})
	assert.EqualError(t, err, "audit down")
	assert.Equal(t, []string{"first", "second"}, seen)

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventCheckinAbandoned}))
}
