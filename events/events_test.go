package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var received []Event
	bus.Subscribe(EventTypePotWon, func(ctx context.Context, event Event) {
		received = append(received, event)
	})

	event := PotWonEvent{GuildID: "guild-1", WinnerID: "111", Amount: 50}
	bus.Publish(ctx, event)

	assert.Len(t, received, 1)
	assert.Equal(t, event, received[0])
}

func TestBus_PublishIgnoresUnsubscribedTypes(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var called bool
	bus.Subscribe(EventTypePotWon, func(ctx context.Context, event Event) {
		called = true
	})

	bus.Publish(ctx, PotContinuesEvent{GuildID: "guild-1"})

	assert.False(t, called)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var secondCalled bool
	bus.Subscribe(EventTypePotWon, func(ctx context.Context, event Event) {
		panic("handler bug")
	})
	bus.Subscribe(EventTypePotWon, func(ctx context.Context, event Event) {
		secondCalled = true
	})

	bus.Publish(ctx, PotWonEvent{GuildID: "guild-1"})

	assert.True(t, secondCalled)
}
