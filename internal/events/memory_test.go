package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "channel closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestMemoryBrokerDeliversByTopic(t *testing.T) {
	broker := NewMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chief, err := broker.Subscribe(ctx, TopicChief)
	require.NoError(t, err)
	inventory, err := broker.Subscribe(ctx, TopicInventory)
	require.NoError(t, err)

	evt := New(NewOrder, NewOrderPayload{OrderID: 3, ItemsCount: 2, Status: "queued"})
	require.NoError(t, broker.Publish(ctx, TopicChief, evt))

	got := receive(t, chief)
	assert.Equal(t, NewOrder, got.Type)
	assert.False(t, got.Timestamp.IsZero())

	select {
	case <-inventory:
		t.Fatal("inventory subscriber must not receive chief events")
	default:
	}
}

func TestMemoryBrokerClosesOnCancel(t *testing.T) {
	broker := NewMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := broker.Subscribe(ctx, TopicManager)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed after cancel")
	}
}

func TestMemoryBrokerRejectsAfterClose(t *testing.T) {
	broker := NewMemoryBroker()
	require.NoError(t, broker.Close())

	err := broker.Publish(context.Background(), TopicChief, New(KPIUpdated, nil))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = broker.Subscribe(context.Background(), TopicChief)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestValidTopic(t *testing.T) {
	assert.True(t, ValidTopic("receptionist"))
	assert.False(t, ValidTopic("kitchen"))
}
