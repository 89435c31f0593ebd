package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	closed    bool
	failWith  error
	published []amqp.Publishing
	keys      []string
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) IsClosed() bool { return f.closed }

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newFakeAMQPBroker(first *fakeChannel, next ...*fakeChannel) (*AMQPBroker, *int) {
	opened := 0
	b := &AMQPBroker{exchange: "cafe.events", channel: first}
	b.open = func() (publishChannel, error) {
		if opened >= len(next) {
			return nil, errors.New("connection is down")
		}
		ch := next[opened]
		opened++
		return ch, nil
	}
	return b, &opened
}

func TestAMQPPublishEncodesEvent(t *testing.T) {
	ch := &fakeChannel{}
	broker, opened := newFakeAMQPBroker(ch)

	evt := New(OrderUpdated, OrderUpdatedPayload{OrderID: 4, OldStatus: "queued", Status: "ready"})
	evt.OrderID = 4
	require.NoError(t, broker.Publish(context.Background(), TopicChief, evt))

	assert.Zero(t, *opened)
	require.Len(t, ch.published, 1)
	assert.Equal(t, TopicChief, ch.keys[0])
	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Equal(t, string(OrderUpdated), ch.published[0].Type)

	var decoded Event
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, OrderUpdated, decoded.Type)
	assert.Equal(t, uint(4), decoded.OrderID)
}

func TestAMQPPublishReopensClosedChannel(t *testing.T) {
	tests := []struct {
		name  string
		first *fakeChannel
	}{
		{"closed before publish", &fakeChannel{closed: true}},
		{"closed during publish", &fakeChannel{failWith: amqp.ErrClosed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh := &fakeChannel{}
			broker, opened := newFakeAMQPBroker(tt.first, fresh)

			require.NoError(t, broker.Publish(context.Background(), TopicManager, New(KPIUpdated, nil)))
			assert.Equal(t, 1, *opened)
			assert.Len(t, fresh.published, 1)

			require.NoError(t, broker.Publish(context.Background(), TopicManager, New(KPIUpdated, nil)))
			assert.Equal(t, 1, *opened, "a healthy channel is reused")
			assert.Len(t, fresh.published, 2)
		})
	}
}

func TestAMQPPublishReportsReopenFailure(t *testing.T) {
	broker, _ := newFakeAMQPBroker(&fakeChannel{failWith: amqp.ErrClosed})

	err := broker.Publish(context.Background(), TopicChief, New(NewOrder, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reopen amqp channel")
}

func TestAMQPPublishOtherErrorsAreReturned(t *testing.T) {
	boom := errors.New("frame too large")
	broker, opened := newFakeAMQPBroker(&fakeChannel{failWith: boom}, &fakeChannel{})

	err := broker.Publish(context.Background(), TopicChief, New(NewOrder, nil))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, *opened)
}

func TestAMQPBrokerRoundTrip(t *testing.T) {
	url := os.Getenv("AMQP_TEST_URL")
	if url == "" {
		t.Skip("AMQP_TEST_URL not set")
	}
	broker, err := NewAMQPBroker(url, "cafe.events.test")
	require.NoError(t, err)
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := broker.Subscribe(ctx, TopicInventory)
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, TopicInventory, New(InventoryUpdated, InventoryPayload{Name: "Milk", StockLevel: 2})))
	got := receive(t, sub)
	assert.Equal(t, InventoryUpdated, got.Type)
}

func TestNewAMQPBrokerRejectsBadURL(t *testing.T) {
	_, err := NewAMQPBroker("not-a-url", "cafe.events")
	assert.Error(t, err)
}
