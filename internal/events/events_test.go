package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBusDeliversTenantChanged(t *testing.T) {
	bus := NewBus(zap.NewNop())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	sent := TenantChanged{Action: ActionCreated, CompanyID: 3, Domain: "acme.test"}
	require.NoError(t, bus.PublishTenantChanged(ctx, sent))

	select {
	case msg := <-messages:
		got, err := Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, sent, got)
		assert.Equal(t, "created", msg.Metadata.Get("action"))
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestPublishWithoutSubscriberDoesNotFail(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	assert.NoError(t, bus.PublishTenantChanged(context.Background(), TenantChanged{Action: ActionDeleted, CompanyID: 1}))
}

func TestPublishAfterCloseFails(t *testing.T) {
	bus := NewBus(nil)
	require.NoError(t, bus.Close())

	assert.Error(t, bus.PublishTenantChanged(context.Background(), TenantChanged{Action: ActionUpdated}))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(message.NewMessage(watermill.NewUUID(), []byte("not json")))
	assert.Error(t, err)
}

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	adapter := NewZapLoggerAdapter(zap.New(core)).With(watermill.LogFields{"topic": TopicTenantChanged})

	adapter.Info("subscribed", nil)
	adapter.Error("publish failed", errors.New("closed"), watermill.LogFields{"attempt": 1})
	adapter.Trace("tick", nil)

	require.Equal(t, 3, logs.Len())
	entries := logs.All()
	assert.Equal(t, "subscribed", entries[0].Message)
	assert.Equal(t, TopicTenantChanged, entries[0].ContextMap()["topic"])
	assert.Equal(t, "closed", entries[1].ContextMap()["error"])
	assert.Equal(t, zap.DebugLevel, entries[2].Level)
}
