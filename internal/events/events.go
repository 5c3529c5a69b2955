// Package events carries tenant-changed notifications from the meta-admin
// handlers to the route regenerator over an in-process watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// TopicTenantChanged is the topic every tenant mutation is published on
const TopicTenantChanged = "tenant.changed"

// Action names the mutation that produced an event
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TenantChanged is emitted after a tenant mutation has been committed
type TenantChanged struct {
	Action    Action `json:"action"`
	CompanyID uint   `json:"companyId"`
	Domain    string `json:"domain"`
}

// Publisher emits tenant-changed events
type Publisher interface {
	PublishTenantChanged(ctx context.Context, event TenantChanged) error
}

// Bus is a gochannel-backed Publisher that also hands out subscriptions
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates an in-process bus. Messages published while nobody is
// subscribed are dropped.
func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, NewZapLoggerAdapter(log)),
	}
}

func (b *Bus) PublishTenantChanged(ctx context.Context, event TenantChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal tenant event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("action", string(event.Action))
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(TopicTenantChanged, msg); err != nil {
		return fmt.Errorf("publish tenant event: %w", err)
	}
	return nil
}

// Subscribe returns the stream of tenant-changed messages. Consumers must
// Ack every message.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicTenantChanged)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Decode parses a message produced by PublishTenantChanged
func Decode(msg *message.Message) (TenantChanged, error) {
	var event TenantChanged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return TenantChanged{}, fmt.Errorf("decode tenant event %s: %w", msg.UUID, err)
	}
	return event, nil
}
