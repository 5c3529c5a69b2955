package routegen

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/suteetoe/tenantgate/internal/events"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
)

// Trigger regenerates the routing file
type Trigger interface {
	Generate(ctx context.Context) error
}

// Regenerator is the only writer of the routing file once the server runs.
// Bursts of tenant events inside the debounce window cost one write.
type Regenerator struct {
	trigger  Trigger
	debounce time.Duration
}

func NewRegenerator(trigger Trigger, debounce time.Duration) *Regenerator {
	return &Regenerator{trigger: trigger, debounce: debounce}
}

// Run consumes tenant events until ctx is done or messages is closed.
// A pending regeneration is flushed in both cases.
func (r *Regenerator) Run(ctx context.Context, messages <-chan *message.Message) {
	log := logger.GetLogger()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if fire != nil {
				r.generate(context.WithoutCancel(ctx))
			}
			return

		case msg, ok := <-messages:
			if !ok {
				if fire != nil {
					r.generate(ctx)
				}
				return
			}

			if event, err := events.Decode(msg); err != nil {
				log.Warn("Ignoring malformed tenant event", zap.Error(err))
			} else {
				log.Debug("Tenant changed",
					zap.String("action", string(event.Action)),
					zap.Uint("company_id", event.CompanyID))
			}
			msg.Ack()

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(r.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			r.generate(ctx)
		}
	}
}

func (r *Regenerator) generate(ctx context.Context) {
	if err := r.trigger.Generate(ctx); err != nil {
		logger.GetLogger().Error("Failed to regenerate proxy routes", zap.Error(err))
	}
}
