// internal/notify/channel.go
package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"outreach-engine/internal/common/logger"
	"outreach-engine/internal/common/metrics"
	"outreach-engine/internal/models"
)

// Channel fans prospect change events out to every live subscriber of an
// owner's prospect set, one logical redis channel per owner. The channel
// is an optimization, never the source of truth: publishing is
// best-effort and writers commit regardless; subscribers re-fetch on
// reconnect.
type Channel struct {
	rdb    *redis.Client
	logger logger.Logger
}

func NewChannel(rdb *redis.Client, log logger.Logger) *Channel {
	return &Channel{
		rdb:    rdb,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

func ownerChannel(ownerID string) string {
	return "outreach:events:" + ownerID
}

// PublishProspectChange pushes one event to the owner's channel. Failures
// are logged and swallowed so the write path never depends on the
// channel being up.
func (c *Channel) PublishProspectChange(ctx context.Context, ev models.ProspectEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error("failed to encode prospect event", map[string]interface{}{
			"prospectId": ev.ProspectID,
			"error":      err.Error(),
		})
		return
	}

	if err := c.rdb.Publish(ctx, ownerChannel(ev.OwnerID), payload).Err(); err != nil {
		c.logger.Warn("failed to publish prospect event", map[string]interface{}{
			"prospectId": ev.ProspectID,
			"ownerId":    ev.OwnerID,
			"error":      err.Error(),
		})
		return
	}

	metrics.EventsPublished.WithLabelValues(string(ev.Kind)).Inc()
}

// Subscribe returns a stream of events for one owner. The returned
// channel closes when ctx is canceled or the underlying subscription
// drops; callers re-fetch and resubscribe on close.
func (c *Channel) Subscribe(ctx context.Context, ownerID string) (<-chan models.ProspectEvent, error) {
	sub := c.rdb.Subscribe(ctx, ownerChannel(ownerID))

	// Force the subscription onto the wire before returning so callers
	// never miss events published right after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan models.ProspectEvent, 16)

	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev models.ProspectEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					c.logger.Warn("dropping undecodable prospect event", map[string]interface{}{
						"ownerId": ownerID,
						"error":   err.Error(),
					})
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
