package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/gosuda/nesthost/internal/domain"
	"github.com/gosuda/nesthost/internal/server/middleware"
	redisstore "github.com/gosuda/nesthost/internal/store/redis"
)

const writeTimeout = 10 * time.Second

// Broker is the pub/sub transport behind the hub.
// *redisstore.PubSub satisfies this interface.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub streams tenant product events to WebSocket clients. A Hub without a
// broker drops published events and refuses subscriptions.
type Hub struct {
	broker Broker
}

func NewHub(broker Broker) *Hub {
	return &Hub{broker: broker}
}

// Enabled reports whether the hub has a broker to publish to.
func (h *Hub) Enabled() bool {
	return h != nil && h.broker != nil
}

// ServeProducts upgrades the request and forwards every event published on
// the caller's tenant product channel. The tenant comes from the session only.
func (h *Hub) ServeProducts(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok || tenantID == uuid.Nil {
		middleware.WriteProblem(w, http.StatusForbidden, "valid tenant required")
		return
	}
	if !h.Enabled() {
		middleware.WriteProblem(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients never send; CloseRead handles control frames and cancels ctx
	// once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.broker.Subscribe(ctx, redisstore.ProductChannel(tenantID))
	if err != nil {
		log.Error().Err(err).Stringer("tenant_id", tenantID).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			writeErr := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

// PublishProductEvent encodes ev and publishes it on its tenant's channel.
func (h *Hub) PublishProductEvent(ctx context.Context, ev domain.ProductEvent) error {
	if !h.Enabled() {
		return nil
	}
	if ev.TenantID == uuid.Nil {
		return errors.New("ws.Hub.PublishProductEvent: missing tenant")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("ws.Hub.PublishProductEvent: marshal: %w", err)
	}

	if err := h.broker.Publish(ctx, redisstore.ProductChannel(ev.TenantID), payload); err != nil {
		return fmt.Errorf("ws.Hub.PublishProductEvent: %w", err)
	}
	return nil
}
