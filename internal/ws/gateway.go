package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mateus-s-a/jokenpo/internal/coordinator"
	"github.com/mateus-s-a/jokenpo/internal/proto"
)

const outboxSize = 16

// client is one live socket: the writer goroutine drains outbox so the
// coordinator never blocks on a slow peer.
type client struct {
	id     string
	outbox chan proto.OutMessage
	closed bool
}

// Gateway owns the socket connections and bridges them to the
// coordinator inbox. It implements coordinator.Sender.
type Gateway struct {
	log   *zap.Logger
	inbox chan<- coordinator.Msg

	mu      sync.Mutex
	clients map[string]*client
}

func NewGateway(log *zap.Logger) *Gateway {
	return &Gateway{
		log:     log,
		clients: make(map[string]*client),
	}
}

// Attach wires the coordinator inbox; must happen before serving.
func (g *Gateway) Attach(inbox chan<- coordinator.Msg) {
	g.inbox = inbox
}

// Send queues a message for one connection. A peer whose outbox is full
// is dropped rather than allowed to stall everyone else.
func (g *Gateway) Send(connID string, msg proto.OutMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cl, ok := g.clients[connID]
	if !ok || cl.closed {
		return
	}
	select {
	case cl.outbox <- msg:
	default:
		g.log.Warn("dropping slow client", zap.String("conn", connID))
		cl.closed = true
		close(cl.outbox)
		delete(g.clients, connID)
	}
}

func (g *Gateway) register() *client {
	cl := &client{
		id:     uuid.NewString(),
		outbox: make(chan proto.OutMessage, outboxSize),
	}
	g.mu.Lock()
	g.clients[cl.id] = cl
	g.mu.Unlock()
	return cl
}

func (g *Gateway) unregister(cl *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !cl.closed {
		cl.closed = true
		close(cl.outbox)
		delete(g.clients, cl.id)
	}
}

func (g *Gateway) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Same-origin clients only; the static page is served by us.
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		cl := g.register()
		g.log.Info("client connected", zap.String("conn", cl.id))

		g.inbox <- coordinator.Connected{ConnID: cl.id}
		defer func() {
			g.inbox <- coordinator.Disconnected{ConnID: cl.id}
			g.unregister(cl)
			g.log.Info("client disconnected", zap.String("conn", cl.id))
		}()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range cl.outbox {
				payload, err := json.Marshal(msg)
				if err != nil {
					g.log.Error("marshal outbound message", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					g.log.Debug("socket closed", zap.String("conn", cl.id), zap.Error(err))
				}
				return
			}

			var env proto.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				g.Send(cl.id, proto.OutMessage{
					Type:    proto.TypeErrorMessage,
					Payload: proto.ErrorMessage{Message: "bad json"},
				})
				continue
			}

			g.inbox <- coordinator.FromClient{ConnID: cl.id, Env: env}
		}
	}
}
