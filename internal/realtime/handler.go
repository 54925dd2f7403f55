package realtime

import (
	"strings"
	"time"

	"backoffice/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Handler serves the change feed.
type Handler struct {
	Hub *Hub
	Log logger.Logger
}

func NewHandler(hub *Hub, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{Hub: hub, Log: log.WithComponent("realtime-ws")}
}

// RegisterRoutes mounts GET /ws/changes. Clients may narrow the feed with
// ?entity=users,products.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	ws := router.Group("/ws")
	ws.Use("/changes", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/changes", websocket.New(h.serve))
}

func (h *Handler) serve(conn *websocket.Conn) {
	var entities []string
	if q := conn.Query("entity"); q != "" {
		entities = strings.Split(q, ",")
	}

	id, ch, cancel := h.Hub.Subscribe(entities...)
	defer cancel()

	log := h.Log.WithFields(map[string]interface{}{"subscriber_id": id})
	log.Info("Change feed connected")
	defer log.Info("Change feed disconnected")

	if err := h.write(conn, Message{
		Type:      MessageConnected,
		Data:      map[string]interface{}{"subscriberId": id, "entities": entities},
		Timestamp: time.Now(),
	}); err != nil {
		return
	}

	// Inbound frames are only read to notice pongs and the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Warnf("Change feed read error: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case m, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
				return
			}
			if err := h.write(conn, m); err != nil {
				log.Warnf("Change feed write error: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, m Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(m)
}
