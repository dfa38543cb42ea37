package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/metrics"
	"github.com/ukydev/detailing-desk/internal/models"
)

// Envelope is the frame sent to browsers.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Client struct {
	ID     string
	UserID string
	Send   chan []byte
}

// TokenValidator checks the token a browser presents when it connects.
type TokenValidator interface {
	ValidateToken(token string) (*models.Claims, error)
}

// Hub fans frames out to connected clients. A client whose buffer is full
// misses the frame.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	last    []byte
	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{clients: make(map[string]*Client), metrics: m}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.metrics.LiveSessionOpened()
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
	h.metrics.LiveSessionClosed()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish wraps v in an Envelope and broadcasts it. The last frame is kept
// and sent to clients as soon as they connect.
func (h *Hub) Publish(eventType string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Envelope{Type: eventType, Payload: payload, CreatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	h.Broadcast(frame)
	return nil
}

func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	h.last = frame
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- frame:
		default:
			log.WithField("client_id", client.ID).Debug("Dropped live frame for slow client")
		}
	}
}

func (h *Hub) lastFrame() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Handler returns the sockjs endpoint mounted at prefix. Browsers pass their
// bearer token in the token query parameter.
func (h *Hub) Handler(prefix string, tokens TokenValidator) http.Handler {
	return sockjs.NewHandler(prefix, sockjs.DefaultOptions, func(session sockjs.Session) {
		req := session.Request()
		token := ""
		if req != nil {
			token = req.URL.Query().Get("token")
		}
		if token == "" {
			_ = session.Close(4001, "missing token")
			return
		}
		claims, err := tokens.ValidateToken(token)
		if err != nil {
			_ = session.Close(4002, "invalid token")
			return
		}

		client := &Client{ID: uuid.NewString(), UserID: claims.UserID, Send: make(chan []byte, 16)}
		h.Register(client)
		defer h.Unregister(client)
		log.WithFields(log.Fields{"client_id": client.ID, "user_id": client.UserID}).Info("Live session opened")

		if frame := h.lastFrame(); frame != nil {
			select {
			case client.Send <- frame:
			default:
			}
		}

		go func() {
			for msg := range client.Send {
				if err := session.Send(string(msg)); err != nil {
					return
				}
			}
		}()

		for {
			if _, err := session.Recv(); err != nil {
				log.WithField("client_id", client.ID).Info("Live session closed")
				return
			}
		}
	})
}
