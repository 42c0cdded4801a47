package overlay

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// Event is what the OBS widget receives on its socket.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type streamerHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

func (h *streamerHub) register(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *streamerHub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *streamerHub) broadcast(evt Event) {
	payload, _ := json.Marshal(evt)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.WriteMessage(websocket.TextMessage, payload)
	}
}

// Hub fans alert events out to the overlay sockets of each streamer.
type Hub struct {
	DB  *pgxpool.Pool
	Log *log.Logger

	mu   sync.RWMutex
	hubs map[int64]*streamerHub
}

func NewHub(pool *pgxpool.Pool, logger *log.Logger) *Hub {
	return &Hub{DB: pool, Log: logger, hubs: make(map[int64]*streamerHub)}
}

func (h *Hub) hubFor(streamerID int64) *streamerHub {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sh, ok := h.hubs[streamerID]; ok {
		return sh
	}
	sh := &streamerHub{clients: make(map[*websocket.Conn]bool)}
	h.hubs[streamerID] = sh
	return sh
}

// Broadcast pushes an event to every open socket of the streamer.
func (h *Hub) Broadcast(streamerID int64, evt Event) {
	h.hubFor(streamerID).broadcast(evt)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve handles GET /overlay/:apiKey. The widget authenticates with the
// streamer's api_key instead of a JWT so the URL can be pasted into OBS.
func (h *Hub) Serve(c echo.Context) error {
	apiKey := c.Param("apiKey")
	if apiKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing api key"})
	}

	var streamerID int64
	err := h.DB.QueryRow(c.Request().Context(),
		`SELECT id FROM users WHERE api_key = $1 AND enabled`, apiKey,
	).Scan(&streamerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown api key"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sh := h.hubFor(streamerID)
	sh.register(ws)
	h.Log.Printf("overlay: streamer %d widget connected", streamerID)

	// Server-push protocol; client messages are discarded.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			sh.unregister(ws)
			_ = ws.Close()
			h.Log.Printf("overlay: streamer %d widget disconnected", streamerID)
			break
		}
	}
	return nil
}
