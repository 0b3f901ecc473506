package services

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub fans graded attempts out to educators watching a quiz over
// websocket. Clients are grouped by quiz id; each submission broadcasts
// one attempt_submitted event to that group.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan feedMessage
	register   chan *Client
	unregister chan *Client
	log        *zap.Logger
}

type Client struct {
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte
	quizID string
	userID string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// AttemptFeedEvent is the payload broadcast for each graded attempt.
type AttemptFeedEvent struct {
	UserID   string         `json:"user_id"`
	UserName string         `json:"user_name"`
	Summary  AttemptSummary `json:"summary"`
}

type feedMessage struct {
	quizID string
	data   []byte
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan feedMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Info("feed client connected",
				zap.String("quiz_id", client.quizID),
				zap.String("user_id", client.userID),
				zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Info("feed client disconnected",
					zap.String("quiz_id", client.quizID),
					zap.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				if client.quizID != message.quizID {
					continue
				}
				select {
				case client.send <- message.data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastAttempt pushes an attempt_submitted event to everyone
// watching the quiz.
func (h *Hub) BroadcastAttempt(quizID string, event AttemptFeedEvent) {
	data, err := json.Marshal(Message{Type: "attempt_submitted", Payload: event})
	if err != nil {
		h.log.Error("failed to marshal feed event", zap.Error(err))
		return
	}
	h.broadcast <- feedMessage{quizID: quizID, data: data}
}

// RegisterClient attaches an upgraded connection to the hub and starts
// its read/write pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn, quizID, userID string) *Client {
	client := &Client{
		hub:    h,
		socket: conn,
		send:   make(chan []byte, 64),
		quizID: quizID,
		userID: userID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

// readPump drains the connection; the feed is one-way, so inbound
// frames are discarded and only serve to detect closure.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()
	c.socket.SetReadLimit(512)
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
