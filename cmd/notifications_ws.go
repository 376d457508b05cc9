package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"classifiedsBack/internal/models"
)

const (
	readLimit          = 4 << 10
	readDeadline       = 120 * time.Second // extended by every pong
	writeDeadline      = 5 * time.Second
	pingInterval       = 15 * time.Second
	firstHelloDeadline = 30 * time.Second
	publishBuffer      = 64
)

type directEvent struct {
	userID int
	event  models.BoostEvent
}

type unreg struct {
	userID int
	conn   *websocket.Conn
}

type Client struct {
	ID     int
	Socket *websocket.Conn
}

// NotificationHub keeps one socket per user and pushes boost events to it.
type NotificationHub struct {
	clients    map[int]*websocket.Conn
	direct     chan directEvent
	register   chan Client
	unregister chan unreg
	// closed when Run returns
	done chan struct{}

	infoLog  *log.Logger
	errorLog *log.Logger
}

func NewNotificationHub(infoLog, errorLog *log.Logger) *NotificationHub {
	return &NotificationHub{
		clients:    make(map[int]*websocket.Conn),
		direct:     make(chan directEvent, publishBuffer),
		register:   make(chan Client),
		unregister: make(chan unreg),
		done:       make(chan struct{}),
		infoLog:    infoLog,
		errorLog:   errorLog,
	}
}

// Run owns the clients map; all access goes through it.
func (h *NotificationHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, conn := range h.clients {
				_ = writeClose(conn, websocket.CloseGoingAway, "server shutdown")
				_ = conn.Close()
				delete(h.clients, id)
			}
			return

		case client := <-h.register:
			if old, ok := h.clients[client.ID]; ok && old != nil && old != client.Socket {
				_ = old.Close()
			}
			h.clients[client.ID] = client.Socket
			h.infoLog.Printf("WS register user=%d", client.ID)

		case u := <-h.unregister:
			if cur, ok := h.clients[u.userID]; ok && cur == u.conn {
				_ = cur.Close()
				delete(h.clients, u.userID)
				h.infoLog.Printf("WS unregister user=%d", u.userID)
			}

		case de := <-h.direct:
			conn, ok := h.clients[de.userID]
			if !ok {
				h.infoLog.Printf("WS skip %s: user=%d offline", de.event.Type, de.userID)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(de.event); err != nil {
				h.errorLog.Printf("WS send error to=%d: %v", de.userID, err)
				_ = conn.Close()
				delete(h.clients, de.userID)
			}
		}
	}
}

// Publish queues an event for a user. It never blocks; a full queue drops the event.
func (h *NotificationHub) Publish(userID int, event models.BoostEvent) {
	select {
	case h.direct <- directEvent{userID: userID, event: event}:
	default:
		h.errorLog.Printf("WS queue full, dropping %s for user=%d", event.Type, userID)
	}
}

// add hands a client to Run. It reports false once the hub has stopped.
func (h *NotificationHub) add(c Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *NotificationHub) remove(userID int, conn *websocket.Conn) {
	select {
	case h.unregister <- unreg{userID: userID, conn: conn}:
	case <-h.done:
		if conn != nil {
			_ = conn.Close()
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NotificationsHandler upgrades the connection. The first frame must be
// {"token": "<access token>"}.
func (app *application) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(firstHelloDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	var hello struct {
		Token string `json:"token"`
	}
	if err := conn.ReadJSON(&hello); err != nil || hello.Token == "" {
		app.errorLog.Println("invalid hello payload:", err)
		_ = writeClose(conn, websocket.ClosePolicyViolation, "hello required")
		_ = conn.Close()
		return
	}
	claims, err := app.tokens.Parse(hello.Token)
	if err != nil {
		_ = writeClose(conn, websocket.ClosePolicyViolation, "invalid token")
		_ = conn.Close()
		return
	}
	userID := int(claims.UserID)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

	if !app.hub.add(Client{ID: userID, Socket: conn}) {
		_ = writeClose(conn, websocket.CloseGoingAway, "server shutdown")
		_ = conn.Close()
		return
	}

	go pingLoop(app.hub, conn, userID)
	go drainReads(app.hub, conn, userID)
}

func pingLoop(h *NotificationHub, conn *websocket.Conn, uid int) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
			h.remove(uid, conn)
			return
		}
	}
}

// drainReads discards client frames so pongs and close frames get processed.
func drainReads(h *NotificationHub, conn *websocket.Conn, uid int) {
	defer h.remove(uid, conn)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}
