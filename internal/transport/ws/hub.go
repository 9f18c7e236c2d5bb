package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Observer message types
const (
	MsgSessionStarted      MessageType = "session_started"
	MsgSessionCompleted    MessageType = "session_completed"
	MsgProgressUpdate      MessageType = "progress_update"
	MsgGapDetected         MessageType = "gap_detected"
	MsgClarificationIssued MessageType = "clarification_issued"
)

// Respondent message types
const (
	MsgNextQuestion MessageType = "next_question"
	MsgError        MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections. Officers observe a standard's sessions;
// respondents hold one connection scoped to their own session.
type Hub struct {
	observerConns map[string]map[*Connection]bool // standardID -> conns
	sessionConns  map[string]*Connection          // sessionID -> conn

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	StandardID string
	SessionID  string // Empty for observer connections
	IsObserver bool
	Send       chan []byte
	Hub        *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	StandardID  string
	ToObservers bool
	ToSession   string
	Message     *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		observerConns: make(map[string]map[*Connection]bool),
		sessionConns:  make(map[string]*Connection),
		register:      make(chan *Connection),
		unregister:    make(chan *Connection),
		broadcast:     make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsObserver {
				if h.observerConns[conn.StandardID] == nil {
					h.observerConns[conn.StandardID] = make(map[*Connection]bool)
				}
				h.observerConns[conn.StandardID][conn] = true
				log.Printf("Observer connected for standard %s", conn.StandardID)
			} else {
				h.sessionConns[conn.SessionID] = conn
				log.Printf("Respondent connected for session %s", conn.SessionID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsObserver {
				if conns, ok := h.observerConns[conn.StandardID]; ok && conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					log.Printf("Observer disconnected from standard %s", conn.StandardID)
				}
			} else {
				if existing, ok := h.sessionConns[conn.SessionID]; ok && existing == conn {
					delete(h.sessionConns, conn.SessionID)
					close(conn.Send)
					log.Printf("Respondent disconnected from session %s", conn.SessionID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToObservers {
				for conn := range h.observerConns[msg.StandardID] {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			} else if msg.ToSession != "" {
				if conn, ok := h.sessionConns[msg.ToSession]; ok {
					select {
					case conn.Send <- data:
					default:
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToObservers sends a message to every officer watching a standard
// (implements service.Broadcaster)
func (h *Hub) BroadcastToObservers(standardID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		StandardID:  standardID,
		ToObservers: true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToSession sends a message to one session's respondent
// (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		ToSession: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectSession drops the respondent connection for a finished session
// (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.sessionConns[sessionID]; ok {
		delete(h.sessionConns, sessionID)
		close(conn.Send)
		log.Printf("Session %s disconnected", sessionID)
	}
}
