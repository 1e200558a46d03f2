package ws

import (
	"encoding/json"
	"log"
	"sync"

	"codeshare/backend/internal/protocol"
	"codeshare/backend/internal/session"
)

// Hub routes session events between connected clients. All inbound events
// are processed one at a time by Run, so a registry write and its broadcast
// complete before the next event is handled. Last-write-wins falls out of
// that ordering.
type Hub struct {
	registry *session.Registry

	// Registered clients by session ID (room)
	rooms map[string]map[*Client]bool

	// Rooms held by each client; disconnect drops them all
	memberships map[*Client]map[string]bool

	// Inbound events from clients
	inbound chan *inboundEvent

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex
}

type inboundEvent struct {
	sender *Client
	env    protocol.Envelope

	// Set when the frame could not be parsed at all; the hub answers with a
	// private error instead of routing.
	malformed bool
}

func NewHub(registry *session.Registry) *Hub {
	return &Hub{
		registry:    registry,
		rooms:       make(map[string]map[*Client]bool),
		memberships: make(map[*Client]map[string]bool),
		inbound:     make(chan *inboundEvent),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.memberships[client] = make(map[string]bool)
			h.mu.Unlock()

			connectionsActive.Inc()
			log.Printf("Client connected: %s", client.id)

		case client := <-h.unregister:
			h.removeClient(client)

		case event := <-h.inbound:
			h.handleEvent(event)
		}
	}
}

func (h *Hub) handleEvent(event *inboundEvent) {
	if event.malformed {
		errorRepliesTotal.Inc()
		h.sendError(event.sender, "Invalid message format")
		return
	}

	eventsTotal.WithLabelValues(event.env.Event).Inc()

	switch event.env.Event {
	case protocol.EventJoin:
		h.handleJoin(event.sender, event.env.Data)
	case protocol.EventCodeChange:
		h.handleCodeChange(event.sender, event.env.Data)
	case protocol.EventLanguageChange:
		h.handleLanguageChange(event.sender, event.env.Data)
	default:
		errorRepliesTotal.Inc()
		h.sendError(event.sender, "Unknown event: "+event.env.Event)
	}
}

func (h *Hub) handleJoin(sender *Client, data json.RawMessage) {
	var req protocol.JoinData
	if err := json.Unmarshal(data, &req); err != nil || req.SessionID == "" {
		h.sendError(sender, "sessionId is required")
		return
	}

	sess, err := h.registry.Get(req.SessionID)
	if err != nil {
		h.sendError(sender, "sessionId is required")
		return
	}
	if sess == nil {
		h.sendError(sender, "Session not found")
		return
	}

	h.mu.Lock()
	if _, ok := h.rooms[req.SessionID]; !ok {
		h.rooms[req.SessionID] = make(map[*Client]bool)
	}
	h.rooms[req.SessionID][sender] = true
	if h.memberships[sender] == nil {
		h.memberships[sender] = make(map[string]bool)
	}
	h.memberships[sender][req.SessionID] = true
	memberCount := len(h.rooms[req.SessionID])
	h.mu.Unlock()

	log.Printf("Client %s joined session %s (total: %d)", sender.id, req.SessionID, memberCount)

	h.sendTo(sender, protocol.EventSessionState, protocol.SessionStateData{
		Code:     sess.Code,
		Language: sess.Language,
	})
}

func (h *Hub) handleCodeChange(sender *Client, data json.RawMessage) {
	var req protocol.CodeChangeData
	if err := json.Unmarshal(data, &req); err != nil || req.SessionID == "" || req.Code == nil {
		h.sendError(sender, "Invalid code change data")
		return
	}

	if err := h.registry.UpdateCode(req.SessionID, *req.Code); err != nil {
		log.Printf("Code update for session %s failed: %v", req.SessionID, err)
		h.sendError(sender, "Failed to update code")
		return
	}

	h.broadcast(req.SessionID, sender, protocol.EventCodeUpdate, protocol.CodeUpdateData{
		Code: *req.Code,
	})
}

func (h *Hub) handleLanguageChange(sender *Client, data json.RawMessage) {
	var req protocol.LanguageChangeData
	if err := json.Unmarshal(data, &req); err != nil || req.SessionID == "" || req.Language == "" {
		h.sendError(sender, "Invalid language change data")
		return
	}

	if err := h.registry.UpdateLanguage(req.SessionID, req.Language); err != nil {
		log.Printf("Language update for session %s failed: %v", req.SessionID, err)
		h.sendError(sender, "Failed to update language")
		return
	}

	h.broadcast(req.SessionID, sender, protocol.EventLanguageUpdate, protocol.LanguageUpdateData{
		Language: req.Language,
	})
}

// broadcast delivers an event to every member of the room except the sender,
// so the originator never receives an echo of its own edit.
func (h *Hub) broadcast(sessionID string, sender *Client, event string, data any) {
	payload, err := protocol.Encode(event, data)
	if err != nil {
		log.Printf("Error encoding %s broadcast: %v", event, err)
		return
	}

	h.mu.Lock()
	for client := range h.rooms[sessionID] {
		if client == sender {
			continue
		}
		select {
		case client.send <- payload:
			broadcastsTotal.Inc()
		default:
			// Slow consumer: drop the connection rather than block the relay
			h.dropLocked(client)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) sendTo(client *Client, event string, data any) {
	payload, err := protocol.Encode(event, data)
	if err != nil {
		log.Printf("Error encoding %s reply: %v", event, err)
		return
	}

	h.mu.Lock()
	select {
	case client.send <- payload:
	default:
		h.dropLocked(client)
	}
	h.mu.Unlock()
}

// sendError replies to the offending connection only; a failed event never
// touches other clients' membership or pending state.
func (h *Hub) sendError(client *Client, message string) {
	h.sendTo(client, protocol.EventError, protocol.ErrorData{Message: message})
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	h.dropLocked(client)
	h.mu.Unlock()
}

// dropLocked removes a client from every room it joined and closes its send
// channel. Callers must hold h.mu. No broadcast is sent on disconnect.
func (h *Hub) dropLocked(client *Client) {
	rooms, ok := h.memberships[client]
	if !ok {
		return
	}

	for sessionID := range rooms {
		if clients, ok := h.rooms[sessionID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.rooms, sessionID)
				log.Printf("Session room %s closed (empty)", sessionID)
			}
		}
	}

	delete(h.memberships, client)
	close(client.send)
	connectionsActive.Dec()
	log.Printf("Client disconnected: %s", client.id)
}

// RoomCount returns the number of rooms with at least one member
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.memberships)
}

// ActiveRooms maps each occupied room to its member count
func (h *Hub) ActiveRooms() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	active := make(map[string]int, len(h.rooms))
	for sessionID, clients := range h.rooms {
		active[sessionID] = len(clients)
	}
	return active
}
