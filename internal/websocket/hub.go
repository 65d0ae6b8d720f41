// Package websocket carries the broadcast channel: it tracks connected
// clients, hydrates each new connection with the current full state, and
// fans the post-mutation snapshot out to everyone. Delivery is fire and
// forget per client; a slow client never blocks the mutation path, and a
// missed broadcast is corrected by the next one or an explicit GET_STATE.
package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/store"
)

type Hub struct {
	store      *store.Store
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *domain.BroadcastState
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	mu         sync.RWMutex
}

func NewHub(st *store.Store) *Hub {
	return &Hub{
		store:      st,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *domain.BroadcastState, 16),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()
			log.Printf("hub: client %s connected", client.id)

			// New connections are hydrated immediately with the full
			// current snapshot, never a partial or stale view.
			client.sendState(h.store.State())

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					client.Close()
					log.Printf("hub: client %s disconnected", client.id)
				}
			}
			h.mu.Unlock()

		case state := <-h.broadcast:
			h.broadcastState(state)
		}
	}
}

// Stop gracefully shuts down the hub and closes every client send channel.
// It blocks until Run() has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

// OnStateChanged implements store.Listener. Called by the store after every
// committed mutation; the echo back to the originating client is intentional
// and suppressed client-side by the reconciler.
func (h *Hub) OnStateChanged(state *domain.BroadcastState) {
	select {
	case h.broadcast <- state:
	case <-h.done:
	}
}

func (h *Hub) broadcastState(state *domain.BroadcastState) {
	msg, err := NewMessage(MessageTypeState, state)
	if err != nil {
		log.Printf("hub: failed to build broadcast message: %v", err)
		return
	}
	data, _ := json.Marshal(msg)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		h.trySend(client, data)
	}
}

// trySend attempts to send to a client, safely handling closed channels.
func (h *Hub) trySend(client *Client, data []byte) {
	defer func() {
		if recover() != nil {
			// Channel closed, client is disconnecting - skip silently
		}
	}()

	select {
	case client.send <- data:
	default:
		// Buffer full, skip
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister safely unregisters a client, handling the case where the hub
// may already be stopped.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()

	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
