// Package realtime pushes server-side events (track processing results) to
// connected clients over SSE.
package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Message types sent over the notification stream.
const (
	TypeTrackProcessed = "track_processed"
	TypeTrackDeleted   = "track_deleted"
)

// Message is the shape of one real-time notification.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Broker is the central hub for managing SSE client connections.
type Broker struct {
	// A map of client channels, keyed by user ID.
	// Each user gets a channel where messages are sent.
	clients map[int64]chan []byte
	// A mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

// NewBroker creates a new Broker instance.
func NewBroker() *Broker {
	return &Broker{
		clients: make(map[int64]chan []byte),
	}
}

// AddClient registers a new client (a user's connection) with the broker.
func (b *Broker) AddClient(userID int64) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If this user already has an active connection (e.g., from another tab),
	// the new channel simply replaces it; the old connection will eventually
	// time out or close.
	ch := make(chan []byte, 10) // Buffered channel
	b.clients[userID] = ch
	log.Printf("SSE client connected for user %d", userID)
	return ch
}

// RemoveClient unregisters a client from the broker.
func (b *Broker) RemoveClient(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[userID]; ok {
		delete(b.clients, userID)
		close(ch)
		log.Printf("SSE client disconnected for user %d", userID)
	}
}

// NotifyUser sends a message to a specific user if they are connected.
func (b *Broker) NotifyUser(userID int64, message Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("ERROR: could not marshal SSE message for user %d: %v", userID, err)
		return
	}

	// The read lock is held across the send: RemoveClient closes the
	// channel under the write lock, so it cannot run between the lookup
	// and the send and panic us on a closed channel.
	b.mu.RLock()
	defer b.mu.RUnlock()

	clientChan, ok := b.clients[userID]
	if !ok {
		log.Printf("INFO: User %d is not connected to SSE. Cannot send notification.", userID)
		return
	}

	// Non-blocking send so a slow consumer cannot stall an API handler.
	select {
	case clientChan <- jsonMsg:
	default:
		log.Printf("WARN: SSE channel for user %d is full. Dropping message.", userID)
	}
}
