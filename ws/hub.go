package ws

import (
	"encoding/json"
	"sync"

	"nexus-project/collaboration-service/logging"
	"nexus-project/collaboration-service/models"
)

// Subscriber abstracts one connected client.
type Subscriber interface {
	Send(payload []byte) error
	Close()
}

// Publisher is the contract services use to fan out change events.
type Publisher interface {
	Publish(teamID string, event models.Event, excludeClientID string)
}

// Hub groups subscribers into logical channels keyed by team ID. Delivery is
// best-effort and at-most-once: a failed send evicts the subscriber, nothing
// is buffered or replayed.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[string]Subscriber
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[string]Subscriber)}
}

// Join subscribes a client to a team's channel. Joining twice with the same
// client ID replaces the previous subscriber, so the set size is unchanged.
func (h *Hub) Join(teamID, clientID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[teamID]; !ok {
		h.clients[teamID] = make(map[string]Subscriber)
	}
	if previous, ok := h.clients[teamID][clientID]; ok && previous != sub {
		previous.Close()
	}
	h.clients[teamID][clientID] = sub
}

// Leave drops a client from a team's channel. Idempotent. The entry is
// removed only while it still maps to sub: a re-join may already have
// replaced the subscriber, and the stale connection's teardown must not
// evict its replacement.
func (h *Hub) Leave(teamID, clientID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.clients[teamID]; ok {
		if current, ok := subs[clientID]; ok && current == sub {
			delete(subs, clientID)
		}
		if len(subs) == 0 {
			delete(h.clients, teamID)
		}
	}
}

// Publish delivers the event to every other client currently joined to the
// team's channel. The publishing client already applied the change locally,
// so its own connection is skipped. Serialization under the hub lock keeps
// per-team delivery in publish order.
func (h *Hub) Publish(teamID string, event models.Event, excludeClientID string) {
	payload, err := json.Marshal(event)
	if err != nil {
		logging.Logger.Errorf("Event ID: BROADCAST_MARSHAL_FAILED, Description: Failed to marshal event for team %s: %v", teamID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.clients[teamID]
	if !ok {
		return
	}
	for clientID, sub := range subs {
		if clientID == excludeClientID {
			continue
		}
		if err := sub.Send(payload); err != nil {
			sub.Close()
			delete(subs, clientID)
		}
	}
	if len(subs) == 0 {
		delete(h.clients, teamID)
	}
}

// SubscriberCount reports how many clients are joined to a team's channel.
func (h *Hub) SubscriberCount(teamID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[teamID])
}
