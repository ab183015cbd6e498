// Package events fans out assessment results to live subscribers, so a
// shoot dashboard can follow feedback as photos come in.
package events

import (
	"sync"
	"time"
)

// Event is one published assessment outcome.
type Event struct {
	ShootID    string    `json:"shoot_id"`
	RoomType   string    `json:"room_type"`
	Attempt    int       `json:"attempt"`
	AngleReset bool      `json:"angle_reset"`
	Score      int       `json:"score"`
	Acceptable bool      `json:"acceptable"`
	Feedback   string    `json:"feedback"`
	Timestamp  time.Time `json:"timestamp"`
}

const subscriberBuffer = 16

// Hub is a per-shoot subscriber registry. Publishing never blocks: slow
// subscribers drop events rather than stalling the assessment path.
type Hub struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[string]map[int64]chan Event // shootID -> subscriber ID -> channel
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int64]chan Event)}
}

// Subscribe registers a listener for one shoot's events. The returned
// cancel function must be called to release the subscription.
func (h *Hub) Subscribe(shootID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if _, ok := h.subs[shootID]; !ok {
		h.subs[shootID] = make(map[int64]chan Event)
	}
	h.subs[shootID][id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if shootSubs, ok := h.subs[shootID]; ok {
			if _, ok := shootSubs[id]; ok {
				delete(shootSubs, id)
				close(ch)
			}
			if len(shootSubs) == 0 {
				delete(h.subs, shootID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its shoot.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[evt.ShootID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
