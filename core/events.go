package core

import (
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 64

// EventHub fans committed logs out to subscribers. A subscriber that falls behind by
// more than its buffer loses events instead of blocking the factory.
type EventHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan *types.Log
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[int]chan *types.Log)}
}

// Subscribe returns a channel of logs and a cancel func that closes it.
func (h *EventHub) Subscribe() (<-chan *types.Log, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan *types.Log, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

func (h *EventHub) Publish(logs ...*types.Log) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		for _, l := range logs {
			select {
			case ch <- l:
			default:
				logrus.Warnf("event subscriber %d is full, dropping log %d", id, l.Index)
			}
		}
	}
}
