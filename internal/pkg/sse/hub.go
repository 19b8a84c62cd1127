package sse

import (
	"sync"
	"time"
)

// Event names published on the live dashboard stream.
const (
	EventExceptionLogged    = "exception_logged"
	EventExceptionsImported = "exceptions_imported"
	EventRepairStatus       = "repair_status_changed"
	EventRobotStatus        = "robot_status_changed"
	EventPartSwapped        = "part_swapped"
	EventPartRestocked      = "part_restocked"
	EventShiftClosed        = "shift_closed"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	WarehouseID string      `json:"warehouse_id"`
	Event       string      `json:"event"`
	Shift       string      `json:"shift,omitempty"`
	At          time.Time   `json:"at"`
	Data        interface{} `json:"data"`
}

// Publisher is the write side of the hub, as used by services.
type Publisher interface {
	Publish(warehouseID string, event Event)
}

// Hub manages SSE subscribers per warehouse and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	buffer      int
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		buffer:      16,
	}
}

// Subscribe registers a new subscriber for a warehouse and returns the event channel and cleanup function
func (h *Hub) Subscribe(warehouseID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)

	if h.subscribers[warehouseID] == nil {
		h.subscribers[warehouseID] = make(map[chan Event]struct{})
	}
	h.subscribers[warehouseID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[warehouseID], ch)
			close(ch)
			if len(h.subscribers[warehouseID]) == 0 {
				delete(h.subscribers, warehouseID)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a warehouse
func (h *Hub) Publish(warehouseID string, event Event) {
	event.WarehouseID = warehouseID

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[warehouseID] {
		select {
		case ch <- event:
		default:
			// Slow subscriber; drop rather than block publishers.
		}
	}
}

// SubscriberCount returns the number of active subscribers for a warehouse
func (h *Hub) SubscriberCount(warehouseID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[warehouseID])
}

// TotalSubscribers returns the total number of active subscribers across all warehouses
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
