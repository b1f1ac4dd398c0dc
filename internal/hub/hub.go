// Package hub bridges persisted notification creation to real-time delivery.
// The hub maps recipient identities to live connection bindings and offers
// each freshly persisted notification to every binding of its recipient.
// Delivery is best-effort: persistence is the durability guarantee, and an
// offline recipient simply discovers the notification on the next poll.
package hub

import (
	"sync"

	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/domain"
)

// sendBuffer is the per-binding outbound queue depth. A client that cannot
// keep up with this much backlog is treated as dead and unbound.
const sendBuffer = 32

// Binding is one live connection of a recipient. The hub owns the outbound
// channel; the transport layer drains it. Closing out signals the transport
// to shut the connection down.
type Binding struct {
	RecipientID string
	out         chan *domain.Notification

	closeOnce sync.Once
}

// Out is the ordered stream of notifications pushed to this binding.
// Items arrive in creation order; the channel is closed on unbind.
func (b *Binding) Out() <-chan *domain.Notification {
	return b.out
}

func (b *Binding) close() {
	b.closeOnce.Do(func() { close(b.out) })
}

// Hub holds the recipient → bindings mapping. The map is mutated by many
// concurrent connect/disconnect events and read on every notification
// creation, so all access goes through the RWMutex. The hub is passed by
// reference to whoever needs it; there is no package-level instance.
type Hub struct {
	mu       sync.RWMutex
	bindings map[string][]*Binding
	closed   bool
	logger   *zap.Logger

	// onPush and onDrop are optional metric hooks (nil = no-op).
	onPush func()
	onDrop func()
}

func New(logger *zap.Logger) *Hub {
	return &Hub{
		bindings: make(map[string][]*Binding),
		logger:   logger,
	}
}

// SetHooks installs metric callbacks for delivered and dropped pushes.
func (h *Hub) SetHooks(onPush, onDrop func()) {
	h.onPush = onPush
	h.onDrop = onDrop
}

// Bind registers a live connection for the recipient and returns its binding.
// A recipient may hold several bindings at once (multi-device); each receives
// an independent copy of every push.
func (h *Hub) Bind(recipientID string) *Binding {
	b := &Binding{
		RecipientID: recipientID,
		out:         make(chan *domain.Notification, sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		b.close()
		return b
	}
	h.bindings[recipientID] = append(h.bindings[recipientID], b)
	return b
}

// Unbind removes the binding and closes its outbound stream. Safe to call
// more than once; the transport calls it on disconnect and on liveness
// timeout, whichever comes first.
//
// The close happens inside the write-locked section. Publish only sends
// while holding the read lock, so a send can never race a close.
func (h *Hub) Unbind(b *Binding) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.bindings[b.RecipientID]
	for i, cur := range list {
		if cur == b {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(h.bindings, b.RecipientID)
	} else {
		h.bindings[b.RecipientID] = list
	}
	b.close()
}

// Publish offers a persisted notification to every live binding of its
// recipient. Each binding's buffered channel plus single transport writer
// preserves creation order per binding; there is no ordering guarantee
// across bindings. A full buffer means a stalled client: the push is
// dropped and the binding unbound rather than blocking the caller.
//
// Sends happen under the read lock, mutually exclusive with the close in
// Unbind and Close; concurrent disconnects can therefore never turn a
// publish into a send on a closed channel. The sends are non-blocking,
// so the lock is held only briefly. Hooks run after the lock is released.
func (h *Hub) Publish(n *domain.Notification) {
	delivered := 0
	var stalled []*Binding

	h.mu.RLock()
	for _, b := range h.bindings[n.RecipientID] {
		select {
		case b.out <- n:
			delivered++
		default:
			stalled = append(stalled, b)
		}
	}
	h.mu.RUnlock()

	if h.onPush != nil {
		for i := 0; i < delivered; i++ {
			h.onPush()
		}
	}

	for _, b := range stalled {
		h.logger.Warn("push buffer full, unbinding slow client",
			zap.String("recipient_id", b.RecipientID))
		if h.onDrop != nil {
			h.onDrop()
		}
		h.Unbind(b)
	}
}

// ConnectionCount reports the number of live bindings across all recipients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, list := range h.bindings {
		total += len(list)
	}
	return total
}

// Close unbinds everything and rejects future binds. Called once on shutdown.
// Channels are closed inside the locked section for the same reason as in
// Unbind: no publish may be mid-send when a stream closes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, list := range h.bindings {
		for _, b := range list {
			b.close()
		}
	}
	h.bindings = make(map[string][]*Binding)
	h.closed = true
}
