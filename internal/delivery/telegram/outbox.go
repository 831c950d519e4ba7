package telegram

import "sync"

// outbox holds Telegram calls produced by quiz events.
// Events fire while a chat's controller is locked; the calls run later, from
// flush, once that lock is released.
type outbox struct {
	mu      sync.Mutex
	pending []func()

	// sendMu keeps flushes from interleaving, so each chat sees its messages in event order.
	sendMu sync.Mutex
}

func (o *outbox) push(fn func()) {
	o.mu.Lock()
	o.pending = append(o.pending, fn)
	o.mu.Unlock()
}

func (o *outbox) drain() []func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	pending := o.pending
	o.pending = nil
	return pending
}

// flush runs every queued call. It must not be called with a controller locked.
func (h *Handler) flush() {
	h.outbox.sendMu.Lock()
	defer h.outbox.sendMu.Unlock()

	for _, fn := range h.outbox.drain() {
		fn()
	}
}
