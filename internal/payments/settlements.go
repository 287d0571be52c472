package payments

import (
	"context"
	"sync"
	"time"
)

const (
	defaultRetention = 10 * time.Minute
	// maxBufferedPerOrder and maxBuffered bound the early buffer. Once full,
	// the oldest settlement is dropped.
	maxBufferedPerOrder = 4
	maxBuffered         = 1024
)

type bufferedSettlement struct {
	settlement Settlement
	receivedAt time.Time
}

type waiter struct {
	reference string
	ch        chan Settlement
}

// Settlements routes provider callbacks to the attempt waiting on them.
// A settlement only reaches an attempt when it carries the reference the
// provider acknowledged for that attempt. One that arrives before its waiter
// is held for a while so a fast provider cannot race the submitter.
type Settlements struct {
	mu        sync.Mutex
	waiters   map[string]waiter
	early     map[string][]bufferedSettlement
	buffered  int
	retention time.Duration
	now       func() time.Time
}

func NewSettlements() *Settlements {
	return &Settlements{
		waiters:   make(map[string]waiter),
		early:     make(map[string][]bufferedSettlement),
		retention: defaultRetention,
		now:       time.Now,
	}
}

// Await blocks until the settlement for orderID carrying reference arrives
// or ctx is done
func (h *Settlements) Await(ctx context.Context, orderID, reference string) (Settlement, error) {
	h.mu.Lock()
	h.prune()
	if s, ok := h.takeBuffered(orderID, reference); ok {
		h.mu.Unlock()
		return s, nil
	}
	w := waiter{reference: reference, ch: make(chan Settlement, 1)}
	h.waiters[orderID] = w
	h.mu.Unlock()

	select {
	case s := <-w.ch:
		return s, nil
	case <-ctx.Done():
		h.mu.Lock()
		if cur, ok := h.waiters[orderID]; ok && cur.ch == w.ch {
			delete(h.waiters, orderID)
		}
		h.mu.Unlock()
		// Resolve may have won the race after ctx fired
		select {
		case s := <-w.ch:
			return s, nil
		default:
		}
		return Settlement{}, ctx.Err()
	}
}

// Resolve delivers s to its waiter and reports whether it was delivered.
// A settlement whose reference does not match the waiting attempt is
// dropped. Without a waiter the settlement is buffered.
func (h *Settlements) Resolve(s Settlement) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.prune()
	if w, ok := h.waiters[s.OrderID]; ok {
		if w.reference != s.Reference {
			return false
		}
		delete(h.waiters, s.OrderID)
		w.ch <- s
		return true
	}
	h.buffer(s)
	return false
}

// Pending counts attempts currently waiting
func (h *Settlements) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.waiters)
}

// Buffered counts settlements held for attempts that have not started waiting
func (h *Settlements) Buffered() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buffered
}

// takeBuffered must be called with mu held
func (h *Settlements) takeBuffered(orderID, reference string) (Settlement, bool) {
	list := h.early[orderID]
	for i, b := range list {
		if b.settlement.Reference != reference {
			continue
		}
		h.removeBuffered(orderID, i)
		return b.settlement, true
	}
	return Settlement{}, false
}

// buffer must be called with mu held
func (h *Settlements) buffer(s Settlement) {
	if len(h.early[s.OrderID]) >= maxBufferedPerOrder {
		h.removeBuffered(s.OrderID, 0)
	}
	if h.buffered >= maxBuffered {
		h.dropOldest()
	}
	h.early[s.OrderID] = append(h.early[s.OrderID], bufferedSettlement{settlement: s, receivedAt: h.now()})
	h.buffered++
}

func (h *Settlements) removeBuffered(orderID string, i int) {
	list := h.early[orderID]
	list = append(list[:i:i], list[i+1:]...)
	if len(list) == 0 {
		delete(h.early, orderID)
	} else {
		h.early[orderID] = list
	}
	h.buffered--
}

func (h *Settlements) dropOldest() {
	var (
		oldest   string
		earliest time.Time
		found    bool
	)
	for id, list := range h.early {
		if !found || list[0].receivedAt.Before(earliest) {
			oldest, earliest, found = id, list[0].receivedAt, true
		}
	}
	if found {
		h.removeBuffered(oldest, 0)
	}
}

// prune must be called with mu held
func (h *Settlements) prune() {
	cutoff := h.now().Add(-h.retention)
	for id, list := range h.early {
		kept := list[:0]
		for _, b := range list {
			if !b.receivedAt.Before(cutoff) {
				kept = append(kept, b)
			}
		}
		h.buffered -= len(list) - len(kept)
		if len(kept) == 0 {
			delete(h.early, id)
		} else {
			h.early[id] = kept
		}
	}
}
