package track

import (
	"main/internal/model"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// Tracker records the orders this engine has placed, keyed by client id, so
// a pulse can answer "what do I have resting" without rescanning the book.
// It lives in memory only: a fresh process starts with an empty tracker and
// simply quotes alongside any stale orders until they expire or fill.
//
// A single pulse goroutine owns each tracker, so there is no locking.
type Tracker struct {
	orders map[uint64]model.ExistingOrder
	seq    []uint64 // insertion order, keeps Existing() stable
}

func NewTracker() *Tracker {
	return &Tracker{orders: make(map[uint64]model.ExistingOrder)}
}

// Track records an order as resting. Call it before the place instruction is
// submitted so a racing pulse already sees it as existing while confirmation
// is pending.
func (t *Tracker) Track(order model.ExistingOrder) error {
	if order.ClientID == 0 {
		return errors.Wrap(exception.ErrInvalidArgument, "track requires a client id")
	}
	if _, ok := t.orders[order.ClientID]; ok {
		return errors.Wrapf(exception.ErrVenueDuplicateClientID, "client id %d", order.ClientID)
	}
	t.orders[order.ClientID] = order
	t.seq = append(t.seq, order.ClientID)
	return nil
}

// Untrack forgets an order, typically after a cancel was issued for it.
func (t *Tracker) Untrack(clientID uint64) {
	if _, ok := t.orders[clientID]; !ok {
		return
	}
	delete(t.orders, clientID)
	for i, id := range t.seq {
		if id == clientID {
			t.seq = append(t.seq[:i], t.seq[i+1:]...)
			break
		}
	}
}

// Existing returns the tracked orders in insertion order.
func (t *Tracker) Existing() []model.ExistingOrder {
	out := make([]model.ExistingOrder, 0, len(t.seq))
	for _, id := range t.seq {
		out = append(out, t.orders[id])
	}
	return out
}

func (t *Tracker) Len() int {
	return len(t.orders)
}

// Prune drops tracked orders the given client ids no longer contain. Fills
// and expiry remove orders from the book without this engine issuing a
// cancel; a pulse that observes the book calls Prune with what it saw.
func (t *Tracker) Prune(onBook map[uint64]struct{}) []model.ExistingOrder {
	var dropped []model.ExistingOrder
	for _, id := range append([]uint64{}, t.seq...) {
		if _, ok := onBook[id]; !ok {
			dropped = append(dropped, t.orders[id])
			t.Untrack(id)
		}
	}
	return dropped
}
