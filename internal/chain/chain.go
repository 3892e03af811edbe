package chain

import (
	"main/internal/model"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// Element is one composable transform of the desired-order pipeline. Apply
// must treat the model state as read-only, perform no I/O, and return a new
// list instead of mutating its input.
type Element interface {
	Name() string
	Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error)
}

// Originator marks elements able to produce orders from an empty list. A
// chain must start with one, every later element only transforms.
type Originator interface {
	Element
	OriginatesOrders()
}

// Chain runs its elements in the configured order, threading the evolving
// desired-order list through them. Construction order is caller-specified
// and never reordered.
type Chain struct {
	elements []Element
}

func New(elements ...Element) (*Chain, error) {
	if len(elements) == 0 {
		return nil, exception.ErrChainEmpty
	}
	if _, ok := elements[0].(Originator); !ok {
		return nil, errors.Wrap(exception.ErrChainHeadNotOriginator, elements[0].Name())
	}
	return &Chain{elements: elements}, nil
}

func (c *Chain) Process(state *model.State) ([]model.DesiredOrder, error) {
	var orders []model.DesiredOrder
	for _, element := range c.elements {
		next, err := element.Apply(state, orders)
		if err != nil {
			return nil, errors.Wrap(err, element.Name())
		}
		orders = next
	}
	return orders, nil
}

// Elements exposes the configured sequence for logging and tooling.
func (c *Chain) Elements() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}
