package recon

import (
	"main/internal/model"

	"github.com/shopspring/decimal"
)

// Result is the minimal action set that converges the book toward the
// desired orders. An existing order that satisfies a desired order within
// tolerance appears in neither list.
type Result struct {
	ToPlace  []model.DesiredOrder
	ToCancel []model.ExistingOrder
}

// Reconciler diffs existing orders against desired orders. A negative
// tolerance on either axis disables matching entirely: every existing order
// is cancelled and every desired order placed.
//
// Matching is greedy first-match-wins per side, in stable list order. A
// smarter bipartite matching could occasionally keep an order this one
// replaces; the greedy behavior is intentional and covered by tests.
type Reconciler struct {
	priceTolerance      decimal.Decimal
	quantityTolerance   decimal.Decimal
	expirationTolerance int64 // seconds, 0 disables the check
	alwaysReplace       bool
}

func NewReconciler(priceTolerance, quantityTolerance decimal.Decimal, expirationToleranceSeconds int64) *Reconciler {
	return &Reconciler{
		priceTolerance:      priceTolerance,
		quantityTolerance:   quantityTolerance,
		expirationTolerance: expirationToleranceSeconds,
		alwaysReplace:       priceTolerance.IsNegative() || quantityTolerance.IsNegative(),
	}
}

// NewAlwaysReplace returns a reconciler that never matches.
func NewAlwaysReplace() *Reconciler {
	minusOne := decimal.NewFromInt(-1)
	return NewReconciler(minusOne, minusOne, 0)
}

func (r *Reconciler) Reconcile(existing []model.ExistingOrder, desired []model.DesiredOrder) Result {
	if r.alwaysReplace {
		return Result{
			ToPlace:  append([]model.DesiredOrder{}, desired...),
			ToCancel: append([]model.ExistingOrder{}, existing...),
		}
	}

	matched := make([]bool, len(existing))
	var result Result

	for _, want := range desired {
		found := false
		for i, have := range existing {
			if matched[i] || have.Side != want.Side {
				continue
			}
			if r.satisfies(have, want) {
				matched[i] = true
				found = true
				break
			}
		}
		if !found {
			result.ToPlace = append(result.ToPlace, want)
		}
	}

	for i, have := range existing {
		if !matched[i] {
			result.ToCancel = append(result.ToCancel, have)
		}
	}
	return result
}

func (r *Reconciler) satisfies(have model.ExistingOrder, want model.DesiredOrder) bool {
	if !withinRatio(have.Price, want.Price, r.priceTolerance) {
		return false
	}
	if !withinRatio(have.Quantity, want.Quantity, r.quantityTolerance) {
		return false
	}
	if r.expirationTolerance > 0 {
		diff := have.Expiration - want.Expiration
		if diff < 0 {
			diff = -diff
		}
		if diff > r.expirationTolerance {
			return false
		}
	}
	return true
}

// withinRatio reports |have - want| / want <= tolerance. A zero desired
// value only matches exactly.
func withinRatio(have, want, tolerance decimal.Decimal) bool {
	if want.IsZero() {
		return have.IsZero()
	}
	return have.Sub(want).Abs().Div(want.Abs()).LessThanOrEqual(tolerance)
}
