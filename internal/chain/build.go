package chain

import (
	"encoding/json"

	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// Spec names one element and its raw parameters as they appear in the
// configuration file.
type Spec struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params"`
}

// Build resolves element names into constructed elements and assembles the
// chain. Every parameter problem is a startup error, nothing is resolved at
// pulse time.
func Build(specs []Spec) (*Chain, error) {
	if len(specs) == 0 {
		return nil, exception.ErrChainEmpty
	}

	elements := make([]Element, 0, len(specs))
	for _, spec := range specs {
		element, err := buildElement(spec)
		if err != nil {
			return nil, errors.Wrap(err, spec.Name)
		}
		elements = append(elements, element)
	}
	return New(elements...)
}

func buildElement(spec Spec) (Element, error) {
	switch spec.Name {
	case "ratios":
		var p struct {
			Spreads    []decimal.Decimal `json:"spreads"`
			Sizes      []decimal.Decimal `json:"sizes"`
			FromBook   bool              `json:"fromBook"`
			OrderType  string            `json:"orderType"`
			TTLSeconds int64             `json:"ttlSeconds"`
		}
		if err := unmarshalParams(spec.Params, &p); err != nil {
			return nil, err
		}
		typ, _ := enum.ParseOrderType(p.OrderType)
		return NewRatios(p.Spreads, p.Sizes, p.FromBook, typ, p.TTLSeconds)

	case "confidence_interval":
		var p struct {
			Levels    []decimal.Decimal `json:"levels"`
			SizeRatio decimal.Decimal   `json:"sizeRatio"`
			OrderType string            `json:"orderType"`
		}
		if err := unmarshalParams(spec.Params, &p); err != nil {
			return nil, err
		}
		typ, _ := enum.ParseOrderType(p.OrderType)
		return NewConfidenceInterval(p.Levels, p.SizeRatio, typ)

	case "bias_quote_on_position":
		var p struct {
			Bias decimal.Decimal `json:"bias"`
		}
		if err := unmarshalParams(spec.Params, &p); err != nil {
			return nil, err
		}
		return NewBiasQuoteOnPosition(p.Bias), nil

	case "minimum_charge":
		var p struct {
			Ratio    decimal.Decimal `json:"ratio"`
			FromBook bool            `json:"fromBook"`
		}
		if err := unmarshalParams(spec.Params, &p); err != nil {
			return nil, err
		}
		return NewMinimumCharge(p.Ratio, p.FromBook)

	case "prevent_post_only_crossing_book":
		return NewPreventPostOnlyCrossingBook(), nil

	case "round_to_lot_size":
		return NewRoundToLotSize(), nil

	case "fixed_position_size":
		var p struct {
			Size decimal.Decimal `json:"size"`
		}
		if err := unmarshalParams(spec.Params, &p); err != nil {
			return nil, err
		}
		return NewFixedPositionSize(p.Size)

	case "fixed_spread":
		var p struct {
			Spread decimal.Decimal `json:"spread"`
		}
		if err := unmarshalParams(spec.Params, &p); err != nil {
			return nil, err
		}
		return NewFixedSpread(p.Spread)

	case "quote_single_side":
		var p struct {
			Side string `json:"side"`
		}
		if err := unmarshalParams(spec.Params, &p); err != nil {
			return nil, err
		}
		side, ok := enum.ParseOrderSide(p.Side)
		if !ok {
			return nil, errors.Wrapf(exception.ErrChainBadParameter, "side: %q", p.Side)
		}
		return NewQuoteSingleSide(side)

	case "after_accumulated_depth":
		var p struct {
			Depth       decimal.Decimal `json:"depth"`
			OffsetTicks int64           `json:"offsetTicks"`
		}
		if err := unmarshalParams(spec.Params, &p); err != nil {
			return nil, err
		}
		return NewAfterAccumulatedDepth(p.Depth, p.OffsetTicks)

	default:
		return nil, exception.ErrChainUnknownElement
	}
}

func unmarshalParams(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return errors.Wrap(exception.ErrChainBadParameter, err.Error())
	}
	return nil
}
