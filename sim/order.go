// Package sim contains the execution-side pieces of a backtest run: order
// intents, the cost model, single-bar order matching, and the account
// ledger. All of it is deterministic and holds no state across bars except
// the ledger itself.
package sim

import (
	"errors"
	"fmt"
	"strings"
)

// Side is the direction of an order. The sign is used directly by the cost
// model: +1 moves a market fill against a buyer, -1 against a seller.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// OrderType distinguishes market from limit orders.
type OrderType uint8

const (
	Market OrderType = iota
	Limit
)

func (t OrderType) String() string {
	if t == Limit {
		return "limit"
	}
	return "market"
}

// ErrInvalidOrder reports a malformed order intent: unsupported action or
// type, non-positive size, or a limit order without a price. It is
// recovered locally by the engine — the order is rejected and the run
// continues.
var ErrInvalidOrder = errors.New("sim: invalid order")

// Intent is one parsed trading decision. It is produced transiently each
// step and consumed immediately by the matcher; it is never persisted.
type Intent struct {
	Side   Side
	Type   OrderType
	Size   float64
	Price  float64 // limit price; meaningful only when Type == Limit
	Symbol string  // optional, defaults to the current bar's symbol
}

// Order is an intent stamped with the run-local order sequence number.
// IDs are a plain counter so replaying the same bars yields the same IDs.
type Order struct {
	ID     uint64
	Side   Side
	Type   OrderType
	Size   float64
	Price  float64
	Symbol string
}

// ParseAction converts a strategy decision into an Intent. Accepted shapes:
//
//   - nil: no action (ok == false)
//   - string "BUY" or "SELL": market order of size 1
//   - Intent or *Intent: used as-is
//   - map[string]any: {action, type, size, price, symbol}
//
// Anything else, and any descriptor that fails validation, is an
// ErrInvalidOrder. The parse happens exactly once, here, at the matching
// boundary.
func ParseAction(action any, defaultSymbol string) (Intent, bool, error) {
	switch v := action.(type) {
	case nil:
		return Intent{}, false, nil

	case string:
		side, err := parseSide(v)
		if err != nil {
			return Intent{}, false, err
		}
		return Intent{Side: side, Type: Market, Size: 1, Symbol: defaultSymbol}, true, nil

	case Intent:
		return validateIntent(v, defaultSymbol)

	case *Intent:
		if v == nil {
			return Intent{}, false, nil
		}
		return validateIntent(*v, defaultSymbol)

	case map[string]any:
		in, err := intentFromMap(v)
		if err != nil {
			return Intent{}, false, err
		}
		return validateIntent(in, defaultSymbol)

	default:
		return Intent{}, false, fmt.Errorf("%w: unsupported action %T", ErrInvalidOrder, action)
	}
}

func parseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidOrder, s)
	}
}

func intentFromMap(m map[string]any) (Intent, error) {
	act, _ := m["action"].(string)
	side, err := parseSide(act)
	if err != nil {
		return Intent{}, err
	}

	in := Intent{Side: side, Type: Market, Size: 1}

	if ts, ok := m["type"]; ok {
		s, ok := ts.(string)
		if !ok {
			return Intent{}, fmt.Errorf("%w: order type must be a string", ErrInvalidOrder)
		}
		switch strings.ToLower(s) {
		case "market":
			in.Type = Market
		case "limit":
			in.Type = Limit
		default:
			return Intent{}, fmt.Errorf("%w: unsupported order type %q", ErrInvalidOrder, s)
		}
	}

	if v, ok := m["size"]; ok {
		f, ok := toFloat(v)
		if !ok {
			return Intent{}, fmt.Errorf("%w: bad size %v", ErrInvalidOrder, v)
		}
		in.Size = f
	}
	if v, ok := m["price"]; ok {
		f, ok := toFloat(v)
		if !ok {
			return Intent{}, fmt.Errorf("%w: bad price %v", ErrInvalidOrder, v)
		}
		in.Price = f
	}
	if v, ok := m["symbol"].(string); ok {
		in.Symbol = v
	}
	return in, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func validateIntent(in Intent, defaultSymbol string) (Intent, bool, error) {
	if in.Side != Buy && in.Side != Sell {
		return Intent{}, false, fmt.Errorf("%w: missing side", ErrInvalidOrder)
	}
	if in.Size <= 0 {
		return Intent{}, false, fmt.Errorf("%w: non-positive size %v", ErrInvalidOrder, in.Size)
	}
	if in.Type == Limit && in.Price <= 0 {
		return Intent{}, false, fmt.Errorf("%w: limit order requires a price", ErrInvalidOrder)
	}
	if in.Symbol == "" {
		in.Symbol = defaultSymbol
	}
	return in, true, nil
}
