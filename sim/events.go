package sim

import "time"

// OrderStatus labels order lifecycle events.
type OrderStatus string

const (
	OrderSubmitted OrderStatus = "submitted"
	OrderFilled    OrderStatus = "filled"
	OrderRejected  OrderStatus = "rejected"
)

// OrderEvent is emitted when an order is submitted, filled, or rejected.
type OrderEvent struct {
	Status     OrderStatus
	OrderID    uint64
	Side       Side
	Type       OrderType
	Size       float64
	LimitPrice float64
	Symbol     string
	Reason     string // set on rejection
}

// TradeEvent is emitted once per fill.
type TradeEvent struct {
	OrderID    uint64
	Side       Side
	Price      float64
	Size       float64
	Commission float64
	Symbol     string
	Time       time.Time
}

// Fill is the result of matching one order against one bar. Immutable once
// created; appended to the run's trade history.
type Fill struct {
	OrderID    uint64
	Side       Side
	Price      float64 // execution price, slippage included for market orders
	Size       float64
	Commission float64
	Time       time.Time
	Symbol     string
}

// TradeRecord is a Fill annotated with the realized PnL the ledger
// attributed to it. Position-increasing fills carry zero.
type TradeRecord struct {
	OrderID     uint64
	Side        Side
	Price       float64
	Size        float64
	Commission  float64
	Time        time.Time
	Symbol      string
	RealizedPnL float64
}
