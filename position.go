package carry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/carry/date"
	"github.com/shopspring/decimal"
)

// dust is the quantity under which a position is considered closed.
var dust = decimal.New(1, -8)

// Side of a trade.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// ParseSide reads "buy"/"sell" (and their Spanish names), case insensitive.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "buy", "compra":
		return Buy, nil
	case "sell", "venta":
		return Sell, nil
	default:
		return Buy, fmt.Errorf("unknown trade side %q", s)
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Trade is one buy or sell fill of an instrument.
type Trade struct {
	ID         string    `json:"id,omitempty"`
	Instrument string    `json:"instrument"`
	Date       date.Date `json:"date"`
	Side       Side      `json:"side"`
	Quantity   Quantity  `json:"quantity"`
	Price      Money     `json:"price"` // per unit
}

// NormalizeTrade returns the canonical form of t: a positive quantity and an explicit side.
// A negative quantity is a sell whatever the declared side.
func NormalizeTrade(t Trade) Trade {
	if t.Quantity.IsNegative() {
		t.Quantity = t.Quantity.Neg()
		t.Side = Sell
	}
	return t
}

// Quote is the current market data of an instrument.
type Quote struct {
	Price Money
	// Change24h is the price change over the last 24 hours, meaningful only when HasChange.
	Change24h Rate
	HasChange bool
}

// Position is the average-cost holding of an instrument.
type Position struct {
	Instrument string
	Quantity   Quantity
	TotalCost  Money
	AvgCost    Money // TotalCost/Quantity, zero when Quantity is zero
	Price      Money
	Quoted     bool // false when no usable quote was given, Price and Valuation are then zero
	Valuation  Money
	PnL        Money
	PnLPct     Rate // PnL/TotalCost, zero when TotalCost is zero
	// DailyPnL is Valuation × Change24h. It is only set when HasDailyPnL: a missing 24h change
	// is not a zero change.
	DailyPnL    Money
	HasDailyPnL bool
}

// PositionTotals sums the positions held in one currency.
type PositionTotals struct {
	Currency  string
	Invested  Money // sum of TotalCost
	Valuation Money
	PnL       Money
	PnLPct    Rate
}

// PositionReport is the result of replaying trades.
type PositionReport struct {
	Positions []Position
	Totals    []PositionTotals // one per currency, sorted by currency
	// Oversold lists sell trades, or the part of them, that exceeded the held quantity and were
	// not applied.
	Oversold []Trade
	// Rejected lists trades priced in another currency than the instrument's first trade.
	Rejected []Trade
}

// holding is the running state of an instrument during the replay.
type holding struct {
	quantity  Quantity
	totalCost Money
}

// apply folds one trade into the holding using average-cost accounting: a sell removes cost
// in proportion to the fraction of the position sold. It returns the unapplied quantity.
func (h *holding) apply(t Trade) Quantity {
	if t.Side == Buy {
		h.quantity = h.quantity.Add(t.Quantity)
		h.totalCost = h.totalCost.Add(t.Price.Mul(t.Quantity))
		return Quantity{}
	}
	if !h.quantity.IsPositive() {
		return t.Quantity
	}
	sold, excess := t.Quantity, Quantity{}
	if sold.GreaterThan(h.quantity) {
		sold, excess = h.quantity, t.Quantity.Sub(h.quantity)
	}
	costReduction := h.totalCost.Mul(sold.Div(h.quantity))
	h.quantity = h.quantity.Sub(sold)
	h.totalCost = h.totalCost.Sub(costReduction)
	return excess
}

// ComputePositions replays trades (any order) per instrument in chronological order, ties kept
// in input order, and values the resulting positions with quotes. Instruments that net to
// zero are left out.
func ComputePositions(trades []Trade, quotes map[string]Quote) PositionReport {
	sorted := make([]Trade, len(trades))
	for i, t := range trades {
		sorted[i] = NormalizeTrade(t)
	}
	slices.SortStableFunc(sorted, func(a, b Trade) int { return date.Compare(a.Date, b.Date) })

	holdings := make(map[string]*holding)
	var order []string
	var report PositionReport
	for _, t := range sorted {
		h, ok := holdings[t.Instrument]
		if !ok {
			h = &holding{totalCost: M(0, t.Price.Currency())}
			holdings[t.Instrument] = h
			order = append(order, t.Instrument)
		}
		if c := h.totalCost.Currency(); c != "" && t.Price.Currency() != "" && c != t.Price.Currency() {
			report.Rejected = append(report.Rejected, t)
			continue
		}
		if excess := h.apply(t); excess.IsPositive() {
			t.Quantity = excess
			report.Oversold = append(report.Oversold, t)
		}
	}

	totals := make(map[string]*PositionTotals)
	for _, id := range order {
		h := holdings[id]
		if !h.quantity.value.Abs().GreaterThan(dust) {
			continue
		}
		p := valuePosition(id, h, quotes[id])
		report.Positions = append(report.Positions, p)

		c := p.TotalCost.Currency()
		t, ok := totals[c]
		if !ok {
			t = &PositionTotals{Currency: c, Invested: M(0, c), Valuation: M(0, c)}
			totals[c] = t
		}
		t.Invested = t.Invested.Add(p.TotalCost)
		t.Valuation = t.Valuation.Add(p.Valuation)
	}
	for _, t := range totals {
		t.PnL = t.Valuation.Sub(t.Invested)
		if t.Invested.IsPositive() {
			t.PnLPct = t.PnL.Ratio(t.Invested)
		}
		report.Totals = append(report.Totals, *t)
	}
	slices.SortFunc(report.Totals, func(a, b PositionTotals) int { return strings.Compare(a.Currency, b.Currency) })
	return report
}

func valuePosition(id string, h *holding, q Quote) Position {
	c := h.totalCost.Currency()
	p := Position{
		Instrument: id,
		Quantity:   h.quantity,
		TotalCost:  h.totalCost,
		AvgCost:    h.totalCost.Div(h.quantity),
		Price:      M(0, c),
	}
	// a quote in another currency cannot value the position.
	if q.Price.Currency() == "" || q.Price.Currency() == c || c == "" {
		p.Price = M(q.Price.Decimal(), c)
		if c == "" {
			p.Price = q.Price
		}
		p.Quoted = !q.Price.IsZero()
	}
	p.Valuation = p.Price.Mul(h.quantity)
	p.PnL = p.Valuation.Sub(p.TotalCost)
	if p.TotalCost.IsPositive() {
		p.PnLPct = p.PnL.Ratio(p.TotalCost)
	}
	if q.HasChange {
		p.DailyPnL = p.Valuation.MulRate(q.Change24h)
		p.HasDailyPnL = true
	}
	return p
}
