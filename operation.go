package carry

import (
	"fmt"

	"github.com/etnz/carry/date"
	"github.com/shopspring/decimal"
)

// Currency of caución operations when none is given.
const ARS = "ARS"

// Status of a financing operation, derived from the evaluation day.
type Status int

const (
	Active Status = iota
	Matured
)

func (s Status) String() string {
	if s == Matured {
		return "matured"
	}
	return "active"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// FinancingOperation is a caución: Capital borrowed on Start, Repayable (Capital+Interest) owed on End.
type FinancingOperation struct {
	ID        string    `json:"id"`
	Start     date.Date `json:"fecha_inicio"`
	End       date.Date `json:"fecha_fin"`
	Tenor     int       `json:"dias,omitempty"` // declared day count, End-Start when zero
	Capital   Money     `json:"capital"`
	Interest  Money     `json:"interes"`
	Repayable Money     `json:"monto_devolver"`
	TNA       Rate      `json:"tna_real"` // annual rate agreed, fraction
	Source    string    `json:"archivo,omitempty"`
	// Recorded is true when Tenor and TNA were read from an export: they are used as given,
	// zero included, and never derived from the dates or the interest.
	Recorded  bool      `json:"-"`
}

// Days returns the tenor of the operation.
func (op FinancingOperation) Days() int {
	if op.Tenor > 0 || op.Recorded {
		return op.Tenor
	}
	return op.End.Sub(op.Start)
}

// StatusOn returns Matured when the operation ended before now.
func (op FinancingOperation) StatusOn(now date.Date) Status {
	if op.End.Before(now) {
		return Matured
	}
	return Active
}

// CostRate returns the financing cost as a fraction of capital (Interest/Capital).
func (op FinancingOperation) CostRate() Rate { return op.Interest.Ratio(op.Capital) }

// Rate returns the agreed TNA, or the one implied by interest and tenor when none was given:
// Interest/Capital × 365/days. A recorded TNA is returned as is, even zero.
func (op FinancingOperation) Rate() Rate {
	if !op.TNA.IsZero() || op.Recorded {
		return op.TNA
	}
	days := op.Days()
	if days <= 0 {
		return Rate{}
	}
	return Rate{value: quo(op.CostRate().value.Mul(decimal.NewFromInt(DaysPerYear)), decimal.NewFromInt(int64(days)))}
}

// Label is a human identifier "2024-01-02 | $1.000.000 | 32.00%".
func (op FinancingOperation) Label() string {
	return fmt.Sprintf("%s | $%s | %s", op.Start, groupThousands(op.Capital.Decimal().Round(0).String()), op.Rate())
}

// groupThousands inserts '.' every three digits, the Argentine way.
func groupThousands(digits string) string {
	sign := ""
	if len(digits) > 0 && digits[0] == '-' {
		sign, digits = "-", digits[1:]
	}
	var b []byte
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b = append(b, '.')
		}
		b = append(b, digits[i])
	}
	return sign + string(b)
}

// Normalize completes the derivable fields of op: currency, interest from repayable (or the
// reverse) and the tenor from the dates.
func (op FinancingOperation) Normalize() FinancingOperation {
	c := op.Capital.Currency()
	if c == "" {
		c = ARS
	}
	op.Capital = M(op.Capital.Decimal(), c)
	op.Interest = M(op.Interest.Decimal(), c)
	op.Repayable = M(op.Repayable.Decimal(), c)
	switch {
	case op.Interest.IsZero() && op.Repayable.GreaterThan(op.Capital):
		op.Interest = op.Repayable.Sub(op.Capital)
	case op.Repayable.IsZero():
		op.Repayable = op.Capital.Add(op.Interest)
	}
	if !op.Recorded && op.Tenor <= 0 && !op.Start.IsZero() && !op.End.IsZero() {
		op.Tenor = op.End.Sub(op.Start)
	}
	return op
}
