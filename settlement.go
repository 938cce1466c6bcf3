package carry

import (
	"bufio"
	"cmp"
	"regexp"
	"strconv"
	"strings"

	"github.com/etnz/carry/date"
	"github.com/shopspring/decimal"
)

// LegKind tells whether a settlement opens or closes a caución.
type LegKind int

const (
	Opening LegKind = iota
	Closing
)

func (k LegKind) String() string {
	if k == Closing {
		return "cierre"
	}
	return "apertura"
}

// SettlementLeg is one caución leg read from a broker settlement document (boleto).
type SettlementLeg struct {
	Kind      LegKind
	Ticket    string    // boleto number
	Date      date.Date // liquidation day
	Capital   Money
	Repayable Money
	TNA       Rate
	Term      string // the market's term code, as printed between brackets
	Tenor     int
}

var (
	ticketRE    = regexp.MustCompile(`BOL\s+(\d{10})`)
	liquidRE    = regexp.MustCompile(`Liquidaci[óo]n del d[íi]a\s+(\d{2}/\d{2}/\d{4})`)
	capitalRE   = regexp.MustCompile(`Cantidad\s+([\d.]+,\d{2})\s*@`)
	repayableRE = regexp.MustCompile(`Importe\s+ARS\s+([\d.]+,\d{2})\s*D`)
	tnaRE       = regexp.MustCompile(`TNA:\s*([\d,]+)%`)
	legRE       = regexp.MustCompile(`(?i)Operaci[óo]n de\s+(apertura|cierre)\s+de\s+cauci[óo]n`)
	termRE      = regexp.MustCompile(`(?i)\[(\w+)\]\s+(\d+)\s*d[íi]as?\)`)
)

// ParseSettlement extracts the caución legs of a settlement document's text. A leg starts at
// its "Operación de apertura/cierre de caución" title and collects the first value of each field
// until the next title. Legs without capital, and closings without repayable amount, are dropped.
func ParseSettlement(text string) []SettlementLeg {
	var legs []SettlementLeg
	var cur *SettlementLeg
	flush := func() {
		if cur == nil || !cur.Capital.IsPositive() {
			return
		}
		if cur.Kind == Closing && !cur.Repayable.IsPositive() {
			return
		}
		legs = append(legs, *cur)
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if m := legRE.FindStringSubmatch(line); m != nil {
			flush()
			cur = &SettlementLeg{Capital: M(0, ARS), Repayable: M(0, ARS)}
			if strings.EqualFold(m[1], "cierre") {
				cur.Kind = Closing
			}
			continue
		}
		if cur == nil {
			continue
		}
		if m := liquidRE.FindStringSubmatch(line); m != nil && cur.Date.IsZero() {
			cur.Date, _ = date.Parse(m[1])
		}
		if m := ticketRE.FindStringSubmatch(line); m != nil && cur.Ticket == "" {
			cur.Ticket = m[1]
		}
		if m := capitalRE.FindStringSubmatch(line); m != nil && cur.Capital.IsZero() {
			cur.Capital = M(latinAmount(m[1]), ARS)
		}
		if m := repayableRE.FindStringSubmatch(line); m != nil && cur.Repayable.IsZero() {
			cur.Repayable = M(latinAmount(m[1]), ARS)
		}
		if m := tnaRE.FindStringSubmatch(line); m != nil && cur.TNA.IsZero() {
			cur.TNA = Pct(latinAmount(m[1]))
		}
		if m := termRE.FindStringSubmatch(line); m != nil && cur.Tenor == 0 {
			cur.Term = m[1]
			cur.Tenor, _ = strconv.Atoi(m[2])
		}
	}
	flush()
	return legs
}

// latinAmount reads "1.234.567,89". Invalid input is zero.
func latinAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// maxTNAGap is the largest TNA difference between two legs of the same caución.
var maxTNAGap = Pct(0.5)

// SettlementMatch is the result of pairing legs.
type SettlementMatch struct {
	Operations        []FinancingOperation
	UnmatchedOpenings []SettlementLeg
	UnmatchedClosings []SettlementLeg
}

// MatchSettlements pairs each opening with the first unused closing of the same capital and a TNA
// less than half a point away, in input order. The closing leg carries the amounts and the rate of
// the operation.
func MatchSettlements(legs []SettlementLeg) SettlementMatch {
	var openings, closings []SettlementLeg
	for _, l := range legs {
		if l.Kind == Closing {
			closings = append(closings, l)
		} else {
			openings = append(openings, l)
		}
	}

	var m SettlementMatch
	used := make([]bool, len(closings))
	for _, o := range openings {
		found := -1
		for i, c := range closings {
			if used[i] || !c.Capital.Equal(o.Capital) {
				continue
			}
			if c.TNA.Sub(o.TNA).value.Abs().LessThan(maxTNAGap.value) {
				found = i
				break
			}
		}
		if found < 0 {
			m.UnmatchedOpenings = append(m.UnmatchedOpenings, o)
			continue
		}
		used[found] = true
		c := closings[found]
		op := FinancingOperation{
			ID:        o.Ticket + "/" + c.Ticket,
			Start:     o.Date,
			End:       c.Date,
			Tenor:     cmp.Or(c.Tenor, o.Tenor),
			Capital:   c.Capital,
			Repayable: c.Repayable,
			TNA:       c.TNA,
		}
		m.Operations = append(m.Operations, op.Normalize())
	}
	for i, c := range closings {
		if !used[i] {
			m.UnmatchedClosings = append(m.UnmatchedClosings, c)
		}
	}
	return m
}
