package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/carry"
	"github.com/etnz/carry/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Files reads a data folder, one sub folder per portfolio:
//
//	prices/<instrument>.jsonl     {"fecha":"2024-01-02","vcp":1234.56}
//	<portfolio>/trades.jsonl      {"instrument":"FCI","date":"2024-01-02","side":"buy","quantity":10,"price":1234.56,"currency":"ARS"}
//	<portfolio>/cauciones.jsonl   {"fecha_inicio":"2024-01-02","fecha_fin":"2024-01-09","capital":1000000,"monto_devolver":1006136.99,"tna_real":32}
//	<portfolio>/cauciones.csv     a caución export, read when there is no cauciones.jsonl
//
// Files are JSONL so that they stay human readable and git friendly.
type Files struct {
	dir    string
	logger zerolog.Logger
}

// NewFiles returns the sources stored in dir.
func NewFiles(dir string, logger zerolog.Logger) *Files {
	return &Files{dir: dir, logger: logger}
}

// jtrade is a trade as written in trades.jsonl.
type jtrade struct {
	ID         string          `json:"id,omitempty"`
	Instrument string          `json:"instrument"`
	Date       date.Date       `json:"date"`
	Side       carry.Side      `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency,omitempty"`
}

// joperation is a caución as written in cauciones.jsonl. tna_real is a percentage, as in exports.
type joperation struct {
	ID        string          `json:"id,omitempty"`
	Start     date.Date       `json:"fecha_inicio"`
	End       date.Date       `json:"fecha_fin"`
	Tenor     int             `json:"dias,omitempty"`
	Capital   decimal.Decimal `json:"capital"`
	Interest  decimal.Decimal `json:"interes,omitzero"`
	Repayable decimal.Decimal `json:"monto_devolver,omitzero"`
	TNA       decimal.Decimal `json:"tna_real"`
	Source    string          `json:"archivo,omitempty"`
	Currency  string          `json:"currency,omitempty"`
}

// readJSONL decodes every non blank line of name into a T. Errors carry the line number.
func readJSONL[T any](name string, each func(T)) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for i := 1; scanner.Scan(); i++ {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return fmt.Errorf("format error in %q on line %d: %w", name, i, err)
		}
		each(v)
	}
	return scanner.Err()
}

func (s *Files) portfolioDir(portfolio string) string { return filepath.Join(s.dir, portfolio) }

// notFound maps a missing file to ErrNotFound.
func notFound(what string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// PriceSeries implements PriceSource.
func (s *Files) PriceSeries(ctx context.Context, instrument string, from date.Date) ([]carry.PricePoint, error) {
	var points []carry.PricePoint
	name := filepath.Join(s.dir, "prices", instrument+".jsonl")
	err := readJSONL(name, func(p carry.PricePoint) {
		if !p.Date.Before(from) {
			points = append(points, p)
		}
	})
	if err != nil {
		return nil, notFound("prices of "+instrument, err)
	}
	s.logger.Debug().Str("file", name).Int("points", len(points)).Msg("prices loaded")
	return points, nil
}

// Trades implements TradeSource.
func (s *Files) Trades(ctx context.Context, portfolio string) ([]carry.Trade, error) {
	var trades []carry.Trade
	name := filepath.Join(s.portfolioDir(portfolio), "trades.jsonl")
	err := readJSONL(name, func(j jtrade) {
		trades = append(trades, carry.Trade{
			ID:         j.ID,
			Instrument: j.Instrument,
			Date:       j.Date,
			Side:       j.Side,
			Quantity:   carry.Q(j.Quantity),
			Price:      carry.M(j.Price, j.Currency),
		})
	})
	if err != nil {
		return nil, notFound("trades of "+portfolio, err)
	}
	s.logger.Debug().Str("file", name).Int("trades", len(trades)).Msg("trades loaded")
	return trades, nil
}

// FinancingOperations implements OperationSource. cauciones.jsonl is preferred over
// cauciones.csv.
func (s *Files) FinancingOperations(ctx context.Context, portfolio string) ([]carry.FinancingOperation, error) {
	dir := s.portfolioDir(portfolio)
	var ops []carry.FinancingOperation
	name := filepath.Join(dir, "cauciones.jsonl")
	err := readJSONL(name, func(j joperation) {
		currency := j.Currency
		if currency == "" {
			currency = carry.ARS
		}
		ops = append(ops, carry.FinancingOperation{
			ID:        j.ID,
			Start:     j.Start,
			End:       j.End,
			Tenor:     j.Tenor,
			Capital:   carry.M(j.Capital, currency),
			Interest:  carry.M(j.Interest, currency),
			Repayable: carry.M(j.Repayable, currency),
			TNA:       carry.Pct(j.TNA),
			Source:    j.Source,
		}.Normalize())
	})
	if err == nil {
		s.logger.Debug().Str("file", name).Int("operations", len(ops)).Msg("operations loaded")
		return ops, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	name = filepath.Join(dir, "cauciones.csv")
	f, err := os.Open(name)
	if err != nil {
		return nil, notFound("operations of "+portfolio, err)
	}
	defer f.Close()
	in, err := carry.IngestCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	if in.Skipped > 0 {
		s.logger.Warn().Str("file", name).Int("skipped", in.Skipped).Msg("invalid rows skipped")
	}
	return in.Records, nil
}

// AppendOperations adds ops to the portfolio's cauciones.jsonl, creating it if needed.
func (s *Files) AppendOperations(portfolio string, ops []carry.FinancingOperation) error {
	dir := s.portfolioDir(portfolio)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := filepath.Join(dir, "cauciones.jsonl")
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	for _, op := range ops {
		j := joperation{
			ID:        op.ID,
			Start:     op.Start,
			End:       op.End,
			Tenor:     op.Tenor,
			Capital:   op.Capital.Decimal(),
			Interest:  op.Interest.Decimal(),
			Repayable: op.Repayable.Decimal(),
			TNA:       op.TNA.Percent(),
			Source:    op.Source,
			Currency:  op.Capital.Currency(),
		}
		if err := enc.Encode(j); err != nil {
			f.Close()
			return fmt.Errorf("writing %q: %w", name, err)
		}
	}
	return f.Close()
}
