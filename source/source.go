// Package source implements the collaborators that feed the carry engine: fund price series,
// trades and financing operations read from files or fetched over HTTP, a TTL cache for fetched
// data, and text extraction from settlement PDFs.
//
// Everything here resolves data into plain in-memory collections. The engine never calls back.
package source

import (
	"context"
	"errors"

	"github.com/etnz/carry"
	"github.com/etnz/carry/date"
)

// ErrNotFound is returned when an instrument or a portfolio is unknown to a source.
var ErrNotFound = errors.New("not found")

// PriceSource returns the published share prices of a fund from a day on. The series may be
// sparse and in any order.
type PriceSource interface {
	PriceSeries(ctx context.Context, instrument string, from date.Date) ([]carry.PricePoint, error)
}

// TradeSource returns the trades of a portfolio, in any order.
type TradeSource interface {
	Trades(ctx context.Context, portfolio string) ([]carry.Trade, error)
}

// OperationSource returns the cauciones of a portfolio.
type OperationSource interface {
	FinancingOperations(ctx context.Context, portfolio string) ([]carry.FinancingOperation, error)
}
