package carry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/carry/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrMissingHeaders is returned by IngestCSV when the header row lacks a required column.
var ErrMissingHeaders = errors.New("missing required csv headers")

// requiredHeaders of a caución export, in their usual order.
var requiredHeaders = []string{"fecha_apertura", "fecha_cierre", "capital", "monto_devolver", "interes", "dias", "tna_real"}

// operationNamespace seeds the keys derived for rows without operation_key.
var operationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/carry/operation"))

// Ingest is the content of a caución CSV export.
type Ingest struct {
	Records []FinancingOperation
	Skipped int // data rows that failed validation
	Curve   TenorCurve
}

// DetectDelimiter returns ';' when the header line has more semicolons than commas, ',' otherwise.
func DetectDelimiter(header string) rune {
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

// ParseNumber reads a decimal written either the Latin way (1.234,56) or the US way (1,234.56).
// When both separators appear the last one is the decimal separator. A separator repeated alone
// groups thousands, a single comma alone is a decimal separator.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case dot >= 0 && strings.Count(s, ".") > 1:
		// 1.234.567 has no decimal part.
		s = strings.ReplaceAll(s, ".", "")
	case comma >= 0 && strings.Count(s, ",") > 1:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

// IngestCSV reads a caución export. Columns are located by name, case insensitive; archivo and
// operation_key are optional. Invalid rows are skipped and counted. The only batch level
// failures are an unreadable input and missing required headers.
func IngestCSV(r io.Reader) (*Ingest, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	text := strings.TrimPrefix(string(content), "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty csv")
	}
	header, _, _ := strings.Cut(text, "\n")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = DetectDelimiter(header)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	idx := make(map[string]int)
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := idx[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}

	in := new(Ingest)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		op, ok := parseRecord(row, idx)
		if !ok {
			in.Skipped++
			continue
		}
		in.Records = append(in.Records, op)
	}
	in.Curve = BuildTenorCurve(in.Records)
	return in, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseRecord converts a data row. It returns false when capital or monto_devolver is not
// positive, dias is not an integer or tna_real is not a number.
func parseRecord(row []string, idx map[string]int) (FinancingOperation, bool) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	capital, err := ParseNumber(cell("capital"))
	if err != nil || !capital.IsPositive() {
		return FinancingOperation{}, false
	}
	repayable, err := ParseNumber(cell("monto_devolver"))
	if err != nil || !repayable.IsPositive() {
		return FinancingOperation{}, false
	}
	days, err := ParseNumber(cell("dias"))
	if err != nil || !days.IsInteger() || days.IsNegative() {
		return FinancingOperation{}, false
	}
	tna, err := ParseNumber(cell("tna_real"))
	if err != nil {
		return FinancingOperation{}, false
	}
	// an interest column left empty is derived from the repayable amount.
	interest, err := ParseNumber(cell("interes"))
	if err != nil {
		interest = repayable.Sub(capital)
	}

	// dates are informative only, the tenor is dias and the rate tna_real.
	start, _ := date.Parse(cell("fecha_apertura"))
	end, _ := date.Parse(cell("fecha_cierre"))

	op := FinancingOperation{
		ID:        cell("operation_key"),
		Start:     start,
		End:       end,
		Tenor:     int(days.IntPart()),
		Capital:   M(capital, ARS),
		Interest:  M(interest, ARS),
		Repayable: M(repayable, ARS),
		TNA:       Pct(tna),
		Source:    cell("archivo"),
		Recorded:  true,
	}
	if op.ID == "" {
		op.ID = uuid.NewSHA1(operationNamespace, []byte(strings.Join(row, "\x1f"))).String()
	}
	return op, true
}
