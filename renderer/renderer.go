// Package renderer turns carry reports into markdown documents.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/carry"
	"github.com/etnz/carry/date"
)

//go:embed templates/*.md
var templateFS embed.FS

var templates, _ = fs.Sub(templateFS, "templates")

// Positions is the data of the positions report.
type Positions struct {
	Portfolio string
	Date      date.Date
	Report    carry.PositionReport
}

// RenderPositions renders the positions report.
func RenderPositions(p *Positions) string {
	partials := map[string]string{
		"positions_totals":   "positions_totals.md",
		"positions_warnings": "positions_warnings.md",
	}
	return renderTemplate("positions", "positions.md", partials, p)
}

// TNA is the data of the fund yield report.
type TNA struct {
	Instrument string
	Estimate   carry.TNAEstimate
	Daily      carry.Rate
	Rates      []carry.RatePoint // smoothed, most recent last
}

// RenderTNA renders the fund yield report.
func RenderTNA(t *TNA) string {
	return renderTemplate("tna", "tna.md", nil, t)
}

// Spreads is the data of the carry report.
type Spreads struct {
	Portfolio  string
	Instrument string
	Report     carry.SpreadReport
}

// RenderSpreads renders the carry report: one row per operation and the totals.
func RenderSpreads(s *Spreads) string {
	partials := map[string]string{
		"spreads_operations": "spreads_operations.md",
		"spreads_totals":     "spreads_totals.md",
	}
	if len(s.Report.Results) == 0 {
		partials["spreads_operations"] = "spreads_empty.md"
	}
	return renderTemplate("spreads", "spreads.md", partials, s)
}

// Curve is the data of the tenor curve report.
type Curve struct {
	Title string
	Curve carry.TenorCurve
}

// RenderCurve renders the financing rate by tenor.
func RenderCurve(c *Curve) string {
	return renderTemplate("curve", "curve.md", nil, c)
}

// Rates is the data of the rate history report.
type Rates struct {
	Instrument string
	Range      date.Range
	Days       []carry.RateDay
	Stats      carry.RateStats
	HasStats   bool
}

// RenderRates renders the daily fund and financing rates.
func RenderRates(r *Rates) string {
	partials := map[string]string{"rates_stats": "rates_stats.md"}
	if !r.HasStats {
		partials["rates_stats"] = ""
	}
	return renderTemplate("rates", "rates.md", partials, r)
}

// Settlements is the data of the settlement import report.
type Settlements struct {
	Files []string
	Match carry.SettlementMatch
}

// RenderSettlements renders the operations rebuilt from settlement documents.
func RenderSettlements(s *Settlements) string {
	partials := map[string]string{"settlements_unmatched": "settlements_unmatched.md"}
	return renderTemplate("settlements", "settlements.md", partials, s)
}

// funcs are the helpers available to every template.
var funcs = template.FuncMap{
	// na renders a value only when it is known.
	"na": func(ok bool, v fmt.Stringer) string {
		if !ok {
			return "N/A"
		}
		return v.String()
	},
	"signedRate":  func(r carry.Rate) string { return r.SignedString() },
	"signedMoney": func(m carry.Money) string { return m.SignedString() },
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
