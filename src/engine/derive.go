package engine

import (
	"math"
	"strings"
	"time"

	"macro-observer/src/catalog"
	"macro-observer/src/engine/core"
	"macro-observer/src/models"
)

// -----------------------------------------------------------------------------
// Derivation layer. Index series become trailing YoY/MoM columns, rates pass
// through, normalized balances feed the composite formulas. Rate-of-change is
// always computed on a series' native observations, never on the forward-
// filled grid: a monthly print repeated across daily rows would otherwise
// shift the twelve-period base.
// -----------------------------------------------------------------------------

// compositeSpec declares a derived column built by subtracting table columns
// pairwise left to right. A composite whose inputs are not all present is
// omitted entirely rather than published with holes.
type compositeSpec struct {
	Name   string
	Inputs []string
	Unit   string
	Panel  string
	// PriorOffset is the card comparison distance in rows.
	PriorOffset int
}

var composites = []compositeSpec{
	{Name: "Net Liquidity", Inputs: []string{"Fed Total Assets", "TGA Account", "Reverse Repo"}, Unit: "$T", Panel: "liquidity", PriorOffset: 7},
	{Name: "Liquidity Stress", Inputs: []string{"SOFR Rate", "IORB Rate"}, Unit: "%", Panel: "rates", PriorOffset: 7},
	{Name: "Profit Spread", Inputs: []string{"CPI (Headline) YoY", "PPI (Final Demand) YoY"}, Unit: "%", Panel: "inflation", PriorOffset: 1},
	{Name: "Curve 10Y-2Y", Inputs: []string{"US 10Y Yield", "US 2Y Yield"}, Unit: "%", Panel: "rates", PriorOffset: 7},
}

// -----------------------------------------------------------------------------

// Derive appends the derived columns to an aligned, normalized table.
// dataset supplies the native observations the trailing changes are
// computed from.
func Derive(table *models.MMacroTable, dataset models.MRawDataset) {
	index := dateIndex(table.Dates)

	for _, spec := range catalog.Registry {
		if spec.Class != catalog.ClassIndex {
			continue
		}
		series, ok := dataset.Series[spec.Code]
		if !ok || series.IsEmpty() {
			continue
		}

		offset := spec.Frequency.YoYOffset()
		table.AddColumn(spec.Name+" YoY", deriveOnGrid(series, offset, index, table.Rows()))
		table.AddColumn(spec.Name+" MoM", deriveOnGrid(series, 1, index, table.Rows()))
	}

	for _, comp := range composites {
		col, ok := deriveComposite(table, comp)
		if !ok {
			continue
		}
		table.AddColumn(comp.Name, col)
	}
}

// -----------------------------------------------------------------------------

func dateIndex(dates []time.Time) map[time.Time]int {
	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}
	return index
}

// -----------------------------------------------------------------------------

// deriveOnGrid computes the trailing change over offset native periods, then
// spreads the result onto the shared grid with a forward fill so slower
// series hold their latest reading between publications.
func deriveOnGrid(series models.MSeries, offset int, index map[time.Time]int, rows int) []float64 {
	values := make([]float64, len(series.Obs))
	for i, obs := range series.Obs {
		values[i] = obs.Value
	}
	changes := core.TrailingChangePercent(values, offset)

	column := make([]float64, rows)
	for i := range column {
		column[i] = math.NaN()
	}
	for i, obs := range series.Obs {
		if j, ok := index[obs.Date]; ok {
			column[j] = changes[i]
		}
	}
	return core.ForwardFill(column)
}

// -----------------------------------------------------------------------------

func deriveComposite(table *models.MMacroTable, comp compositeSpec) ([]float64, bool) {
	inputs := make([][]float64, len(comp.Inputs))
	for i, name := range comp.Inputs {
		col, ok := table.Column(name)
		if !ok {
			return nil, false
		}
		inputs[i] = col
	}

	column := make([]float64, table.Rows())
	for row := range column {
		value := inputs[0][row]
		for _, input := range inputs[1:] {
			value -= input[row]
		}
		// NaN in any input propagates through the subtraction chain.
		column[row] = value
	}
	return column, true
}

// -----------------------------------------------------------------------------

// BuildCards summarizes the table into one card per dashboard metric:
// latest defined value, the comparison value a fixed distance back, and
// their difference.
func BuildCards(table *models.MMacroTable) []models.MMetricCard {
	var cards []models.MMetricCard

	for _, spec := range catalog.Registry {
		column, unit := cardColumn(spec)
		if !table.HasColumn(column) {
			continue
		}
		if card, ok := buildCard(table, column, unit, spec.Frequency.CardOffset()); ok {
			cards = append(cards, card)
		}
	}

	for _, comp := range composites {
		if !table.HasColumn(comp.Name) {
			continue
		}
		if card, ok := buildCard(table, comp.Name, comp.Unit, comp.PriorOffset); ok {
			cards = append(cards, card)
		}
	}

	return cards
}

// -----------------------------------------------------------------------------

// cardColumn maps a registry entry to the column its card reads and that
// column's display unit. Index series are carded on their YoY, not the raw
// index level.
func cardColumn(spec catalog.SeriesSpec) (string, string) {
	switch spec.Class {
	case catalog.ClassIndex:
		return spec.Name + " YoY", "%"
	case catalog.ClassRate:
		return spec.Name, "%"
	default:
		if spec.Normalize {
			return spec.Name, "$T"
		}
		return spec.Name, ""
	}
}

// -----------------------------------------------------------------------------

func buildCard(table *models.MMacroTable, column, unit string, offset int) (models.MMetricCard, bool) {
	latest, idx, ok := table.LatestValid(column)
	if !ok {
		return models.MMetricCard{}, false
	}

	card := models.MMetricCard{
		Name:   column,
		Latest: latest,
		Unit:   unit,
		AsOf:   table.Dates[idx],
	}

	if prior, ok := table.ValidAt(column, idx-offset); ok {
		card.Prior = prior
		card.Delta = latest - prior
		card.HasPrior = true
	}
	return card, true
}

// -----------------------------------------------------------------------------

// MetricPanel resolves any table column, raw or derived, to its dashboard
// panel. Derived YoY/MoM columns inherit the panel of their base series.
func MetricPanel(column string) (string, bool) {
	if spec, ok := catalog.ByName(column); ok {
		return spec.Panel, true
	}
	for _, suffix := range []string{" YoY", " MoM"} {
		if base, found := strings.CutSuffix(column, suffix); found {
			if spec, ok := catalog.ByName(base); ok {
				return spec.Panel, true
			}
		}
	}
	for _, comp := range composites {
		if comp.Name == column {
			return comp.Panel, true
		}
	}
	return "", false
}

// -----------------------------------------------------------------------------

// EquityRiskPremium is the earnings yield of the index at the given
// price/earnings ratio minus the latest 10Y nominal yield.
func EquityRiskPremium(table *models.MMacroTable, pe float64) (float64, bool) {
	yield, _, ok := table.LatestValid("US 10Y Yield")
	if !ok || pe <= 0 {
		return 0, false
	}
	return (1.0/pe)*100.0 - yield, true
}
