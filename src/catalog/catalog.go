package catalog

// -----------------------------------------------------------------------------
// Static series registry. One entry per FRED code: display name, class,
// native unit scale, native frequency and dashboard panel. Classification is
// a property of the series identity and is never inferred from values. Every
// consumer (source, normalizer, derivation layer) reads this table; nothing
// else in the codebase is allowed to redeclare a code, a name or a scale.
// -----------------------------------------------------------------------------

type SeriesClass int

const (
	// ClassIndex is a raw level whose signal is its trailing rate of change.
	ClassIndex SeriesClass = iota
	// ClassRate is already a percentage or rate and passes through unchanged.
	ClassRate
	// ClassLevel is a balance (liquidity figure) that is unit-normalized
	// but never YoY'd.
	ClassLevel
)

// -----------------------------------------------------------------------------

type Frequency int

const (
	Monthly Frequency = iota
	Weekly
	Daily
)

// YoYOffset is the trailing-year offset in native periods. Daily series use
// the fixed 252 business-day convention rather than a calendar lookup; the
// difference around leap years is a couple of rows and the downstream
// thresholds are calibrated against 252.
func (f Frequency) YoYOffset() int {
	switch f {
	case Daily:
		return 252
	case Weekly:
		return 52
	default:
		return 12
	}
}

// CardOffset is how many rows back a metric card's prior value sits:
// daily metrics compare against one week ago, everything else against the
// previous period.
func (f Frequency) CardOffset() int {
	if f == Daily {
		return 7
	}
	return 1
}

// -----------------------------------------------------------------------------

type UnitScale int

const (
	Units UnitScale = iota
	Thousands
	Millions
	Billions
	Trillions
)

// TrillionsDivisor is the power-of-ten factor that brings a value of this
// scale onto the trillions scale. A wrong entry here produces plausible but
// wrong composites with no runtime symptom, so the table below is pinned
// value-by-value in tests.
func (u UnitScale) TrillionsDivisor() float64 {
	switch u {
	case Units:
		return 1e12
	case Thousands:
		return 1e9
	case Millions:
		return 1e6
	case Billions:
		return 1e3
	default:
		return 1
	}
}

// -----------------------------------------------------------------------------

type SeriesSpec struct {
	Code      string
	Name      string
	Class     SeriesClass
	Unit      UnitScale
	Frequency Frequency
	Panel     string
	// Normalize marks level columns that are rescaled to trillions before
	// entering composite formulas.
	Normalize bool
	Anchor    bool
}

// -----------------------------------------------------------------------------

// AnchorCode gates the whole table: rows without a value for this series are
// dropped during alignment, and a failed fetch of it is fatal for the cycle.
const AnchorCode = "CPIAUCSL"

// Registry holds every series the dashboard knows about, grouped by panel.
var Registry = []SeriesSpec{
	// --- Inflation: index levels, YoY'd by the derivation layer ---
	{Code: "CPIAUCSL", Name: "CPI (Headline)", Class: ClassIndex, Frequency: Monthly, Panel: "inflation", Anchor: true},
	{Code: "CPILFESL", Name: "CPI (Core)", Class: ClassIndex, Frequency: Monthly, Panel: "inflation"},
	{Code: "PPIFIS", Name: "PPI (Final Demand)", Class: ClassIndex, Frequency: Monthly, Panel: "inflation"},
	{Code: "PCEPI", Name: "PCE (Headline)", Class: ClassIndex, Frequency: Monthly, Panel: "inflation"},
	{Code: "CUSR0000SAD", Name: "Supercore (Svcs ex Shelter)", Class: ClassIndex, Frequency: Monthly, Panel: "inflation"},
	{Code: "CUSR0000SETA02", Name: "Used Cars", Class: ClassIndex, Frequency: Monthly, Panel: "inflation"},
	{Code: "CUSR0000SAH1", Name: "CPI Shelter", Class: ClassIndex, Frequency: Monthly, Panel: "inflation"},
	{Code: "CHNTOT", Name: "China Import Prices", Class: ClassIndex, Frequency: Monthly, Panel: "inflation"},

	// --- Inflation: already expressed as rates, passed through ---
	{Code: "STICKCPIM159SFRBATL", Name: "Sticky CPI", Class: ClassRate, Frequency: Monthly, Panel: "inflation"},
	{Code: "T5YIE", Name: "5Y Breakeven", Class: ClassRate, Frequency: Daily, Panel: "inflation"},
	{Code: "DFII10", Name: "10Y Real Yield", Class: ClassRate, Frequency: Daily, Panel: "inflation"},

	// --- Rates ---
	{Code: "DGS10", Name: "US 10Y Yield", Class: ClassRate, Frequency: Daily, Panel: "rates"},
	{Code: "DGS2", Name: "US 2Y Yield", Class: ClassRate, Frequency: Daily, Panel: "rates"},
	{Code: "DGS30", Name: "US 30Y Yield", Class: ClassRate, Frequency: Daily, Panel: "rates"},
	{Code: "FEDFUNDS", Name: "Fed Funds Rate", Class: ClassRate, Frequency: Monthly, Panel: "rates"},
	{Code: "T10Y3M", Name: "Curve 10Y-3M", Class: ClassRate, Frequency: Daily, Panel: "rates"},
	{Code: "SOFR", Name: "SOFR Rate", Class: ClassRate, Frequency: Daily, Panel: "rates"},
	{Code: "IORB", Name: "IORB Rate", Class: ClassRate, Frequency: Daily, Panel: "rates"},
	{Code: "BAMLH0A0HYM2", Name: "High Yield Spread", Class: ClassRate, Frequency: Daily, Panel: "credit"},
	{Code: "NFCI", Name: "Financial Conditions", Class: ClassRate, Frequency: Weekly, Panel: "credit"},

	// --- Liquidity balances, normalized to trillions ---
	{Code: "WALCL", Name: "Fed Total Assets", Class: ClassLevel, Unit: Millions, Frequency: Weekly, Panel: "liquidity", Normalize: true},
	{Code: "WTREGEN", Name: "TGA Account", Class: ClassLevel, Unit: Millions, Frequency: Weekly, Panel: "liquidity", Normalize: true},
	{Code: "RRPONTSYD", Name: "Reverse Repo", Class: ClassLevel, Unit: Billions, Frequency: Daily, Panel: "liquidity", Normalize: true},
	{Code: "TOTRESNS", Name: "Bank Reserves", Class: ClassLevel, Unit: Billions, Frequency: Monthly, Panel: "liquidity", Normalize: true},

	// --- Market ---
	{Code: "SP500", Name: "S&P 500", Class: ClassLevel, Unit: Units, Frequency: Daily, Panel: "market"},
}

// -----------------------------------------------------------------------------

var byCode = func() map[string]SeriesSpec {
	m := make(map[string]SeriesSpec, len(Registry))
	for _, s := range Registry {
		m[s.Code] = s
	}
	return m
}()

var byName = func() map[string]SeriesSpec {
	m := make(map[string]SeriesSpec, len(Registry))
	for _, s := range Registry {
		m[s.Name] = s
	}
	return m
}()

// -----------------------------------------------------------------------------

func ByCode(code string) (SeriesSpec, bool) {
	s, ok := byCode[code]
	return s, ok
}

// -----------------------------------------------------------------------------

func ByName(name string) (SeriesSpec, bool) {
	s, ok := byName[name]
	return s, ok
}

// -----------------------------------------------------------------------------

// Codes returns every registered code in registry order.
func Codes() []string {
	codes := make([]string, len(Registry))
	for i, s := range Registry {
		codes[i] = s.Code
	}
	return codes
}

// -----------------------------------------------------------------------------

// Anchor returns the registry entry of the anchor series.
func Anchor() SeriesSpec {
	s, _ := ByCode(AnchorCode)
	return s
}
