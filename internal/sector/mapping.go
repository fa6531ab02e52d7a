// Package sector compares a stock's intraday move against its sector index.
package sector

import "github.com/wonny/watchlist/internal/contracts"

// DefaultIndex is used for symbols with no explicit sector
const DefaultIndex = "NIFTY 50"

// defaultTable maps stock symbols to NSE sector index symbols
var defaultTable = map[string]string{
	"BAJAJ-AUTO": "NIFTY AUTO",
	"HEROMOTOCO": "NIFTY AUTO",
	"MARUTI":     "NIFTY AUTO",
	"TVSMOTOR":   "NIFTY AUTO",
	"BOSCHLTD":   "NIFTY AUTO",
	"APLLTD":     "NIFTY AUTO",

	"ICICIBANK":  "NIFTY BANK",
	"SBIN":       "NIFTY BANK",
	"BANKBARODA": "NIFTY BANK",

	"BPCL": "NIFTY OIL & GAS",
	"ONGC": "NIFTY OIL & GAS",

	"CIPLA":     "NIFTY PHARMA",
	"SUNPHARMA": "NIFTY PHARMA",
	"DIVISLAB":  "NIFTY PHARMA",
	"DRREDDY":   "NIFTY PHARMA",
	"GLENMARK":  "NIFTY PHARMA",

	"TCS":   "NIFTY IT",
	"INFY":  "NIFTY IT",
	"TECHM": "NIFTY IT",

	"ITC":        "NIFTY FMCG",
	"HINDUNILVR": "NIFTY FMCG",
	"ASIANPAINT": "NIFTY FMCG",

	"LT":        "NIFTY INFRASTRUCTURE",
	"GRASIM":    "NIFTY INFRASTRUCTURE",
	"POWERGRID": "NIFTY INFRASTRUCTURE",

	"JSWSTEEL":  "NIFTY METAL",
	"COALINDIA": "NIFTY METAL",

	"PFC":    "NIFTY FINANCIAL SERVICES",
	"RECLTD": "NIFTY FINANCIAL SERVICES",
	"CDSL":   "NIFTY FINANCIAL SERVICES",

	// broad index
	"RELIANCE": "NIFTY 50",
	"TITAN":    "NIFTY 50",
	"JUBLFOOD": "NIFTY 50",
}

// Mapping is an immutable symbol → sector index table.
// Overrides always produce a new Mapping.
type Mapping struct {
	table        map[string]string
	defaultIndex string
}

// DefaultMapping returns the built-in NSE table
func DefaultMapping() *Mapping {
	return NewMapping(defaultTable, DefaultIndex)
}

// NewMapping copies table; keys are normalized to upper case
func NewMapping(table map[string]string, defaultIndex string) *Mapping {
	if defaultIndex == "" {
		defaultIndex = DefaultIndex
	}
	m := &Mapping{
		table:        make(map[string]string, len(table)),
		defaultIndex: defaultIndex,
	}
	for k, v := range table {
		m.table[contracts.NormalizeSymbol(k)] = v
	}
	return m
}

// WithOverrides returns a new Mapping with extra or replaced entries
func (m *Mapping) WithOverrides(overrides map[string]string) *Mapping {
	merged := m.Table()
	for k, v := range overrides {
		merged[contracts.NormalizeSymbol(k)] = v
	}
	return NewMapping(merged, m.defaultIndex)
}

// WithDefault returns a new Mapping with a different default index
func (m *Mapping) WithDefault(index string) *Mapping {
	return NewMapping(m.table, index)
}

// IndexFor returns the sector index for symbol, or the default index
func (m *Mapping) IndexFor(symbol string) string {
	if idx, ok := m.table[contracts.NormalizeSymbol(symbol)]; ok {
		return idx
	}
	return m.defaultIndex
}

// Default returns the fallback index
func (m *Mapping) Default() string {
	return m.defaultIndex
}

// Table returns a copy of the explicit entries
func (m *Mapping) Table() map[string]string {
	out := make(map[string]string, len(m.table))
	for k, v := range m.table {
		out[k] = v
	}
	return out
}
