package watchlist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSymbols is the built-in NSE watchlist
var DefaultSymbols = []string{
	"ASIANPAINT", "BAJAJ-AUTO", "BANKBARODA", "BPCL", "CIPLA", "COALINDIA", "ICICIBANK",
	"ITC", "JSWSTEEL", "LT", "MARUTI", "ONGC", "RELIANCE", "SBIN", "TCS", "INFY", "CDSL",
	"DRREDDY", "JUBLFOOD", "POWERGRID", "SUNPHARMA", "DIVISLAB", "TECHM", "HEROMOTOCO",
	"HINDUNILVR", "TATAPOWER", "TITAN", "BOSCHLTD", "BHARATFORGE", "GRASIM", "APLAPOLLO",
	"RECLTD", "PFC", "GLENMARK", "TVSMOTOR",
}

// File is the on-disk watchlist definition
//
//	symbols: [INFY, TCS]
//	sectors:
//	  NEWCO: NIFTY IT
type File struct {
	Symbols []string          `yaml:"symbols"`
	Sectors map[string]string `yaml:"sectors"`
}

// LoadFile reads a watchlist YAML file.
// A missing file or an empty symbol list yields DefaultSymbols.
func LoadFile(path string) (*File, error) {
	f := &File{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("parse watchlist %s: %w", path, err)
		}
	}

	f.Symbols = Normalize(f.Symbols)
	if len(f.Symbols) == 0 {
		f.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if f.Sectors == nil {
		f.Sectors = map[string]string{}
	}
	return f, nil
}
