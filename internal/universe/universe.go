// Package universe holds the tradable symbol universe: NIFTY50
// constituents and sector classification, embedded at build time.
package universe

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
)

//go:embed stocks.csv
var stocksCSV []byte

// Stock is one universe entry.
type Stock struct {
	Symbol  string `csv:"symbol"`
	Name    string `csv:"name"`
	Sector  string `csv:"sector"`
	Nifty50 bool   `csv:"nifty50"`
}

// Universe is the loaded symbol universe with lookup indexes.
type Universe struct {
	stocks   []Stock
	bySymbol map[string]Stock
	bySector map[string][]Stock
}

// Load parses the embedded universe CSV.
func Load() (*Universe, error) {
	var stocks []Stock
	if err := gocsv.UnmarshalBytes(stocksCSV, &stocks); err != nil {
		return nil, fmt.Errorf("parsing universe csv: %w", err)
	}

	u := &Universe{
		stocks:   stocks,
		bySymbol: make(map[string]Stock, len(stocks)),
		bySector: make(map[string][]Stock),
	}
	for _, s := range stocks {
		u.bySymbol[s.Symbol] = s
		u.bySector[s.Sector] = append(u.bySector[s.Sector], s)
	}
	return u, nil
}

// Lookup returns the universe entry for a symbol.
func (u *Universe) Lookup(symbol string) (Stock, bool) {
	s, ok := u.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return s, ok
}

// Nifty50 returns the NIFTY50 constituents in universe order.
func (u *Universe) Nifty50() []Stock {
	out := make([]Stock, 0, 50)
	for _, s := range u.stocks {
		if s.Nifty50 {
			out = append(out, s)
		}
	}
	return out
}

// Sectors returns the sector names, sorted.
func (u *Universe) Sectors() []string {
	out := make([]string, 0, len(u.bySector))
	for name := range u.bySector {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SectorStocks returns the stocks classified under a sector.
func (u *Universe) SectorStocks(sector string) []Stock {
	return u.bySector[strings.ToUpper(strings.TrimSpace(sector))]
}

// Peers returns the other stocks in the symbol's sector.
func (u *Universe) Peers(symbol string) []Stock {
	s, ok := u.Lookup(symbol)
	if !ok {
		return nil
	}
	var peers []Stock
	for _, candidate := range u.bySector[s.Sector] {
		if candidate.Symbol != s.Symbol {
			peers = append(peers, candidate)
		}
	}
	return peers
}

// Len returns the number of universe entries.
func (u *Universe) Len() int {
	return len(u.stocks)
}
