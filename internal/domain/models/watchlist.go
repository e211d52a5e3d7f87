package models

import "strings"

// Watchlist is an ordered set of uppercase ticker symbols.
type Watchlist []string

// NormalizeSymbol trims and uppercases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Contains reports whether symbol is present.
func (w Watchlist) Contains(symbol string) bool {
	symbol = NormalizeSymbol(symbol)
	for _, s := range w {
		if s == symbol {
			return true
		}
	}
	return false
}

// Add appends symbol unless already present. Empty symbols are ignored.
func (w Watchlist) Add(symbol string) Watchlist {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" || w.Contains(symbol) {
		return w
	}
	out := make(Watchlist, 0, len(w)+1)
	out = append(out, w...)
	return append(out, symbol)
}

// Remove deletes symbol by value.
func (w Watchlist) Remove(symbol string) Watchlist {
	symbol = NormalizeSymbol(symbol)
	out := make(Watchlist, 0, len(w))
	for _, s := range w {
		if s != symbol {
			out = append(out, s)
		}
	}
	return out
}

// Sanitize enforces the set invariants on data read back from storage.
func (w Watchlist) Sanitize() Watchlist {
	out := make(Watchlist, 0, len(w))
	for _, s := range w {
		out = out.Add(s)
	}
	return out
}
