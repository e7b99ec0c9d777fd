package batch

import "VRSentinel/internal/model"

// NormalizeSymbols trims and upper-cases symbols, drops blanks and removes
// duplicates. The first occurrence and its target price win.
func NormalizeSymbols(in []model.SymbolRequest) []model.SymbolRequest {
	seen := make(map[string]bool, len(in))
	out := make([]model.SymbolRequest, 0, len(in))
	for _, r := range in {
		s := model.NormalizeSymbol(r.Symbol)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, model.SymbolRequest{Symbol: s, TargetPrice: r.TargetPrice})
	}
	return out
}

// Symbols builds requests without target prices.
func Symbols(symbols ...string) []model.SymbolRequest {
	out := make([]model.SymbolRequest, len(symbols))
	for i, s := range symbols {
		out[i] = model.SymbolRequest{Symbol: s}
	}
	return out
}
