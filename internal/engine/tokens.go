package engine

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// TokenInfo describes one tradable asset. Native marks the chain's base
// asset (ASL), which attaches value instead of using ERC20 transfers.
type TokenInfo struct {
	Symbol   string
	Address  common.Address
	Decimals int
	Native   bool
}

// TokenBook is the closed set of assets the engine will trade. Lookup is
// case-insensitive on symbol.
type TokenBook struct {
	bySymbol map[string]TokenInfo
}

func NewTokenBook(tokens ...TokenInfo) *TokenBook {
	b := &TokenBook{bySymbol: make(map[string]TokenInfo, len(tokens))}
	for _, t := range tokens {
		b.bySymbol[strings.ToUpper(t.Symbol)] = t
	}
	return b
}

func (b *TokenBook) Lookup(symbol string) (TokenInfo, bool) {
	t, ok := b.bySymbol[strings.ToUpper(symbol)]
	return t, ok
}

func (b *TokenBook) Known(symbol string) bool {
	_, ok := b.Lookup(symbol)
	return ok
}
