package amm

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Resolver maps token pairs to their fixed swap venue. It is a closed
// router: only explicitly registered pairs resolve, and lookup is
// symmetric in the pair order.
type Resolver struct {
	pools map[string]common.Address
}

func NewResolver() *Resolver {
	return &Resolver{pools: make(map[string]common.Address)}
}

// Register binds the (tokenA, tokenB) pair to a pool address. Registering
// the same pair twice overwrites the previous venue.
func (r *Resolver) Register(tokenA, tokenB, pool common.Address) {
	r.pools[pairKey(tokenA, tokenB)] = pool
}

// Resolve returns the pool for the pair, or false if the pair is not
// registered. Resolve(A, B) always equals Resolve(B, A).
func (r *Resolver) Resolve(tokenA, tokenB common.Address) (common.Address, bool) {
	pool, ok := r.pools[pairKey(tokenA, tokenB)]
	return pool, ok
}

// Pairs returns the number of registered pairs.
func (r *Resolver) Pairs() int {
	return len(r.pools)
}

func pairKey(a, b common.Address) string {
	lo, hi := a.Hex(), b.Hex()
	if strings.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	return lo + "/" + hi
}
