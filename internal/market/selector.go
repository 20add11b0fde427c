package market

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// SelectorAll is the configuration value that selects every active contract.
const SelectorAll = "all"

// SymbolSource lists the symbols of all active contracts.
// *api.Client satisfies it.
type SymbolSource interface {
	FetchActiveSymbols(ctx context.Context) ([]string, error)
}

// Selector chooses which symbols a session subscribes to. Immutable.
type Selector struct {
	all     bool
	symbols []string
}

// All selects every active contract, resolved at subscribe time.
func All() Selector {
	return Selector{all: true}
}

// Explicit selects exactly the given symbols, in order.
func Explicit(symbols ...string) Selector {
	return Selector{symbols: slices.Clone(symbols)}
}

// ParseSelector maps a configured symbol list to a Selector. An empty list
// or the single value "all" (any case) selects all contracts.
func ParseSelector(values []string) Selector {
	if len(values) == 0 {
		return All()
	}
	if len(values) == 1 && strings.EqualFold(values[0], SelectorAll) {
		return All()
	}
	return Explicit(values...)
}

// IsAll reports whether the selector resolves against the exchange.
func (s Selector) IsAll() bool {
	return s.all
}

// Symbols returns a copy of the explicit symbols. Nil for All.
func (s Selector) Symbols() []string {
	if s.all {
		return nil
	}
	return slices.Clone(s.symbols)
}

func (s Selector) String() string {
	if s.all {
		return SelectorAll
	}
	return fmt.Sprintf("explicit%v", s.symbols)
}

// Resolve returns the concrete symbol list for sel. All triggers one call
// to src; explicit symbols are returned verbatim.
func Resolve(ctx context.Context, sel Selector, src SymbolSource) ([]string, error) {
	if !sel.all {
		return sel.Symbols(), nil
	}
	if src == nil {
		return nil, fmt.Errorf("resolve all symbols: no symbol source")
	}

	symbols, err := src.FetchActiveSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve all symbols: %w", err)
	}
	return symbols, nil
}
