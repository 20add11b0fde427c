package api

import (
	"context"
	"fmt"
)

// GetActiveContracts fetches all contracts currently open for trading.
func (c *Client) GetActiveContracts(ctx context.Context) ([]Contract, error) {
	var resp ContractsResponse
	if err := c.get(ctx, "/contracts/active", nil, &resp); err != nil {
		return nil, fmt.Errorf("get active contracts: %w", err)
	}
	return resp.Data, nil
}

// FetchActiveSymbols returns the symbol of every active contract in response
// order. Duplicates are passed through.
func (c *Client) FetchActiveSymbols(ctx context.Context) ([]string, error) {
	contracts, err := c.GetActiveContracts(ctx)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(contracts))
	for _, ct := range contracts {
		symbols = append(symbols, ct.Symbol)
	}
	return symbols, nil
}
