// Package model defines shared data types used across the futures stream client.
//
// Conventions:
//   - Prices: shopspring decimal, parsed from the exchange's string prices
//   - Sizes and sequence numbers: uint64 as sent by the exchange
//   - Timestamps: uint64 nanoseconds since Unix epoch (exchange clock)
package model
