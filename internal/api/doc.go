// Package api provides the KuCoin Futures REST client used to bootstrap streaming.
//
// REST endpoints:
//   - Production: https://api-futures.kucoin.com/api/v1
//
// Calls used by the stream client:
//   - POST /bullet-public   streaming token + instance servers
//   - GET  /contracts/active active contract list (symbol discovery)
//
// The client never retries. Retry and credential re-fetch are owned by the
// streaming session so that a fresh token is obtained for every connect.
package api
