// Package market turns a configured symbol selector and topic templates into
// concrete subscription requests.
//
// A Selector is either All, resolved against the exchange's active contract
// list each time a connection is welcomed, or an explicit symbol list used
// verbatim. BuildRequests emits one request per (topic, symbol) pair in
// topic-major order.
package market
