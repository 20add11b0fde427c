// Package connection implements the streaming session.
//
// A Session:
//   - Fetches fresh streaming credentials on every (re)connect
//   - Resolves them into an ordered list of endpoint URLs
//   - Dials the endpoints with bounded multi-pass failover
//   - Subscribes to every (topic, symbol) pair once the server says welcome
//   - Classifies frames in order onto an outbound event queue
//   - Reconnects with exponential backoff after any read failure
package connection
