// Package stub is a stand-in for the chat backend. It serves the same HTTP
// contract under /api and answers with a deterministic echo, so the client
// can be exercised end to end without a retrieval pipeline.
package stub

import "time"

// Config is the stub server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// TokenDelay is slept between streamed tokens. Zero streams as fast as
	// the client reads.
	TokenDelay time.Duration
}
