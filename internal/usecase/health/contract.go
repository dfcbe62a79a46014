package health

import "context"

// Pinger checks availability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerStater reports the snapshot circuit breaker state ("closed", "half-open", "open").
type BreakerStater interface {
	State() string
}
