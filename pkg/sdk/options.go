package shoprec

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver  string // "postgres" or "sqlite"
	dsn     string
	migrate bool

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration
	cachePrefix   string

	neighborhoodSize int
	maxLimit         int
	timeout          time.Duration

	breakerThreshold   uint32
	breakerOpenTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres reads interactions from a PostgreSQL storefront database.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "postgres"
		c.dsn = dsn
	})
}

// WithSQLite reads interactions from a SQLite database file.
// Use ":memory:" for a throwaway database.
func WithSQLite(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "sqlite"
		c.dsn = dsn
	})
}

// WithMigrate applies the embedded storefront schema on New.
func WithMigrate() Option {
	return optionFunc(func(c *clientConfig) {
		c.migrate = true
	})
}

// WithCache caches results in Redis for ttl.
func WithCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithCacheKeyPrefix namespaces cache keys. Default: "shoprec:".
func WithCacheKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cachePrefix = prefix
	})
}

// WithNeighborhoodSize sets how many similar users feed each list.
// Default: 3.
func WithNeighborhoodSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.neighborhoodSize = n
	})
}

// WithMaxLimit caps the number of products per list. Default: 50.
func WithMaxLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxLimit = n
	})
}

// WithTimeout bounds one personalized computation when the caller's
// context has no deadline. Default: 2s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithBreaker stops personalized reads after threshold consecutive
// database failures and retries after openTimeout.
func WithBreaker(threshold uint32, openTimeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.breakerThreshold = threshold
		c.breakerOpenTimeout = openTimeout
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
