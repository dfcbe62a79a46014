package shoprec

import "github.com/kailas-cloud/shoprec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDataUnavailable = domain.ErrDataUnavailable
	ErrInvalidUserID   = domain.ErrInvalidUserID
	ErrInvalidLimit    = domain.ErrInvalidLimit
	ErrCacheDisabled   = errCacheDisabled
)
