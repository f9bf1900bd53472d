package shop

import (
	"fmt"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
)

var (
	ErrLoginRequired = fmt.Errorf("%w: login required", apperr.ErrAuthDenied)
	// ErrOutOfStock: the catalog already showed no stock, nothing was written.
	ErrOutOfStock = fmt.Errorf("%w: out of stock", apperr.ErrStateConflict)
	// ErrSoldOut: stock ran out between the catalog read and the purchase.
	ErrSoldOut = fmt.Errorf("%w: sold out", apperr.ErrStateConflict)
	// ErrWriteFailed: the purchase could not be recorded; safe to retry.
	ErrWriteFailed = fmt.Errorf("%w: purchase could not be recorded", apperr.ErrConnection)

	ErrBadCredentials = fmt.Errorf("%w: invalid username or password", apperr.ErrAuthDenied)
)
