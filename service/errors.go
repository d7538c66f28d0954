// Package service holds the Track, Stem and Comment business rules on top of
// a DocumentStore.
package service

import (
	"time"

	"github.com/zeebo/errs"
)

var (
	// ErrNotFound means no document exists with the requested id.
	ErrNotFound = errs.Class("not found")
	// ErrValidation means the input broke a business rule.
	ErrValidation = errs.Class("validation")
)

// Clock returns the current time. Services stamp timestamps with it.
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now().UTC()
}
