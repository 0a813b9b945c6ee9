// SPDX-License-Identifier: Unlicense OR MIT

package location

import (
	"context"
	"time"
)

// Static is a Provider that reports a fixed coordinate.
type Static struct {
	fix Fix
	set bool
}

// NewStatic returns a Provider that always reports c.
func NewStatic(c Coordinate) *Static {
	return &Static{
		fix: Fix{Coordinate: c, Time: time.Now()},
		set: true,
	}
}

// LastKnown returns the configured fix. A zero Static has no fix and
// returns ErrNoLocation.
func (s *Static) LastKnown(ctx context.Context) (Fix, error) {
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}
	if !s.set {
		return Fix{}, ErrNoLocation
	}
	return s.fix, nil
}
