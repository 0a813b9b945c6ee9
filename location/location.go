// SPDX-License-Identifier: Unlicense OR MIT

// Package location defines device coordinates and the providers that
// report the last known fix.
package location

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNoLocation is returned by a Provider that has no cached fix.
var ErrNoLocation = errors.New("location: no last known location")

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Fix is a coordinate reported by a provider.
type Fix struct {
	Coordinate
	// Accuracy is the estimated horizontal accuracy in meters, or 0
	// if unknown.
	Accuracy float64
	// Time is when the fix was taken. The zero value means unknown.
	Time time.Time
}

// Provider reports the most recently cached device location. The fix
// may be stale; providers make no freshness guarantee.
type Provider interface {
	// LastKnown returns the cached fix, or ErrNoLocation if the
	// device has none.
	LastKnown(ctx context.Context) (Fix, error)
}

// String formats c as "Latitude: {lat}, Longitude: {long}", each value
// printed the way the JVM's Double.toString prints it.
func (c Coordinate) String() string {
	b := make([]byte, 0, 48)
	b = append(b, "Latitude: "...)
	b = appendDegrees(b, c.Latitude)
	b = append(b, ", Longitude: "...)
	b = appendDegrees(b, c.Longitude)
	return string(b)
}

// appendDegrees appends the shortest decimal form of v with at least one
// fractional digit. Magnitudes outside [1e-3, 1e7) use scientific
// notation, as in 1.0E-7.
func appendDegrees(b []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(b, "NaN"...)
	case math.IsInf(v, 1):
		return append(b, "Infinity"...)
	case math.IsInf(v, -1):
		return append(b, "-Infinity"...)
	}
	if a := math.Abs(v); a == 0 || (a >= 1e-3 && a < 1e7) {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		b = append(b, s...)
		if !strings.Contains(s, ".") {
			b = append(b, ".0"...)
		}
		return b
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	b = append(b, mant...)
	if !strings.Contains(mant, ".") {
		b = append(b, ".0"...)
	}
	e, _ := strconv.Atoi(exp)
	b = append(b, 'E')
	return strconv.AppendInt(b, int64(e), 10)
}

// Valid reports whether c lies within the WGS84 coordinate ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}
