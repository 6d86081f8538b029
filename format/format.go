// Package format renders numbers and timestamps for the wire.
//
// Sinks never consult process-wide locale state. The dispatcher attaches a
// Format to every send context and serializers read it back with
// FromContext, so concurrent sends always agree on decimal separators and
// timestamp layout.
package format

import (
	"context"
	"math"
	"strconv"
	"time"
)

// Format is an explicit, immutable rendering configuration.
type Format struct {
	// Precision is the number of significant digits used for floats.
	// -1, and the zero value, mean the shortest representation that
	// round-trips.
	Precision int

	// TimeLayout is the layout used for timestamps.
	TimeLayout string

	// Location is the zone timestamps are converted to before rendering.
	Location *time.Location
}

// Invariant is the culture-independent format used by default:
// '.' as the decimal separator, no grouping, RFC3339 with milliseconds in UTC.
var Invariant = Format{
	Precision:  -1,
	TimeLayout: "2006-01-02T15:04:05.000Z07:00",
	Location:   time.UTC,
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying f.
func NewContext(ctx context.Context, f Format) context.Context {
	return context.WithValue(ctx, ctxKey{}, f)
}

// FromContext returns the Format carried by ctx, or Invariant.
func FromContext(ctx context.Context) Format {
	if ctx != nil {
		if f, ok := ctx.Value(ctxKey{}).(Format); ok {
			return f
		}
	}
	return Invariant
}

// Float renders v. NaN and infinities have no JSON number form and are
// rendered as 0.
func (f Format) Float(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	prec := f.Precision
	if prec == 0 {
		prec = -1
	}
	return strconv.FormatFloat(v, 'g', prec, 64)
}

// Time renders t in the configured zone and layout.
func (f Format) Time(t time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := f.TimeLayout
	if layout == "" {
		layout = Invariant.TimeLayout
	}
	return t.In(loc).Format(layout)
}

// Millis renders t as milliseconds since the Unix epoch.
func (f Format) Millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
