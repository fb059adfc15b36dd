// Package registerno allocates the human-readable, date-scoped register number
// printed on a visitor badge: "V" + yyyyMMdd + four-digit daily sequence.
//
// Allocation is a read-then-increment against the latest issued number and is not
// atomic. Uniqueness is enforced by the store; callers retry on collision.
package registerno

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	dErrors "visitorreg/pkg/domain-errors"
)

const (
	prefix    = "V"
	dayLayout = "20060102"
	seqDigits = 4
	maxPerDay = 9999
)

// Source reports the greatest register number already issued under a day prefix.
// found is false when nothing has been issued yet that day.
type Source interface {
	PeekLatestRegisterNo(ctx context.Context, dayPrefix string) (latest string, found bool, err error)
}

// Allocator computes the next register number for a given moment.
type Allocator struct {
	source   Source
	location *time.Location
}

type Option func(*Allocator)

// WithLocation sets the time zone that decides where a day begins.
func WithLocation(loc *time.Location) Option {
	return func(a *Allocator) {
		if loc != nil {
			a.location = loc
		}
	}
}

func New(source Source, opts ...Option) *Allocator {
	a := &Allocator{source: source, location: time.Local}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate returns the next register number for the day containing now.
func (a *Allocator) Allocate(ctx context.Context, now time.Time) (string, error) {
	day := DayPrefix(now.In(a.location))
	latest, found, err := a.source.PeekLatestRegisterNo(ctx, day)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read latest register number")
	}
	if !found {
		return Format(day, 1), nil
	}
	seq := Next(latest, day)
	if seq > maxPerDay {
		return "", dErrors.New(dErrors.CodeConflict, "daily register number sequence exhausted")
	}
	return Format(day, seq), nil
}

// DayPrefix returns "V" followed by the date of t as yyyyMMdd.
func DayPrefix(t time.Time) string {
	return prefix + t.Format(dayLayout)
}

// Format renders a register number from a day prefix and a sequence.
func Format(dayPrefix string, seq int) string {
	return fmt.Sprintf("%s%0*d", dayPrefix, seqDigits, seq)
}

// Next returns the sequence following latest. A suffix that is not numeric counts
// as no prior sequence, so the result is 1 and the store's uniqueness check decides.
func Next(latest, dayPrefix string) int {
	suffix := strings.TrimPrefix(latest, dayPrefix)
	if len(suffix) > seqDigits {
		suffix = suffix[len(suffix)-seqDigits:]
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 1
	}
	return n + 1
}
