// Package month implements calendar arithmetic over "YYYY-MM" month tokens.
//
// Tokens are zero padded so they order correctly as plain strings. The
// arithmetic helpers assume well-formed input and return malformed tokens
// unchanged; callers at the edges of the system run Validate or NewSpan first.
package month

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidMonth is returned for tokens that are not YYYY-MM with a month in 01..12.
var ErrInvalidMonth = errors.New("invalid month")

var tokenPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Parse splits a token into its year and month number.
func Parse(m string) (year, mon int, err error) {
	if !tokenPattern.MatchString(m) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonth, m)
	}
	year, _ = strconv.Atoi(m[:4])
	mon, _ = strconv.Atoi(m[5:])
	return year, mon, nil
}

// Validate returns ErrInvalidMonth unless m is a well-formed token.
func Validate(m string) error {
	_, _, err := Parse(m)
	return err
}

// Format builds a token from a year and month number.
func Format(year, mon int) string {
	return fmt.Sprintf("%04d-%02d", year, mon)
}

// Of returns the month token of t in UTC.
func Of(t time.Time) string {
	t = t.UTC()
	return Format(t.Year(), int(t.Month()))
}

// Current is the month of now, in UTC.
func Current(now time.Time) string {
	return Of(now)
}

// Previous returns the month before m, rolling the year back at January.
func Previous(m string) string {
	y, mo, err := Parse(m)
	if err != nil {
		return m
	}
	mo--
	if mo < 1 {
		mo = 12
		y--
	}
	return Format(y, mo)
}

// Next returns the month after m, rolling the year forward at December.
func Next(m string) string {
	y, mo, err := Parse(m)
	if err != nil {
		return m
	}
	mo++
	if mo > 12 {
		mo = 1
		y++
	}
	return Format(y, mo)
}

// Add moves m by n months, backwards for negative n.
func Add(m string, n int) string {
	y, mo, err := Parse(m)
	if err != nil {
		return m
	}
	idx := y*12 + (mo - 1) + n
	return Format(idx/12, idx%12+1)
}

// Range yields every month from start to end inclusive, in ascending order.
// It yields nothing when start > end or either token is malformed.
func Range(start, end string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if Validate(start) != nil || Validate(end) != nil {
			return
		}
		for cur := start; cur <= end; cur = Next(cur) {
			if !yield(cur) {
				return
			}
		}
	}
}

// List materializes Range.
func List(start, end string) []string {
	var out []string
	for m := range Range(start, end) {
		out = append(out, m)
	}
	return out
}

// Count is the number of months in [start, end], 0 when reversed.
func Count(start, end string) int {
	sy, sm, err := Parse(start)
	if err != nil {
		return 0
	}
	ey, em, err := Parse(end)
	if err != nil {
		return 0
	}
	n := (ey*12 + em) - (sy*12 + sm) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Time returns midnight UTC on the first day of m.
func Time(m string) (time.Time, error) {
	y, mo, err := Parse(m)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, time.Month(mo), 1, 0, 0, 0, 0, time.UTC), nil
}

// Display renders a human label such as "January 2025".
func Display(m string) string {
	t, err := Time(m)
	if err != nil {
		return m
	}
	return t.Format("January 2006")
}

// IsCurrent reports whether m is the month of now.
func IsCurrent(m string, now time.Time) bool {
	return m == Current(now)
}

// IsFuture reports whether m comes after the month of now.
func IsFuture(m string, now time.Time) bool {
	return m > Current(now)
}
