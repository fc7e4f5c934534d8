package month

import (
	"fmt"
	"iter"
	"time"
)

// Preset names accepted by Preset.
const (
	Preset3Months  = "3months"
	Preset6Months  = "6months"
	Preset12Months = "12months"
)

// Span is an inclusive range of months with Start <= End.
type Span struct {
	Start string `json:"startMonth"`
	End   string `json:"endMonth"`
}

// NewSpan validates both tokens and swaps a reversed range.
func NewSpan(start, end string) (Span, error) {
	if err := Validate(start); err != nil {
		return Span{}, fmt.Errorf("start: %w", err)
	}
	if err := Validate(end); err != nil {
		return Span{}, fmt.Errorf("end: %w", err)
	}
	if start > end {
		start, end = end, start
	}
	return Span{Start: start, End: end}, nil
}

// Single is the span covering only m.
func Single(m string) Span {
	return Span{Start: m, End: m}
}

// Preset returns the span of the last 3, 6 or 12 months ending with the
// current month.
func Preset(name string, now time.Time) (Span, error) {
	cur := Current(now)
	var back int
	switch name {
	case Preset3Months:
		back = 2
	case Preset6Months:
		back = 5
	case Preset12Months:
		back = 11
	default:
		return Span{}, fmt.Errorf("unknown range preset %q", name)
	}
	return Span{Start: Add(cur, -back), End: cur}, nil
}

func (s Span) Months() iter.Seq[string] { return Range(s.Start, s.End) }
func (s Span) List() []string          { return List(s.Start, s.End) }
func (s Span) Count() int              { return Count(s.Start, s.End) }

// Contains reports whether m lies inside the span.
func (s Span) Contains(m string) bool {
	return m >= s.Start && m <= s.End
}

// IsLarge reports whether the span covers more than a year.
func (s Span) IsLarge() bool {
	return s.Count() > 12
}

// HasEnoughDataForTrends reports whether the span has at least two months.
func (s Span) HasEnoughDataForTrends() bool {
	return s.Count() >= 2
}

// Display renders "January 2025 - March 2025".
func (s Span) Display() string {
	return Display(s.Start) + " - " + Display(s.End)
}

func (s Span) String() string {
	return s.Start + "-to-" + s.End
}
