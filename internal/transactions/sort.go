package transactions

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	SortByDate             SortField = "date"
	SortByAmount           SortField = "amount"
	SortByCategoryOrSource SortField = "categoryOrSource"
	SortByMemberName       SortField = "userName"
)

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var ErrUnknownSortField = errors.New("unknown sort field")

type (
	SortField string
	Direction string

	Sort struct {
		Field     SortField `json:"field"`
		Direction Direction `json:"direction"`
	}
)

// DefaultSort lists the newest transactions first.
var DefaultSort = Sort{Field: SortByDate, Direction: Desc}

type comparator func(c *collate.Collator, a, b Transaction) int

var comparators = map[SortField]comparator{
	SortByDate: func(_ *collate.Collator, a, b Transaction) int {
		return a.Date.Compare(b.Date)
	},
	SortByAmount: func(_ *collate.Collator, a, b Transaction) int {
		return cmp.Compare(a.Amount.Cents, b.Amount.Cents)
	},
	SortByCategoryOrSource: func(c *collate.Collator, a, b Transaction) int {
		return c.CompareString(a.CategoryOrSource, b.CategoryOrSource)
	},
	SortByMemberName: func(c *collate.Collator, a, b Transaction) int {
		return c.CompareString(a.MemberName, b.MemberName)
	},
}

// ParseSortField maps a query value to a SortField. Empty means date.
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortByDate, nil
	}
	f := SortField(s)
	if _, ok := comparators[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortField, s)
	}
	return f, nil
}

// ParseDirection maps a query value to a Direction. Empty means descending.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case "":
		return Desc, nil
	case Asc, Desc:
		return d, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", s)
	}
}

// Sorted returns a stably sorted copy of list. Ties keep their input order
// in both directions. String fields use English collation.
func Sorted(list []Transaction, s Sort) ([]Transaction, error) {
	compare, ok := comparators[s.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortField, s.Field)
	}
	// Collators keep scratch buffers, so each call gets its own.
	coll := collate.New(language.English)

	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Transaction) int {
		c := compare(coll, a, b)
		if s.Direction == Desc {
			return -c
		}
		return c
	})
	return out, nil
}
