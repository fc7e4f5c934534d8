package transactions

import (
	"slices"
	"strings"

	"housebudget/internal/core"
)

// Filter holds optional criteria. Zero-valued fields match everything and
// set fields are combined with AND.
type Filter struct {
	Type                Type
	From                core.Date // inclusive
	To                  core.Date // inclusive
	CategoryOrSourceIDs []string
	MemberIDs           []string
	MinAmount           *core.Money
	MaxAmount           *core.Money
	// NeedsOrWants only narrows expenses; incomes always pass.
	NeedsOrWants core.NeedsOrWants
	Search       string
}

// Predicate is one compiled filter criterion.
type Predicate interface {
	Match(Transaction) bool
}

type (
	TypeIs        struct{ Type Type }
	DateBetween   struct{ From, To core.Date }
	SourceIn      struct{ IDs []string }
	MemberIn      struct{ IDs []string }
	AmountBetween struct{ Min, Max *core.Money }
	NeedsWantsIs  struct{ Value core.NeedsOrWants }
	TextContains  struct{ Needle string }
)

func (p TypeIs) Match(t Transaction) bool { return t.Type == p.Type }

func (p DateBetween) Match(t Transaction) bool {
	if !p.From.IsZero() && t.Date.Compare(p.From) < 0 {
		return false
	}
	if !p.To.IsZero() && t.Date.Compare(p.To) > 0 {
		return false
	}
	return true
}

func (p SourceIn) Match(t Transaction) bool { return slices.Contains(p.IDs, t.CategoryOrSourceID) }
func (p MemberIn) Match(t Transaction) bool { return slices.Contains(p.IDs, t.MemberID) }

func (p AmountBetween) Match(t Transaction) bool {
	if p.Min != nil && t.Amount.Cents < p.Min.Cents {
		return false
	}
	if p.Max != nil && t.Amount.Cents > p.Max.Cents {
		return false
	}
	return true
}

func (p NeedsWantsIs) Match(t Transaction) bool {
	return t.Type != TypeExpense || t.NeedsOrWants == p.Value
}

// Match looks for the needle in the category or source, member name and
// notes. The needle is expected lower-cased and trimmed.
func (p TextContains) Match(t Transaction) bool {
	haystack := strings.ToLower(t.CategoryOrSource + " " + t.MemberName + " " + t.Notes)
	return strings.Contains(haystack, p.Needle)
}

// Predicates compiles the set criteria, in a fixed order.
func (f Filter) Predicates() []Predicate {
	var ps []Predicate
	if f.Type != "" && f.Type != TypeAll {
		ps = append(ps, TypeIs{Type: f.Type})
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		ps = append(ps, DateBetween{From: f.From, To: f.To})
	}
	if len(f.CategoryOrSourceIDs) > 0 {
		ps = append(ps, SourceIn{IDs: f.CategoryOrSourceIDs})
	}
	if len(f.MemberIDs) > 0 {
		ps = append(ps, MemberIn{IDs: f.MemberIDs})
	}
	if f.MinAmount != nil || f.MaxAmount != nil {
		ps = append(ps, AmountBetween{Min: f.MinAmount, Max: f.MaxAmount})
	}
	if f.NeedsOrWants != "" && f.NeedsOrWants != "all" {
		ps = append(ps, NeedsWantsIs{Value: f.NeedsOrWants})
	}
	if needle := strings.ToLower(strings.TrimSpace(f.Search)); needle != "" {
		ps = append(ps, TextContains{Needle: needle})
	}
	return ps
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return len(f.Predicates()) == 0
}

// Apply returns the transactions matching every criterion of f, keeping
// their order. The input is not modified.
func Apply(list []Transaction, f Filter) []Transaction {
	ps := f.Predicates()
	out := make([]Transaction, 0, len(list))
next:
	for _, t := range list {
		for _, p := range ps {
			if !p.Match(t) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}
