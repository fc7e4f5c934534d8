package analytics

import (
	"cmp"
	"slices"

	"housebudget/internal/core"
	"housebudget/internal/month"
)

// DefaultTopLimit is used by TopCategories when no positive limit is given.
const DefaultTopLimit = 5

type MemberSpend struct {
	MemberID   string     `json:"userId"`
	MemberName string     `json:"userName"`
	TotalSpent core.Money `json:"totalSpent"`
	Percentage float64    `json:"percentage"`
}

type NeedsWants struct {
	Needs           core.Money `json:"needs"`
	Wants           core.Money `json:"wants"`
	NeedsPercentage float64    `json:"needsPercentage"`
	WantsPercentage float64    `json:"wantsPercentage"`
}

type TopCategory struct {
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	TotalSpent   core.Money `json:"totalSpent"`
	Percentage   float64    `json:"percentage"`
}

type CategoryAverage struct {
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	AvgSpent     core.Money `json:"avgSpent"`
	TotalSpent   core.Money `json:"totalSpent"`
	MonthCount   int        `json:"monthCount"`
}

// SpendingByMember returns one entry per member, in member order, with the
// member's share of all spending in span.
func SpendingByMember(expenses []core.Expense, members []core.Member, span month.Span) []MemberSpend {
	ranged := inSpan(expenses, span, expenseDate)
	total := core.Sum(ranged, func(e core.Expense) core.Money { return e.Amount })

	out := make([]MemberSpend, 0, len(members))
	for _, m := range members {
		var spent core.Money
		for _, e := range ranged {
			if e.MemberID == m.ID {
				spent = spent.Add(e.Amount)
			}
		}
		out = append(out, MemberSpend{
			MemberID:   m.ID,
			MemberName: m.Name,
			TotalSpent: spent,
			Percentage: spent.PercentOf(total),
		})
	}
	return out
}

// NeedsVsWants splits spending in span into the two buckets. Percentages are
// of needs plus wants.
func NeedsVsWants(expenses []core.Expense, span month.Span) NeedsWants {
	var nw NeedsWants
	for _, e := range inSpan(expenses, span, expenseDate) {
		switch e.NeedsOrWants {
		case core.Needs:
			nw.Needs = nw.Needs.Add(e.Amount)
		case core.Wants:
			nw.Wants = nw.Wants.Add(e.Amount)
		}
	}
	total := nw.Needs.Add(nw.Wants)
	nw.NeedsPercentage = nw.Needs.PercentOf(total)
	nw.WantsPercentage = nw.Wants.PercentOf(total)
	return nw
}

type categoryTotal struct {
	id     string
	name   string
	spent  core.Money
	months map[string]struct{}
}

// groupByCategory totals expenses per category id in first-seen order.
func groupByCategory(expenses []core.Expense) []*categoryTotal {
	var out []*categoryTotal
	index := make(map[string]*categoryTotal)
	for _, e := range expenses {
		ct, ok := index[e.CategoryID]
		if !ok {
			ct = &categoryTotal{id: e.CategoryID, name: e.CategoryName, months: make(map[string]struct{})}
			index[e.CategoryID] = ct
			out = append(out, ct)
		}
		ct.spent = ct.spent.Add(e.Amount)
		ct.months[e.Date.MonthToken()] = struct{}{}
	}
	return out
}

func sortBySpentDesc(totals []*categoryTotal) {
	slices.SortStableFunc(totals, func(a, b *categoryTotal) int {
		return cmp.Compare(b.spent.Cents, a.spent.Cents)
	})
}

// TopCategories ranks categories by spending in span, highest first. Ties
// keep the order in which categories first appear.
func TopCategories(expenses []core.Expense, limit int, span month.Span) []TopCategory {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	ranged := inSpan(expenses, span, expenseDate)
	total := core.Sum(ranged, func(e core.Expense) core.Money { return e.Amount })

	totals := groupByCategory(ranged)
	sortBySpentDesc(totals)
	if len(totals) > limit {
		totals = totals[:limit]
	}

	out := make([]TopCategory, 0, len(totals))
	for _, ct := range totals {
		out = append(out, TopCategory{
			CategoryID:   ct.id,
			CategoryName: ct.name,
			TotalSpent:   ct.spent,
			Percentage:   ct.spent.PercentOf(total),
		})
	}
	return out
}

// CategoryAverages averages each category over the months in which it had
// spending, not over the length of the range.
func CategoryAverages(expenses []core.Expense, months []string) []CategoryAverage {
	wanted := make(map[string]struct{}, len(months))
	for _, m := range months {
		wanted[m] = struct{}{}
	}
	ranged := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if _, ok := wanted[e.Date.MonthToken()]; ok && !e.Date.IsZero() {
			ranged = append(ranged, e)
		}
	}

	totals := groupByCategory(ranged)
	sortBySpentDesc(totals)

	out := make([]CategoryAverage, 0, len(totals))
	for _, ct := range totals {
		n := len(ct.months)
		out = append(out, CategoryAverage{
			CategoryID:   ct.id,
			CategoryName: ct.name,
			TotalSpent:   ct.spent,
			MonthCount:   n,
			AvgSpent:     ct.spent.Div(n),
		})
	}
	return out
}
