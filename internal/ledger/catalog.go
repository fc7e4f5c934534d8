package ledger

import (
	"fmt"
	"strings"

	"housebudget/internal/budget"
	"housebudget/internal/core"
	"housebudget/internal/month"
)

type CategoryInput struct {
	ID               string     `json:"-"`
	Name             string     `json:"name"`
	MonthlyBudget    core.Money `json:"monthlyBudget"`
	CarryOverEnabled bool       `json:"carryOverEnabled"`
	Icon             string     `json:"icon"`
	Color            string     `json:"color"`
}

type CategoryPatch struct {
	Name             *string     `json:"name"`
	MonthlyBudget    *core.Money `json:"monthlyBudget"`
	CarryOverEnabled *bool       `json:"carryOverEnabled"`
	Icon             *string     `json:"icon"`
	Color            *string     `json:"color"`
}

type MonthlyCategoryInput struct {
	ID              string     `json:"-"`
	CategoryID      string     `json:"categoryId"`
	Month           string     `json:"month"`
	MonthlyBudget   core.Money `json:"monthlyBudget"`
	CarryOverAmount core.Money `json:"carryOverAmount"`
}

// MonthlyCategoryPatch changes the budget of one month only; the template
// is left as it is.
type MonthlyCategoryPatch struct {
	MonthlyBudget   *core.Money `json:"monthlyBudget"`
	CarryOverAmount *core.Money `json:"carryOverAmount"`
}

type IncomeSourceInput struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type IncomeSourcePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func categoryID(c core.Category) string               { return c.ID }
func monthlyCategoryID(mc core.MonthlyCategory) string { return mc.ID }
func sourceID(s core.IncomeSource) string             { return s.ID }

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func AddCategory(l Ledger, env Env, in CategoryInput) (Ledger, error) {
	cat := core.Category{
		Name:             strings.TrimSpace(in.Name),
		MonthlyBudget:    in.MonthlyBudget,
		CarryOverEnabled: in.CarryOverEnabled,
		Icon:             in.Icon,
		Color:            in.Color,
	}
	if err := cat.Validate(); err != nil {
		return l, invalid(err)
	}
	if l.categoryNamed(cat.Name, "") {
		return l, fmt.Errorf("category %q: %w", cat.Name, ErrDuplicateName)
	}
	cat.ID = env.id(in.ID)
	cat.CreatedAt = env.now()

	out := l
	out.Categories = appended(l.Categories, cat)
	return out, nil
}

// UpdateCategory edits a template. Months already materialized keep their
// budgets and expenses keep the category name they were recorded with.
func UpdateCategory(l Ledger, id string, p CategoryPatch) (Ledger, error) {
	i := indexByID(l.Categories, id, categoryID)
	if i < 0 {
		return l, notFound("category", id)
	}
	cat := l.Categories[i]
	if p.Name != nil {
		cat.Name = strings.TrimSpace(*p.Name)
	}
	if p.MonthlyBudget != nil {
		cat.MonthlyBudget = *p.MonthlyBudget
	}
	if p.CarryOverEnabled != nil {
		cat.CarryOverEnabled = *p.CarryOverEnabled
	}
	if p.Icon != nil {
		cat.Icon = *p.Icon
	}
	if p.Color != nil {
		cat.Color = *p.Color
	}
	if err := cat.Validate(); err != nil {
		return l, invalid(err)
	}
	if l.categoryNamed(cat.Name, cat.ID) {
		return l, fmt.Errorf("category %q: %w", cat.Name, ErrDuplicateName)
	}

	out := l
	out.Categories = replaced(l.Categories, i, cat)
	return out, nil
}

// DeleteCategory removes a template. Monthly rows and expenses that point at
// it are kept.
func DeleteCategory(l Ledger, id string) (Ledger, error) {
	i := indexByID(l.Categories, id, categoryID)
	if i < 0 {
		return l, notFound("category", id)
	}
	out := l
	out.Categories = removed(l.Categories, i)
	return out, nil
}

func AddMonthlyCategory(l Ledger, env Env, in MonthlyCategoryInput) (Ledger, error) {
	if err := month.Validate(in.Month); err != nil {
		return l, invalid(err)
	}
	mc := core.MonthlyCategory{
		CategoryID:      in.CategoryID,
		MonthlyBudget:   in.MonthlyBudget,
		CarryOverAmount: in.CarryOverAmount,
		Month:           in.Month,
	}
	if err := mc.Validate(); err != nil {
		return l, invalid(err)
	}
	cat, err := l.category(in.CategoryID)
	if err != nil {
		return l, err
	}
	if _, ok := l.monthlyFor(cat.ID, in.Month); ok {
		return l, fmt.Errorf("%s in %s: %w", cat.Name, in.Month, ErrMonthlyBudgetExists)
	}
	mc.ID = env.id(in.ID)
	mc.CategoryName = cat.Name
	mc.CreatedAt = env.now()

	out := l
	out.MonthlyCategories = appended(l.MonthlyCategories, mc)
	return out, nil
}

func UpdateMonthlyCategory(l Ledger, id string, p MonthlyCategoryPatch) (Ledger, error) {
	i := indexByID(l.MonthlyCategories, id, monthlyCategoryID)
	if i < 0 {
		return l, notFound("monthly category", id)
	}
	mc := l.MonthlyCategories[i]
	if p.MonthlyBudget != nil {
		mc.MonthlyBudget = *p.MonthlyBudget
	}
	if p.CarryOverAmount != nil {
		mc.CarryOverAmount = *p.CarryOverAmount
	}
	if err := mc.Validate(); err != nil {
		return l, invalid(err)
	}

	out := l
	out.MonthlyCategories = replaced(l.MonthlyCategories, i, mc)
	return out, nil
}

// MaterializeMonth creates the budget rows of m from the category templates,
// carrying unused budget over from the month before.
func MaterializeMonth(l Ledger, env Env, m string) (Ledger, error) {
	if err := month.Validate(m); err != nil {
		return l, invalid(err)
	}
	if l.HasMonth(m) {
		return l, fmt.Errorf("%s: %w", m, ErrMonthExists)
	}
	carry := budget.CarryOvers(m, l.MonthlyCategories, l.Expenses, l.Categories)
	return materialize(l, env, m, carry), nil
}

func materialize(l Ledger, env Env, m string, carry map[string]core.Money) Ledger {
	rows := make([]core.MonthlyCategory, 0, len(l.Categories))
	for _, cat := range l.Categories {
		rows = append(rows, core.MonthlyCategory{
			ID:              env.NewID(),
			CategoryID:      cat.ID,
			CategoryName:    cat.Name,
			MonthlyBudget:   cat.MonthlyBudget,
			CarryOverAmount: carry[cat.ID],
			Month:           m,
			CreatedAt:       env.now(),
		})
	}
	out := l
	out.MonthlyCategories = appended(l.MonthlyCategories, rows...)
	return out
}

func AddIncomeSource(l Ledger, env Env, in IncomeSourceInput) (Ledger, error) {
	src := core.IncomeSource{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if err := src.Validate(); err != nil {
		return l, invalid(err)
	}
	if l.sourceNamed(src.Name, "") {
		return l, fmt.Errorf("income source %q: %w", src.Name, ErrDuplicateName)
	}
	src.ID = env.id(in.ID)
	src.CreatedAt = env.now()

	out := l
	out.IncomeSources = appended(l.IncomeSources, src)
	return out, nil
}

func UpdateIncomeSource(l Ledger, id string, p IncomeSourcePatch) (Ledger, error) {
	i := indexByID(l.IncomeSources, id, sourceID)
	if i < 0 {
		return l, notFound("income source", id)
	}
	src := l.IncomeSources[i]
	if p.Name != nil {
		src.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		src.Description = strings.TrimSpace(*p.Description)
	}
	if err := src.Validate(); err != nil {
		return l, invalid(err)
	}
	if l.sourceNamed(src.Name, src.ID) {
		return l, fmt.Errorf("income source %q: %w", src.Name, ErrDuplicateName)
	}

	out := l
	out.IncomeSources = replaced(l.IncomeSources, i, src)
	return out, nil
}

// DeleteIncomeSource refuses while any income still references the source.
func DeleteIncomeSource(l Ledger, id string) (Ledger, error) {
	i := indexByID(l.IncomeSources, id, sourceID)
	if i < 0 {
		return l, notFound("income source", id)
	}
	if n := l.IncomesFromSource(id); n > 0 {
		return l, fmt.Errorf("%w (%d incomes)", ErrSourceInUse, n)
	}
	out := l
	out.IncomeSources = removed(l.IncomeSources, i)
	return out, nil
}

func (l Ledger) categoryNamed(name, exceptID string) bool {
	for _, c := range l.Categories {
		if c.ID != exceptID && sameName(c.Name, name) {
			return true
		}
	}
	return false
}

func (l Ledger) sourceNamed(name, exceptID string) bool {
	for _, s := range l.IncomeSources {
		if s.ID != exceptID && sameName(s.Name, name) {
			return true
		}
	}
	return false
}
