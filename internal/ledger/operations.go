package ledger

import (
	"context"
	"time"

	"housebudget/internal/core"
	"housebudget/internal/month"
)

// Operation names used in logs and ledger change events.
const (
	OpCompleteOnboarding     = "complete_onboarding"
	OpSetHousehold           = "set_household"
	OpAddMember              = "add_member"
	OpUpdateMember           = "update_member"
	OpDeleteMember           = "delete_member"
	OpAddIncomeSource        = "add_income_source"
	OpUpdateIncomeSource     = "update_income_source"
	OpDeleteIncomeSource     = "delete_income_source"
	OpAddCategory            = "add_category"
	OpUpdateCategory         = "update_category"
	OpDeleteCategory         = "delete_category"
	OpAddMonthlyCategory     = "add_monthly_category"
	OpUpdateMonthlyCategory  = "update_monthly_category"
	OpMaterializeMonth       = "materialize_month"
	OpAddIncome              = "add_income"
	OpUpdateIncome           = "update_income"
	OpDeleteIncome           = "delete_income"
	OpAddExpense             = "add_expense"
	OpUpdateExpense          = "update_expense"
	OpDeleteExpense          = "delete_expense"
	OpAddSavingsGoal         = "add_savings_goal"
	OpAddSavingsContribution = "add_savings_contribution"
	OpDismissAlert           = "dismiss_alert"
	OpSetCurrentMonth        = "set_current_month"
	OpRollover               = "rollover"
)

// NeedsRollover reports whether the clock has moved into a month the ledger
// has not opened yet.
func NeedsRollover(l Ledger, now time.Time) bool {
	if !l.OnboardingCompleted {
		return false
	}
	cur := month.Current(now)
	return l.CurrentMonth != cur || !l.HasMonth(cur)
}

// Rollover makes the clock's month the working month, materializing its
// budgets with carry-over when they do not exist yet.
func Rollover(l Ledger, env Env) (Ledger, error) {
	cur := month.Current(env.Now)
	out := l
	if !out.HasMonth(cur) {
		var err error
		if out, err = MaterializeMonth(out, env, cur); err != nil {
			return l, err
		}
	}
	return SetCurrentMonth(out, env, cur)
}

func find[T any](s []T, id string, key func(T) string) T {
	var zero T
	if i := indexByID(s, id, key); i >= 0 {
		return s[i]
	}
	return zero
}

func (s *Service) do(ctx context.Context, op string, fn func(Ledger, Env) (Ledger, error)) (Ledger, error) {
	return s.Apply(ctx, op, Mutation(fn))
}

func (s *Service) CompleteOnboarding(ctx context.Context, in Onboarding) (Ledger, error) {
	return s.do(ctx, OpCompleteOnboarding, func(l Ledger, env Env) (Ledger, error) {
		return CompleteOnboarding(l, env, in)
	})
}

func (s *Service) SetHousehold(ctx context.Context, in HouseholdInput) (core.Household, error) {
	l, err := s.do(ctx, OpSetHousehold, func(l Ledger, env Env) (Ledger, error) {
		return SetHousehold(l, env, in)
	})
	if err != nil {
		return core.Household{}, err
	}
	return *l.Household, nil
}

func (s *Service) AddMember(ctx context.Context, in MemberInput) (core.Member, error) {
	in.ID = s.newID()
	l, err := s.do(ctx, OpAddMember, func(l Ledger, env Env) (Ledger, error) {
		return AddMember(l, env, in)
	})
	if err != nil {
		return core.Member{}, err
	}
	return find(l.Members, in.ID, memberID), nil
}

func (s *Service) UpdateMember(ctx context.Context, id string, p MemberPatch) (core.Member, error) {
	l, err := s.do(ctx, OpUpdateMember, func(l Ledger, _ Env) (Ledger, error) {
		return UpdateMember(l, id, p)
	})
	if err != nil {
		return core.Member{}, err
	}
	return find(l.Members, id, memberID), nil
}

func (s *Service) DeleteMember(ctx context.Context, id string) error {
	_, err := s.do(ctx, OpDeleteMember, func(l Ledger, _ Env) (Ledger, error) {
		return DeleteMember(l, id)
	})
	return err
}

func (s *Service) AddIncomeSource(ctx context.Context, in IncomeSourceInput) (core.IncomeSource, error) {
	in.ID = s.newID()
	l, err := s.do(ctx, OpAddIncomeSource, func(l Ledger, env Env) (Ledger, error) {
		return AddIncomeSource(l, env, in)
	})
	if err != nil {
		return core.IncomeSource{}, err
	}
	return find(l.IncomeSources, in.ID, sourceID), nil
}

func (s *Service) UpdateIncomeSource(ctx context.Context, id string, p IncomeSourcePatch) (core.IncomeSource, error) {
	l, err := s.do(ctx, OpUpdateIncomeSource, func(l Ledger, _ Env) (Ledger, error) {
		return UpdateIncomeSource(l, id, p)
	})
	if err != nil {
		return core.IncomeSource{}, err
	}
	return find(l.IncomeSources, id, sourceID), nil
}

func (s *Service) DeleteIncomeSource(ctx context.Context, id string) error {
	_, err := s.do(ctx, OpDeleteIncomeSource, func(l Ledger, _ Env) (Ledger, error) {
		return DeleteIncomeSource(l, id)
	})
	return err
}

func (s *Service) AddCategory(ctx context.Context, in CategoryInput) (core.Category, error) {
	in.ID = s.newID()
	l, err := s.do(ctx, OpAddCategory, func(l Ledger, env Env) (Ledger, error) {
		return AddCategory(l, env, in)
	})
	if err != nil {
		return core.Category{}, err
	}
	return find(l.Categories, in.ID, categoryID), nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, p CategoryPatch) (core.Category, error) {
	l, err := s.do(ctx, OpUpdateCategory, func(l Ledger, _ Env) (Ledger, error) {
		return UpdateCategory(l, id, p)
	})
	if err != nil {
		return core.Category{}, err
	}
	return find(l.Categories, id, categoryID), nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	_, err := s.do(ctx, OpDeleteCategory, func(l Ledger, _ Env) (Ledger, error) {
		return DeleteCategory(l, id)
	})
	return err
}

func (s *Service) AddMonthlyCategory(ctx context.Context, in MonthlyCategoryInput) (core.MonthlyCategory, error) {
	in.ID = s.newID()
	l, err := s.do(ctx, OpAddMonthlyCategory, func(l Ledger, env Env) (Ledger, error) {
		return AddMonthlyCategory(l, env, in)
	})
	if err != nil {
		return core.MonthlyCategory{}, err
	}
	return find(l.MonthlyCategories, in.ID, monthlyCategoryID), nil
}

func (s *Service) UpdateMonthlyCategory(ctx context.Context, id string, p MonthlyCategoryPatch) (core.MonthlyCategory, error) {
	l, err := s.do(ctx, OpUpdateMonthlyCategory, func(l Ledger, _ Env) (Ledger, error) {
		return UpdateMonthlyCategory(l, id, p)
	})
	if err != nil {
		return core.MonthlyCategory{}, err
	}
	return find(l.MonthlyCategories, id, monthlyCategoryID), nil
}

// MaterializeMonth opens m and returns its budget rows.
func (s *Service) MaterializeMonth(ctx context.Context, m string) ([]core.MonthlyCategory, error) {
	l, err := s.do(ctx, OpMaterializeMonth, func(l Ledger, env Env) (Ledger, error) {
		return MaterializeMonth(l, env, m)
	})
	if err != nil {
		return nil, err
	}
	return l.MonthData(m).Categories, nil
}

func (s *Service) AddIncome(ctx context.Context, in IncomeInput) (core.Income, error) {
	in.ID = s.newID()
	l, err := s.do(ctx, OpAddIncome, func(l Ledger, env Env) (Ledger, error) {
		return AddIncome(l, env, in)
	})
	if err != nil {
		return core.Income{}, err
	}
	return find(l.Incomes, in.ID, incomeID), nil
}

func (s *Service) UpdateIncome(ctx context.Context, id string, p IncomePatch) (core.Income, error) {
	l, err := s.do(ctx, OpUpdateIncome, func(l Ledger, _ Env) (Ledger, error) {
		return UpdateIncome(l, id, p)
	})
	if err != nil {
		return core.Income{}, err
	}
	return find(l.Incomes, id, incomeID), nil
}

func (s *Service) DeleteIncome(ctx context.Context, id string) error {
	_, err := s.do(ctx, OpDeleteIncome, func(l Ledger, _ Env) (Ledger, error) {
		return DeleteIncome(l, id)
	})
	return err
}

func (s *Service) AddExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	in.ID = s.newID()
	l, err := s.do(ctx, OpAddExpense, func(l Ledger, env Env) (Ledger, error) {
		return AddExpense(l, env, in)
	})
	if err != nil {
		return core.Expense{}, err
	}
	return find(l.Expenses, in.ID, expenseID), nil
}

func (s *Service) UpdateExpense(ctx context.Context, id string, p ExpensePatch) (core.Expense, error) {
	l, err := s.do(ctx, OpUpdateExpense, func(l Ledger, _ Env) (Ledger, error) {
		return UpdateExpense(l, id, p)
	})
	if err != nil {
		return core.Expense{}, err
	}
	return find(l.Expenses, id, expenseID), nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	_, err := s.do(ctx, OpDeleteExpense, func(l Ledger, _ Env) (Ledger, error) {
		return DeleteExpense(l, id)
	})
	return err
}

func (s *Service) AddSavingsGoal(ctx context.Context, in SavingsGoalInput) (core.SavingsGoal, error) {
	in.ID = s.newID()
	l, err := s.do(ctx, OpAddSavingsGoal, func(l Ledger, env Env) (Ledger, error) {
		return AddSavingsGoal(l, env, in)
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return find(l.SavingsGoals, in.ID, goalID), nil
}

// AddSavingsContribution returns the goal after the contribution.
func (s *Service) AddSavingsContribution(ctx context.Context, in ContributionInput) (core.SavingsGoal, error) {
	in.ID = s.newID()
	l, err := s.do(ctx, OpAddSavingsContribution, func(l Ledger, env Env) (Ledger, error) {
		return AddSavingsContribution(l, env, in)
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return find(l.SavingsGoals, in.GoalID, goalID), nil
}

func (s *Service) DismissAlert(ctx context.Context, id string) error {
	_, err := s.do(ctx, OpDismissAlert, func(l Ledger, _ Env) (Ledger, error) {
		return DismissAlert(l, id)
	})
	return err
}

func (s *Service) SetCurrentMonth(ctx context.Context, m string) (Ledger, error) {
	return s.do(ctx, OpSetCurrentMonth, func(l Ledger, env Env) (Ledger, error) {
		return SetCurrentMonth(l, env, m)
	})
}

// Rollover opens the clock's month when needed. It reports whether the
// ledger changed.
func (s *Service) Rollover(ctx context.Context) (bool, error) {
	if !NeedsRollover(s.Fresh(ctx), s.now()) {
		return false, nil
	}
	_, err := s.do(ctx, OpRollover, Rollover)
	if err != nil {
		return false, err
	}
	return true, nil
}
