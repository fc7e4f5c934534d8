package ledger

import (
	"strings"

	"housebudget/internal/core"
)

type SavingsGoalInput struct {
	ID            string     `json:"-"`
	Name          string     `json:"name"`
	TargetAmount  core.Money `json:"targetAmount"`
	CurrentAmount core.Money `json:"currentAmount"`
	Deadline      core.Date  `json:"deadline"`
	Icon          string     `json:"icon"`
	Color         string     `json:"color"`
}

type ContributionInput struct {
	ID       string     `json:"-"`
	GoalID   string     `json:"-"`
	Amount   core.Money `json:"amount"`
	MemberID string     `json:"userId"`
	Date     core.Date  `json:"date"`
	Notes    string     `json:"notes"`
}

func goalID(g core.SavingsGoal) string { return g.ID }

func AddSavingsGoal(l Ledger, env Env, in SavingsGoalInput) (Ledger, error) {
	g := core.SavingsGoal{
		Name:          strings.TrimSpace(in.Name),
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		Icon:          in.Icon,
		Color:         in.Color,
	}
	if err := g.Validate(); err != nil {
		return l, invalid(err)
	}
	if g.CurrentAmount.Cents < 0 {
		return l, invalid(core.ErrInvalidAmount)
	}
	g.ID = env.id(in.ID)
	g.CreatedAt = env.now()
	g.UpdatedAt = g.CreatedAt

	out := l
	out.SavingsGoals = appended(l.SavingsGoals, g)
	return out, nil
}

// AddSavingsContribution records a contribution and raises the goal's
// current amount by the same value.
func AddSavingsContribution(l Ledger, env Env, in ContributionInput) (Ledger, error) {
	c := core.SavingsContribution{
		GoalID:   in.GoalID,
		Amount:   in.Amount,
		MemberID: in.MemberID,
		Date:     in.Date,
		Notes:    strings.TrimSpace(in.Notes),
	}
	if err := c.Validate(); err != nil {
		return l, invalid(err)
	}
	gi := indexByID(l.SavingsGoals, in.GoalID, goalID)
	if gi < 0 {
		return l, notFound("savings goal", in.GoalID)
	}
	if c.MemberID != "" {
		mem, err := l.member(c.MemberID)
		if err != nil {
			return l, err
		}
		c.MemberName = mem.Name
	}
	c.ID = env.id(in.ID)
	c.CreatedAt = env.now()

	goal := l.SavingsGoals[gi]
	goal.CurrentAmount = goal.CurrentAmount.Add(c.Amount)
	goal.UpdatedAt = env.now()

	out := l
	out.SavingsContributions = appended(l.SavingsContributions, c)
	out.SavingsGoals = replaced(l.SavingsGoals, gi, goal)
	return out, nil
}
