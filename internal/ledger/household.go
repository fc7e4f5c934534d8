package ledger

import (
	"fmt"
	"strings"

	"housebudget/internal/core"
	"housebudget/internal/month"
)

type HouseholdInput struct {
	Name     string        `json:"name"`
	Currency core.Currency `json:"currency"`
}

type MemberInput struct {
	ID    string    `json:"-"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  core.Role `json:"role"`
}

type MemberPatch struct {
	Name  *string    `json:"name"`
	Email *string    `json:"email"`
	Role  *core.Role `json:"role"`
}

// Onboarding is everything a household sets up before first use.
type Onboarding struct {
	Household     HouseholdInput      `json:"household"`
	Members       []MemberInput       `json:"users"`
	IncomeSources []IncomeSourceInput `json:"incomeSources"`
	Categories    []CategoryInput     `json:"categories"`
}

func memberID(m core.Member) string { return m.ID }

// SetHousehold creates the household or edits its name and currency.
func SetHousehold(l Ledger, env Env, in HouseholdInput) (Ledger, error) {
	var h core.Household
	if l.Household != nil {
		h = *l.Household
	} else {
		h = core.Household{ID: env.NewID(), CreatedAt: env.now()}
	}
	h.Name = strings.TrimSpace(in.Name)
	h.Currency = in.Currency
	if err := h.Validate(); err != nil {
		return l, invalid(err)
	}
	h.UpdatedAt = env.now()

	out := l
	out.Household = &h
	return out, nil
}

func AddMember(l Ledger, env Env, in MemberInput) (Ledger, error) {
	m := core.Member{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Role:  in.Role,
	}
	if m.Role == "" {
		m.Role = core.RoleMember
	}
	if err := m.Validate(); err != nil {
		return l, invalid(err)
	}
	m.ID = env.id(in.ID)
	m.CreatedAt = env.now()
	if l.Household != nil {
		m.HouseholdID = l.Household.ID
	}

	out := l
	out.Members = appended(l.Members, m)
	return out, nil
}

// UpdateMember edits a member. Demoting the only primary member is refused.
func UpdateMember(l Ledger, id string, p MemberPatch) (Ledger, error) {
	i := indexByID(l.Members, id, memberID)
	if i < 0 {
		return l, notFound("member", id)
	}
	m := l.Members[i]
	if p.Name != nil {
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		m.Email = strings.TrimSpace(*p.Email)
	}
	if p.Role != nil {
		m.Role = *p.Role
	}
	if err := m.Validate(); err != nil {
		return l, invalid(err)
	}
	if l.Members[i].Role == core.RolePrimary && m.Role != core.RolePrimary && l.primaryCount() == 1 {
		return l, ErrNoPrimaryMember
	}

	out := l
	out.Members = replaced(l.Members, i, m)
	return out, nil
}

// DeleteMember removes a member. The last member and any primary member
// cannot be removed. Transactions keep the member's name.
func DeleteMember(l Ledger, id string) (Ledger, error) {
	i := indexByID(l.Members, id, memberID)
	if i < 0 {
		return l, notFound("member", id)
	}
	if len(l.Members) == 1 {
		return l, ErrLastMember
	}
	if l.Members[i].Role == core.RolePrimary {
		return l, ErrPrimaryMember
	}
	out := l
	out.Members = removed(l.Members, i)
	return out, nil
}

// CompleteOnboarding installs the household, members, income sources and
// category templates in one step and opens the current month with nothing
// carried over. The first member becomes primary when none was chosen.
func CompleteOnboarding(l Ledger, env Env, in Onboarding) (Ledger, error) {
	if l.OnboardingCompleted {
		return l, ErrOnboardingCompleted
	}
	if len(in.Members) == 0 {
		return l, invalid(fmt.Errorf("at least one member is required"))
	}

	out, err := SetHousehold(l, env, in.Household)
	if err != nil {
		return l, err
	}

	members := in.Members
	if !hasPrimary(members) {
		members = append([]MemberInput(nil), members...)
		members[0].Role = core.RolePrimary
	}
	for _, m := range members {
		if out, err = AddMember(out, env, m); err != nil {
			return l, err
		}
	}
	for _, s := range in.IncomeSources {
		if out, err = AddIncomeSource(out, env, s); err != nil {
			return l, err
		}
	}
	for _, c := range in.Categories {
		if out, err = AddCategory(out, env, c); err != nil {
			return l, err
		}
	}

	current := month.Current(env.Now)
	if !out.HasMonth(current) {
		out = materialize(out, env, current, nil)
	}
	out.CurrentMonth = current
	out.LastMonthCheck = env.now()
	out.OnboardingCompleted = true
	return out, nil
}

// SetCurrentMonth records m as the month the household is working in.
func SetCurrentMonth(l Ledger, env Env, m string) (Ledger, error) {
	if err := month.Validate(m); err != nil {
		return l, invalid(err)
	}
	out := l
	out.CurrentMonth = m
	out.LastMonthCheck = env.now()
	return out, nil
}

func hasPrimary(members []MemberInput) bool {
	for _, m := range members {
		if m.Role == core.RolePrimary {
			return true
		}
	}
	return false
}

func (l Ledger) primaryCount() int {
	n := 0
	for _, m := range l.Members {
		if m.Role == core.RolePrimary {
			n++
		}
	}
	return n
}
