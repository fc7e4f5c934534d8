// Package ledger owns the household budget record: every entity the
// household creates lives in one Ledger value that is encoded as a single
// JSON document. Mutations are pure functions from one Ledger to the next;
// Service serializes them and persists the result.
package ledger

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"housebudget/internal/core"
	"housebudget/internal/month"
)

// Version is the record layout written by this package.
const Version = 1

// Ledger is the whole persisted household record. Values are treated as
// immutable: mutations copy any slice they change.
type Ledger struct {
	Version              int                        `json:"version"`
	Revision             int64                      `json:"revision"`
	Household            *core.Household            `json:"household"`
	Members              []core.Member              `json:"users"`
	IncomeSources        []core.IncomeSource        `json:"incomeSources"`
	Incomes              []core.Income              `json:"incomes"`
	Categories           []core.Category            `json:"categories"`
	MonthlyCategories    []core.MonthlyCategory     `json:"monthlyCategories"`
	Expenses             []core.Expense             `json:"expenses"`
	SavingsGoals         []core.SavingsGoal         `json:"savingsGoals"`
	SavingsContributions []core.SavingsContribution `json:"savingsContributions"`
	Alerts               []core.Alert               `json:"alerts"`
	OnboardingCompleted  bool                       `json:"onboardingCompleted"`
	CurrentMonth         string                     `json:"currentMonth"`
	LastMonthCheck       time.Time                  `json:"lastMonthCheck"`
}

// Env supplies the clock reading and id source a mutation stamps onto new
// entities. Mutations never read the wall clock themselves.
type Env struct {
	Now   time.Time
	NewID func() string
}

func (e Env) id(preset string) string {
	if preset != "" {
		return preset
	}
	return e.NewID()
}

func (e Env) now() time.Time {
	return e.Now.UTC()
}

// Initial returns the empty ledger of a fresh installation.
func Initial(now time.Time) Ledger {
	return Ledger{
		Version:              Version,
		Members:              []core.Member{},
		IncomeSources:        []core.IncomeSource{},
		Incomes:              []core.Income{},
		Categories:           []core.Category{},
		MonthlyCategories:    []core.MonthlyCategory{},
		Expenses:             []core.Expense{},
		SavingsGoals:         []core.SavingsGoal{},
		SavingsContributions: []core.SavingsContribution{},
		Alerts:               []core.Alert{},
		CurrentMonth:         month.Current(now),
		LastMonthCheck:       now.UTC(),
	}
}

// Decode reads a stored ledger. Fields missing from data keep their
// Initial(now) value and null lists decode as empty, so older records load
// without migration.
func Decode(data []byte, now time.Time) (Ledger, error) {
	l := Initial(now)
	if err := json.Unmarshal(data, &l); err != nil {
		return Ledger{}, fmt.Errorf("decode ledger: %w", err)
	}
	if l.Version == 0 {
		l.Version = Version
	}
	l.normalize()
	return l, nil
}

// Encode serializes the ledger for storage.
func Encode(l Ledger) ([]byte, error) {
	l.normalize()
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}

func (l *Ledger) normalize() {
	l.Members = nonNil(l.Members)
	l.IncomeSources = nonNil(l.IncomeSources)
	l.Incomes = nonNil(l.Incomes)
	l.Categories = nonNil(l.Categories)
	l.MonthlyCategories = nonNil(l.MonthlyCategories)
	l.Expenses = nonNil(l.Expenses)
	l.SavingsGoals = nonNil(l.SavingsGoals)
	l.SavingsContributions = nonNil(l.SavingsContributions)
	l.Alerts = nonNil(l.Alerts)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// appended returns a new slice holding s followed by items; s is untouched.
func appended[T any](s []T, items ...T) []T {
	out := make([]T, 0, len(s)+len(items))
	out = append(out, s...)
	return append(out, items...)
}

// replaced returns a copy of s with index i set to v.
func replaced[T any](s []T, i int, v T) []T {
	out := slices.Clone(s)
	out[i] = v
	return out
}

// removed returns a copy of s without index i.
func removed[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func indexByID[T any](s []T, id string, key func(T) string) int {
	return slices.IndexFunc(s, func(v T) bool { return key(v) == id })
}
