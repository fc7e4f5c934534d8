package ledger

import (
	"errors"
	"fmt"

	"housebudget/internal/log"
)

// Error classes. Every error a mutation returns wraps exactly one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("rejected by ledger rule")
	ErrNotFound   = errors.New("not found")
)

var (
	ErrLastMember          = fmt.Errorf("%w: the last household member cannot be deleted", ErrConflict)
	ErrPrimaryMember       = fmt.Errorf("%w: a primary member cannot be deleted", ErrConflict)
	ErrNoPrimaryMember     = fmt.Errorf("%w: the household needs at least one primary member", ErrConflict)
	ErrSourceInUse         = fmt.Errorf("%w: income source is referenced by incomes", ErrConflict)
	ErrDuplicateName       = fmt.Errorf("%w: name already in use", ErrConflict)
	ErrMonthExists         = fmt.Errorf("%w: month already has category budgets", ErrConflict)
	ErrMonthlyBudgetExists = fmt.Errorf("%w: category already has a budget for that month", ErrConflict)
	ErrOnboardingCompleted = fmt.Errorf("%w: onboarding already completed", ErrConflict)
	ErrNoHousehold         = fmt.Errorf("%w: household is not set up", ErrConflict)
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// ErrorType classifies err into one of the log error categories.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return log.ErrorTypeValidation
	case errors.Is(err, ErrConflict):
		return log.ErrorTypeConflict
	case errors.Is(err, ErrNotFound):
		return log.ErrorTypeNotFound
	default:
		return log.ErrorTypeInternal
	}
}
