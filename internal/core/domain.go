package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	RolePrimary Role = "primary"
	RoleMember  Role = "member"
)

const (
	Needs NeedsOrWants = "needs"
	Wants NeedsOrWants = "wants"
)

const (
	AlertCategoryWarning  AlertType = "category_warning"
	AlertCategoryExceeded AlertType = "category_exceeded"
	AlertTotalExceeded    AlertType = "total_exceeded"
	AlertInfo             AlertType = "info"
)

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// dateLayout is the calendar form used for every transaction date.
const dateLayout = "2006-01-02"

type (
	Role         string
	NeedsOrWants string
	AlertType    string
	Severity     string

	Date struct {
		time.Time
	}

	Household struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Currency  Currency  `json:"currency"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Member is a person in the household. The persisted form keeps the
	// historical "user" naming for ids.
	Member struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Email       string    `json:"email"`
		Role        Role      `json:"role"`
		HouseholdID string    `json:"householdId"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	IncomeSource struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Category is the budget template applied when a month is materialized.
	Category struct {
		ID               string    `json:"id"`
		Name             string    `json:"name"`
		MonthlyBudget    Money     `json:"monthlyBudget"`
		CarryOverEnabled bool      `json:"carryOverEnabled"`
		Icon             string    `json:"icon,omitempty"`
		Color            string    `json:"color,omitempty"`
		CreatedAt        time.Time `json:"createdAt"`
	}

	// MonthlyCategory is the budget of one category for one month.
	MonthlyCategory struct {
		ID              string    `json:"id"`
		CategoryID      string    `json:"categoryId"`
		CategoryName    string    `json:"categoryName"`
		MonthlyBudget   Money     `json:"monthlyBudget"`
		CarryOverAmount Money     `json:"carryOverAmount"`
		Month           string    `json:"month"`
		CreatedAt       time.Time `json:"createdAt"`
	}

	Income struct {
		ID         string           `json:"id"`
		Amount     Money            `json:"amount"`
		SourceID   string           `json:"sourceId"`
		SourceName string           `json:"sourceName"`
		MemberID   string           `json:"userId"`
		MemberName string           `json:"userName"`
		Date       Date             `json:"date"`
		Notes      string           `json:"notes,omitempty"`
		CreatedAt  time.Time        `json:"createdAt"`
		CreatedBy  string           `json:"createdBy"`
		Revisions  []IncomeRevision `json:"revisions,omitempty"`
	}

	// IncomeRevision is a prior version of an income. Nothing writes these
	// yet; they are carried through the record untouched.
	IncomeRevision struct {
		ID               string    `json:"id"`
		OriginalIncomeID string    `json:"originalIncomeId"`
		Amount           Money     `json:"amount"`
		SourceID         string    `json:"sourceId"`
		Date             Date      `json:"date"`
		Notes            string    `json:"notes,omitempty"`
		EditedAt         time.Time `json:"editedAt"`
		EditedBy         string    `json:"editedBy"`
	}

	Expense struct {
		ID           string            `json:"id"`
		Amount       Money             `json:"amount"`
		CategoryID   string            `json:"categoryId"`
		CategoryName string            `json:"categoryName"`
		NeedsOrWants NeedsOrWants      `json:"needsOrWants"`
		MemberID     string            `json:"userId"`
		MemberName   string            `json:"userName"`
		Date         Date              `json:"date"`
		Notes        string            `json:"notes,omitempty"`
		CreatedAt    time.Time         `json:"createdAt"`
		CreatedBy    string            `json:"createdBy"`
		Revisions    []ExpenseRevision `json:"revisions,omitempty"`
	}

	ExpenseRevision struct {
		ID                string       `json:"id"`
		OriginalExpenseID string       `json:"originalExpenseId"`
		Amount            Money        `json:"amount"`
		CategoryID        string       `json:"categoryId"`
		NeedsOrWants      NeedsOrWants `json:"needsOrWants"`
		Date              Date         `json:"date"`
		Notes             string       `json:"notes,omitempty"`
		EditedAt          time.Time    `json:"editedAt"`
		EditedBy          string       `json:"editedBy"`
	}

	SavingsGoal struct {
		ID            string    `json:"id"`
		Name          string    `json:"name"`
		TargetAmount  Money     `json:"targetAmount"`
		CurrentAmount Money     `json:"currentAmount"`
		Deadline      Date      `json:"deadline,omitzero"`
		Icon          string    `json:"icon,omitempty"`
		Color         string    `json:"color,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	SavingsContribution struct {
		ID         string    `json:"id"`
		GoalID     string    `json:"goalId"`
		Amount     Money     `json:"amount"`
		MemberID   string    `json:"userId"`
		MemberName string    `json:"userName"`
		Date       Date      `json:"date"`
		Notes      string    `json:"notes,omitempty"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	Alert struct {
		ID         string    `json:"id"`
		Type       AlertType `json:"type"`
		Severity   Severity  `json:"severity"`
		Message    string    `json:"message"`
		CategoryID string    `json:"categoryId,omitempty"`
		Dismissed  bool      `json:"dismissed"`
		CreatedAt  time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyName           = errors.New("empty name")
	ErrNameTooLong         = errors.New("name too long (max 100 characters)")
	ErrNotesTooLong        = errors.New("notes too long (max 500 characters)")
	ErrEmptyEmail          = errors.New("empty email")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInvalidNeedsOrWants = errors.New("invalid needs/wants classification")
	ErrEmptyReference      = errors.New("empty reference")
	ErrNegativeBudget      = errors.New("budget cannot be negative")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	maxNameLen  = 100
	maxNotesLen = 500
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "YYYY-MM-DD" or a full RFC 3339 timestamp, which is
// truncated to its calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MonthToken returns the YYYY-MM month the date falls in.
func (d Date) MonthToken() string {
	return d.Format("2006-01")
}

// InMonth reports whether the date falls in the given YYYY-MM month.
func (d Date) InMonth(month string) bool {
	return !d.IsZero() && d.MonthToken() == month
}

// Compare orders two dates chronologically.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (r Role) Valid() bool {
	return r == RolePrimary || r == RoleMember
}

func (n NeedsOrWants) Valid() bool {
	return n == Needs || n == Wants
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLen {
		return ErrNameTooLong
	}
	return nil
}

func validateNotes(notes string) error {
	if len(notes) > maxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}

// ValidateEmail checks that the address is present and looks like an email.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func (h Household) Validate() error {
	if err := validateName(h.Name); err != nil {
		return err
	}
	if !h.Currency.Valid() {
		return ErrInvalidCurrency
	}
	return nil
}

func (m Member) Validate() error {
	if err := validateName(m.Name); err != nil {
		return err
	}
	if err := ValidateEmail(m.Email); err != nil {
		return err
	}
	if !m.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

func (s IncomeSource) Validate() error {
	return validateName(s.Name)
}

func (c Category) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if c.MonthlyBudget.Cents < 0 {
		return ErrNegativeBudget
	}
	return nil
}

func (mc MonthlyCategory) Validate() error {
	if strings.TrimSpace(mc.CategoryID) == "" {
		return fmt.Errorf("%w: category", ErrEmptyReference)
	}
	if mc.MonthlyBudget.Cents < 0 || mc.CarryOverAmount.Cents < 0 {
		return ErrNegativeBudget
	}
	return nil
}

// EffectiveBudget is the month's own budget plus whatever was carried in.
func (mc MonthlyCategory) EffectiveBudget() Money {
	return mc.MonthlyBudget.Add(mc.CarryOverAmount)
}

func (i Income) Validate() error {
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.SourceID) == "" {
		return fmt.Errorf("%w: income source", ErrEmptyReference)
	}
	if strings.TrimSpace(i.MemberID) == "" {
		return fmt.Errorf("%w: member", ErrEmptyReference)
	}
	return validateNotes(i.Notes)
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return fmt.Errorf("%w: category", ErrEmptyReference)
	}
	if strings.TrimSpace(e.MemberID) == "" {
		return fmt.Errorf("%w: member", ErrEmptyReference)
	}
	if !e.NeedsOrWants.Valid() {
		return ErrInvalidNeedsOrWants
	}
	return validateNotes(e.Notes)
}

func (g SavingsGoal) Validate() error {
	if err := validateName(g.Name); err != nil {
		return err
	}
	return g.TargetAmount.Validate()
}

func (c SavingsContribution) Validate() error {
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.GoalID) == "" {
		return fmt.Errorf("%w: savings goal", ErrEmptyReference)
	}
	return validateNotes(c.Notes)
}

// Active reports whether the alert still counts for de-duplication.
func (a Alert) Active() bool {
	return !a.Dismissed
}
