package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
// It is stored and transmitted as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate returns the given calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		*d = Date{}
		return nil
	}
	s := strings.TrimSpace(*raw)
	// Accept full timestamps too; only the calendar day is kept.
	for _, layout := range []string{DateLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = NewDate(t.Year(), t.Month(), t.Day())
			return nil
		}
	}
	return fmt.Errorf("date_of_expense: use YYYY-MM-DD")
}

// Value stores the date as text so range comparisons behave the same in every dialect.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanString(s string) error {
	if len(s) >= len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Expense represents a single monetary record owned by a user.
type Expense struct {
	ID            int64   `json:"expense_id"`
	UserID        int64   `json:"user_id"`
	CategoryID    int64   `json:"category_id"`
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	DateOfExpense Date    `json:"date_of_expense"`
	Note          *string `json:"note"`
}

// ExpenseFilter narrows a listing or report to one user and optional predicates.
// Nil fields are not applied.
type ExpenseFilter struct {
	UserID     int64
	CategoryID *int64
	StartDate  *Date
	EndDate    *Date
}

// CategoryTotal is one row of the per-category report.
type CategoryTotal struct {
	CategoryID   int64   `json:"category_id"`
	TotalExpense float64 `json:"total_expense"`
}

// User represents a user account.
type User struct {
	ID           int64  `json:"user_id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
}
