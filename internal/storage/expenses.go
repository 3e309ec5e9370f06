package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"expense-service/internal/models"

	"github.com/rs/zerolog"
)

const expenseColumns = `expense_id, user_id, category_id, title, amount, date_of_expense, note`

// CreateExpense inserts a new expense and returns it with its assigned ID.
// Amount and date are read back as stored, so column rounding is reflected.
func (db *DB) CreateExpense(ctx context.Context, e models.Expense) (*models.Expense, error) {
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO expense (user_id, category_id, title, amount, date_of_expense, note)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING expense_id, amount, date_of_expense`,
		e.UserID, e.CategoryID, e.Title, e.Amount, e.DateOfExpense, e.Note,
	).Scan(&e.ID, &e.Amount, &e.DateOfExpense)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	return &e, nil
}

// GetExpense retrieves a single expense owned by userID.
func (db *DB) GetExpense(ctx context.Context, userID, expenseID int64) (*models.Expense, error) {
	var e models.Expense
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expense WHERE user_id = $1 AND expense_id = $2`,
		userID, expenseID,
	).Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Title, &e.Amount, &e.DateOfExpense, &e.Note)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return &e, nil
}

// ListExpenses returns the expenses matching f, ordered by date then ID.
func (db *DB) ListExpenses(ctx context.Context, f models.ExpenseFilter) ([]models.Expense, error) {
	var q queryBuilder
	q.WriteString(`SELECT ` + expenseColumns + ` FROM expense WHERE user_id = ` + q.arg(f.UserID))
	if f.CategoryID != nil {
		q.WriteString(` AND category_id = ` + q.arg(*f.CategoryID))
	}
	q.dateRange(f)
	q.WriteString(` ORDER BY date_of_expense, expense_id`)

	rows, err := db.conn.QueryContext(ctx, q.String(), q.args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Title, &e.Amount, &e.DateOfExpense, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// UpdateExpense overwrites every mutable column of the expense identified by
// e.UserID and e.ID. ErrNotFound is returned when no such row exists.
func (db *DB) UpdateExpense(ctx context.Context, e models.Expense) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE expense
		 SET category_id = $2, title = $3, amount = $4, date_of_expense = $5, note = $6
		 WHERE user_id = $1 AND expense_id = $7`,
		e.UserID, e.CategoryID, e.Title, e.Amount, e.DateOfExpense, e.Note, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return expectAffected(res.RowsAffected())
}

// DeleteExpense removes the expense identified by userID and expenseID.
// ErrNotFound is returned when no such row exists.
func (db *DB) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM expense WHERE user_id = $1 AND expense_id = $2`,
		userID, expenseID,
	)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return expectAffected(res.RowsAffected())
}

// CategoryTotals sums expense amounts per category for f.UserID within the
// optional date range. f.CategoryID is ignored.
func (db *DB) CategoryTotals(ctx context.Context, f models.ExpenseFilter) ([]models.CategoryTotal, error) {
	var q queryBuilder
	q.WriteString(`SELECT category_id, SUM(amount) AS total_expense FROM expense WHERE user_id = ` + q.arg(f.UserID))
	q.dateRange(f)
	q.WriteString(` GROUP BY category_id ORDER BY category_id`)

	zerolog.Ctx(ctx).Debug().
		Str("query", q.String()).
		Interface("args", q.args).
		Msg("category totals")

	rows, err := db.conn.QueryContext(ctx, q.String(), q.args...)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.TotalExpense); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

func expectAffected(n int64, err error) error {
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// queryBuilder accumulates SQL text and its positional $n arguments.
type queryBuilder struct {
	strings.Builder
	args []any
}

func (q *queryBuilder) arg(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *queryBuilder) dateRange(f models.ExpenseFilter) {
	if f.StartDate != nil {
		q.WriteString(` AND date_of_expense >= ` + q.arg(*f.StartDate))
	}
	if f.EndDate != nil {
		q.WriteString(` AND date_of_expense <= ` + q.arg(*f.EndDate))
	}
}
