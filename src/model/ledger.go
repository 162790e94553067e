package model

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/utils"
)

// Earning is one logged payout from a ride/delivery platform.
type Earning struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	App        models.Platform `json:"app"`
	Amount     models.Money    `json:"amount"`
	Date       string          `json:"date"` // ISO calendar date
	TripsCount *int64          `json:"trips_count,omitempty"`
	HoursWorked *float64       `json:"hours_worked,omitempty"`
	KmTraveled *float64        `json:"km_traveled,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	// HashID deduplicates imported rows; manual entries leave it empty.
	HashID    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expense is one logged driver expense.
type Expense struct {
	ID          int64                  `json:"id"`
	UserID      int64                  `json:"user_id"`
	Category    models.ExpenseCategory `json:"category"`
	Amount      models.Money           `json:"amount"`
	Date        string                 `json:"date"` // ISO calendar date
	Description string                 `json:"description,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Goal is a savings/earnings target for a period.
type Goal struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	Title         string       `json:"title"`
	TargetAmount  models.Money `json:"target_amount"`
	CurrentAmount models.Money `json:"current_amount"`
	Period        string       `json:"period"`
	StartDate     string       `json:"start_date,omitempty"`
	EndDate       string       `json:"end_date,omitempty"`
	IsAchieved    bool         `json:"is_achieved"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Validate checks the earning's invariants before it is persisted.
func (e *Earning) Validate() error {
	if !models.ValidPlatform(e.App) {
		return fmt.Errorf("unknown app %q", e.App)
	}
	if e.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if utils.ParseISODate(e.Date).IsZero() {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", e.Date)
	}
	if e.TripsCount != nil && *e.TripsCount < 0 {
		return errors.New("trips_count must not be negative")
	}
	if e.HoursWorked != nil && *e.HoursWorked <= 0 {
		return errors.New("hours_worked must be positive")
	}
	if e.KmTraveled != nil && *e.KmTraveled <= 0 {
		return errors.New("km_traveled must be positive")
	}
	return nil
}

// Validate checks the expense's invariants before it is persisted.
func (e *Expense) Validate() error {
	if !models.ValidExpenseCategory(e.Category) {
		return fmt.Errorf("unknown category %q", e.Category)
	}
	if e.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if utils.ParseISODate(e.Date).IsZero() {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", e.Date)
	}
	return nil
}

// CreateEarning inserts the earning and fills in its id.
func CreateEarning(db *sql.DB, e *Earning) error {
	if err := e.Validate(); err != nil {
		return err
	}
	var hashID interface{}
	if e.HashID != "" {
		hashID = e.HashID
	}
	res, err := db.Exec(`
	INSERT INTO earnings (user_id, app, amount_cents, date, trips_count, hours_worked, km_traveled, notes, hash_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, string(e.App), int64(e.Amount), e.Date, e.TripsCount, e.HoursWorked, e.KmTraveled, e.Notes, hashID)
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

// CreateExpense inserts the expense and fills in its id.
func CreateExpense(db *sql.DB, e *Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	res, err := db.Exec(`
	INSERT INTO expenses (user_id, category, amount_cents, date, description)
	VALUES (?, ?, ?, ?, ?)`,
		e.UserID, string(e.Category), int64(e.Amount), e.Date, e.Description)
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

const earningColumns = `id, user_id, app, amount_cents, date, trips_count, hours_worked, km_traveled, COALESCE(notes, ''), created_at, updated_at`

func scanEarning(rows *sql.Rows) (Earning, error) {
	var e Earning
	var amountCents int64
	err := rows.Scan(&e.ID, &e.UserID, &e.App, &amountCents, &e.Date,
		&e.TripsCount, &e.HoursWorked, &e.KmTraveled, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	e.Amount = models.Money(amountCents)
	return e, err
}

// EarningFilter narrows ListEarnings. Zero values mean "no constraint".
type EarningFilter struct {
	StartDate string
	EndDate   string
	App       models.Platform
	Limit     int
	Offset    int
}

// ListEarnings returns the user's earnings newest first, optionally filtered.
func ListEarnings(db *sql.DB, userID int64, f EarningFilter) ([]Earning, error) {
	query := `SELECT ` + earningColumns + ` FROM earnings WHERE user_id = ?`
	args := []interface{}{userID}
	if f.StartDate != "" {
		query += ` AND date >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += ` AND date <= ?`
		args = append(args, f.EndDate)
	}
	if f.App != "" {
		query += ` AND app = ?`
		args = append(args, string(f.App))
	}
	query += ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earnings []Earning
	for rows.Next() {
		e, err := scanEarning(rows)
		if err != nil {
			return nil, err
		}
		earnings = append(earnings, e)
	}
	return earnings, rows.Err()
}

// CountEarnings returns the total matching rows for the filter, ignoring
// its limit and offset. Used for pagination metadata.
func CountEarnings(db *sql.DB, userID int64, f EarningFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM earnings WHERE user_id = ?`
	args := []interface{}{userID}
	if f.StartDate != "" {
		query += ` AND date >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += ` AND date <= ?`
		args = append(args, f.EndDate)
	}
	if f.App != "" {
		query += ` AND app = ?`
		args = append(args, string(f.App))
	}
	var count int64
	err := db.QueryRow(query, args...).Scan(&count)
	return count, err
}

const expenseColumns = `id, user_id, category, amount_cents, date, COALESCE(description, ''), created_at, updated_at`

func scanExpense(rows *sql.Rows) (Expense, error) {
	var e Expense
	var amountCents int64
	err := rows.Scan(&e.ID, &e.UserID, &e.Category, &amountCents, &e.Date,
		&e.Description, &e.CreatedAt, &e.UpdatedAt)
	e.Amount = models.Money(amountCents)
	return e, err
}

// ExpenseFilter narrows ListExpenses. Zero values mean "no constraint".
type ExpenseFilter struct {
	StartDate string
	EndDate   string
	Category  models.ExpenseCategory
	Limit     int
	Offset    int
}

// ListExpenses returns the user's expenses newest first, optionally filtered.
func ListExpenses(db *sql.DB, userID int64, f ExpenseFilter) ([]Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ?`
	args := []interface{}{userID}
	if f.StartDate != "" {
		query += ` AND date >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += ` AND date <= ?`
		args = append(args, f.EndDate)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(f.Category))
	}
	query += ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CountExpenses returns the total matching rows for the filter, ignoring
// its limit and offset.
func CountExpenses(db *sql.DB, userID int64, f ExpenseFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM expenses WHERE user_id = ?`
	args := []interface{}{userID}
	if f.StartDate != "" {
		query += ` AND date >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += ` AND date <= ?`
		args = append(args, f.EndDate)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(f.Category))
	}
	var count int64
	err := db.QueryRow(query, args...).Scan(&count)
	return count, err
}

// DeleteEarning removes an earning owned by the user.
func DeleteEarning(db *sql.DB, userID, id int64) error {
	return deleteOwned(db, "earnings", userID, id)
}

// DeleteExpense removes an expense owned by the user.
func DeleteExpense(db *sql.DB, userID, id int64) error {
	return deleteOwned(db, "expenses", userID, id)
}

// DeleteGoal removes a goal owned by the user.
func DeleteGoal(db *sql.DB, userID, id int64) error {
	return deleteOwned(db, "goals", userID, id)
}

func deleteOwned(db *sql.DB, table string, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateGoal inserts the goal and fills in its id.
func CreateGoal(db *sql.DB, g *Goal) error {
	if g.Title == "" {
		return errors.New("title is required")
	}
	if g.TargetAmount <= 0 {
		return errors.New("target_amount must be positive")
	}
	res, err := db.Exec(`
	INSERT INTO goals (user_id, title, target_amount_cents, current_amount_cents, period, start_date, end_date, is_achieved)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Title, int64(g.TargetAmount), int64(g.CurrentAmount), g.Period, g.StartDate, g.EndDate, g.IsAchieved)
	if err != nil {
		return err
	}
	g.ID, err = res.LastInsertId()
	return err
}

// ListGoals returns the user's goals newest first.
func ListGoals(db *sql.DB, userID int64) ([]Goal, error) {
	rows, err := db.Query(`
	SELECT id, user_id, title, target_amount_cents, current_amount_cents,
		COALESCE(period, ''), COALESCE(start_date, ''), COALESCE(end_date, ''), is_achieved, created_at, updated_at
	FROM goals WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		var target, current int64
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &target, &current,
			&g.Period, &g.StartDate, &g.EndDate, &g.IsAchieved, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		g.TargetAmount = models.Money(target)
		g.CurrentAmount = models.Money(current)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoalProgress sets the goal's current amount and derives the achieved flag.
func UpdateGoalProgress(db *sql.DB, userID, id int64, current models.Money) error {
	res, err := db.Exec(`
	UPDATE goals SET current_amount_cents = ?,
		is_achieved = (? >= target_amount_cents),
		updated_at = CURRENT_TIMESTAMP
	WHERE id = ? AND user_id = ?`,
		int64(current), int64(current), id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
