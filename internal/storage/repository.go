// Package storage persists accounts and activities in SQLite.
//
// Amounts are stored as integer cents so SQL aggregation stays exact;
// the decimal conversion happens at this boundary only.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/JSBS07/gestor-finanzas/internal/auth"
	"github.com/JSBS07/gestor-finanzas/internal/core"
)

// timeLayout is the canonical stored timestamp format (UTC, second
// precision). SQLite's date functions understand it directly.
const timeLayout = "2006-01-02T15:04:05Z"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys is off by default in SQLite; the DSN pragma applies
	// it to every pooled connection.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func centsOf(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

func amountOf(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func storedTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timeLayout)
}

// ---- activities ----

// SaveActivity inserts a new activity (ID zero) or updates an existing
// one, returning the stored record.
func (r *SQLiteRepository) SaveActivity(ctx context.Context, a core.Activity) (core.Activity, error) {
	if a.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO activities (description, amount_cents, type, category, state, created_at, owner_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.Description, centsOf(a.Amount), string(a.Type), string(a.Category),
			string(a.State), storedTime(a.CreatedAt), a.OwnerID)
		if err != nil {
			return core.Activity{}, fmt.Errorf("insert activity: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return core.Activity{}, fmt.Errorf("insert activity id: %w", err)
		}
		a.ID = id

		slog.InfoContext(ctx, "Activity saved",
			"id", a.ID,
			"description", a.Description,
			"amount_cents", centsOf(a.Amount),
			"type", a.Type,
			"state", a.State,
			"owner_id", a.OwnerID)
		return a, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE activities
		 SET description = ?, amount_cents = ?, type = ?, category = ?, state = ?
		 WHERE id = ?`,
		a.Description, centsOf(a.Amount), string(a.Type), string(a.Category),
		string(a.State), a.ID)
	if err != nil {
		return core.Activity{}, fmt.Errorf("update activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Activity{}, fmt.Errorf("update activity rows: %w", err)
	}
	if n == 0 {
		return core.Activity{}, core.ErrNotFound
	}
	return a, nil
}

// FindActivityByID returns core.ErrNotFound when the id does not exist.
func (r *SQLiteRepository) FindActivityByID(ctx context.Context, id int64) (core.Activity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, type, category, state, created_at, owner_id
		 FROM activities WHERE id = ?`, id)
	return scanActivity(row)
}

func (r *SQLiteRepository) DeleteActivityByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete activity rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) FindActivitiesByOwnerAndState(ctx context.Context, ownerID int64, state core.ActivityState) ([]core.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, type, category, state, created_at, owner_id
		 FROM activities WHERE owner_id = ? AND state = ?
		 ORDER BY created_at DESC, id DESC`, ownerID, string(state))
	if err != nil {
		return nil, fmt.Errorf("query activities by owner and state: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

func (r *SQLiteRepository) FindActivitiesByOwner(ctx context.Context, ownerID int64) ([]core.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, type, category, state, created_at, owner_id
		 FROM activities WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query activities by owner: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

func (r *SQLiteRepository) FindRecentActivitiesByOwner(ctx context.Context, ownerID int64, limit int) ([]core.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, type, category, state, created_at, owner_id
		 FROM activities WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent activities: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

// ActivityFilter narrows FindActivitiesByOwnerFiltered. Nil fields are
// not applied.
type ActivityFilter struct {
	Type     *core.ActivityType
	State    *core.ActivityState
	Category *core.Category
}

func (r *SQLiteRepository) FindActivitiesByOwnerFiltered(ctx context.Context, ownerID int64, f ActivityFilter) ([]core.Activity, error) {
	where := []string{"owner_id = ?"}
	args := []any{ownerID}
	if f.Type != nil {
		where = append(where, "type = ?")
		args = append(args, string(*f.Type))
	}
	if f.State != nil {
		where = append(where, "state = ?")
		args = append(args, string(*f.State))
	}
	if f.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*f.Category))
	}

	query := `SELECT id, description, amount_cents, type, category, state, created_at, owner_id
		 FROM activities WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query filtered activities: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

// SumAmountByOwnerTypeStateMonth aggregates by extracting year/month
// from the stored timestamp. A missing sum counts as zero.
func (r *SQLiteRepository) SumAmountByOwnerTypeStateMonth(ctx context.Context, ownerID int64, typ core.ActivityType, state core.ActivityState, year, month int) (decimal.Decimal, error) {
	var cents sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM activities
		 WHERE owner_id = ? AND type = ? AND state = ?
		 AND CAST(strftime('%Y', created_at) AS INTEGER) = ?
		 AND CAST(strftime('%m', created_at) AS INTEGER) = ?`,
		ownerID, string(typ), string(state), year, month).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum amount by month: %w", err)
	}
	if !cents.Valid {
		return decimal.Zero, nil
	}
	return amountOf(cents.Int64), nil
}

// SumAmountByOwnerTypeStateRange is the BETWEEN-based equivalent of the
// month aggregation, used as the fallback computation path.
func (r *SQLiteRepository) SumAmountByOwnerTypeStateRange(ctx context.Context, ownerID int64, typ core.ActivityType, state core.ActivityState, from, to time.Time) (decimal.Decimal, error) {
	var cents sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM activities
		 WHERE owner_id = ? AND type = ? AND state = ?
		 AND created_at BETWEEN ? AND ?`,
		ownerID, string(typ), string(state), storedTime(from), storedTime(to)).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum amount by range: %w", err)
	}
	if !cents.Valid {
		return decimal.Zero, nil
	}
	return amountOf(cents.Int64), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (core.Activity, error) {
	var (
		a         core.Activity
		cents     int64
		typ       string
		category  string
		state     string
		createdAt string
	)
	err := row.Scan(&a.ID, &a.Description, &cents, &typ, &category, &state, &createdAt, &a.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Activity{}, core.ErrNotFound
	}
	if err != nil {
		return core.Activity{}, fmt.Errorf("scan activity: %w", err)
	}
	a.Amount = amountOf(cents)
	a.Type = core.ActivityType(typ)
	a.Category = core.Category(category)
	a.State = core.ActivityState(state)
	a.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return core.Activity{}, fmt.Errorf("parse activity timestamp: %w", err)
	}
	return a, nil
}

func collectActivities(rows *sql.Rows) ([]core.Activity, error) {
	var out []core.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}

// ---- accounts ----

func (r *SQLiteRepository) SaveAccount(ctx context.Context, acc core.Account) (core.Account, error) {
	if acc.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO accounts (email, password_hash, name, role, temp_password, registered_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			acc.Email, acc.PasswordHash.String(), acc.Name, string(acc.Role),
			boolToInt(acc.TempPassword), storedTime(acc.RegisteredAt))
		if err != nil {
			return core.Account{}, fmt.Errorf("insert account: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return core.Account{}, fmt.Errorf("insert account id: %w", err)
		}
		acc.ID = id

		slog.InfoContext(ctx, "Account saved", "id", acc.ID, "email", acc.Email, "role", acc.Role)
		return acc, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET email = ?, password_hash = ?, name = ?, role = ?, temp_password = ?
		 WHERE id = ?`,
		acc.Email, acc.PasswordHash.String(), acc.Name, string(acc.Role),
		boolToInt(acc.TempPassword), acc.ID)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Account{}, fmt.Errorf("update account rows: %w", err)
	}
	if n == 0 {
		return core.Account{}, core.ErrNotFound
	}
	return acc, nil
}

func (r *SQLiteRepository) FindAccountByEmail(ctx context.Context, email string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, role, temp_password, registered_at
		 FROM accounts WHERE email = ?`, email)
	return scanAccount(row)
}

func (r *SQLiteRepository) FindAccountByID(ctx context.Context, id int64) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, role, temp_password, registered_at
		 FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *SQLiteRepository) ExistsAccountByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check account email: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteAccountByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, password_hash, name, role, temp_password, registered_at
		 FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CountAccounts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		acc          core.Account
		hash         string
		role         string
		tempPassword int
		registeredAt string
	)
	err := row.Scan(&acc.ID, &acc.Email, &hash, &acc.Name, &role, &tempPassword, &registeredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	acc.PasswordHash = auth.StoredHash(hash)
	acc.Role = core.Role(role)
	acc.TempPassword = tempPassword != 0
	acc.RegisteredAt, err = time.Parse(timeLayout, registeredAt)
	if err != nil {
		return core.Account{}, fmt.Errorf("parse account timestamp: %w", err)
	}
	return acc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
