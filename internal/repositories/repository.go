// Package repositories implements MySQL persistence of users, roles, products and orders
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
)

// MySQL server error numbers of constraint violations
const (
	errDuplicateEntry     = 1062
	errRowIsReferenced    = 1451
	errRowIsReferencedOld = 1217
	errNoReferencedRow    = 1452
	errNoReferencedRowOld = 1216
)

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// table describes how an entity is stored
type table struct {
	name string
	// selectList is the column list of every SELECT, in scan order
	selectList string
	// columns are the properties usable in where and order
	columns filter.Columns
	// writable are the properties accepted by partial updates
	writable filter.Columns
	notFound *apperrors.Error
}

// selectQuery renders a SELECT honouring the filter's where, order, limit and skip
func (t *table) selectQuery(f *filter.Filter) (string, []any, error) {
	if f == nil {
		f = &filter.Filter{}
	}

	where, args, err := filter.BuildWhere(f.Where, t.columns)
	if err != nil {
		return "", nil, err
	}
	order, err := filter.BuildOrder(f.Order, t.columns)
	if err != nil {
		return "", nil, err
	}
	if order == "" {
		order = "id ASC"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", t.selectList, t.name)
	if where != "" {
		sb.WriteString(" WHERE " + where)
	}
	sb.WriteString(" ORDER BY " + order)
	if limit := filter.BuildLimit(f.Limit, f.Skip); limit != "" {
		sb.WriteString(" " + limit)
	}
	return sb.String(), args, nil
}

// inQuery renders a SELECT of the rows whose column matches any of the values
func (t *table) inQuery(column string, ids []int) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s) ORDER BY id ASC",
		t.selectList, t.name, column, strings.Join(placeholders, ","))
	return query, args
}

func (t *table) count(ctx context.Context, db DBTX, where filter.Where) (int64, error) {
	clause, args, err := filter.BuildWhere(where, t.columns)
	if err != nil {
		return 0, err
	}

	query := "SELECT COUNT(*) FROM " + t.name
	if clause != "" {
		query += " WHERE " + clause
	}

	var count int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.name, err)
	}
	return count, nil
}

// updateAll applies the patch to every row matching where and returns how many rows matched
func (t *table) updateAll(ctx context.Context, db DBTX, patch map[string]any, where filter.Where) (int64, error) {
	setParts, args, err := buildSetClause(patch, t.writable)
	if err != nil {
		return 0, err
	}
	clause, whereArgs, err := filter.BuildWhere(where, t.columns)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("UPDATE %s SET %s", t.name, setParts)
	if clause != "" {
		query += " WHERE " + clause
		args = append(args, whereArgs...)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", t.name, constraintError(t.name, err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// updateByID applies the patch to one row; a missing row is reported as not found
func (t *table) updateByID(ctx context.Context, db DBTX, id int, patch map[string]any) error {
	setParts, args, err := buildSetClause(patch, t.writable)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.name, setParts)
	args = append(args, id)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", t.name, constraintError(t.name, err))
	}
	return t.expectRow(result)
}

// replaceByID overwrites every writable column of one row
func (t *table) replaceByID(ctx context.Context, db DBTX, id int, values map[string]any) error {
	names := t.writable.Names()
	setParts := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		value, ok := values[name]
		if !ok {
			return fmt.Errorf("replace %s: missing value for %s", t.name, name)
		}
		setParts[i] = t.writable[name] + " = ?"
		args = append(args, value)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.name, strings.Join(setParts, ", "))
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", t.name, constraintError(t.name, err))
	}
	return t.expectRow(result)
}

func (t *table) deleteByID(ctx context.Context, db DBTX, id int) error {
	result, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.name), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.name, constraintError(t.name, err))
	}
	return t.expectRow(result)
}

func (t *table) expectRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return t.notFound
	}
	return nil
}

// constraintError maps a MySQL constraint violation on the table to a client error.
// Any other error is returned unchanged.
func constraintError(table string, err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return err
	}

	switch mysqlErr.Number {
	case errDuplicateEntry:
		return apperrors.Wrap(apperrors.Conflict(table+" record already exists"), err)
	case errRowIsReferenced, errRowIsReferencedOld:
		return apperrors.Wrap(apperrors.Conflict(table+" record is still referenced by other records"), err)
	case errNoReferencedRow, errNoReferencedRowOld:
		return apperrors.Wrap(apperrors.BadRequest("referenced record does not exist"), err)
	default:
		return err
	}
}

// buildSetClause renders a partial update. Properties are applied in name order;
// lists and objects are stored as JSON text.
func buildSetClause(patch map[string]any, writable filter.Columns) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, apperrors.BadRequest("no fields to update")
	}

	names := make([]string, 0, len(patch))
	for name := range patch {
		names = append(names, name)
	}
	slices.Sort(names)

	setParts := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		column, ok := writable[name]
		if !ok {
			return "", nil, apperrors.BadRequest(fmt.Sprintf("unknown or read-only field %q", name))
		}
		value, err := columnValue(patch[name])
		if err != nil {
			return "", nil, apperrors.BadRequest(fmt.Sprintf("invalid value for %q", name))
		}
		setParts = append(setParts, column+" = ?")
		args = append(args, value)
	}

	return strings.Join(setParts, ", "), args, nil
}

func columnValue(value any) (any, error) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		return v.Float64()
	case []any, map[string]any, []string, []map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	default:
		return v, nil
	}
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func uniqueIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
