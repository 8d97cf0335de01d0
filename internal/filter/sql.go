package filter

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/onlineshop/backend/internal/apperrors"
)

// Columns maps API property names to SQL columns; only listed properties may be filtered or sorted on
type Columns map[string]string

// Names returns the property names in a stable order
func (c Columns) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var comparisons = map[string]string{
	"eq":  "=",
	"neq": "<>",
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
}

// BuildWhere renders a where condition as an SQL boolean expression with positional arguments.
// An empty condition renders as an empty clause.
func BuildWhere(where Where, cols Columns) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}
	return buildAnd(where, cols)
}

func buildAnd(where Where, cols Columns) (string, []any, error) {
	keys := make([]string, 0, len(where))
	for key := range where {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	var args []any
	for _, key := range keys {
		var (
			clause   string
			partArgs []any
			err      error
		)
		switch key {
		case "and", "or":
			clause, partArgs, err = buildGroup(key, where[key], cols)
		default:
			clause, partArgs, err = buildField(key, where[key], cols)
		}
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, clause)
		args = append(args, partArgs...)
	}

	if len(parts) == 1 {
		return parts[0], args, nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", args, nil
}

func buildGroup(op string, value any, cols Columns) (string, []any, error) {
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return "", nil, apperrors.BadRequest(fmt.Sprintf("invalid where: %s expects a non-empty list of conditions", op))
	}

	parts := make([]string, 0, len(items))
	var args []any
	for _, item := range items {
		cond, ok := item.(map[string]any)
		if !ok || len(cond) == 0 {
			return "", nil, apperrors.BadRequest(fmt.Sprintf("invalid where: %s expects a non-empty list of conditions", op))
		}
		clause, condArgs, err := buildAnd(cond, cols)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, clause)
		args = append(args, condArgs...)
	}

	return "(" + strings.Join(parts, " "+strings.ToUpper(op)+" ") + ")", args, nil
}

func buildField(field string, value any, cols Columns) (string, []any, error) {
	column, ok := cols[field]
	if !ok {
		return "", nil, apperrors.BadRequest(fmt.Sprintf("invalid where: unknown field %q", field))
	}

	ops, isOps := value.(map[string]any)
	if !isOps {
		return buildOperator(field, column, "eq", value)
	}
	if len(ops) == 0 {
		return "", nil, apperrors.BadRequest(fmt.Sprintf("invalid where: empty condition for %q", field))
	}

	names := make([]string, 0, len(ops))
	for op := range ops {
		names = append(names, op)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	var args []any
	for _, op := range names {
		clause, opArgs, err := buildOperator(field, column, op, ops[op])
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, clause)
		args = append(args, opArgs...)
	}
	if len(parts) == 1 {
		return parts[0], args, nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", args, nil
}

func buildOperator(field, column, op string, value any) (string, []any, error) {
	switch op {
	case "eq", "neq":
		if value == nil {
			if op == "eq" {
				return column + " IS NULL", nil, nil
			}
			return column + " IS NOT NULL", nil, nil
		}
		fallthrough
	case "gt", "gte", "lt", "lte":
		arg, err := scalar(field, value)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s %s ?", column, comparisons[op]), []any{arg}, nil

	case "inq", "nin":
		items, ok := value.([]any)
		if !ok {
			return "", nil, apperrors.BadRequest(fmt.Sprintf("invalid where: %s on %q expects a list", op, field))
		}
		if len(items) == 0 {
			if op == "inq" {
				return "1 = 0", nil, nil
			}
			return "1 = 1", nil, nil
		}
		args := make([]any, 0, len(items))
		for _, item := range items {
			arg, err := scalar(field, item)
			if err != nil {
				return "", nil, err
			}
			args = append(args, arg)
		}
		keyword := "IN"
		if op == "nin" {
			keyword = "NOT IN"
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
		return fmt.Sprintf("%s %s (%s)", column, keyword, placeholders), args, nil

	case "like", "nlike":
		pattern, ok := value.(string)
		if !ok {
			return "", nil, apperrors.BadRequest(fmt.Sprintf("invalid where: %s on %q expects a string", op, field))
		}
		keyword := "LIKE"
		if op == "nlike" {
			keyword = "NOT LIKE"
		}
		return fmt.Sprintf("%s %s ?", column, keyword), []any{pattern}, nil

	case "between":
		bounds, ok := value.([]any)
		if !ok || len(bounds) != 2 {
			return "", nil, apperrors.BadRequest(fmt.Sprintf("invalid where: between on %q expects two values", field))
		}
		low, err := scalar(field, bounds[0])
		if err != nil {
			return "", nil, err
		}
		high, err := scalar(field, bounds[1])
		if err != nil {
			return "", nil, err
		}
		return column + " BETWEEN ? AND ?", []any{low, high}, nil

	default:
		return "", nil, apperrors.BadRequest(fmt.Sprintf("invalid where: unsupported operator %q on %q", op, field))
	}
}

// scalar converts a decoded JSON value into a driver argument
func scalar(field string, value any) (any, error) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid where: bad number for %q", field))
		}
		return f, nil
	case string, bool, int, int64, float64:
		return v, nil
	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid where: unsupported value for %q", field))
	}
}

// BuildOrder renders "field [ASC|DESC]" entries as an ORDER BY list
func BuildOrder(order []string, cols Columns) (string, error) {
	if len(order) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(order))
	for _, entry := range order {
		tokens := strings.Fields(entry)
		if len(tokens) == 0 || len(tokens) > 2 {
			return "", apperrors.BadRequest(fmt.Sprintf("invalid filter: bad order %q", entry))
		}
		column, ok := cols[tokens[0]]
		if !ok {
			return "", apperrors.BadRequest(fmt.Sprintf("invalid filter: unknown order field %q", tokens[0]))
		}
		direction := "ASC"
		if len(tokens) == 2 {
			direction = strings.ToUpper(tokens[1])
			if direction != "ASC" && direction != "DESC" {
				return "", apperrors.BadRequest(fmt.Sprintf("invalid filter: bad order direction %q", tokens[1]))
			}
		}
		parts = append(parts, column+" "+direction)
	}
	return strings.Join(parts, ", "), nil
}

// BuildLimit renders the pagination suffix; zero limit means unlimited
func BuildLimit(limit, skip int) string {
	switch {
	case limit > 0 && skip > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, skip)
	case limit > 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case skip > 0:
		// MySQL has no OFFSET without LIMIT
		return fmt.Sprintf("LIMIT 18446744073709551615 OFFSET %d", skip)
	default:
		return ""
	}
}
