// Package filter parses JSON query filters (where, fields, include, order, limit, skip) and renders them as MySQL clauses
package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/onlineshop/backend/internal/apperrors"
)

// Where is a decoded where condition keyed by field name or by "and" / "or"
type Where map[string]any

// Fields selects the properties returned by a query
type Fields struct {
	Only   []string
	Except []string
}

// Empty reports whether no projection was requested
func (f Fields) Empty() bool {
	return len(f.Only) == 0 && len(f.Except) == 0
}

// Filter is the decoded value of the "filter" query parameter
type Filter struct {
	Where   Where
	Fields  Fields
	Include []string
	Order   []string
	Limit   int
	Skip    int
}

type rawFilter struct {
	Where   Where           `json:"where"`
	Fields  json.RawMessage `json:"fields"`
	Include json.RawMessage `json:"include"`
	Order   json.RawMessage `json:"order"`
	Limit   *int            `json:"limit"`
	Skip    *int            `json:"skip"`
	Offset  *int            `json:"offset"`
}

// Parse decodes a JSON filter. An empty string is an empty filter.
func Parse(raw string) (*Filter, error) {
	f := &Filter{}
	if strings.TrimSpace(raw) == "" {
		return f, nil
	}

	var rf rawFilter
	if err := decode(raw, &rf); err != nil {
		return nil, apperrors.BadRequest("invalid filter: malformed JSON")
	}
	f.Where = rf.Where

	var err error
	if f.Fields, err = parseFields(rf.Fields); err != nil {
		return nil, err
	}
	if f.Include, err = parseInclude(rf.Include); err != nil {
		return nil, err
	}
	if f.Order, err = parseOrder(rf.Order); err != nil {
		return nil, err
	}

	if rf.Limit != nil {
		if *rf.Limit < 0 {
			return nil, apperrors.BadRequest("invalid filter: limit must not be negative")
		}
		f.Limit = *rf.Limit
	}
	skip := rf.Skip
	if skip == nil {
		skip = rf.Offset
	}
	if skip != nil {
		if *skip < 0 {
			return nil, apperrors.BadRequest("invalid filter: skip must not be negative")
		}
		f.Skip = *skip
	}

	return f, nil
}

// ParseWhere decodes the JSON "where" query parameter of count and bulk update requests
func ParseWhere(raw string) (Where, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var w Where
	if err := decode(raw, &w); err != nil {
		return nil, apperrors.BadRequest("invalid where: malformed JSON")
	}
	return w, nil
}

// decode keeps numbers as json.Number so integer ids are not turned into floats
func decode(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func parseFields(raw json.RawMessage) (Fields, error) {
	var fields Fields
	if isNull(raw) {
		return fields, nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		fields.Only = names
		return fields, nil
	}

	var flags map[string]bool
	if err := json.Unmarshal(raw, &flags); err != nil {
		return fields, apperrors.BadRequest("invalid filter: fields must be a list of names or an object of booleans")
	}
	for name, selected := range flags {
		if selected {
			fields.Only = append(fields.Only, name)
		} else {
			fields.Except = append(fields.Except, name)
		}
	}
	slices.Sort(fields.Only)
	slices.Sort(fields.Except)
	// Any selected field restricts the result to the selection
	if len(fields.Only) > 0 {
		fields.Except = nil
	}
	return fields, nil
}

func parseInclude(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var item struct {
			Relation string `json:"relation"`
		}
		if err := json.Unmarshal(raw, &item); err != nil || item.Relation == "" {
			return nil, apperrors.BadRequest("invalid filter: include must name relations")
		}
		return []string{item.Relation}, nil
	}

	include := make([]string, 0, len(items))
	for _, item := range items {
		names, err := parseInclude(item)
		if err != nil {
			return nil, err
		}
		include = append(include, names...)
	}
	return include, nil
}

func parseOrder(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}
	var order []string
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, apperrors.BadRequest("invalid filter: order must be a string or a list of strings")
	}
	return order, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Includes reports whether the relation was requested
func (f *Filter) Includes(name string) bool {
	return f != nil && slices.Contains(f.Include, name)
}

// Project applies the field selection to a result; included relations always survive
func (f *Filter) Project(value any) (any, error) {
	if f == nil || f.Fields.Empty() {
		return value, nil
	}
	fields := f.Fields
	if len(fields.Only) > 0 {
		fields.Only = append(slices.Clone(fields.Only), f.Include...)
	}
	return Project(value, fields)
}

// Project keeps the selected properties of a JSON object or of every object in a list
func Project(value any, fields Fields) (any, error) {
	if fields.Empty() {
		return value, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value for projection: %w", err)
	}
	var decoded any
	if err := decode(string(raw), &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode value for projection: %w", err)
	}

	switch v := decoded.(type) {
	case map[string]any:
		return projectObject(v, fields), nil
	case []any:
		for i, item := range v {
			if obj, ok := item.(map[string]any); ok {
				v[i] = projectObject(obj, fields)
			}
		}
		return v, nil
	default:
		return decoded, nil
	}
}

func projectObject(obj map[string]any, fields Fields) map[string]any {
	if len(fields.Only) > 0 {
		projected := make(map[string]any, len(fields.Only))
		for _, name := range fields.Only {
			if v, ok := obj[name]; ok {
				projected[name] = v
			}
		}
		return projected
	}
	for _, name := range fields.Except {
		delete(obj, name)
	}
	return obj
}
