package calllog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"calllog/pkg/cel"
	"calllog/pkg/models"
)

// Sentinel values meaning "no bound". They are compared as strings, so an
// explicit "0" lower bound can never select a call dated at epoch 0.
const (
	NoMinTimestamp = "0"
	NoMaxTimestamp = "-1"
	emptyList      = "[]"
)

var errExpressionUnsupported = errors.New("expression filters are not enabled")

// Filter is a parsed FilterSpec. The zero value accepts every call.
type Filter struct {
	hasMin       bool
	minTimestamp int64
	hasMax       bool
	maxTimestamp int64
	types        map[string]struct{}
	phoneNumbers map[string]struct{}
	expression   *cel.Program
}

// ParseFilter validates spec and compiles it into a Filter. A nil spec yields
// the accept-all filter. evaluator may be nil, in which case a spec carrying an
// expression is rejected.
func ParseFilter(spec *models.FilterSpec, evaluator *cel.Evaluator) (*Filter, error) {
	f := &Filter{}
	if spec == nil {
		return f, nil
	}

	var err error
	if f.hasMin, f.minTimestamp, err = parseBound("minTimestamp", spec.MinTimestamp, NoMinTimestamp); err != nil {
		return nil, err
	}
	if f.hasMax, f.maxTimestamp, err = parseBound("maxTimestamp", spec.MaxTimestamp, NoMaxTimestamp); err != nil {
		return nil, err
	}
	if f.types, err = parseSet("types", spec.Types); err != nil {
		return nil, err
	}
	if f.phoneNumbers, err = parseSet("phoneNumbers", spec.PhoneNumbers); err != nil {
		return nil, err
	}

	if spec.Expression != nil && *spec.Expression != "" {
		if evaluator == nil {
			return nil, &MalformedFilterError{Field: "expression", Value: *spec.Expression, Err: errExpressionUnsupported}
		}
		program, err := evaluator.CompileFilter(*spec.Expression)
		if err != nil {
			return nil, &MalformedFilterError{Field: "expression", Value: *spec.Expression, Err: err}
		}
		f.expression = program
	}

	return f, nil
}

func parseBound(field string, value *string, sentinel string) (bool, int64, error) {
	if value == nil || *value == sentinel {
		return false, 0, nil
	}
	n, err := strconv.ParseInt(*value, 10, 64)
	if err != nil {
		return false, 0, &MalformedFilterError{Field: field, Value: *value, Err: err}
	}
	return true, n, nil
}

// parseSet decodes a JSON array literal. Non-string elements are kept in their
// JSON text form.
func parseSet(field string, value *string) (map[string]struct{}, error) {
	if value == nil || *value == emptyList {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(*value)))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, &MalformedFilterError{Field: field, Value: *value, Err: err}
	}
	if dec.More() {
		return nil, &MalformedFilterError{Field: field, Value: *value, Err: errors.New("unexpected data after array")}
	}
	if items == nil {
		return nil, &MalformedFilterError{Field: field, Value: *value, Err: errors.New("expected a JSON array")}
	}

	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[listItemString(item)] = struct{}{}
	}
	return set, nil
}

func listItemString(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// reachesLowerBound reports whether a call at date exhausts the lower bound:
// the stream is newest first, so nothing after it can be newer than the bound.
func (f *Filter) reachesLowerBound(date int64) bool {
	return f.hasMin && date <= f.minTimestamp
}

func (f *Filter) matchesNumber(number string) bool {
	if len(f.phoneNumbers) == 0 {
		return true
	}
	_, ok := f.phoneNumbers[number]
	return ok
}

func (f *Filter) matchesType(t CallType) bool {
	if len(f.types) == 0 {
		return true
	}
	_, ok := f.types[string(t)]
	return ok
}

func (f *Filter) matchesMin(date int64) bool {
	return !f.hasMin || date >= f.minTimestamp
}

func (f *Filter) matchesMax(date int64) bool {
	return !f.hasMax || date <= f.maxTimestamp
}

func (f *Filter) hasExpression() bool {
	return f.expression != nil
}

func (f *Filter) matchesExpression(ctx context.Context, call cel.Call) (bool, error) {
	if f.expression == nil {
		return true, nil
	}
	return f.expression.Matches(ctx, call)
}
