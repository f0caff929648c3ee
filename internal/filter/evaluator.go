package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyprod/internal/models"
)

var (
	// ErrUnsupportedOperator is returned for an operator id the evaluator does not know
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrMissingValue is returned when a value-taking operator gets an empty payload
	ErrMissingValue = errors.New("operator requires a value")
)

// Payload is the value(s) a condition compares against
type Payload struct {
	Values []models.Value
}

// Single creates a payload for single-value operators
func Single(v models.Value) Payload {
	return Payload{Values: []models.Value{v}}
}

// Many creates a payload for the multi-value operator
func Many(vs ...models.Value) Payload {
	return Payload{Values: vs}
}

// NoValue creates an empty payload for any/none
func NoValue() Payload {
	return Payload{}
}

// Evaluate returns the products whose values for property satisfy op.
// The result is a new slice in input order; products is never modified.
func Evaluate(property models.Property, op models.Operator, payload Payload, products []models.Product) ([]models.Product, error) {
	result := make([]models.Product, 0, len(products))

	switch op.ID {
	case models.OpAny:
		for _, p := range products {
			if p.HasProperty(property.ID) {
				result = append(result, p)
			}
		}
		return result, nil
	case models.OpNone:
		for _, p := range products {
			if !p.HasProperty(property.ID) {
				result = append(result, p)
			}
		}
		return result, nil
	}

	match, err := Predicate(op, payload)
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		for _, pv := range p.ValuesFor(property.ID) {
			if match(pv) {
				result = append(result, p)
				break
			}
		}
	}
	return result, nil
}

// Predicate builds the per-value test for a value-taking operator.
// any and none test presence rather than a value and always match here.
func Predicate(op models.Operator, payload Payload) (func(models.PropertyValue) bool, error) {
	switch op.ID {
	case models.OpAny, models.OpNone:
		return func(models.PropertyValue) bool { return true }, nil
	case models.OpEquals, models.OpGreaterThan, models.OpLessThan, models.OpContains, models.OpIn:
		if len(payload.Values) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingValue, op.ID)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperator, op.ID)
	}

	want := payload.Values[0]

	switch op.ID {
	case models.OpEquals:
		return func(pv models.PropertyValue) bool {
			return pv.Value.Equal(want)
		}, nil
	case models.OpGreaterThan:
		return compareNumbers(want, func(got, threshold float64) bool { return got > threshold }), nil
	case models.OpLessThan:
		return compareNumbers(want, func(got, threshold float64) bool { return got < threshold }), nil
	case models.OpContains:
		needle, ok := want.AsString()
		return func(pv models.PropertyValue) bool {
			haystack, isString := pv.Value.AsString()
			return ok && isString && strings.Contains(haystack, needle)
		}, nil
	default: // models.OpIn
		set := payload.Values
		return func(pv models.PropertyValue) bool {
			for _, v := range set {
				if pv.Value.Equal(v) {
					return true
				}
			}
			return false
		}, nil
	}
}

func compareNumbers(want models.Value, cmp func(got, threshold float64) bool) func(models.PropertyValue) bool {
	threshold, ok := want.AsNumber()
	return func(pv models.PropertyValue) bool {
		got, isNumber := pv.Value.AsNumber()
		return ok && isNumber && cmp(got, threshold)
	}
}
