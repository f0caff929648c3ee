package filter

import (
	"github.com/rebeliceyang/lazyprod/internal/models"
)

// DefaultOperators returns the built-in operator catalog
func DefaultOperators() []models.Operator {
	both := []models.PropertyType{models.TypeString, models.TypeNumber}
	return []models.Operator{
		{ID: models.OpEquals, Text: "Equals", SupportedTypes: both},
		{ID: models.OpGreaterThan, Text: "Is greater than", SupportedTypes: []models.PropertyType{models.TypeNumber}},
		{ID: models.OpLessThan, Text: "Is less than", SupportedTypes: []models.PropertyType{models.TypeNumber}},
		{ID: models.OpAny, Text: "Has any value", SupportedTypes: both},
		{ID: models.OpNone, Text: "Has no value", SupportedTypes: both},
		{ID: models.OpIn, Text: "Is any of", SupportedTypes: both},
		{ID: models.OpContains, Text: "Contains", SupportedTypes: []models.PropertyType{models.TypeString}},
	}
}

// OperatorsForType returns the operators of a catalog that apply to a property type
func OperatorsForType(ops []models.Operator, t models.PropertyType) []models.Operator {
	available := make([]models.Operator, 0, len(ops))
	for _, op := range ops {
		if op.Supports(t) {
			available = append(available, op)
		}
	}
	return available
}

// CandidateValues collects the distinct values products hold for a property,
// keeping only values whose kind the operator supports. Values are keyed by
// their string form and returned in first-seen order.
func CandidateValues(products []models.Product, propertyID int, op models.Operator) []models.PropertyValue {
	seen := make(map[string]struct{})
	var candidates []models.PropertyValue

	for _, p := range products {
		for _, pv := range p.ValuesFor(propertyID) {
			if !op.Supports(pv.Value.Type()) {
				continue
			}
			key := pv.Value.String()
			if _, ok := seen[key]; ok {
				break
			}
			seen[key] = struct{}{}
			candidates = append(candidates, pv)
			break
		}
	}

	return candidates
}
