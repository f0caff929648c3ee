package selection

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/rebeliceyang/lazyprod/internal/datastore"
	"github.com/rebeliceyang/lazyprod/internal/filter"
	"github.com/rebeliceyang/lazyprod/internal/models"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrUnknownValue    = errors.New("value is not a candidate")
	ErrNoProperty      = errors.New("no property selected")
	ErrNoOperator      = errors.New("no operator selected")
	ErrTooManyValues   = errors.New("operator takes a single value")
)

// Stage is the position of the controller in the selection flow
type Stage int

const (
	StageUnfiltered Stage = iota
	StagePropertySelected
	StageOperatorSelected
	StageFiltered
)

func (s Stage) String() string {
	switch s {
	case StageUnfiltered:
		return "unfiltered"
	case StagePropertySelected:
		return "property selected"
	case StageOperatorSelected:
		return "operator selected"
	case StageFiltered:
		return "filtered"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Controller tracks the chosen property, operator and values and keeps the
// displayed product list in sync with them.
//
// Any change upstream of the value (a new property or a new operator)
// resets the displayed list to the full product list; only a completed
// filter narrows it.
type Controller struct {
	snap   *datastore.Snapshot
	logger *log.Logger

	stage      Stage
	property   *models.Property
	operator   *models.Operator
	values     []models.Value
	available  []models.Operator
	candidates []models.PropertyValue
	display    []models.Product
}

// NewController creates a controller over a loaded snapshot
func NewController(snap *datastore.Snapshot, logger *log.Logger) *Controller {
	if snap == nil {
		snap = &datastore.Snapshot{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Controller{snap: snap, logger: logger}
	c.Clear()
	return c
}

// FindProperty looks up a property by id
func (c *Controller) FindProperty(id int) (models.Property, bool) {
	for _, p := range c.snap.Properties {
		if p.ID == id {
			return p, true
		}
	}
	return models.Property{}, false
}

// FindOperator looks up an operator of the full catalog by id
func (c *Controller) FindOperator(id models.OperatorID) (models.Operator, bool) {
	for _, op := range c.snap.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return models.Operator{}, false
}

// SelectProperty chooses the property to filter on and recomputes the
// operators that apply to its type
func (c *Controller) SelectProperty(id int) error {
	p, ok := c.FindProperty(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProperty, id)
	}

	c.property = &p
	c.operator = nil
	c.values = nil
	c.candidates = nil
	c.available = filter.OperatorsForType(c.snap.Operators, p.Type)
	c.display = c.snap.Products
	c.stage = StagePropertySelected

	c.logger.Debug("property selected", "property", p.Name, "type", p.Type, "operators", len(c.available))
	return nil
}

// SelectOperator chooses the operator. any and none are applied at once;
// other operators expose their candidate values.
func (c *Controller) SelectOperator(id models.OperatorID) error {
	if c.property == nil {
		return ErrNoProperty
	}

	op, ok := c.FindOperator(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperator, id)
	}

	c.operator = &op
	c.values = nil
	c.candidates = nil
	c.display = c.snap.Products

	if !op.TakesValue() {
		return c.apply(filter.NoValue())
	}

	c.candidates = filter.CandidateValues(c.snap.Products, c.property.ID, op)
	c.stage = StageOperatorSelected

	c.logger.Debug("operator selected", "operator", op.ID, "candidates", len(c.candidates))
	return nil
}

// SelectValue applies a single-value operator. key is the candidate's
// string form.
func (c *Controller) SelectValue(key string) error {
	if c.operator == nil {
		return ErrNoOperator
	}

	pv, ok := c.candidate(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownValue, key)
	}

	return c.apply(filter.Single(pv.Value))
}

// SelectValues applies the multi-value operator. Keys that are not
// candidates are skipped; an empty set clears the applied filter. A
// single-value operator accepts at most one key.
func (c *Controller) SelectValues(keys []string) error {
	if c.operator == nil {
		return ErrNoOperator
	}
	if !c.operator.MultiValue() && len(keys) > 1 {
		return fmt.Errorf("%w: %s got %d", ErrTooManyValues, c.operator.ID, len(keys))
	}

	var values []models.Value
	for _, key := range keys {
		if pv, ok := c.candidate(key); ok {
			values = append(values, pv.Value)
		}
	}

	if len(values) == 0 {
		c.values = nil
		c.display = c.snap.Products
		c.stage = StageOperatorSelected
		return nil
	}

	return c.apply(filter.Many(values...))
}

// Clear discards the selection and shows every product
func (c *Controller) Clear() {
	c.stage = StageUnfiltered
	c.property = nil
	c.operator = nil
	c.values = nil
	c.available = nil
	c.candidates = nil
	c.display = c.snap.Products
	c.logger.Debug("filters cleared", "products", len(c.display))
}

func (c *Controller) apply(payload filter.Payload) error {
	result, err := filter.Evaluate(*c.property, *c.operator, payload, c.snap.Products)
	if err != nil {
		return err
	}

	c.values = payload.Values
	c.display = result
	c.stage = StageFiltered

	c.logger.Debug("filter applied",
		"filter", filter.Describe(*c.property, *c.operator, payload),
		"matches", len(result),
		"of", len(c.snap.Products))
	return nil
}

func (c *Controller) candidate(key string) (models.PropertyValue, bool) {
	for _, pv := range c.candidates {
		if pv.Value.String() == key {
			return pv, true
		}
	}
	return models.PropertyValue{}, false
}

// Stage returns the current stage
func (c *Controller) Stage() Stage {
	return c.stage
}

// SelectedProperty returns the chosen property, if any
func (c *Controller) SelectedProperty() (models.Property, bool) {
	if c.property == nil {
		return models.Property{}, false
	}
	return *c.property, true
}

// SelectedOperator returns the chosen operator, if any
func (c *Controller) SelectedOperator() (models.Operator, bool) {
	if c.operator == nil {
		return models.Operator{}, false
	}
	return *c.operator, true
}

// SelectedValues returns the values of the applied filter
func (c *Controller) SelectedValues() []models.Value {
	return c.values
}

// AvailableOperators returns the operators valid for the selected property
func (c *Controller) AvailableOperators() []models.Operator {
	return c.available
}

// Candidates returns the values offered for the selected operator
func (c *Controller) Candidates() []models.PropertyValue {
	return c.candidates
}

// Products returns the list to display
func (c *Controller) Products() []models.Product {
	return c.display
}

// AllProducts returns the unfiltered product list
func (c *Controller) AllProducts() []models.Product {
	return c.snap.Products
}

// Properties returns every property
func (c *Controller) Properties() []models.Property {
	return c.snap.Properties
}

// Operators returns the full operator catalog
func (c *Controller) Operators() []models.Operator {
	return c.snap.Operators
}

// Describe returns the active condition as text, or "" when unfiltered
func (c *Controller) Describe() string {
	if c.property == nil || c.operator == nil {
		return ""
	}
	return filter.Describe(*c.property, *c.operator, filter.Many(c.values...))
}
