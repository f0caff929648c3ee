package datastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rebeliceyang/lazyprod/internal/filter"
	"github.com/rebeliceyang/lazyprod/internal/models"
)

var (
	// ErrInvalidSnapshot is returned when loaded data breaks a model invariant
	ErrInvalidSnapshot = errors.New("invalid datastore snapshot")
	// ErrUnknownDriver is returned by Open for an unrecognised driver name
	ErrUnknownDriver = errors.New("unknown datastore driver")
)

// Source supplies the product catalog
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
	Properties(ctx context.Context) ([]models.Property, error)
	Operators(ctx context.Context) ([]models.Operator, error)
	Close() error
}

// Snapshot is a fully materialised, read-only copy of a Source
type Snapshot struct {
	Products   []models.Product
	Properties []models.Property
	Operators  []models.Operator
}

// catalogReader is implemented by sources that can return all three
// collections from one consistent read
type catalogReader interface {
	readAll(ctx context.Context) ([]models.Product, []models.Property, []models.Operator, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads everything from src and validates it. When the source supplies
// no operators the built-in catalog is used.
func Load(ctx context.Context, src Source) (*Snapshot, error) {
	var (
		products   []models.Product
		properties []models.Property
		operators  []models.Operator
		err        error
	)
	if r, ok := src.(catalogReader); ok {
		products, properties, operators, err = r.readAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	} else {
		if products, err = src.Products(ctx); err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		if properties, err = src.Properties(ctx); err != nil {
			return nil, fmt.Errorf("failed to load properties: %w", err)
		}
		if operators, err = src.Operators(ctx); err != nil {
			return nil, fmt.Errorf("failed to load operators: %w", err)
		}
	}
	if len(operators) == 0 {
		operators = filter.DefaultOperators()
	}

	snap := &Snapshot{
		Products:   products,
		Properties: properties,
		Operators:  operators,
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Validate checks field constraints and id uniqueness
func (s *Snapshot) Validate() error {
	propertyIDs := make(map[int]bool, len(s.Properties))
	for _, p := range s.Properties {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("%w: property %d: %v", ErrInvalidSnapshot, p.ID, err)
		}
		if propertyIDs[p.ID] {
			return fmt.Errorf("%w: duplicate property id %d", ErrInvalidSnapshot, p.ID)
		}
		propertyIDs[p.ID] = true
	}

	operatorIDs := make(map[models.OperatorID]bool, len(s.Operators))
	for _, op := range s.Operators {
		if err := validate.Struct(op); err != nil {
			return fmt.Errorf("%w: operator %q: %v", ErrInvalidSnapshot, op.ID, err)
		}
		if operatorIDs[op.ID] {
			return fmt.Errorf("%w: duplicate operator id %q", ErrInvalidSnapshot, op.ID)
		}
		operatorIDs[op.ID] = true
	}

	productIDs := make(map[int]bool, len(s.Products))
	for _, p := range s.Products {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("%w: product %d: %v", ErrInvalidSnapshot, p.ID, err)
		}
		if productIDs[p.ID] {
			return fmt.Errorf("%w: duplicate product id %d", ErrInvalidSnapshot, p.ID)
		}
		productIDs[p.ID] = true
	}

	return nil
}

// propertyRow is one row of the properties table
type propertyRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
	Type string `db:"type"`
}

func assembleProperties(rows []propertyRow) []models.Property {
	properties := make([]models.Property, 0, len(rows))
	for _, r := range rows {
		properties = append(properties, models.Property{
			ID:   r.ID,
			Name: r.Name,
			Type: models.PropertyType(r.Type),
		})
	}
	return properties
}

// valueRow is one stored property value; kind selects which column holds it
type valueRow struct {
	ProductID  int     `db:"product_id"`
	PropertyID int     `db:"property_id"`
	Kind       string  `db:"kind"`
	Text       string  `db:"value_text"`
	Number     float64 `db:"value_num"`
}

func (r valueRow) value() models.Value {
	if models.PropertyType(r.Kind) == models.TypeNumber {
		return models.NumberValue(r.Number)
	}
	return models.StringValue(r.Text)
}

func rowFor(productID int, pv models.PropertyValue) valueRow {
	r := valueRow{
		ProductID:  productID,
		PropertyID: pv.PropertyID,
		Kind:       string(pv.Value.Type()),
	}
	if n, ok := pv.Value.AsNumber(); ok {
		r.Number = n
	} else {
		r.Text, _ = pv.Value.AsString()
	}
	return r
}

// assembleProducts attaches value rows to their products, keeping the
// order of productIDs and of rows within a product
func assembleProducts(productIDs []int, rows []valueRow) []models.Product {
	products := make([]models.Product, len(productIDs))
	index := make(map[int]int, len(productIDs))
	for i, id := range productIDs {
		products[i] = models.Product{ID: id}
		index[id] = i
	}

	for _, r := range rows {
		i, ok := index[r.ProductID]
		if !ok {
			continue
		}
		products[i].PropertyValues = append(products[i].PropertyValues, models.PropertyValue{
			PropertyID: r.PropertyID,
			Value:      r.value(),
		})
	}
	return products
}

// operatorRow is one (operator, supported type) pair
type operatorRow struct {
	ID   string `db:"id"`
	Text string `db:"text"`
	Type string `db:"type"`
}

func assembleOperators(rows []operatorRow) []models.Operator {
	var operators []models.Operator
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.ID]
		if !ok {
			operators = append(operators, models.Operator{ID: models.OperatorID(r.ID), Text: r.Text})
			i = len(operators) - 1
			index[r.ID] = i
		}
		operators[i].SupportedTypes = append(operators[i].SupportedTypes, models.PropertyType(r.Type))
	}
	return operators
}
