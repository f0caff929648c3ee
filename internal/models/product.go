package models

// PropertyType is the scalar kind tag of a property ("string", "number", ...)
type PropertyType string

const (
	TypeString PropertyType = "string"
	TypeNumber PropertyType = "number"
)

// Property is a named, typed attribute that products may carry a value for
type Property struct {
	ID   int          `yaml:"id" json:"id" validate:"gte=0"`
	Name string       `yaml:"name" json:"name" validate:"required"`
	Type PropertyType `yaml:"type" json:"type" validate:"required"`
}

// PropertyValue is the value a product holds for a property
type PropertyValue struct {
	PropertyID int   `yaml:"property_id" json:"property_id"`
	Value      Value `yaml:"value" json:"value"`
}

// Product is a row of the product table
type Product struct {
	ID             int             `yaml:"id" json:"id" validate:"gte=0"`
	PropertyValues []PropertyValue `yaml:"property_values" json:"property_values"`
}

// ValueFor returns the first value the product holds for a property
func (p Product) ValueFor(propertyID int) (PropertyValue, bool) {
	for _, pv := range p.PropertyValues {
		if pv.PropertyID == propertyID {
			return pv, true
		}
	}
	return PropertyValue{}, false
}

// ValuesFor returns every value the product holds for a property
func (p Product) ValuesFor(propertyID int) []PropertyValue {
	var values []PropertyValue
	for _, pv := range p.PropertyValues {
		if pv.PropertyID == propertyID {
			values = append(values, pv)
		}
	}
	return values
}

// HasProperty reports whether the product carries any value for a property
func (p Product) HasProperty(propertyID int) bool {
	_, ok := p.ValueFor(propertyID)
	return ok
}
