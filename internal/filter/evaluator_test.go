package filter

import (
	"errors"
	"testing"

	"github.com/rebeliceyang/lazyprod/internal/models"
)

var (
	colorProp = models.Property{ID: 1, Name: "Color", Type: models.TypeString}
	sizeProp  = models.Property{ID: 2, Name: "Size", Type: models.TypeNumber}
)

func testProducts() []models.Product {
	return []models.Product{
		{
			ID: 1,
			PropertyValues: []models.PropertyValue{
				{PropertyID: 1, Value: models.StringValue("Red")},
				{PropertyID: 2, Value: models.NumberValue(10)},
			},
		},
		{
			ID: 2,
			PropertyValues: []models.PropertyValue{
				{PropertyID: 1, Value: models.StringValue("Blue")},
				{PropertyID: 2, Value: models.NumberValue(20)},
			},
		},
		{
			ID: 3,
			PropertyValues: []models.PropertyValue{
				{PropertyID: 1, Value: models.StringValue("Light Blue")},
			},
		},
		{
			ID: 4,
			PropertyValues: []models.PropertyValue{
				// Kind mismatch: a string where a number is expected
				{PropertyID: 2, Value: models.StringValue("large")},
			},
		},
	}
}

func operator(id models.OperatorID) models.Operator {
	for _, op := range DefaultOperators() {
		if op.ID == id {
			return op
		}
	}
	return models.Operator{ID: id}
}

func ids(products []models.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func assertIDs(t *testing.T, got []models.Product, want ...int) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected products %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected products %v, got %v", want, gotIDs)
		}
	}
}

func TestEvaluate_Equals(t *testing.T) {
	got, err := Evaluate(colorProp, operator(models.OpEquals), Single(models.StringValue("Blue")), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, got, 2)
}

func TestEvaluate_EqualsIsStrict(t *testing.T) {
	got, err := Evaluate(sizeProp, operator(models.OpEquals), Single(models.StringValue("10")), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("string \"10\" should not match number 10, got %v", ids(got))
	}
}

func TestEvaluate_GreaterThan(t *testing.T) {
	got, err := Evaluate(sizeProp, operator(models.OpGreaterThan), Single(models.NumberValue(15)), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, got, 2)
}

func TestEvaluate_LessThan(t *testing.T) {
	got, err := Evaluate(sizeProp, operator(models.OpLessThan), Single(models.NumberValue(15)), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, got, 1)
}

func TestEvaluate_NumericWithStringThreshold(t *testing.T) {
	got, err := Evaluate(sizeProp, operator(models.OpGreaterThan), Single(models.StringValue("5")), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("non-numeric threshold should match nothing, got %v", ids(got))
	}
}

func TestEvaluate_Contains(t *testing.T) {
	got, err := Evaluate(colorProp, operator(models.OpContains), Single(models.StringValue("Blue")), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, got, 2, 3)
}

func TestEvaluate_ContainsIgnoresNumbers(t *testing.T) {
	got, err := Evaluate(sizeProp, operator(models.OpContains), Single(models.StringValue("1")), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only product 4 holds a string for Size, and it does not contain "1"
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", ids(got))
	}
}

func TestEvaluate_AnyAndNone(t *testing.T) {
	anyResult, err := Evaluate(sizeProp, operator(models.OpAny), NoValue(), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, anyResult, 1, 2, 4)

	noneResult, err := Evaluate(sizeProp, operator(models.OpNone), NoValue(), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, noneResult, 3)
}

func TestEvaluate_In(t *testing.T) {
	payload := Many(models.StringValue("Red"), models.StringValue("Light Blue"))
	got, err := Evaluate(colorProp, operator(models.OpIn), payload, testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, got, 1, 3)
}

func TestEvaluate_InSingleMatchesEquals(t *testing.T) {
	in, err := Evaluate(colorProp, operator(models.OpIn), Many(models.StringValue("Blue")), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eq, err := Evaluate(colorProp, operator(models.OpEquals), Single(models.StringValue("Blue")), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, in, ids(eq)...)
}

func TestEvaluate_UnsupportedOperator(t *testing.T) {
	_, err := Evaluate(colorProp, models.Operator{ID: "starts_with"}, Single(models.StringValue("B")), testProducts())
	if !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("expected ErrUnsupportedOperator, got %v", err)
	}
}

func TestEvaluate_MissingValue(t *testing.T) {
	_, err := Evaluate(colorProp, operator(models.OpIn), Many(), testProducts())
	if !errors.Is(err, ErrMissingValue) {
		t.Errorf("expected ErrMissingValue, got %v", err)
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	products := testProducts()
	before := ids(products)

	got, err := Evaluate(colorProp, operator(models.OpNone), NoValue(), products)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > 0 {
		got[0].ID = 99
	}

	after := ids(products)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("input modified: %v -> %v", before, after)
		}
	}
}

func TestEvaluate_EmptyResultIsNotNil(t *testing.T) {
	got, err := Evaluate(colorProp, operator(models.OpEquals), Single(models.StringValue("Green")), testProducts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Error("expected empty, non-nil result")
	}
}

func TestOperatorsForType(t *testing.T) {
	ops := []models.Operator{
		{ID: models.OpEquals, Text: "Equals", SupportedTypes: []models.PropertyType{models.TypeString, models.TypeNumber}},
		{ID: models.OpIn, Text: "In", SupportedTypes: []models.PropertyType{models.TypeString}},
	}

	size := OperatorsForType(ops, models.TypeNumber)
	if len(size) != 1 || size[0].ID != models.OpEquals {
		t.Errorf("expected only equals for number, got %v", size)
	}

	color := OperatorsForType(ops, models.TypeString)
	if len(color) != 2 || color[0].ID != models.OpEquals || color[1].ID != models.OpIn {
		t.Errorf("expected equals and in for string, got %v", color)
	}

	if len(OperatorsForType(ops, "date")) != 0 {
		t.Error("expected no operators for unknown type")
	}
}

func TestCandidateValues(t *testing.T) {
	products := append(testProducts(), models.Product{
		ID: 5,
		PropertyValues: []models.PropertyValue{
			{PropertyID: 1, Value: models.StringValue("Red")},
			{PropertyID: 2, Value: models.NumberValue(10)},
		},
	})

	colors := CandidateValues(products, colorProp.ID, operator(models.OpEquals))
	want := []string{"Red", "Blue", "Light Blue"}
	if len(colors) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(colors))
	}
	for i, w := range want {
		if colors[i].Value.String() != w {
			t.Errorf("candidate %d: expected %q, got %q", i, w, colors[i].Value.String())
		}
	}

	// greater_than supports numbers only, so the stray "large" string is dropped
	sizes := CandidateValues(products, sizeProp.ID, operator(models.OpGreaterThan))
	if len(sizes) != 2 || sizes[0].Value.String() != "10" || sizes[1].Value.String() != "20" {
		t.Errorf("expected [10 20], got %v", sizes)
	}
}

func TestCandidateValues_NoneFound(t *testing.T) {
	got := CandidateValues(testProducts(), 42, operator(models.OpEquals))
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		op      models.OperatorID
		payload Payload
		want    string
	}{
		{models.OpEquals, Single(models.StringValue("Blue")), "Color equals Blue"},
		{models.OpIn, Many(models.StringValue("Red"), models.StringValue("Blue")), "Color is any of (Red, Blue)"},
		{models.OpAny, NoValue(), "Color has any value"},
		{models.OpContains, NoValue(), "Color contains …"},
	}

	for _, tc := range cases {
		if got := Describe(colorProp, operator(tc.op), tc.payload); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}
