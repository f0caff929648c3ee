package datastore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rebeliceyang/lazyprod/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSource_ImportAndLoad(t *testing.T) {
	ctx := context.Background()

	want, err := Load(ctx, NewFileSource(writeCatalog(t, catalogYAML)))
	require.NoError(t, err)

	src, err := NewSQLiteSource(filepath.Join(t.TempDir(), "products.db"))
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	require.NoError(t, src.Import(ctx, want))

	got, err := Load(ctx, src)
	require.NoError(t, err)

	assert.Equal(t, want.Properties, got.Properties)
	assert.Equal(t, want.Operators, got.Operators)
	require.Len(t, got.Products, len(want.Products))
	for i := range want.Products {
		assert.Equal(t, want.Products[i].ID, got.Products[i].ID)
		require.Len(t, got.Products[i].PropertyValues, len(want.Products[i].PropertyValues))
		for j, pv := range want.Products[i].PropertyValues {
			gotPV := got.Products[i].PropertyValues[j]
			assert.Equal(t, pv.PropertyID, gotPV.PropertyID)
			assert.True(t, pv.Value.Equal(gotPV.Value), "value %d/%d: want %v got %v", i, j, pv.Value, gotPV.Value)
		}
	}
}

func TestSQLiteSource_ImportReplaces(t *testing.T) {
	ctx := context.Background()

	src, err := NewSQLiteSource(filepath.Join(t.TempDir(), "products.db"))
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	first := &Snapshot{
		Properties: []models.Property{{ID: 1, Name: "Color", Type: models.TypeString}},
		Products:   []models.Product{{ID: 1}, {ID: 2}},
	}
	require.NoError(t, src.Import(ctx, first))

	second := &Snapshot{
		Properties: []models.Property{{ID: 2, Name: "Size", Type: models.TypeNumber}},
		Products: []models.Product{{ID: 3, PropertyValues: []models.PropertyValue{
			{PropertyID: 2, Value: models.NumberValue(4.5)},
		}}},
	}
	require.NoError(t, src.Import(ctx, second))

	products, err := src.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 3, products[0].ID)
	assert.True(t, products[0].PropertyValues[0].Value.Equal(models.NumberValue(4.5)))

	props, err := src.Properties(ctx)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "Size", props[0].Name)
}

func TestSQLiteSource_EmptyOperatorsFallBack(t *testing.T) {
	src, err := NewSQLiteSource(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	snap, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Operators)
	assert.Empty(t, snap.Products)
}

func TestSQLiteSource_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "products.db")

	src, err := NewSQLiteSource(path)
	require.NoError(t, err)
	require.NoError(t, src.Import(ctx, &Snapshot{
		Properties: []models.Property{{ID: 1, Name: "Color", Type: models.TypeString}},
		Products:   []models.Product{{ID: 1}},
	}))
	require.NoError(t, src.Close())

	// migrations already applied; opening again must not touch the data
	src, err = NewSQLiteSource(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	products, err := src.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 1, products[0].ID)
}

func TestImportStatements(t *testing.T) {
	snap := &Snapshot{
		Products: []models.Product{
			{ID: 1, PropertyValues: []models.PropertyValue{
				{PropertyID: 1, Value: models.StringValue("Red")},
				{PropertyID: 2, Value: models.NumberValue(10)},
			}},
			{ID: 2},
		},
	}

	stmts, err := importStatements(postgresSQL, snap)
	require.NoError(t, err)

	// five deletes, two product rows, one multi-row values insert
	require.Len(t, stmts, 8)
	assert.Equal(t, "DELETE FROM property_values", stmts[0].sql)
	assert.Equal(t, "INSERT INTO products (id) VALUES ($1)", stmts[5].sql)
	assert.Contains(t, stmts[6].sql, "($1,$2,$3,$4,$5,$6),($7,$8,$9,$10,$11,$12)")
	assert.Equal(t, []any{1, 0, 1, "string", "Red", 0.0, 1, 1, 2, "number", "", 10.0}, stmts[6].args)
	assert.Equal(t, "INSERT INTO products (id) VALUES ($1)", stmts[7].sql)
}

func TestMigrations_ValueColumnIsDoublePrecision(t *testing.T) {
	ddl, err := migrationsFS.ReadFile("migrations/00001_catalog.sql")
	require.NoError(t, err)

	// REAL is float4 in PostgreSQL
	assert.Regexp(t, `value_num\s+DOUBLE PRECISION`, string(ddl))
	assert.NotRegexp(t, `\bREAL\b`, string(ddl))
}

func TestSQLiteSource_NumbersRoundTrip(t *testing.T) {
	ctx := context.Background()

	src, err := NewSQLiteSource(filepath.Join(t.TempDir(), "products.db"))
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	numbers := []float64{19.99, 1<<53 - 1, 16777217, 0.1}
	product := models.Product{ID: 1}
	for _, n := range numbers {
		product.PropertyValues = append(product.PropertyValues,
			models.PropertyValue{PropertyID: 1, Value: models.NumberValue(n)})
	}
	require.NoError(t, src.Import(ctx, &Snapshot{
		Properties: []models.Property{{ID: 1, Name: "Price", Type: models.TypeNumber}},
		Products:   []models.Product{product},
	}))

	products, err := src.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Len(t, products[0].PropertyValues, len(numbers))
	for i, n := range numbers {
		got, ok := products[0].PropertyValues[i].Value.AsNumber()
		require.True(t, ok)
		assert.Equal(t, n, got)
	}
}
