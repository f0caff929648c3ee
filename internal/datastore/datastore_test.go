package datastore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rebeliceyang/lazyprod/internal/config"
	"github.com/rebeliceyang/lazyprod/internal/logger"
	"github.com/rebeliceyang/lazyprod/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
properties:
  - id: 1
    name: Color
    type: string
  - id: 2
    name: Size
    type: number
operators:
  - id: equals
    text: Equals
    supported_types: [string, number]
  - id: in
    text: In
    supported_types: [string]
products:
  - id: 1
    property_values:
      - property_id: 1
        value: Red
      - property_id: 2
        value: 10
  - id: 2
    property_values:
      - property_id: 1
        value: Blue
      - property_id: 2
        value: 20
`

// staticSource serves fixed collections
type staticSource struct {
	products   []models.Product
	properties []models.Property
	operators  []models.Operator
	err        error
}

func (s *staticSource) Products(context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func (s *staticSource) Properties(context.Context) ([]models.Property, error) {
	return s.properties, nil
}

func (s *staticSource) Operators(context.Context) ([]models.Operator, error) {
	return s.operators, nil
}

func (s *staticSource) Close() error { return nil }

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_FileSource(t *testing.T) {
	src := NewFileSource(writeCatalog(t, catalogYAML))
	defer func() { _ = src.Close() }()

	snap, err := Load(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, snap.Properties, 2)
	require.Len(t, snap.Operators, 2)
	require.Len(t, snap.Products, 2)

	assert.Equal(t, "Color", snap.Properties[0].Name)
	assert.Equal(t, models.TypeNumber, snap.Properties[1].Type)
	assert.Equal(t, []models.PropertyType{models.TypeString}, snap.Operators[1].SupportedTypes)

	size, ok := snap.Products[1].ValueFor(2)
	require.True(t, ok)
	n, isNumber := size.Value.AsNumber()
	assert.True(t, isNumber)
	assert.Equal(t, 20.0, n)
}

func TestLoad_FileSourceRereadsOnReload(t *testing.T) {
	path := writeCatalog(t, catalogYAML)
	src := NewFileSource(path)

	snap, err := Load(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, snap.Products, 2)

	require.NoError(t, os.WriteFile(path, []byte("properties: []\nproducts: []\n"), 0644))

	snap, err = Load(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, snap.Products)
	assert.NotEmpty(t, snap.Operators, "default operators apply to the new catalog")
}

func TestLoad_FileSourceConcurrentReloads(t *testing.T) {
	path := writeCatalog(t, catalogYAML)
	src := NewFileSource(path)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := Load(context.Background(), src)
			if err != nil {
				errs <- err
				return
			}
			if len(snap.Products) != 2 || len(snap.Properties) != 2 {
				errs <- fmt.Errorf("inconsistent snapshot: %d products, %d properties",
					len(snap.Products), len(snap.Properties))
			}
		}()
		// getters share the cache that Load replaces
		_, _ = src.Properties(context.Background())
		src.Reset()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestLoad_DefaultOperators(t *testing.T) {
	src := &staticSource{
		properties: []models.Property{{ID: 1, Name: "Color", Type: models.TypeString}},
	}

	snap, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, snap.Operators, 7)
}

func TestLoad_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Load(context.Background(), &staticSource{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestValidate(t *testing.T) {
	cases := map[string]*staticSource{
		"duplicate property": {
			properties: []models.Property{
				{ID: 1, Name: "Color", Type: models.TypeString},
				{ID: 1, Name: "Size", Type: models.TypeNumber},
			},
		},
		"unnamed property": {
			properties: []models.Property{{ID: 1, Type: models.TypeString}},
		},
		"operator without types": {
			operators: []models.Operator{{ID: models.OpEquals, Text: "Equals"}},
		},
		"duplicate operator": {
			operators: []models.Operator{
				{ID: models.OpEquals, Text: "Equals", SupportedTypes: []models.PropertyType{models.TypeString}},
				{ID: models.OpEquals, Text: "Equals", SupportedTypes: []models.PropertyType{models.TypeNumber}},
			},
		},
		"duplicate product": {
			products: []models.Product{{ID: 7}, {ID: 7}},
		},
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(context.Background(), src)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}

func TestFileSource_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load(context.Background(), src)
	assert.Error(t, err)
}

func TestFileSource_JSON(t *testing.T) {
	path := writeCatalog(t, `{"properties": [{"id": 1, "name": "Color", "type": "string"}], `+
		`"products": [{"id": 1, "property_values": [{"property_id": 1, "value": "Red"}]}]}`)

	snap, err := Load(context.Background(), NewFileSource(path))
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Red", snap.Products[0].PropertyValues[0].Value.String())
}

func TestWriteFile_RoundTrip(t *testing.T) {
	snap, err := Load(context.Background(), NewFileSource(writeCatalog(t, catalogYAML)))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "copy.yaml")
	require.NoError(t, WriteFile(out, snap))

	back, err := Load(context.Background(), NewFileSource(out))
	require.NoError(t, err)
	assert.Equal(t, snap.Properties, back.Properties)
	assert.Equal(t, snap.Operators, back.Operators)
	require.Len(t, back.Products, 2)
	assert.True(t, back.Products[0].PropertyValues[1].Value.Equal(models.NumberValue(10)))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatastoreConfig{Driver: "mongo"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpen_File(t *testing.T) {
	src, err := Open(context.Background(), config.DatastoreConfig{Driver: "file", Path: "x.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "x.yaml", WatchPath(src))
}

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	path := writeCatalog(t, catalogYAML)

	w, err := NewWatcher(path, logger.Discard())
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.WriteFile(path, []byte(catalogYAML+"\n"), 0644))

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := writeCatalog(t, catalogYAML)

	w, err := NewWatcher(path, logger.Discard())
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	other := filepath.Join(filepath.Dir(path), "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("x: 1\n"), 0644))

	select {
	case <-w.Changes():
		t.Fatal("unexpected change notification")
	case <-time.After(2 * debounceDelay):
	}
}
