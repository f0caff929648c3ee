package datastore

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rebeliceyang/lazyprod/internal/models"
	"gopkg.in/yaml.v3"
)

// catalog is the on-disk layout of a FileSource
type catalog struct {
	Properties []models.Property `yaml:"properties"`
	Operators  []models.Operator `yaml:"operators,omitempty"`
	Products   []models.Product  `yaml:"products"`
}

// FileSource reads the catalog from a YAML (or JSON) file. The getters parse
// the file on first use and cache it; Load parses it afresh every time.
type FileSource struct {
	path string

	mu      sync.Mutex
	catalog *catalog
}

// NewFileSource creates a source backed by the file at path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the catalog file path
func (f *FileSource) Path() string {
	return f.path
}

func (f *FileSource) load() (*catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.catalog != nil {
		return f.catalog, nil
	}
	return f.parseLocked()
}

// readAll parses the file once and returns all three collections from that
// single parse
func (f *FileSource) readAll(_ context.Context) ([]models.Product, []models.Property, []models.Operator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.parseLocked()
	if err != nil {
		return nil, nil, nil, err
	}
	return c.Products, c.Properties, c.Operators, nil
}

func (f *FileSource) parseLocked() (*catalog, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	f.catalog = &c
	return f.catalog, nil
}

// Products implements Source
func (f *FileSource) Products(_ context.Context) ([]models.Product, error) {
	c, err := f.load()
	if err != nil {
		return nil, err
	}
	return c.Products, nil
}

// Properties implements Source
func (f *FileSource) Properties(_ context.Context) ([]models.Property, error) {
	c, err := f.load()
	if err != nil {
		return nil, err
	}
	return c.Properties, nil
}

// Operators implements Source
func (f *FileSource) Operators(_ context.Context) ([]models.Operator, error) {
	c, err := f.load()
	if err != nil {
		return nil, err
	}
	return c.Operators, nil
}

// Reset drops the cached catalog so the next read parses the file again
func (f *FileSource) Reset() {
	f.mu.Lock()
	f.catalog = nil
	f.mu.Unlock()
}

// Close implements Source
func (f *FileSource) Close() error {
	f.Reset()
	return nil
}

// WriteFile saves a snapshot as a catalog file
func WriteFile(path string, snap *Snapshot) error {
	data, err := yaml.Marshal(catalog{
		Properties: snap.Properties,
		Operators:  snap.Operators,
		Products:   snap.Products,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
