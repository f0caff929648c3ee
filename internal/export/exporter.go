package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rebeliceyang/lazyprod/internal/models"
)

// Row is the exported form of a product
type Row struct {
	ID     int                     `json:"id"`
	Values map[string]models.Value `json:"values"`
}

// ExportToCSV writes products as a table with one column per property
func ExportToCSV(properties []models.Property, products []models.Product, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)

	header := make([]string, 0, len(properties)+1)
	header = append(header, "ID")
	for _, p := range properties {
		header = append(header, p.Name)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, product := range products {
		row := make([]string, 0, len(properties)+1)
		row = append(row, strconv.Itoa(product.ID))
		for _, p := range properties {
			cell := ""
			if pv, ok := product.ValueFor(p.ID); ok {
				cell = pv.Value.String()
			}
			row = append(row, cell)
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ExportToJSON writes products as an array of {id, values} objects keyed by
// property name
func ExportToJSON(properties []models.Property, products []models.Product, path string) error {
	rows := make([]Row, 0, len(products))
	for _, product := range products {
		row := Row{ID: product.ID, Values: map[string]models.Value{}}
		for _, p := range properties {
			if pv, ok := product.ValueFor(p.ID); ok {
				row.Values[p.Name] = pv.Value
			}
		}
		rows = append(rows, row)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal products to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}
