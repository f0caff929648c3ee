package datastore

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Statement builders for the relational sources. SQLite takes ? placeholders,
// PostgreSQL takes $n.
var (
	sqliteSQL   = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	postgresSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
)

func selectProperties(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select("id", "name", "type").
		From("properties").
		OrderBy("id").
		ToSql()
}

func selectOperators(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select("o.id", "o.text", "t.type").
		From("operators o").
		Join("operator_types t ON t.operator_id = o.id").
		OrderBy("o.position", "o.id", "t.position").
		ToSql()
}

func selectProductIDs(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select("id").
		From("products").
		OrderBy("id").
		ToSql()
}

func selectPropertyValues(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select("product_id", "property_id", "kind", "value_text", "value_num").
		From("property_values").
		OrderBy("product_id", "position").
		ToSql()
}

// statement is one query ready to execute
type statement struct {
	sql  string
	args []any
	what string
}

// catalogTables in delete order
var catalogTables = []string{"property_values", "products", "operator_types", "operators", "properties"}

// importStatements returns the statements that replace the catalog tables
// with the contents of snap
func importStatements(b sq.StatementBuilderType, snap *Snapshot) ([]statement, error) {
	var stmts []statement
	add := func(what string, s sq.Sqlizer) error {
		query, args, err := s.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", what, err)
		}
		stmts = append(stmts, statement{sql: query, args: args, what: what})
		return nil
	}

	for _, table := range catalogTables {
		if err := add("clear "+table, b.Delete(table)); err != nil {
			return nil, err
		}
	}

	for _, p := range snap.Properties {
		ins := b.Insert("properties").
			Columns("id", "name", "type").
			Values(p.ID, p.Name, string(p.Type))
		if err := add(fmt.Sprintf("property %d", p.ID), ins); err != nil {
			return nil, err
		}
	}

	for i, op := range snap.Operators {
		ins := b.Insert("operators").
			Columns("id", "text", "position").
			Values(string(op.ID), op.Text, i)
		if err := add("operator "+string(op.ID), ins); err != nil {
			return nil, err
		}
		for j, t := range op.SupportedTypes {
			ins := b.Insert("operator_types").
				Columns("operator_id", "type", "position").
				Values(string(op.ID), string(t), j)
			if err := add(fmt.Sprintf("operator type %s/%s", op.ID, t), ins); err != nil {
				return nil, err
			}
		}
	}

	for _, p := range snap.Products {
		if err := add(fmt.Sprintf("product %d", p.ID),
			b.Insert("products").Columns("id").Values(p.ID)); err != nil {
			return nil, err
		}
		if len(p.PropertyValues) == 0 {
			continue
		}
		ins := b.Insert("property_values").
			Columns("product_id", "position", "property_id", "kind", "value_text", "value_num")
		for pos, pv := range p.PropertyValues {
			r := rowFor(p.ID, pv)
			ins = ins.Values(r.ProductID, pos, r.PropertyID, r.Kind, r.Text, r.Number)
		}
		if err := add(fmt.Sprintf("values for product %d", p.ID), ins); err != nil {
			return nil, err
		}
	}

	return stmts, nil
}
