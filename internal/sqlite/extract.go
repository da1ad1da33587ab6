package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/sqlite-export/pkg/types"
)

// listTablesSQL reads user table names from the schema catalog in stable
// byte-wise order.
const listTablesSQL = "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name"

// ListTables returns the names of every table in the schema catalog, sorted
// by name. The order drives both extraction order and document key order.
func (d *DB) ListTables(ctx context.Context) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	d.log.WithField("tables", len(names)).Debug("discovered tables")
	return names, nil
}

// ReadTable reads every row of the named table. Columns keep the order the
// table reports and values are returned as stored. On any error the rows
// read so far are discarded.
func (d *DB) ReadTable(ctx context.Context, name string) ([]types.Row, error) {
	cols, err := d.columns(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := d.sql.QueryContext(ctx, selectStoredSQL(name, cols))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []types.Row{}
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", len(out)+1, err)
		}
		row := make(types.Row, len(cols))
		for i, col := range cols {
			v, err := types.FromDriver(raw[i])
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", len(out)+1, col, err)
			}
			row[i] = types.Field{Name: col, Value: v}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// columns returns the table's column names in declaration order.
func (d *DB) columns(ctx context.Context, name string) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name)+" LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}
	return cols, rows.Err()
}

// selectStoredSQL selects each column as +"col". The unary plus keeps the
// stored value and storage class but drops the declared type, so the driver
// does not parse DATE or DATETIME text into time values.
func selectStoredSQL(name string, cols []string) string {
	exprs := make([]string, len(cols))
	for i, col := range cols {
		q := quoteIdent(col)
		exprs[i] = "+" + q + " AS " + q
	}
	return "SELECT " + strings.Join(exprs, ", ") + " FROM " + quoteIdent(name)
}

// Extract reads each named table in order. A table that fails is recorded
// with its error and no rows, and extraction moves on. onTable, when not
// nil, is called after each table.
func (d *DB) Extract(ctx context.Context, names []string, onTable func(types.TableResult)) []types.TableResult {
	results := make([]types.TableResult, 0, len(names))
	for _, name := range names {
		res := types.TableResult{Name: name}
		rows, err := d.ReadTable(ctx, name)
		if err != nil {
			res.Err = err
			d.log.WithField("table", name).WithError(err).Warn("table read failed")
		} else {
			res.Rows = rows
			d.log.WithField("table", name).WithField("rows", len(rows)).Debug("table read")
		}
		results = append(results, res)
		if onTable != nil {
			onTable(res)
		}
	}
	return results
}

// quoteIdent quotes a SQLite identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
