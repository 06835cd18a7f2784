// Package sqlite moves frames in and out of SQLite databases. The data lands
// in one table per frame; the header block lands in a "<table>_headers"
// sidecar table carrying position, name, type tag and rendered value, so a
// later Import can rebuild the header mapping in order and fully typed.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite, no CGO needed.
//   - cgo_sqlite tag: mattn/go-sqlite3, requires CGO_ENABLED=1.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pylhc/tfs-go/core/errors"
	"github.com/pylhc/tfs-go/core/frame"
	"github.com/pylhc/tfs-go/core/types"
)

// DriverName returns the registered SQL driver name for the active build.
func DriverName() string { return driverName }

// DriverType identifies the underlying implementation, "purego" or "cgo".
func DriverType() string { return driverType }

// IsCGO reports whether the mattn/go-sqlite3 driver is active.
func IsCGO() bool { return driverType == "cgo" }

// Open opens a SQLite database using the driver of the active build. Use
// this instead of sql.Open so the right driver name is picked.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// Export writes the frame into the named table of the database at dbPath,
// replacing any previous contents of that table and its header sidecar. A
// present row index is stored as the leading column under its
// marker-prefixed name.
func Export(dbPath, table string, f *frame.Frame) error {
	db, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	cols := f.Columns()
	if idx := f.Index(); idx != nil {
		cols = append([]frame.Column{idx.Renamed(f.MaterializedIndexName(""))}, cols...)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := createDataTable(tx, table, cols); err != nil {
		return err
	}
	if err := insertRows(tx, table, cols, f.NumRows()); err != nil {
		return err
	}
	if err := exportHeaders(tx, table, f.Headers()); err != nil {
		return err
	}
	return tx.Commit()
}

// Import reads the named table back into a frame, restoring headers from the
// sidecar table and promoting a marker-prefixed index column.
func Import(dbPath, table string) (*frame.Frame, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	f, err := importData(db, table)
	if err != nil {
		return nil, err
	}
	headers, err := importHeaders(db, table)
	if err != nil {
		return nil, err
	}
	f.SetHeaders(headers)
	f.PromoteMarkedIndex()
	return f, nil
}

// quoteIdent protects table and column names; TFS names may contain
// characters SQL identifiers can not carry bare.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlType(k types.Kind) (string, error) {
	switch k {
	case types.String, types.Complex:
		return "TEXT", nil
	case types.Int, types.Bool:
		return "INTEGER", nil
	case types.Float:
		return "REAL", nil
	}
	return "", &errors.TypeResolutionError{What: fmt.Sprintf("kind %s has no SQLite mapping", k)}
}

func createDataTable(tx *sql.Tx, table string, cols []frame.Column) error {
	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(table)); err != nil {
		return err
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		st, err := sqlType(c.Kind())
		if err != nil {
			return err
		}
		defs[i] = quoteIdent(c.Name()) + " " + st
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	_, err := tx.Exec(stmt)
	return err
}

func insertRows(tx *sql.Tx, table string, cols []frame.Column, rows int) error {
	if len(cols) == 0 || rows == 0 {
		return nil
	}
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name())
		marks[i] = "?"
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for r := 0; r < rows; r++ {
		for i, c := range cols {
			v, err := cellArg(c, r)
			if err != nil {
				return err
			}
			args[i] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}
	return nil
}

func cellArg(c frame.Column, r int) (any, error) {
	if c.IsNull(r) && c.Kind() == types.String {
		return nil, nil
	}
	switch col := c.(type) {
	case *frame.StringColumn:
		s, _ := col.At(r)
		return s, nil
	case *frame.IntColumn:
		return col.At(r), nil
	case *frame.FloatColumn:
		return col.At(r), nil
	case *frame.BoolColumn:
		if col.At(r) {
			return int64(1), nil
		}
		return int64(0), nil
	case *frame.ComplexColumn:
		return frame.FormatComplex(col.At(r)), nil
	}
	return nil, &errors.TypeResolutionError{What: fmt.Sprintf("column %q", c.Name())}
}

func exportHeaders(tx *sql.Tx, table string, headers *frame.Headers) error {
	sidecar := quoteIdent(table + "_headers")
	if _, err := tx.Exec("DROP TABLE IF EXISTS " + sidecar); err != nil {
		return err
	}
	stmt := fmt.Sprintf(
		"CREATE TABLE %s (pos INTEGER PRIMARY KEY, name TEXT, tag TEXT, value TEXT)", sidecar)
	if _, err := tx.Exec(stmt); err != nil {
		return err
	}
	insert, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (pos, name, tag, value) VALUES (?, ?, ?, ?)", sidecar))
	if err != nil {
		return err
	}
	defer insert.Close()

	for pos, name := range headers.Keys() {
		v, _ := headers.Get(name)
		tag, err := types.KindToTag(v.Kind())
		if err != nil {
			return &errors.TypeResolutionError{What: fmt.Sprintf("header %q", name)}
		}
		if _, err := insert.Exec(pos, name, tag, headerText(v)); err != nil {
			return err
		}
	}
	return nil
}

func headerText(v frame.Value) string {
	switch v.Kind() {
	case types.String:
		return v.Str()
	case types.Int:
		return fmt.Sprintf("%d", v.Int())
	case types.Float:
		return fmt.Sprintf("%g", v.Float())
	case types.Bool:
		return fmt.Sprintf("%t", v.Bool())
	case types.Complex:
		return frame.FormatComplex(v.Complex())
	}
	return "nil"
}

func importData(db *sql.DB, table string) (*frame.Frame, error) {
	rows, err := db.Query("SELECT * FROM " + quoteIdent(table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	builders := make([]frame.Column, len(colTypes))
	for i, ct := range colTypes {
		kind := kindOfDeclared(ct.DatabaseTypeName())
		col, err := frame.NewEmptyColumn(ct.Name(), kind)
		if err != nil {
			return nil, err
		}
		builders[i] = col
	}

	scan := make([]any, len(builders))
	for i := range scan {
		scan[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		for i, b := range builders {
			raw := *(scan[i].(*any))
			if err := appendScanned(b, raw); err != nil {
				return nil, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return frame.New(builders...)
}

// kindOfDeclared maps a declared SQLite column type back to a frame kind.
// Complex and bool columns both lose their identity in SQL storage; they
// come back as string and int, which the TFS codec handles fine.
func kindOfDeclared(declared string) types.Kind {
	switch strings.ToUpper(declared) {
	case "INTEGER", "INT":
		return types.Int
	case "REAL", "FLOAT", "DOUBLE":
		return types.Float
	default:
		return types.String
	}
}

func appendScanned(b frame.Column, raw any) error {
	if raw == nil {
		return b.AppendNull()
	}
	switch v := raw.(type) {
	case string:
		return b.Append(v)
	case []byte:
		return b.Append(string(v))
	case int64:
		// integral REAL values may scan as int64 depending on the driver
		if b.Kind() == types.Float {
			return b.Append(float64(v))
		}
		return b.Append(v)
	case float64:
		return b.Append(v)
	case bool:
		return b.Append(v)
	}
	return errors.Wrapf(errors.ErrFormat, "unsupported scan value %T", raw)
}

func importHeaders(db *sql.DB, table string) (*frame.Headers, error) {
	headers := frame.NewHeaders()
	rows, err := db.Query(
		"SELECT name, tag, value FROM " + quoteIdent(table+"_headers") + " ORDER BY pos")
	if err != nil {
		// a table without the sidecar simply has no headers
		return headers, nil
	}
	defer rows.Close()

	for rows.Next() {
		var name, tag, literal string
		if err := rows.Scan(&name, &tag, &literal); err != nil {
			return nil, err
		}
		v, err := frame.ParseValue(tag, literal)
		if err != nil {
			return nil, err
		}
		if err := headers.Set(name, v); err != nil {
			return nil, err
		}
	}
	return headers, rows.Err()
}
