package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
)

// WorkingTable is the single table every generated query selects from.
const WorkingTable = "uploaded_data"

// Declared column types. Only booleans and timestamps are declared so the
// driver can hand them back as bool and time.Time; everything else is stored
// without affinity and round-trips as inserted.
//
// A column holding more than one kind of value is undeclared and keeps each
// cell's kind in its storage class: numbers as REAL, booleans as INTEGER,
// strings as TEXT and times as a BLOB of RFC 3339 text. Results read from such
// a column by name are mapped back, so SELECT * returns the loaded cells.
const (
	declBoolean   = "BOOLEAN"
	declTimestamp = "TIMESTAMP"
)

type tableColumn struct {
	name string
	decl string
}

// SQLiteExecutor owns the in-memory working table and runs trusted SQL
// against it. Calls are serialized.
type SQLiteExecutor struct {
	mu sync.Mutex
	db *sql.DB

	// mixed names the loaded columns that hold more than one kind.
	mixed map[string]bool
}

// NewSQLiteExecutor opens the engine. An empty dsn means a private in-memory
// database.
func NewSQLiteExecutor(dsn string) (*SQLiteExecutor, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection so the working table is visible to every call.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteExecutor{db: db}, nil
}

// Close releases the database.
func (e *SQLiteExecutor) Close() error {
	return e.db.Close()
}

// Execute loads rows into the working table, replacing whatever it held, and
// then runs query against it.
func (e *SQLiteExecutor) Execute(ctx context.Context, query string, rows []domain.Row) ([]domain.Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.load(ctx, rows); err != nil {
		return nil, err
	}
	return e.run(ctx, query)
}

// Load replaces the working table contents with rows.
func (e *SQLiteExecutor) Load(ctx context.Context, rows []domain.Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx, rows)
}

// Run executes query against the table as it stands.
func (e *SQLiteExecutor) Run(ctx context.Context, query string) ([]domain.Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run(ctx, query)
}

// Reset drops the working table so nothing from the previous dataset is
// visible to later queries.
func (e *SQLiteExecutor) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(WorkingTable)); err != nil {
		return fmt.Errorf("failed to drop working table: %w", err)
	}
	e.mixed = nil
	return nil
}

func (e *SQLiteExecutor) load(ctx context.Context, rows []domain.Row) error {
	want, mixed := layoutOf(rows)

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return lerrors.Wrap(lerrors.KindExecution, "failed to load working table", err)
	}
	defer tx.Rollback()

	have, err := tableInfo(ctx, tx, WorkingTable)
	if err != nil {
		return lerrors.Wrap(lerrors.KindExecution, "failed to load working table", err)
	}

	switch {
	case len(want) == 0:
		// No columns to declare. Clear an existing table and leave it at that.
		if len(have) > 0 {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(WorkingTable)); err != nil {
				return lerrors.Wrap(lerrors.KindExecution, "failed to clear working table", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return lerrors.Wrap(lerrors.KindExecution, "failed to load working table", err)
		}
		e.mixed = nil
		return nil
	case sameLayout(have, want):
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(WorkingTable)); err != nil {
			return lerrors.Wrap(lerrors.KindExecution, "failed to clear working table", err)
		}
	default:
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(WorkingTable)); err != nil {
			return lerrors.Wrap(lerrors.KindExecution, "failed to drop working table", err)
		}
		if _, err := tx.ExecContext(ctx, createStatement(want)); err != nil {
			return lerrors.Wrap(lerrors.KindExecution, "failed to create working table", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertStatement(want))
	if err != nil {
		return lerrors.Wrap(lerrors.KindExecution, "failed to prepare insert", err)
	}
	defer stmt.Close()

	args := make([]any, len(want))
	for _, row := range rows {
		for i, col := range want {
			v, _ := row.Get(col.name)
			args[i] = v.Value()
			if mixed[col.name] {
				args[i] = mixedCell(v)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return lerrors.Wrap(lerrors.KindExecution, "failed to insert row", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return lerrors.Wrap(lerrors.KindExecution, "failed to load working table", err)
	}
	e.mixed = mixed
	return nil
}

func (e *SQLiteExecutor) run(ctx context.Context, query string) ([]domain.Row, error) {
	rs, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.KindExecution, "SQL execution failed", err)
	}
	defer rs.Close()

	cols, err := rs.Columns()
	if err != nil {
		return nil, lerrors.Wrap(lerrors.KindExecution, "SQL execution failed", err)
	}
	keys := uniqueKeys(cols)

	out := make([]domain.Row, 0)
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rs.Next() {
		if err := rs.Scan(ptrs...); err != nil {
			return nil, lerrors.Wrap(lerrors.KindExecution, "SQL execution failed", err)
		}
		fields := make([]domain.Field, len(keys))
		for i, k := range keys {
			v := domain.ScalarOf(values[i])
			if e.mixed[cols[i]] {
				v = fromMixedCell(values[i])
			}
			fields[i] = domain.F(k, v)
		}
		out = append(out, domain.NewRow(fields...))
	}
	if err := rs.Err(); err != nil {
		return nil, lerrors.Wrap(lerrors.KindExecution, "SQL execution failed", err)
	}
	return out, nil
}

// layoutOf collects column names in first-seen order across all rows, picks a
// declared type for each and reports which columns hold mixed kinds.
func layoutOf(rows []domain.Row) ([]tableColumn, map[string]bool) {
	var order []string
	kinds := make(map[string]map[domain.ScalarKind]bool)
	for _, row := range rows {
		for _, f := range row.Fields() {
			seen, ok := kinds[f.Key]
			if !ok {
				seen = make(map[domain.ScalarKind]bool)
				kinds[f.Key] = seen
				order = append(order, f.Key)
			}
			if !f.Value.IsNull() {
				seen[f.Value.Kind()] = true
			}
		}
	}

	cols := make([]tableColumn, len(order))
	mixed := make(map[string]bool)
	for i, name := range order {
		cols[i] = tableColumn{name: name, decl: declFor(kinds[name])}
		if len(kinds[name]) > 1 {
			mixed[name] = true
		}
	}
	return cols, mixed
}

// mixedCell encodes v for an undeclared column shared by several kinds.
func mixedCell(v domain.Scalar) any {
	switch v.Kind() {
	case domain.KindBool:
		if v.Truth() {
			return int64(1)
		}
		return int64(0)
	case domain.KindTime:
		return []byte(v.Moment().Format(time.RFC3339Nano))
	default:
		return v.Value()
	}
}

// fromMixedCell reverses mixedCell. Numbers are bound as float64 and come
// back as REAL, so an integer can only be a boolean.
func fromMixedCell(v any) domain.Scalar {
	switch x := v.(type) {
	case int64:
		return domain.Bool(x != 0)
	case []byte:
		if t, err := time.Parse(time.RFC3339Nano, string(x)); err == nil {
			return domain.Time(t)
		}
		return domain.String(string(x))
	default:
		return domain.ScalarOf(v)
	}
}

func declFor(kinds map[domain.ScalarKind]bool) string {
	if len(kinds) != 1 {
		return ""
	}
	switch {
	case kinds[domain.KindBool]:
		return declBoolean
	case kinds[domain.KindTime]:
		return declTimestamp
	default:
		return ""
	}
}

func tableInfo(ctx context.Context, tx *sql.Tx, table string) ([]tableColumn, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []tableColumn
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, tableColumn{name: name, decl: strings.ToUpper(ctype)})
	}
	return cols, rows.Err()
}

func sameLayout(a, b []tableColumn) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func createStatement(cols []tableColumn) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = strings.TrimSpace(quoteIdent(c.name) + " " + c.decl)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(WorkingTable), strings.Join(defs, ", "))
}

func insertStatement(cols []tableColumn) string {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(WorkingTable), strings.Join(names, ", "), strings.Join(marks, ", "))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// uniqueKeys suffixes repeated result column names so no value is lost
// when the row is keyed by name.
func uniqueKeys(cols []string) []string {
	out := make([]string, len(cols))
	used := make(map[string]bool, len(cols))
	for i, c := range cols {
		name := c
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", c, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}
