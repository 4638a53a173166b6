// Package datarecording stores what a run produced in an SQLite file, one
// table per record type. Tables are declared from sample structs, rows are
// buffered in memory, and everything left over is flushed when the process
// exits.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/structs"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	// SQLite driver for database/sql.
	_ "github.com/mattn/go-sqlite3"
)

// A DataRecorder stores record structs in named tables.
type DataRecorder interface {
	// CreateTable declares a table shaped like the sample entry. Every
	// field of the sample must be a bool, an integer, a float, or a string.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry for a table that was declared earlier.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all declared tables, sorted.
	ListTables() []string

	// Flush writes all buffered entries out.
	Flush()

	// Close flushes and releases the underlying database.
	Close() error
}

const insertBatchSize = 4096

var _ DataRecorder = (*sqliteRecorder)(nil)

// New creates a DataRecorder backed by the file path + ".sqlite3". An empty
// path picks a fresh generated name. The file must not exist yet; recording
// never appends to an earlier run.
func New(path string) DataRecorder {
	if path == "" {
		path = "greenwave_run_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("recording file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	log.Infof("recording to %s", filename)

	r := newWithDB(db)
	atexit.Register(func() { r.Flush() })

	return r
}

// NewWithDB creates a DataRecorder on an already opened database.
func NewWithDB(db *sql.DB) DataRecorder {
	r := newWithDB(db)
	atexit.Register(func() { r.Flush() })

	return r
}

func newWithDB(db *sql.DB) *sqliteRecorder {
	return &sqliteRecorder{
		db:     db,
		tables: make(map[string]*table),
	}
}

type table struct {
	entryType reflect.Type
	entries   []any
}

type sqliteRecorder struct {
	db *sql.DB

	tables     map[string]*table
	entryCount int
}

func (r *sqliteRecorder) CreateTable(tableName string, sampleEntry any) {
	entryMustBeFlat(sampleEntry)

	if _, exists := r.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s is already declared", tableName))
	}

	fields := structs.Names(sampleEntry)
	stmt := "CREATE TABLE " + tableName +
		" (\n\t" + strings.Join(fields, ",\n\t") + "\n);"
	r.mustExecute(stmt)

	r.tables[tableName] = &table{
		entryType: reflect.TypeOf(sampleEntry),
	}
}

func entryMustBeFlat(entry any) {
	entryType := reflect.TypeOf(entry)

	for i := 0; i < entryType.NumField(); i++ {
		switch entryType.Field(i).Type.Kind() {
		case reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16,
			reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16,
			reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64,
			reflect.String:
		default:
			panic(fmt.Sprintf("field %s cannot be recorded",
				entryType.Field(i).Name))
		}
	}
}

func (r *sqliteRecorder) InsertData(tableName string, entry any) {
	t, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s is not declared", tableName))
	}

	if reflect.TypeOf(entry) != t.entryType {
		panic(fmt.Sprintf("entry type %T does not match table %s",
			entry, tableName))
	}

	t.entries = append(t.entries, entry)

	r.entryCount++
	if r.entryCount >= insertBatchSize {
		r.Flush()
	}
}

func (r *sqliteRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (r *sqliteRecorder) Flush() {
	if r.entryCount == 0 {
		return
	}

	r.mustExecute("BEGIN TRANSACTION")
	defer r.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range r.tables {
		r.flushTable(tableName, t)
	}

	r.entryCount = 0
}

func (r *sqliteRecorder) flushTable(tableName string, t *table) {
	if len(t.entries) == 0 {
		return
	}

	stmt := r.prepareInsert(tableName, t)
	defer stmt.Close()

	for _, entry := range t.entries {
		value := reflect.ValueOf(entry)

		row := make([]any, value.NumField())
		for i := range row {
			row[i] = value.Field(i).Interface()
		}

		if _, err := stmt.Exec(row...); err != nil {
			panic(err)
		}
	}

	t.entries = nil
}

func (r *sqliteRecorder) prepareInsert(
	tableName string,
	t *table,
) *sql.Stmt {
	placeholders := make([]string, t.entryType.NumField())
	for i := range placeholders {
		placeholders[i] = "?"
	}

	stmt, err := r.db.Prepare("INSERT INTO " + tableName +
		" VALUES (" + strings.Join(placeholders, ", ") + ")")
	if err != nil {
		panic(err)
	}

	return stmt
}

func (r *sqliteRecorder) Close() error {
	r.Flush()
	return r.db.Close()
}

func (r *sqliteRecorder) mustExecute(query string) sql.Result {
	res, err := r.db.Exec(query)
	if err != nil {
		panic(fmt.Errorf("executing %q: %w", query, err))
	}

	return res
}
