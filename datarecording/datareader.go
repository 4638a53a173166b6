package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
)

// QueryParams narrows and pages a table query.
type QueryParams struct {
	// Where holds the WHERE clause without the "WHERE" keyword, with "?"
	// placeholders filled from Args.
	Where string
	Args  []any

	// OrderBy specifies sorting, without the "ORDER BY" keywords.
	OrderBy string

	// Limit caps the number of returned rows. Zero means no cap. Offset
	// skips rows before the cap applies.
	Limit  int
	Offset int
}

// A DataReader reads tables a DataRecorder wrote back into structs.
type DataReader interface {
	// MapTable associates a table with the struct type its rows scan into.
	// A table must be mapped before it can be queried.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the names of all mapped tables, sorted.
	ListTables() []string

	// Query returns pointers to structs of the mapped type, plus the total
	// row count the query matches before paging.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close releases the underlying database.
	Close() error
}

var _ DataReader = (*sqliteReader)(nil)

// NewReader opens the recording file at path for reading.
func NewReader(path string) DataReader {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		panic(err)
	}

	return &sqliteReader{
		db:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

// NewReaderWithDB creates a DataReader on an already opened database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

type sqliteReader struct {
	db *sql.DB

	typeMap map[string]reflect.Type
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	names := make([]string, 0, len(r.typeMap))
	for name := range r.typeMap {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	entryType, ok := r.typeMap[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("table %s is not mapped", tableName)
	}

	totalCount, err := r.queryTotalCount(ctx, tableName, params)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM " + tableName
	if params.Where != "" {
		query += " WHERE " + params.Where
	}
	if params.OrderBy != "" {
		query += " ORDER BY " + params.OrderBy
	}
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", params.Limit)
		if params.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", params.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanRows(rows, entryType)
	if err != nil {
		return nil, 0, err
	}

	return results, totalCount, nil
}

func (r *sqliteReader) queryTotalCount(
	ctx context.Context,
	tableName string,
	params QueryParams,
) (int, error) {
	query := "SELECT COUNT(*) FROM " + tableName
	if params.Where != "" {
		query += " WHERE " + params.Where
	}

	var totalCount int
	err := r.db.QueryRowContext(ctx, query, params.Args...).Scan(&totalCount)
	if err != nil {
		return 0, err
	}

	return totalCount, nil
}

func scanRows(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndex := make(map[string]int)
	for i := 0; i < entryType.NumField(); i++ {
		fieldIndex[entryType.Field(i).Name] = i
	}

	var results []any
	for rows.Next() {
		entryPtr := reflect.New(entryType)
		entry := entryPtr.Elem()

		targets := make([]any, len(columns))
		for i, column := range columns {
			if fieldIdx, ok := fieldIndex[column]; ok {
				targets[i] = entry.Field(fieldIdx).Addr().Interface()
			} else {
				var discard any
				targets[i] = &discard
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entryPtr.Interface())
	}

	return results, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}
