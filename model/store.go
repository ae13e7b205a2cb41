package model

import (
	"fmt"
	"iter"
	"strings"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hangxie/parquet-go/v2/reader"
)

// FileInfo contains metadata about the loaded Parquet file
type FileInfo struct {
	Version               int32
	NumRowGroups          int
	NumRows               int64
	NumLeafColumns        int
	TotalCompressedSize   int64
	TotalUncompressedSize int64
	CompressionRatio      float64
	CreatedBy             string
}

// Column is one typed column of the dataset: a name, a declared type, and
// exactly one value per row (nulls are explicit null values, not absence).
type Column struct {
	Name   string
	Type   ColumnType
	values []Value
}

// NewColumn builds a column from already-typed values.
func NewColumn(name string, typ ColumnType, values []Value) Column {
	return Column{Name: name, Type: typ, values: values}
}

// Store is the in-memory, read-only columnar representation of the loaded
// dataset. It is created once at load time and never mutated afterwards.
type Store struct {
	columns []Column
	byName  map[string]int
	numRows int
	info    FileInfo
}

// NewStore assembles a store from pre-built columns. Every column must carry
// exactly numRows values.
func NewStore(columns []Column, numRows int) (*Store, error) {
	byName := make(map[string]int, len(columns))
	for i, col := range columns {
		if len(col.values) != numRows {
			return nil, fmt.Errorf("column %q has %d values, want %d", col.Name, len(col.values), numRows)
		}
		byName[col.Name] = i
	}
	return &Store{columns: columns, byName: byName, numRows: numRows}, nil
}

// NewStoreFromReader materializes all leaf columns of a Parquet file into a
// Store. The caller may close the underlying file once this returns.
func NewStoreFromReader(pr *reader.ParquetReader) (*Store, error) {
	footer := pr.Footer
	if footer == nil {
		return nil, fmt.Errorf("missing file metadata: %w", ErrNoData)
	}

	numRows := int(footer.NumRows)

	if len(footer.RowGroups) == 0 {
		return emptyStore(footer)
	}

	columnReader, err := reader.NewParquetColumnReader(pr.PFile, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create column reader: %w", err)
	}
	defer func() { _ = columnReader.ReadStopWithError() }()

	chunks := footer.RowGroups[0].Columns
	columns := make([]Column, 0, len(chunks))
	for i, chunk := range chunks {
		meta := chunk.MetaData
		name := strings.Join(meta.PathInSchema, ".")
		elem := findSchemaElement(footer.Schema, meta.PathInSchema)
		colType := columnTypeOf(meta.Type, elem)

		// Values for this column across all row groups
		var total int64
		for _, rg := range footer.RowGroups {
			total += rg.Columns[i].MetaData.NumValues
		}

		raw, _, _, err := columnReader.ReadColumnByIndex(int64(i), total)
		if err != nil {
			return nil, fmt.Errorf("failed to read column %q: %w", name, err)
		}

		values := make([]Value, 0, numRows)
		for _, rv := range raw {
			values = append(values, valueFrom(rv, meta.Type, elem, colType))
		}
		// Keep the row invariant even for columns whose physical value count
		// disagrees with the logical row count (repeated fields)
		if len(values) > numRows {
			values = values[:numRows]
		}
		for len(values) < numRows {
			values = append(values, Null())
		}

		columns = append(columns, Column{Name: name, Type: colType, values: values})
	}

	if len(columns) == 0 {
		return nil, ErrNoData
	}

	store, err := NewStore(columns, numRows)
	if err != nil {
		return nil, err
	}
	store.info = fileInfoFrom(footer)
	return store, nil
}

// emptyStore builds a zero-row store from the schema alone, for files that
// carry no row groups.
func emptyStore(footer *parquet.FileMetaData) (*Store, error) {
	var columns []Column
	for _, elem := range footer.Schema {
		if !elem.IsSetType() {
			continue
		}
		columns = append(columns, Column{
			Name: elem.Name,
			Type: columnTypeOf(elem.GetType(), elem),
		})
	}
	if len(columns) == 0 {
		return nil, ErrNoData
	}
	store, err := NewStore(columns, 0)
	if err != nil {
		return nil, err
	}
	store.info = fileInfoFrom(footer)
	return store, nil
}

// fileInfoFrom extracts file-level information from the footer
func fileInfoFrom(footer *parquet.FileMetaData) FileInfo {
	info := FileInfo{
		Version:        footer.Version,
		NumRowGroups:   len(footer.RowGroups),
		NumRows:        footer.NumRows,
		NumLeafColumns: countLeafColumns(footer.Schema),
	}

	for _, rg := range footer.RowGroups {
		info.TotalUncompressedSize += rg.TotalByteSize
		if rg.IsSetTotalCompressedSize() {
			info.TotalCompressedSize += rg.GetTotalCompressedSize()
			continue
		}
		// Sum up compressed sizes from all columns
		for _, col := range rg.Columns {
			info.TotalCompressedSize += col.MetaData.TotalCompressedSize
		}
	}

	if info.TotalCompressedSize > 0 {
		info.CompressionRatio = float64(info.TotalUncompressedSize) / float64(info.TotalCompressedSize)
	}

	if footer.CreatedBy != nil {
		info.CreatedBy = *footer.CreatedBy
	}

	return info
}

// FileInfo returns metadata about the loaded file.
func (s *Store) FileInfo() FileInfo { return s.info }

// RowCount returns the total number of rows in the dataset.
func (s *Store) RowCount() int { return s.numRows }

// NumColumns returns the number of columns.
func (s *Store) NumColumns() int { return len(s.columns) }

// ColumnNames returns the column names in schema order.
func (s *Store) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex resolves a column name to its index.
func (s *Store) ColumnIndex(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// ColumnType returns the declared type of a named column.
func (s *Store) ColumnType(name string) (ColumnType, error) {
	i, ok := s.byName[name]
	if !ok {
		return 0, fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
	}
	return s.columns[i].Type, nil
}

// TypeAt returns the declared type of the column at index col.
func (s *Store) TypeAt(col int) ColumnType {
	return s.columns[col].Type
}

// NameAt returns the name of the column at index col.
func (s *Store) NameAt(col int) string {
	return s.columns[col].Name
}

// CellAt returns the value at (row, col). Both indices are bounds-checked.
func (s *Store) CellAt(row, col int) (Value, error) {
	if row < 0 || row >= s.numRows {
		return Value{}, fmt.Errorf("row %d out of range [0, %d): %w", row, s.numRows, ErrOutOfRange)
	}
	if col < 0 || col >= len(s.columns) {
		return Value{}, fmt.Errorf("column %d out of range [0, %d): %w", col, len(s.columns), ErrOutOfRange)
	}
	return s.columns[col].values[row], nil
}

// ColumnValues returns a restartable lazy sequence of (row index, value)
// pairs for a named column.
func (s *Store) ColumnValues(name string) (iter.Seq2[int, Value], error) {
	i, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
	}
	return s.ColumnValuesAt(i), nil
}

// ColumnValuesAt is ColumnValues by column index.
func (s *Store) ColumnValuesAt(col int) iter.Seq2[int, Value] {
	values := s.columns[col].values
	return func(yield func(int, Value) bool) {
		for i, v := range values {
			if !yield(i, v) {
				return
			}
		}
	}
}
