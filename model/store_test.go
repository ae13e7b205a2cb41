package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore([]Column{
		NewColumn("id", TypeInteger, []Value{Integer(1), Integer(2), Integer(3)}),
		NewColumn("name", TypeString, []Value{String("a"), String("b"), Null()}),
	}, 3)
	require.NoError(t, err)
	return store
}

func Test_NewStore_LengthMismatch(t *testing.T) {
	_, err := NewStore([]Column{
		NewColumn("id", TypeInteger, []Value{Integer(1)}),
	}, 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "id")
}

func Test_Store_Accessors(t *testing.T) {
	store := testStore(t)

	require.Equal(t, 3, store.RowCount())
	require.Equal(t, 2, store.NumColumns())
	require.Equal(t, []string{"id", "name"}, store.ColumnNames())
	require.Equal(t, "name", store.NameAt(1))
	require.Equal(t, TypeInteger, store.TypeAt(0))

	idx, ok := store.ColumnIndex("name")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = store.ColumnIndex("missing")
	require.False(t, ok)

	typ, err := store.ColumnType("id")
	require.NoError(t, err)
	require.Equal(t, TypeInteger, typ)

	_, err = store.ColumnType("missing")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func Test_Store_CellAt(t *testing.T) {
	store := testStore(t)

	v, err := store.CellAt(1, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), v.Int())

	v, err = store.CellAt(2, 1)
	require.NoError(t, err)
	require.True(t, v.IsNull())

	tests := []struct {
		name     string
		row, col int
	}{
		{name: "negative row", row: -1, col: 0},
		{name: "row past end", row: 3, col: 0},
		{name: "negative column", row: 0, col: -1},
		{name: "column past end", row: 0, col: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CellAt(tt.row, tt.col)
			require.ErrorIs(t, err, ErrOutOfRange)
		})
	}
}

func Test_Store_ColumnValues(t *testing.T) {
	store := testStore(t)

	seq, err := store.ColumnValues("id")
	require.NoError(t, err)

	var rows []int
	var vals []int64
	for i, v := range seq {
		rows = append(rows, i)
		vals = append(vals, v.Int())
	}
	require.Equal(t, []int{0, 1, 2}, rows)
	require.Equal(t, []int64{1, 2, 3}, vals)

	// The sequence is restartable
	count := 0
	for range seq {
		count++
	}
	require.Equal(t, 3, count)

	_, err = store.ColumnValues("missing")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func Test_Store_ColumnValues_EarlyStop(t *testing.T) {
	store := testStore(t)
	count := 0
	for range store.ColumnValuesAt(0) {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)
}
