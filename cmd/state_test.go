package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hangxie/parquet-viewer/model"
)

func numberedStore(t *testing.T, rows, cols int) *model.Store {
	t.Helper()
	columns := make([]model.Column, cols)
	for c := 0; c < cols; c++ {
		values := make([]model.Value, rows)
		for r := 0; r < rows; r++ {
			values[r] = model.Integer(int64(r*cols + c))
		}
		columns[c] = model.NewColumn("col"+string(rune('a'+c)), model.TypeInteger, values)
	}
	store, err := model.NewStore(columns, rows)
	require.NoError(t, err)
	return store
}

func Test_NewViewState(t *testing.T) {
	state := NewViewState(numberedStore(t, 50, 3))

	require.Equal(t, ModeTable, state.Mode())
	require.Equal(t, 0, state.RowOffset())
	require.Equal(t, 0, state.ColOffset())
	require.Equal(t, 50, state.FilteredCount())
	require.NoError(t, state.FilterErr())
}

func Test_ViewState_SwitchTo_KeepsOffsets(t *testing.T) {
	state := NewViewState(numberedStore(t, 50, 3))
	state.SetPageSize(10)
	state.ScrollRow(2)
	state.ScrollCol(1)

	state.SwitchTo(ModeSummary)
	require.Equal(t, ModeSummary, state.Mode())
	require.Equal(t, 20, state.RowOffset())
	require.Equal(t, 1, state.ColOffset())

	state.SwitchTo(ModeTable)
	require.Equal(t, 20, state.RowOffset())
	require.Equal(t, 1, state.ColOffset())
}

func Test_ViewState_ScrollRow_Clamps(t *testing.T) {
	state := NewViewState(numberedStore(t, 25, 2))
	state.SetPageSize(10)

	state.ScrollRow(-1)
	require.Equal(t, 0, state.RowOffset())

	state.ScrollRow(1)
	require.Equal(t, 10, state.RowOffset())

	state.ScrollRow(100)
	require.Equal(t, 15, state.RowOffset()) // last full page starts at 25-10

	state.ScrollRow(-100)
	require.Equal(t, 0, state.RowOffset())
}

func Test_ViewState_ScrollRow_TableModeOnly(t *testing.T) {
	state := NewViewState(numberedStore(t, 50, 2))
	state.SetPageSize(10)

	state.SwitchTo(ModeSummary)
	state.ScrollRow(1)
	require.Equal(t, 0, state.RowOffset())

	state.SwitchTo(ModeHelp)
	state.ScrollRow(1)
	require.Equal(t, 0, state.RowOffset())

	state.SwitchTo(ModeTable)
	state.ScrollRow(1)
	require.Equal(t, 10, state.RowOffset())
}

func Test_ViewState_ScrollCol(t *testing.T) {
	state := NewViewState(numberedStore(t, 10, 3))
	state.SetPageSize(5)

	state.ScrollCol(-1)
	require.Equal(t, 0, state.ColOffset())

	state.ScrollCol(1)
	state.ScrollCol(1)
	require.Equal(t, 2, state.ColOffset())

	state.ScrollCol(5)
	require.Equal(t, 2, state.ColOffset()) // clamped to last column

	// Column scrolling is a table-view operation
	state.SwitchTo(ModeSummary)
	state.ScrollCol(-1)
	require.Equal(t, 2, state.ColOffset())
}

func Test_ViewState_GoToTopBottom(t *testing.T) {
	state := NewViewState(numberedStore(t, 33, 2))
	state.SetPageSize(10)

	state.GoToBottom()
	require.Equal(t, 23, state.RowOffset())

	state.GoToTop()
	require.Equal(t, 0, state.RowOffset())

	// A dataset smaller than one page pins the offset at zero
	small := NewViewState(numberedStore(t, 3, 2))
	small.SetPageSize(10)
	small.GoToBottom()
	require.Equal(t, 0, small.RowOffset())
}

func Test_ViewState_ApplyFilter(t *testing.T) {
	state := NewViewState(numberedStore(t, 20, 2))
	state.SetPageSize(5)
	state.ScrollRow(2)
	state.ScrollCol(1)
	version := state.MaskVersion()

	bits := make([]bool, 20)
	for i := 15; i < 20; i++ {
		bits[i] = true
	}
	state.ApplyFilter("cola > 14", model.NewRowMask(bits))

	require.Equal(t, "cola > 14", state.FilterText())
	require.Equal(t, 5, state.FilteredCount())
	require.Equal(t, 0, state.RowOffset())
	require.Equal(t, 0, state.ColOffset())
	require.Equal(t, version+1, state.MaskVersion())
	require.Equal(t, []int{15, 16, 17, 18, 19}, state.VisibleRows())
}

func Test_ViewState_FilterError_PreservesMask(t *testing.T) {
	state := NewViewState(numberedStore(t, 20, 2))
	state.SetPageSize(5)

	bits := make([]bool, 20)
	bits[3] = true
	bits[7] = true
	state.ApplyFilter("cola == 3 | cola == 7", model.NewRowMask(bits))
	version := state.MaskVersion()

	state.SetFilterError(errors.New("unknown column: no column named \"bogus\""))

	require.Error(t, state.FilterErr())
	require.Equal(t, 2, state.FilteredCount())
	require.Equal(t, version, state.MaskVersion())
	require.Equal(t, "cola == 3 | cola == 7", state.FilterText())

	// The next successful filter clears the error
	state.ApplyFilter("", model.AllRows(20))
	require.NoError(t, state.FilterErr())
}

func Test_ViewState_ApplyFilter_EmptyResult(t *testing.T) {
	state := NewViewState(numberedStore(t, 10, 2))
	state.SetPageSize(4)

	state.ApplyFilter("cola > 999", model.NewRowMask(make([]bool, 10)))
	require.Equal(t, 0, state.FilteredCount())
	require.Empty(t, state.VisibleRows())

	state.ScrollRow(1)
	require.Equal(t, 0, state.RowOffset())
	state.GoToBottom()
	require.Equal(t, 0, state.RowOffset())
}

func Test_ViewState_SetPageSize_Reclamps(t *testing.T) {
	state := NewViewState(numberedStore(t, 30, 2))
	state.SetPageSize(10)
	state.GoToBottom()
	require.Equal(t, 20, state.RowOffset())

	state.SetPageSize(25)
	require.Equal(t, 5, state.RowOffset())

	state.SetPageSize(0)
	require.Equal(t, 1, state.PageSize())
}

func Test_ViewState_VisibleRows_Window(t *testing.T) {
	state := NewViewState(numberedStore(t, 12, 2))
	state.SetPageSize(5)

	require.Equal(t, []int{0, 1, 2, 3, 4}, state.VisibleRows())

	state.ScrollRow(1)
	require.Equal(t, []int{5, 6, 7, 8, 9}, state.VisibleRows())

	state.ScrollRow(1)
	require.Equal(t, []int{7, 8, 9, 10, 11}, state.VisibleRows())
}

func Test_ViewState_VisibleColumns(t *testing.T) {
	state := NewViewState(numberedStore(t, 5, 4))
	require.Equal(t, []int{0, 1, 2, 3}, state.VisibleColumns())

	state.ScrollCol(2)
	require.Equal(t, []int{2, 3}, state.VisibleColumns())
}
