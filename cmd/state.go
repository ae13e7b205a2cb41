package cmd

import (
	"github.com/hangxie/parquet-viewer/model"
)

// ViewMode identifies which main view occupies the content area.
type ViewMode int

const (
	ModeTable ViewMode = iota
	ModeSummary
	ModeHelp
)

func (m ViewMode) String() string {
	switch m {
	case ModeTable:
		return "table"
	case ModeSummary:
		return "summary"
	case ModeHelp:
		return "help"
	}
	return "unknown"
}

// ViewState is the single source of truth for what the viewer shows: the
// active mode, scroll offsets, and the active row mask. It is mutated only
// from the UI event loop; background work hands results back through
// ApplyFilter and never touches it directly.
type ViewState struct {
	store *model.Store

	mode       ViewMode
	rowOffset  int // index into filtered, not into the store
	colOffset  int
	pageHeight int // rows per page in the table view

	filterText  string
	mask        model.RowMask
	maskVersion uint64
	filtered    []int // store row indices selected by mask, ascending
	filterErr   error
}

// NewViewState starts in table mode with every row selected and both
// offsets at zero.
func NewViewState(store *model.Store) *ViewState {
	mask := model.AllRows(store.RowCount())
	return &ViewState{
		store:      store,
		mode:       ModeTable,
		pageHeight: 1,
		mask:       mask,
		filtered:   mask.Indices(),
	}
}

func (s *ViewState) Store() *model.Store { return s.store }
func (s *ViewState) Mode() ViewMode      { return s.mode }
func (s *ViewState) RowOffset() int      { return s.rowOffset }
func (s *ViewState) ColOffset() int      { return s.colOffset }
func (s *ViewState) FilterText() string  { return s.filterText }
func (s *ViewState) FilterErr() error    { return s.filterErr }
func (s *ViewState) Mask() model.RowMask { return s.mask }

// MaskVersion increments every time a new mask is applied. Background
// summary results are tagged with it and dropped when stale.
func (s *ViewState) MaskVersion() uint64 { return s.maskVersion }

// FilteredCount is the number of rows the active mask selects.
func (s *ViewState) FilteredCount() int { return len(s.filtered) }

// SwitchTo changes the active mode. Scroll offsets and the mask are shared
// across modes and survive the switch.
func (s *ViewState) SwitchTo(mode ViewMode) { s.mode = mode }

// SetPageSize records how many table rows fit on screen and re-clamps the
// row offset against the new page size.
func (s *ViewState) SetPageSize(rows int) {
	if rows < 1 {
		rows = 1
	}
	s.pageHeight = rows
	s.clamp()
}

// PageSize returns the current rows-per-page.
func (s *ViewState) PageSize() int { return s.pageHeight }

// ScrollRow moves the row offset by the given number of pages. Like column
// scrolling, it only applies to the table view.
func (s *ViewState) ScrollRow(pages int) {
	if s.mode != ModeTable {
		return
	}
	s.rowOffset += pages * s.pageHeight
	s.clamp()
}

// ScrollCol moves the leftmost visible column by delta. Column scrolling
// only applies to the table view; other modes ignore it.
func (s *ViewState) ScrollCol(delta int) {
	if s.mode != ModeTable {
		return
	}
	s.colOffset += delta
	s.clamp()
}

// GoToTop jumps to the first filtered row.
func (s *ViewState) GoToTop() {
	s.rowOffset = 0
}

// GoToBottom jumps so the last filtered row is on screen.
func (s *ViewState) GoToBottom() {
	s.rowOffset = len(s.filtered) - s.pageHeight
	s.clamp()
}

// ApplyFilter installs a freshly computed mask. Both offsets reset so the
// view lands at the top-left of the new result set; any previous filter
// error is cleared.
func (s *ViewState) ApplyFilter(text string, mask model.RowMask) {
	s.filterText = text
	s.mask = mask
	s.maskVersion++
	s.filtered = mask.Indices()
	s.rowOffset = 0
	s.colOffset = 0
	s.filterErr = nil
}

// SetFilterError records a recoverable filter failure. The previous mask and
// offsets stay in effect.
func (s *ViewState) SetFilterError(err error) {
	s.filterErr = err
}

// VisibleRows returns the store row indices of the current table page.
func (s *ViewState) VisibleRows() []int {
	if s.rowOffset >= len(s.filtered) {
		return nil
	}
	end := min(s.rowOffset+s.pageHeight, len(s.filtered))
	return s.filtered[s.rowOffset:end]
}

// VisibleColumns returns the column indices from the current column offset
// to the end; the renderer stops when it runs out of width.
func (s *ViewState) VisibleColumns() []int {
	n := s.store.NumColumns()
	cols := make([]int, 0, n-s.colOffset)
	for c := s.colOffset; c < n; c++ {
		cols = append(cols, c)
	}
	return cols
}

// clamp forces both offsets back into their valid ranges. The row offset is
// relative to the filtered row list, so an empty result set pins it at zero.
func (s *ViewState) clamp() {
	maxRow := len(s.filtered) - s.pageHeight
	if maxRow < 0 {
		maxRow = 0
	}
	if s.rowOffset > maxRow {
		s.rowOffset = maxRow
	}
	if s.rowOffset < 0 {
		s.rowOffset = 0
	}

	maxCol := s.store.NumColumns() - 1
	if maxCol < 0 {
		maxCol = 0
	}
	if s.colOffset > maxCol {
		s.colOffset = maxCol
	}
	if s.colOffset < 0 {
		s.colOffset = 0
	}
}
