package model

// RowMask is a boolean selection over all rows of a dataset. Masks are
// immutable once built; filtering replaces the active mask rather than
// mutating it in place.
type RowMask struct {
	bits  []bool
	count int
}

// AllRows returns the mask that selects every row ("no filter").
func AllRows(n int) RowMask {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = true
	}
	return RowMask{bits: bits, count: n}
}

// NewRowMask wraps a selection vector. The caller hands over ownership of bits.
func NewRowMask(bits []bool) RowMask {
	count := 0
	for _, b := range bits {
		if b {
			count++
		}
	}
	return RowMask{bits: bits, count: count}
}

// Len is the total number of rows the mask covers (the dataset row count).
func (m RowMask) Len() int { return len(m.bits) }

// Count is the number of selected rows.
func (m RowMask) Count() int { return m.count }

// At reports whether row i is selected. Out-of-range rows are not selected.
func (m RowMask) At(i int) bool {
	if i < 0 || i >= len(m.bits) {
		return false
	}
	return m.bits[i]
}

// Indices materializes the selected row indices in ascending order.
func (m RowMask) Indices() []int {
	out := make([]int, 0, m.count)
	for i, b := range m.bits {
		if b {
			out = append(out, i)
		}
	}
	return out
}
