// Package summary computes per-column statistics over the rows selected by
// the active filter mask. All statistics come out of a single streaming pass
// per column; nothing is materialized beyond the capped distinct tracker.
package summary

import (
	"context"
	"strconv"

	"github.com/axiomhq/hyperloglog"

	"github.com/hangxie/parquet-viewer/model"
)

const (
	// rowBatchSize is the number of rows scanned between cancellation checks.
	rowBatchSize = 4096

	// maxExactDistinct caps the exact distinct tracker. Beyond it the count
	// switches to a probabilistic sketch and is reported as approximate.
	maxExactDistinct = 65536
)

// ColumnSummary holds the aggregates for one column over the selected rows.
// Aggregates that are undefined for the column's type, or because no
// selected row holds a non-null value, leave their Has flag false.
type ColumnSummary struct {
	Name  string
	Type  model.ColumnType
	Count int // non-null values among selected rows
	Nulls int // null values among selected rows

	Min       model.Value
	Max       model.Value
	HasMinMax bool

	Mean    float64
	HasMean bool

	Distinct       int
	DistinctApprox bool
	HasDistinct    bool

	MostFrequent    model.Value
	HasMostFrequent bool
}

// Snapshot is the result of one summary computation, tagged with the filter
// state it was computed against so stale results can be discarded.
type Snapshot struct {
	FilterText string
	Version    uint64
	Rows       int // selected rows
	Columns    []ColumnSummary
}

// distinctTracker counts distinct display strings exactly up to
// maxExactDistinct, then degrades to a hyperloglog sketch.
type distinctTracker struct {
	exact  map[string]int
	sketch *hyperloglog.Sketch
}

func newDistinctTracker() *distinctTracker {
	return &distinctTracker{exact: make(map[string]int)}
}

func (d *distinctTracker) add(key string) {
	if d.sketch != nil {
		d.sketch.Insert([]byte(key))
		return
	}
	d.exact[key]++
	if len(d.exact) > maxExactDistinct {
		d.sketch = hyperloglog.New14()
		for k := range d.exact {
			d.sketch.Insert([]byte(k))
		}
	}
}

func (d *distinctTracker) result() (count int, approx bool) {
	if d.sketch != nil {
		return int(d.sketch.Estimate()), true
	}
	return len(d.exact), false
}

// mostFrequent returns the modal value while the tracker is still exact.
// Ties break toward the lexically smaller key so the result is stable.
func (d *distinctTracker) mostFrequent() (string, bool) {
	if d.sketch != nil || len(d.exact) == 0 {
		return "", false
	}
	var best string
	bestN := 0
	for k, n := range d.exact {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best, true
}

// columnState accumulates one column's statistics during the pass.
type columnState struct {
	count    int
	nulls    int
	min, max model.Value
	mean     float64
	distinct *distinctTracker
	modal    map[string]model.Value // display key -> original value
}

func (c *columnState) observe(v model.Value, t model.ColumnType) {
	if v.IsNull() {
		c.nulls++
		return
	}
	c.count++

	if c.count == 1 {
		c.min, c.max = v, v
	} else {
		if v.Less(c.min) {
			c.min = v
		}
		if c.max.Less(v) {
			c.max = v
		}
	}

	if t.IsNumeric() {
		c.mean += (v.Float() - c.mean) / float64(c.count)
	}

	key := v.Display()
	c.distinct.add(key)
	if c.modal != nil {
		if len(c.modal) <= maxExactDistinct {
			if _, seen := c.modal[key]; !seen {
				c.modal[key] = v
			}
		}
	}
}

// Summarize computes a snapshot over the rows mask selects. The pass is
// cancellable between row batches; a cancelled pass returns ctx.Err() and no
// snapshot.
func Summarize(ctx context.Context, store *model.Store, mask model.RowMask) (*Snapshot, error) {
	numCols := store.NumColumns()
	states := make([]*columnState, numCols)
	for i := range states {
		st := &columnState{distinct: newDistinctTracker()}
		t := store.TypeAt(i)
		if t == model.TypeCategorical || t == model.TypeString || t == model.TypeBoolean {
			st.modal = make(map[string]model.Value)
		}
		states[i] = st
	}

	rows := mask.Indices()
	for start := 0; start < len(rows); start += rowBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+rowBatchSize, len(rows))
		for _, row := range rows[start:end] {
			for col := 0; col < numCols; col++ {
				v, err := store.CellAt(row, col)
				if err != nil {
					return nil, err
				}
				states[col].observe(v, store.TypeAt(col))
			}
		}
	}

	snap := &Snapshot{Rows: len(rows), Columns: make([]ColumnSummary, numCols)}
	for i, st := range states {
		cs := ColumnSummary{
			Name:  store.NameAt(i),
			Type:  store.TypeAt(i),
			Count: st.count,
			Nulls: st.nulls,
		}
		if st.count > 0 {
			cs.Min, cs.Max = st.min, st.max
			cs.HasMinMax = true
			if cs.Type.IsNumeric() {
				cs.Mean = st.mean
				cs.HasMean = true
			}
			cs.Distinct, cs.DistinctApprox = st.distinct.result()
			cs.HasDistinct = true
			if st.modal != nil {
				if key, ok := st.distinct.mostFrequent(); ok {
					cs.MostFrequent = st.modal[key]
					cs.HasMostFrequent = true
				}
			}
		}
		snap.Columns[i] = cs
	}
	return snap, nil
}

// FormatDistinct renders a distinct count, marking approximate estimates.
func FormatDistinct(cs ColumnSummary) string {
	if !cs.HasDistinct {
		return "-"
	}
	if cs.DistinctApprox {
		return "~" + strconv.Itoa(cs.Distinct)
	}
	return strconv.Itoa(cs.Distinct)
}
