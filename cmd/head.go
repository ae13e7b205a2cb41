package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	pio "github.com/hangxie/parquet-tools/io"

	"github.com/hangxie/parquet-viewer/model"
)

// HeadCmd is a kong command that prints the first rows of a file without
// entering the interactive viewer.
type HeadCmd struct {
	URI    string `arg:"" predictor:"file" help:"URI of Parquet file."`
	Rows   int    `short:"n" default:"10" help:"Number of rows to print."`
	Format string `short:"f" enum:"csv,jsonl" default:"csv" help:"Output format (csv or jsonl)."`
	pio.ReadOption
}

// Run does the actual head job
func (h HeadCmd) Run() error {
	store, err := loadStore(h.URI, h.ReadOption)
	if err != nil {
		return err
	}
	return writeHead(os.Stdout, store, h.Rows, h.Format)
}

func writeHead(w io.Writer, store *model.Store, rows int, format string) error {
	if rows < 0 {
		rows = 0
	}
	if rows > store.RowCount() {
		rows = store.RowCount()
	}

	switch format {
	case "jsonl":
		return writeJSONL(w, store, rows)
	default:
		return writeCSV(w, store, rows)
	}
}

func writeCSV(w io.Writer, store *model.Store, rows int) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(store.ColumnNames()); err != nil {
		return err
	}
	record := make([]string, store.NumColumns())
	for row := 0; row < rows; row++ {
		for col := range record {
			v, err := store.CellAt(row, col)
			if err != nil {
				return err
			}
			if v.IsNull() {
				record[col] = ""
				continue
			}
			record[col] = v.Display()
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// writeJSONL emits one JSON object per row. Null cells become JSON null,
// numbers and booleans keep their native types.
func writeJSONL(w io.Writer, store *model.Store, rows int) error {
	encoder := json.NewEncoder(w)
	names := store.ColumnNames()
	for row := 0; row < rows; row++ {
		obj := make(map[string]any, len(names))
		for col, name := range names {
			v, err := store.CellAt(row, col)
			if err != nil {
				return err
			}
			obj[name] = jsonValue(v)
		}
		if err := encoder.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}

func jsonValue(v model.Value) any {
	switch v.Kind() {
	case model.KindNull:
		return nil
	case model.KindInteger:
		return v.Int()
	case model.KindFloat:
		return v.Float()
	case model.KindBoolean:
		return v.Bool()
	default:
		return v.Display()
	}
}
