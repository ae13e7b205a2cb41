package cmd

import (
	"fmt"

	pio "github.com/hangxie/parquet-tools/io"

	"github.com/hangxie/parquet-viewer/model"
)

// ViewCmd is a kong command for the interactive viewer
type ViewCmd struct {
	URI string `arg:"" predictor:"file" help:"URI of Parquet file."`
	pio.ReadOption
}

// Run loads the whole dataset into memory, then hands it to the TUI. A load
// failure surfaces as a normal CLI error before any screen is taken over.
func (v ViewCmd) Run() error {
	store, err := loadStore(v.URI, v.ReadOption)
	if err != nil {
		return err
	}
	return NewViewerApp(v.URI, store).Run()
}

// loadStore opens a Parquet file and materializes all of its columns. The
// file handle is released before this returns; the viewer works entirely
// from memory.
func loadStore(uri string, option pio.ReadOption) (*model.Store, error) {
	parquetReader, err := pio.NewParquetFileReader(uri, option)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", uri, err)
	}
	defer func() { _ = parquetReader.PFile.Close() }()

	store, err := model.NewStoreFromReader(parquetReader)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", uri, err)
	}
	return store, nil
}
