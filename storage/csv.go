package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"ewintr.nl/ytcollect/model"
)

type CSV struct {
	dir           string
	withFormatted bool
}

func NewCSV(dir string, withFormatted bool) *CSV {
	return &CSV{
		dir:           dir,
		withFormatted: withFormatted,
	}
}

func (c *CSV) Name() string {
	return "csv"
}

func (c *CSV) Path(query string) string {
	return filepath.Join(c.dir, FileName(query, "csv"))
}

func (c *CSV) Save(_ context.Context, ds model.Dataset) error {
	f, err := os.Create(c.Path(ds.Query))
	if err != nil {
		return fmt.Errorf("could not create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(model.Header(c.withFormatted)); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(row.Values(c.withFormatted)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("could not write csv: %w", err)
	}

	return f.Close()
}
