package storage

import (
	"context"
	"strings"

	"ewintr.nl/ytcollect/model"
)

// Sink persists a complete dataset. It is called once per run.
type Sink interface {
	Name() string
	Save(ctx context.Context, ds model.Dataset) error
}

// FileName gives the output file for a query, <query>_videos.<ext>.
func FileName(query, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, query)

	return name + "_videos." + ext
}
