package model

import "strconv"

const FormattedDurationColumn = "Video Duration (HH:MM:SS)"

// Columns is the output schema. Downstream consumers depend on the exact
// names and order.
var Columns = []string{
	"Video ID",
	"Title",
	"Description",
	"Channel Title",
	"Video Published At",
	"Video URL",
	"Keyword Tags",
	"YouTube Video Category",
	"Video Duration",
	"View Count",
	"Comment Count",
	"Location of Recording",
	"Topics",
	"Captions Available",
	"Caption Text",
}

// Header returns the column names, with the formatted duration appended when
// requested.
func Header(withFormatted bool) []string {
	h := make([]string, len(Columns), len(Columns)+1)
	copy(h, Columns)
	if withFormatted {
		h = append(h, FormattedDurationColumn)
	}
	return h
}

// Cells renders the row in column order. Nulls are nil.
func (r Row) Cells(withFormatted bool) []*string {
	cells := []*string{
		str(string(r.YoutubeID)),
		str(r.Title),
		str(r.Description),
		str(r.ChannelTitle),
		str(r.PublishedAt),
		str(r.URL),
	}

	var tags, category, duration, views, comments, location, topics, formatted *string
	if r.Detail != nil {
		tags = str(r.Detail.Tags)
		category = r.Detail.CategoryID
		duration = r.Detail.Duration
		views = count(r.Detail.ViewCount)
		comments = count(r.Detail.CommentCount)
		location = r.Detail.Location
		topics = str(r.Detail.Topics)
		formatted = str(r.Detail.FormattedDuration)
	}
	cells = append(cells, tags, category, duration, views, comments, location, topics)

	var available, text *string
	if r.Transcript != nil {
		available = str(boolCell(r.Transcript.Available))
		text = r.Transcript.Text
	}
	cells = append(cells, available, text)

	if withFormatted {
		cells = append(cells, formatted)
	}

	return cells
}

// Values renders the row as flat strings, nulls as empty cells.
func (r Row) Values(withFormatted bool) []string {
	cells := r.Cells(withFormatted)
	vals := make([]string, len(cells))
	for i, c := range cells {
		if c != nil {
			vals[i] = *c
		}
	}
	return vals
}

// Record maps column name to cell, for JSON and document stores.
func (r Row) Record(withFormatted bool) map[string]any {
	header := Header(withFormatted)
	cells := r.Cells(withFormatted)
	rec := make(map[string]any, len(header))
	for i, name := range header {
		if cells[i] == nil {
			rec[name] = nil
			continue
		}
		rec[name] = *cells[i]
	}
	if r.Transcript != nil {
		rec["Captions Available"] = r.Transcript.Available
	}
	return rec
}

func str(s string) *string { return &s }

func count(c *uint64) *string {
	if c == nil {
		return nil
	}
	s := strconv.FormatUint(*c, 10)
	return &s
}

func boolCell(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
