package model

import "github.com/google/uuid"

type YoutubeVideoID string

func (id YoutubeVideoID) URL() string {
	return "https://www.youtube.com/watch?v=" + string(id)
}

// Candidate is a search hit, in the ranking order of the search endpoint.
type Candidate struct {
	YoutubeID    YoutubeVideoID
	Title        string
	Description  string
	ChannelTitle string
	PublishedAt  string
	URL          string
}

// Detail holds the flattened extended attributes of a video. Pointer fields
// are nil when the API did not return them.
type Detail struct {
	YoutubeID         YoutubeVideoID
	Tags              string
	CategoryID        *string
	Duration          *string
	FormattedDuration string
	ViewCount         *uint64
	CommentCount      *uint64
	Location          *string
	Topics            string
}

type Transcript struct {
	YoutubeID YoutubeVideoID
	Available bool
	Text      *string
}

// Row is one output record. Detail and Transcript are nil when the
// corresponding stage produced nothing for the id.
type Row struct {
	Candidate
	Detail     *Detail
	Transcript *Transcript
}

type Dataset struct {
	RunID uuid.UUID
	Query string
	Rows  []Row
}
