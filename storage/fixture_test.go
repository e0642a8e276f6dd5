package storage

import (
	"ewintr.nl/ytcollect/model"
	"github.com/google/uuid"
)

func testDataset() model.Dataset {
	category, duration, location, text := "10", "PT3M33S", "Tokyo", "la la la"
	views, comments := uint64(1500), uint64(3)

	return model.Dataset{
		RunID: uuid.MustParse("6f1c1f8e-4b49-4d0b-a2a5-0d7a6c8d9e01"),
		Query: "Music",
		Rows: []model.Row{
			{
				Candidate: model.Candidate{
					YoutubeID:    "aaa",
					Title:        "Song, with comma",
					Description:  "line one\nline two",
					ChannelTitle: "Band",
					PublishedAt:  "2019-05-01T10:00:00Z",
					URL:          "https://www.youtube.com/watch?v=aaa",
				},
				Detail: &model.Detail{
					YoutubeID:         "aaa",
					Tags:              "pop, live",
					CategoryID:        &category,
					Duration:          &duration,
					FormattedDuration: "00:03:33",
					ViewCount:         &views,
					CommentCount:      &comments,
					Location:          &location,
					Topics:            "https://en.wikipedia.org/wiki/Music",
				},
				Transcript: &model.Transcript{YoutubeID: "aaa", Available: true, Text: &text},
			},
			{
				Candidate: model.Candidate{
					YoutubeID: "bbb",
					Title:     "Gone",
					URL:       "https://www.youtube.com/watch?v=bbb",
				},
				Transcript: &model.Transcript{YoutubeID: "bbb"},
			},
		},
	}
}
