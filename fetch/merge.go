package fetch

import "ewintr.nl/ytcollect/model"

// MergeDetails left joins details onto candidates. Every candidate yields
// exactly one row, in candidate order.
func MergeDetails(candidates []model.Candidate, details []model.Detail) []model.Row {
	byID := make(map[model.YoutubeVideoID]*model.Detail, len(details))
	for i := range details {
		if _, ok := byID[details[i].YoutubeID]; ok {
			continue
		}
		byID[details[i].YoutubeID] = &details[i]
	}

	rows := make([]model.Row, len(candidates))
	for i, c := range candidates {
		rows[i] = model.Row{
			Candidate: c,
			Detail:    byID[c.YoutubeID],
		}
	}

	return rows
}

// MergeTranscripts left joins transcripts onto rows. Rows without a match
// keep a nil transcript.
func MergeTranscripts(rows []model.Row, transcripts []model.Transcript) []model.Row {
	byID := make(map[model.YoutubeVideoID]*model.Transcript, len(transcripts))
	for i := range transcripts {
		if _, ok := byID[transcripts[i].YoutubeID]; ok {
			continue
		}
		byID[transcripts[i].YoutubeID] = &transcripts[i]
	}

	merged := make([]model.Row, len(rows))
	for i, r := range rows {
		r.Transcript = byID[r.YoutubeID]
		merged[i] = r
	}

	return merged
}

func Assemble(candidates []model.Candidate, details []model.Detail, transcripts []model.Transcript) []model.Row {
	return MergeTranscripts(MergeDetails(candidates, details), transcripts)
}
