package models

import "strings"

// UnknownArtist is recorded when a track row carries no artist text.
const UnknownArtist = "Unknown Artist"

// TrackRecord is one extracted track. Ordinal is its 1-based position on the source page.
type TrackRecord struct {
	Title     string `json:"Title"`
	Artists   string `json:"Artist(s)"`
	SourceURL string `json:"URL"`
	Ordinal   int    `json:"-"`
}

// NewTrackRecord trims its inputs, joins artist names with ", " and substitutes
// [UnknownArtist] when none are present.
func NewTrackRecord(ordinal int, title string, artists []string, sourceURL string) TrackRecord {
	return TrackRecord{
		Title:     strings.TrimSpace(title),
		Artists:   JoinArtists(artists),
		SourceURL: strings.TrimSpace(sourceURL),
		Ordinal:   ordinal,
	}
}

// JoinArtists joins the non-blank names with ", ".
func JoinArtists(names []string) string {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		return UnknownArtist
	}
	return strings.Join(kept, ", ")
}

// SearchQuery builds the field-qualified catalog search for this track.
func (t TrackRecord) SearchQuery() string {
	return "track:" + t.Title + " artist:" + t.Artists
}
