package scraper

const (
	trackMetaSelector  = `meta[name="music:song"]`
	songCountSelector  = `meta[name="music:song_count"]`
	rowCountSelector   = `[data-testid="tracklist-row"]`
	tracklistSelector  = `[data-testid="playlist-tracklist"]`
	pageLoadedSelector = `[data-testid="playlist-tracklist"], [data-testid="entityTitle"]`

	ogTitleSelector     = `meta[property="og:title"]`
	musicianSelector    = `meta[name="music:musician_description"]`
	entityTitleSelector = `h1[data-testid="entityTitle"]`
	artistLinkSelector  = `a[href*="/artist/"]`
)

// RowSelectors locate track rows; the first selector matching any element is used for the whole page.
var RowSelectors = []string{
	`[data-testid="tracklist-row"]`,
	`[role="row"]`,
	`.tracklist-row`,
	`div[data-testid*="track"]`,
}

// TitleSelectors locate the title link inside a row; the first with non-empty text wins.
var TitleSelectors = []string{
	`a[data-testid="internal-track-link"]`,
	`[data-testid="track-title"]`,
	`a[href*="/track/"]`,
	`.track-name a`,
}

// ArtistSelectors locate artist links inside a row; the first yielding any names wins.
var ArtistSelectors = []string{
	artistLinkSelector,
	`[data-testid="track-artist"] a`,
	`.artist-name a`,
}

// containerKeywords mark a scrollable element as the likely tracklist viewport.
var containerKeywords = []string{"main", "content", "scroll", "tracklist"}
