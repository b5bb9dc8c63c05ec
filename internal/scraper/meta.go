package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/tracklift/internal/models"
)

// TrackURLs returns the per-track URLs advertised in the playlist's metadata tags, in order.
// A track listed twice appears twice.
func TrackURLs(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse playlist HTML: %w", err)
	}

	var urls []string
	doc.Find(trackMetaSelector).Each(func(_ int, s *goquery.Selection) {
		u := strings.TrimSpace(s.AttrOr("content", ""))
		if u == "" {
			return
		}
		urls = append(urls, u)
	})
	return urls, nil
}

// ParseTrackPage reads one track's detail page.
//
// Title and artist come from metadata tags, falling back to the rendered heading
// and artist links. ok is false when no title can be found.
func ParseTrackPage(html, pageURL string, ordinal int) (models.TrackRecord, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.TrackRecord{}, false
	}

	title := cleanText(doc.Find(ogTitleSelector).First().AttrOr("content", ""))
	if title == "" {
		title = cleanText(doc.Find(entityTitleSelector).First().Text())
	}
	if title == "" {
		return models.TrackRecord{}, false
	}

	var artists []string
	if musician := cleanText(doc.Find(musicianSelector).First().AttrOr("content", "")); musician != "" {
		artists = []string{musician}
	} else {
		artists = texts(doc.Find(artistLinkSelector))
	}

	return models.NewTrackRecord(ordinal, title, artists, pageURL), true
}
