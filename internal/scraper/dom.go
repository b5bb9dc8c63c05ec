package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/tracklift/internal/models"
)

// ParseTracklist extracts track records from a snapshot of the rendered playlist.
//
// Rows come from the first entry of [RowSelectors] matching anything. A row
// without a resolvable title is skipped; a row without artists gets
// [models.UnknownArtist]. Ordinals follow document order among emitted records.
// The matched row selector is returned for logging.
func ParseTracklist(html string, base *url.URL) ([]models.TrackRecord, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse tracklist HTML: %w", err)
	}

	rows, matched := findRows(doc.Selection)
	if matched == "" {
		return nil, "", nil
	}

	records := make([]models.TrackRecord, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		title, href := rowTitle(row)
		if title == "" {
			return
		}
		records = append(records, models.NewTrackRecord(len(records)+1, title, rowArtists(row), resolve(base, href)))
	})
	return records, matched, nil
}

func findRows(root *goquery.Selection) (*goquery.Selection, string) {
	for _, sel := range RowSelectors {
		if rows := root.Find(sel); rows.Length() > 0 {
			return rows, sel
		}
	}
	return nil, ""
}

// rowTitle returns the first non-empty title text and the href of its element.
func rowTitle(row *goquery.Selection) (string, string) {
	for _, sel := range TitleSelectors {
		node := row.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := cleanText(node.Text()); text != "" {
			href, _ := node.Attr("href")
			return text, href
		}
	}
	return "", ""
}

func rowArtists(row *goquery.Selection) []string {
	for _, sel := range ArtistSelectors {
		names := texts(row.Find(sel))
		if len(names) > 0 {
			return names
		}
	}
	return nil
}

func texts(s *goquery.Selection) []string {
	var out []string
	s.Each(func(_ int, n *goquery.Selection) {
		if t := cleanText(n.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolve makes href absolute against base. Unparseable or empty hrefs yield "".
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
