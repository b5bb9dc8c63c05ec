package scraper

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/tracklift/internal/models"
)

func row(title, href string, artists ...string) string {
	var b strings.Builder
	b.WriteString(`<div data-testid="tracklist-row">`)
	if title != "" {
		fmt.Fprintf(&b, `<a data-testid="internal-track-link" href="%s"><div>%s</div></a>`, href, title)
	}
	for _, a := range artists {
		fmt.Fprintf(&b, `<a href="/artist/%s">%s</a>`, strings.ToLower(a), a)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func playlistHTML(rows ...string) string {
	return `<html><body><div data-testid="playlist-tracklist">` + strings.Join(rows, "") + `</div></body></html>`
}

func TestParseTracklist(t *testing.T) {
	base, _ := url.Parse("https://open.example.com/playlist/abc")

	t.Run("rows in document order", func(t *testing.T) {
		html := playlistHTML(
			row("Song A", "/track/1", "Artist X"),
			row("Song B", "/track/2", "Y", "Z"),
		)

		records, matched, err := ParseTracklist(html, base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if matched != RowSelectors[0] {
			t.Errorf("expected first row selector, got %q", matched)
		}
		want := []models.TrackRecord{
			{Title: "Song A", Artists: "Artist X", SourceURL: "https://open.example.com/track/1", Ordinal: 1},
			{Title: "Song B", Artists: "Y, Z", SourceURL: "https://open.example.com/track/2", Ordinal: 2},
		}
		if len(records) != len(want) {
			t.Fatalf("expected %d records, got %d", len(want), len(records))
		}
		for i := range want {
			if records[i] != want[i] {
				t.Errorf("record %d = %+v, want %+v", i, records[i], want[i])
			}
		}
	})

	t.Run("row without title is skipped", func(t *testing.T) {
		html := playlistHTML(row("", "", "Artist"), row("Kept", "/track/9", "A"))

		records, _, err := ParseTracklist(html, base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 1 || records[0].Title != "Kept" || records[0].Ordinal != 1 {
			t.Errorf("unexpected records %+v", records)
		}
	})

	t.Run("row without artists gets placeholder", func(t *testing.T) {
		records, _, _ := ParseTracklist(playlistHTML(row("Lonely", "/track/3")), base)
		if len(records) != 1 || records[0].Artists != models.UnknownArtist {
			t.Errorf("unexpected records %+v", records)
		}
	})

	t.Run("falls back through row and title selectors", func(t *testing.T) {
		html := `<div role="row"><span class="track-name"><a href="https://cdn.example.com/t/5">  Fallback
			Title </a></span><div data-testid="track-artist"><a href="#">Solo</a></div></div>`

		records, matched, err := ParseTracklist(html, base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if matched != `[role="row"]` {
			t.Errorf("expected role row selector, got %q", matched)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		got := records[0]
		if got.Title != "Fallback Title" || got.Artists != "Solo" || got.SourceURL != "https://cdn.example.com/t/5" {
			t.Errorf("unexpected record %+v", got)
		}
	})

	t.Run("empty title element falls through to next selector", func(t *testing.T) {
		html := `<div data-testid="tracklist-row"><a data-testid="internal-track-link" href="/track/1"></a>` +
			`<span data-testid="track-title">Named</span></div>`

		records, _, _ := ParseTracklist(html, base)
		if len(records) != 1 || records[0].Title != "Named" || records[0].SourceURL != "" {
			t.Errorf("unexpected records %+v", records)
		}
	})

	t.Run("no rows", func(t *testing.T) {
		records, matched, err := ParseTracklist("<html><body><p>empty</p></body></html>", base)
		if err != nil || matched != "" || len(records) != 0 {
			t.Errorf("expected no rows, got %v %q %v", records, matched, err)
		}
	})
}

func TestResolve(t *testing.T) {
	base, _ := url.Parse("https://open.example.com/playlist/abc?si=1")
	tests := []struct {
		href string
		want string
	}{
		{"", ""},
		{"/track/1", "https://open.example.com/track/1"},
		{"track/2", "https://open.example.com/playlist/track/2"},
		{"https://other.example.com/x", "https://other.example.com/x"},
		{"://bad", ""},
	}
	for _, tt := range tests {
		if got := resolve(base, tt.href); got != tt.want {
			t.Errorf("resolve(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
	if got := resolve(nil, "/track/1"); got != "/track/1" {
		t.Errorf("expected relative href kept without base, got %q", got)
	}
}
