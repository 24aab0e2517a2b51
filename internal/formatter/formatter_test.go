package formatter

import (
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ytsubs/internal/models"
	"github.com/desertthunder/ytsubs/internal/shared"
	th "github.com/desertthunder/ytsubs/internal/testing"
)

func sampleSubscriptions() []models.Subscription {
	return []models.Subscription{
		{Title: "Zebra Facts", ChannelID: "UCzzz"},
		{Title: "Apple & Orange <Reviews>", ChannelID: "UCaaa"},
		{Title: "Zebra Facts", ChannelID: "UCzzz"},
	}
}

func mustDecode(t *testing.T, data []byte) OPML {
	t.Helper()
	var doc OPML
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not well-formed XML: %v\n%s", err, data)
	}
	return doc
}

func TestExporters(t *testing.T) {
	t.Run("ExportToOPML", func(t *testing.T) {
		t.Run("Document Shape", func(t *testing.T) {
			data, err := ExportToOPML("YouTube", sampleSubscriptions())
			if err != nil {
				t.Fatalf("ExportToOPML failed: %v", err)
			}

			if !strings.HasPrefix(string(data), xml.Header) {
				t.Error("expected output to start with the XML declaration")
			}

			doc := mustDecode(t, data)
			if doc.Version != "1.1" {
				t.Errorf("expected version 1.1, got %q", doc.Version)
			}
			if len(doc.Body.Outlines) != 1 {
				t.Fatalf("expected one category outline, got %d", len(doc.Body.Outlines))
			}

			category := doc.Body.Outlines[0]
			if category.Text != "YouTube" || category.Title != "YouTube" {
				t.Errorf("expected category text/title 'YouTube', got %q/%q", category.Text, category.Title)
			}
			if category.Type != "" || category.XMLURL != "" {
				t.Error("expected category to carry no feed attributes")
			}
		})

		t.Run("Leaves Preserve Order And Duplicates", func(t *testing.T) {
			subs := sampleSubscriptions()
			data, err := ExportToOPML("YouTube", subs)
			if err != nil {
				t.Fatalf("ExportToOPML failed: %v", err)
			}

			leaves := mustDecode(t, data).Body.Outlines[0].Outlines
			if len(leaves) != len(subs) {
				t.Fatalf("expected %d leaves, got %d", len(subs), len(leaves))
			}

			for i, leaf := range leaves {
				sub := subs[i]
				if leaf.Text != sub.Title || leaf.Title != sub.Title {
					t.Errorf("leaf %d: expected title %q, got %q/%q", i, sub.Title, leaf.Text, leaf.Title)
				}
				if leaf.Type != "rss" {
					t.Errorf("leaf %d: expected type rss, got %q", i, leaf.Type)
				}
				if leaf.XMLURL != "https://www.youtube.com/feeds/videos.xml?channel_id="+sub.ChannelID {
					t.Errorf("leaf %d: unexpected xmlUrl %q", i, leaf.XMLURL)
				}
				if leaf.HTMLURL != "https://www.youtube.com/channel/"+sub.ChannelID {
					t.Errorf("leaf %d: unexpected htmlUrl %q", i, leaf.HTMLURL)
				}

				id, err := models.ChannelIDFromFeedURL(leaf.XMLURL)
				if err != nil || id != sub.ChannelID {
					t.Errorf("leaf %d: expected xmlUrl to round-trip to %q, got %q (%v)", i, sub.ChannelID, id, err)
				}
			}
		})

		t.Run("Escapes Special Characters", func(t *testing.T) {
			data, err := ExportToOPML("News & \"Views\"", sampleSubscriptions())
			if err != nil {
				t.Fatalf("ExportToOPML failed: %v", err)
			}

			out := string(data)
			if strings.Contains(out, "Apple & Orange") || strings.Contains(out, "<Reviews>") {
				t.Error("expected title to be escaped")
			}
			if !strings.Contains(out, "Apple &amp; Orange &lt;Reviews&gt;") {
				t.Errorf("expected escaped title in output:\n%s", out)
			}
			if !strings.Contains(out, "channel_id=UCzzz") {
				t.Error("expected feed URL in output")
			}

			if got := mustDecode(t, data).Body.Outlines[0].Title; got != "News & \"Views\"" {
				t.Errorf("expected category to round-trip, got %q", got)
			}
		})

		t.Run("Deterministic", func(t *testing.T) {
			first, _ := ExportToOPML("YouTube", sampleSubscriptions())
			second, _ := ExportToOPML("YouTube", sampleSubscriptions())
			if string(first) != string(second) {
				t.Error("expected identical output for identical input")
			}
		})

		t.Run("Empty List", func(t *testing.T) {
			data, err := ExportToOPML("YouTube", nil)
			if err != nil {
				t.Fatalf("ExportToOPML failed: %v", err)
			}
			doc := mustDecode(t, data)
			if len(doc.Body.Outlines) != 1 || len(doc.Body.Outlines[0].Outlines) != 0 {
				t.Errorf("expected an empty category, got %+v", doc.Body)
			}
		})

		t.Run("Many Leaves", func(t *testing.T) {
			subs := make([]models.Subscription, 120)
			for i := range subs {
				subs[i] = models.Subscription{Title: fmt.Sprintf("Channel %03d", i), ChannelID: fmt.Sprintf("UC%03d", i)}
			}

			data, err := ExportToOPML("YouTube", subs)
			if err != nil {
				t.Fatalf("ExportToOPML failed: %v", err)
			}
			if n := strings.Count(string(data), `type="rss"`); n != len(subs) {
				t.Errorf("expected %d leaves, got %d", len(subs), n)
			}
		})

		t.Run("Unrepresentable Content", func(t *testing.T) {
			tests := []struct {
				name     string
				category string
				subs     []models.Subscription
			}{
				{"Control Character In Title", "YouTube", []models.Subscription{{Title: "bell\x07", ChannelID: "UC1"}}},
				{"Invalid UTF-8 In Title", "YouTube", []models.Subscription{{Title: "bad\xff", ChannelID: "UC1"}}},
				{"Control Character In Category", "You\x00Tube", nil},
				{"Noncharacter", "YouTube", []models.Subscription{{Title: "\ufffe", ChannelID: "UC1"}}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					data, err := ExportToOPML(tt.category, tt.subs)
					if !errors.Is(err, shared.ErrEncodeFailed) {
						t.Errorf("expected ErrEncodeFailed, got %v", err)
					}
					if data != nil {
						t.Error("expected no output on failure")
					}
				})
			}
		})

		t.Run("Allows Whitespace Controls", func(t *testing.T) {
			subs := []models.Subscription{{Title: "line\tone\nline two", ChannelID: "UC1"}}
			data, err := ExportToOPML("YouTube", subs)
			if err != nil {
				t.Fatalf("ExportToOPML failed: %v", err)
			}
			if got := mustDecode(t, data).Body.Outlines[0].Outlines[0].Title; got != subs[0].Title {
				t.Errorf("expected title to round-trip, got %q", got)
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleSubscriptions())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		if !strings.HasPrefix(lines[0], "1.") || !strings.Contains(lines[0], "Zebra Facts") {
			t.Errorf("unexpected first line %q", lines[0])
		}
		if !strings.HasSuffix(lines[1], "https://www.youtube.com/channel/UCaaa") {
			t.Errorf("unexpected second line %q", lines[1])
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteOPMLFile", func(t *testing.T) {
		t.Run("Creates Parent Directories", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "exports", "subscriptions.opml")
			data, err := ExportToOPML("YouTube", sampleSubscriptions())
			if err != nil {
				t.Fatalf("ExportToOPML failed: %v", err)
			}

			if err := WriteOPMLFile(path, data); err != nil {
				t.Fatalf("WriteOPMLFile failed: %v", err)
			}

			th.AssertFileExists(t, path)
			if content := th.MustReadFile(t, path); content != string(data) {
				t.Errorf("expected document written verbatim, got:\n%s", content)
			}
		})

		t.Run("Unwritable Path", func(t *testing.T) {
			dir := t.TempDir()
			blocker := th.WriteFile(t, dir, "blocker", "")

			if err := WriteOPMLFile(filepath.Join(blocker, "out.opml"), []byte("<opml/>")); err == nil {
				t.Fatal("expected error writing below a regular file")
			}
		})
	})
}
