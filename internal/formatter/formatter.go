// package formatter renders subscriptions as OPML documents and plain-text listings
package formatter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/desertthunder/ytsubs/internal/models"
	"github.com/desertthunder/ytsubs/internal/shared"
)

// OPMLVersion is the format version declared by exported documents.
const OPMLVersion = "1.1"

// FeedType is the type attribute of every subscription outline.
const FeedType = "rss"

// OPML is the document root.
type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Body    Body     `xml:"body"`
}

// Body holds the top-level outlines.
type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline is either a category carrying child outlines or a feed leaf.
type Outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr"`
	Type     string    `xml:"type,attr,omitempty"`
	XMLURL   string    `xml:"xmlUrl,attr,omitempty"`
	HTMLURL  string    `xml:"htmlUrl,attr,omitempty"`
	Outlines []Outline `xml:"outline"`
}

// NewOPML builds a document with one category named category holding a leaf per
// subscription, in input order.
func NewOPML(category string, subs []models.Subscription) *OPML {
	leaves := make([]Outline, len(subs))
	for i, sub := range subs {
		leaves[i] = Outline{
			Text:    sub.Title,
			Title:   sub.Title,
			Type:    FeedType,
			XMLURL:  sub.FeedURL(),
			HTMLURL: sub.ChannelURL(),
		}
	}

	return &OPML{
		Version: OPMLVersion,
		Body: Body{
			Outlines: []Outline{{Text: category, Title: category, Outlines: leaves}},
		},
	}
}

// Validate reports the first attribute that cannot be represented in XML 1.0.
func (o *OPML) Validate() error {
	var walk func(path string, outlines []Outline) error
	walk = func(path string, outlines []Outline) error {
		for i, outline := range outlines {
			here := fmt.Sprintf("%s/outline[%d]", path, i)
			attrs := [...][2]string{
				{"text", outline.Text}, {"title", outline.Title}, {"xmlUrl", outline.XMLURL}, {"htmlUrl", outline.HTMLURL},
			}
			for _, attr := range attrs {
				if err := checkXMLText(attr[1]); err != nil {
					return fmt.Errorf("%w: %s@%s: %v", shared.ErrEncodeFailed, here, attr[0], err)
				}
			}
			if err := walk(here, outline.Outlines); err != nil {
				return err
			}
		}
		return nil
	}
	return walk("body", o.Body.Outlines)
}

// Marshal validates and serializes the document with an XML declaration.
func (o *OPML) Marshal() ([]byte, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	out, err := xml.MarshalIndent(o, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrEncodeFailed, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(out) + 1)
	buf.WriteString(xml.Header)
	buf.Write(out)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ExportToOPML encodes subs under a single category. Titles are escaped by the
// serializer; content XML cannot carry fails with [shared.ErrEncodeFailed].
func ExportToOPML(category string, subs []models.Subscription) ([]byte, error) {
	return NewOPML(category, subs).Marshal()
}

// WriteOPMLFile writes an encoded document to path, creating parent directories.
func WriteOPMLFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write OPML file: %w", err)
	}
	return nil
}

// ExportToText renders subs as aligned "index  title  channel" rows.
func ExportToText(subs []models.Subscription) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for i, sub := range subs {
		if _, err := fmt.Fprintf(w, "%d.\t%s\t%s\n", i+1, sub.Title, sub.ChannelURL()); err != nil {
			return nil, fmt.Errorf("failed to write listing: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write listing: %w", err)
	}
	return buf.Bytes(), nil
}

// checkXMLText rejects invalid UTF-8 and runes outside the XML 1.0 Char production,
// which encoding/xml would otherwise replace silently.
func checkXMLText(s string) error {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("invalid UTF-8 at byte %d", i)
		}
		if !isXMLChar(r) {
			return fmt.Errorf("character %U at byte %d is not allowed in XML", r, i)
		}
		i += size
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
