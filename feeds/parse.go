package feeds

import (
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var ErrInvalidFeed = errors.New("feeds: not an RSS or Atom document")

// entry is a feed item before normalization.
type entry struct {
	Title       string
	Link        string
	Description string
	Content     string
	Published   *time.Time
	Tags        []string
}

type rssEnvelope struct {
	Channel struct {
		Items []struct {
			Title       string   `xml:"title"`
			Link        string   `xml:"link"`
			Description string   `xml:"description"`
			Encoded     string   `xml:"encoded"`
			PubDate     string   `xml:"pubDate"`
			Date        string   `xml:"date"`
			Categories  []string `xml:"category"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomEnvelope struct {
	Entries []struct {
		Title      string     `xml:"title"`
		Links      []atomLink `xml:"link"`
		Summary    string     `xml:"summary"`
		Content    string     `xml:"content"`
		Updated    string     `xml:"updated"`
		Published  string     `xml:"published"`
		Categories []struct {
			Term string `xml:"term,attr"`
		} `xml:"category"`
	} `xml:"entry"`
}

func parseTimeString(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		time.RFC1123Z,
		time.RFC1123,
		time.RFC850,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// parseDocument detects RSS or Atom from the root element and returns entries newest first.
// Entries without a date keep their document order after dated ones.
func parseDocument(data []byte) ([]entry, error) {
	var root struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}

	var (
		entries []entry
		err     error
	)
	switch strings.ToLower(root.XMLName.Local) {
	case "feed":
		entries, err = parseAtom(data)
	case "rss":
		entries, err = parseRSS(data)
	default:
		return nil, fmt.Errorf("%w: root element <%s>", ErrInvalidFeed, root.XMLName.Local)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Published == nil {
			return false
		}
		if entries[j].Published == nil {
			return true
		}
		return entries[i].Published.After(*entries[j].Published)
	})
	return entries, nil
}

func parseRSS(data []byte) ([]entry, error) {
	var rss rssEnvelope
	if err := xml.Unmarshal(data, &rss); err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(rss.Channel.Items))
	for _, it := range rss.Channel.Items {
		link := strings.TrimSpace(it.Link)
		title := strings.TrimSpace(it.Title)
		if link == "" && title == "" {
			continue
		}
		published := parseTimeString(it.PubDate)
		if published == nil {
			published = parseTimeString(it.Date)
		}
		entries = append(entries, entry{
			Title:       title,
			Link:        link,
			Description: it.Description,
			Content:     it.Encoded,
			Published:   published,
			Tags:        cleanTags(it.Categories),
		})
	}
	return entries, nil
}

func parseAtom(data []byte) ([]entry, error) {
	var atom atomEnvelope
	if err := xml.Unmarshal(data, &atom); err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(atom.Entries))
	for _, e := range atom.Entries {
		link := ""
		for _, l := range e.Links {
			href := strings.TrimSpace(l.Href)
			if href == "" {
				continue
			}
			if l.Rel == "" || l.Rel == "alternate" {
				link = href
				break
			}
			if link == "" {
				link = href
			}
		}
		title := strings.TrimSpace(e.Title)
		if link == "" && title == "" {
			continue
		}
		published := parseTimeString(e.Published)
		if published == nil {
			published = parseTimeString(e.Updated)
		}
		terms := make([]string, 0, len(e.Categories))
		for _, c := range e.Categories {
			terms = append(terms, c.Term)
		}
		entries = append(entries, entry{
			Title:       title,
			Link:        link,
			Description: e.Summary,
			Content:     e.Content,
			Published:   published,
			Tags:        cleanTags(terms),
		})
	}
	return entries, nil
}

func cleanTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

var blockTags = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true, "tr": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "blockquote": true,
}

// StripHTML returns the text content of an HTML fragment with whitespace collapsed.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	var b strings.Builder
	skip := false
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was read.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if !skip {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style":
				skip = tt == html.StartTagToken
			case blockTags[tag]:
				b.WriteByte(' ')
			}
		}
	}
}

// Clamp cuts s to at most n runes.
func Clamp(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
