package transform

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const quoteFromPrefix = "Quote from: "

// extractQuotes walks quote headers top-down and resolves each into a Quote.
// Nested quotes appear as their own entries; an outer quote's content never
// includes its nested quotes' text.
func (t *Transformer) extractQuotes(body *html.Node) []Quote {
	var quotes []Quote
	walk(body, func(n *html.Node) bool {
		if hasClass(n, "quoteheader") {
			if q, ok := t.quoteAt(n); ok {
				quotes = append(quotes, q)
			}
			// Keep descending: a header holds no nested quotes, but pruning
			// here would be harmless either way.
		}
		return true
	})
	return quotes
}

// quoteAt resolves the quote anchored at a header node. Headers that do not
// reference another post (reply-to-self, or markup without a link) are
// skipped.
func (t *Transformer) quoteAt(header *html.Node) (Quote, bool) {
	link := firstLink(header)
	if link == nil {
		t.logger.Debug("skipping quote header without post reference")
		return Quote{}, false
	}

	label := collectText(link, nil)
	author, ok := parseQuoteAuthor(label)
	if !ok {
		t.logger.Debug("skipping quote header with unrecognized label", "label", label)
		return Quote{}, false
	}

	topicID, postID := parseQuoteTarget(attrVal(link, "href"))
	if topicID == nil && postID == nil {
		t.logger.Debug("quote header link did not resolve to a post", "href", attrVal(link, "href"))
	}

	return Quote{
		Author:  author,
		Content: quoteBodyText(header),
		TopicID: topicID,
		PostID:  postID,
	}, true
}

// firstLink returns the first descendant anchor carrying an href.
func firstLink(n *html.Node) *html.Node {
	var link *html.Node
	walk(n, func(c *html.Node) bool {
		if link != nil {
			return false
		}
		if c.Type == html.ElementNode && c.Data == "a" && attrVal(c, "href") != "" {
			link = c
			return false
		}
		return true
	})
	return link
}

// parseQuoteAuthor pulls the author name out of a header label of the form
// "Quote from: NAME on DATE". The date never contains " on ", so the last
// occurrence splits reliably even for author names containing it.
func parseQuoteAuthor(label string) (string, bool) {
	rest, found := strings.CutPrefix(label, quoteFromPrefix)
	if !found {
		return "", false
	}
	if idx := strings.LastIndex(rest, " on "); idx >= 0 {
		rest = rest[:idx]
	}
	author := strings.TrimSpace(rest)
	if author == "" {
		return "", false
	}
	return author, true
}

// parseQuoteTarget extracts the referenced topic and post ids from a quote
// header's link target: the topic id is the integer prefix of the "topic"
// query parameter ("10.msg20" -> 10) and the post id comes from the "msg20"
// fragment. Either is nil when absent or unparseable.
func parseQuoteTarget(href string) (topicID, postID *int64) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, nil
	}

	if topic := u.Query().Get("topic"); topic != "" {
		numeric, _, _ := strings.Cut(topic, ".")
		if id, err := strconv.ParseInt(numeric, 10, 64); err == nil {
			topicID = &id
		}
	}

	if msg, found := strings.CutPrefix(u.Fragment, "msg"); found {
		if id, err := strconv.ParseInt(msg, 10, 64); err == nil {
			postID = &id
		}
	}

	return topicID, postID
}

// quoteBodyText captures the quoted text belonging to a header: the content
// of the quote block that follows it, with any nested quote spans stripped so
// nested text is not duplicated into the outer quote.
func quoteBodyText(header *html.Node) string {
	body := nextQuoteBlock(header)
	if body == nil {
		return ""
	}

	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if isQuoteSpan(c) {
			continue
		}
		sb.WriteString(collectText(c, isQuoteSpan))
		sb.WriteString(" ")
	}
	return normalizeSpace(sb.String())
}

// nextQuoteBlock finds the quote block sibling that follows a header,
// tolerating whitespace text nodes between the two.
func nextQuoteBlock(header *html.Node) *html.Node {
	for s := header.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.TextNode && strings.TrimSpace(s.Data) == "" {
			continue
		}
		if hasClass(s, "quote") {
			return s
		}
		// Anything else between header and block means the markup is not a
		// well-formed quote; treat the quote as bodyless.
		return nil
	}
	return nil
}
