// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package transform

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
)

const (
	// DefaultMaxURLLength bounds every extracted link and image reference.
	DefaultMaxURLLength = 256
)

// Quote is one quoted span resolved from a post's markup. TopicID and PostID
// come from parsing the quote header's link target and are nil when the link
// is malformed or points off-platform.
type Quote struct {
	Author  string `json:"author"`
	Content string `json:"content"`
	TopicID *int64 `json:"topic_id"`
	PostID  *int64 `json:"post_id"`
}

// Result is the structured form of one raw content blob.
type Result struct {
	Content              string   `json:"content"`
	ContentWithoutQuotes string   `json:"content_without_quotes"`
	Quotes               []Quote  `json:"quotes"`
	URLs                 []string `json:"urls"`
	ImageURLs            []string `json:"image_urls"`
}

// Transformer turns raw rich-text markup into a Result.
type Transformer struct {
	logger    *slog.Logger
	maxURLLen int
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMaxURLLength overrides the length bound on extracted URLs.
func WithMaxURLLength(n int) Option {
	return func(t *Transformer) {
		if n > 0 {
			t.maxURLLen = n
		}
	}
}

// NewTransformer creates a Transformer.
func NewTransformer(opts ...Option) *Transformer {
	t := &Transformer{
		logger:    slog.Default(),
		maxURLLen: DefaultMaxURLLength,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform converts one raw content blob. It never fails: unparseable
// sub-elements are dropped and logged, shrinking the result instead of
// aborting the record.
func (t *Transformer) Transform(raw string) *Result {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// html.Parse only fails on reader errors, which a strings.Reader
		// cannot produce. Guard anyway and degrade to plain text.
		t.logger.Warn("markup parse failed, treating content as plain text", "error", err)
		return &Result{
			Content:              normalizeSpace(raw),
			ContentWithoutQuotes: normalizeSpace(raw),
		}
	}

	body := findBody(root)

	return &Result{
		Content:              collectText(body, nil),
		ContentWithoutQuotes: collectText(body, isQuoteSpan),
		Quotes:               t.extractQuotes(body),
		URLs:                 t.extractLinks(body),
		ImageURLs:            t.extractImages(body),
	}
}

// findBody returns the body element html.Parse always synthesizes, or root
// itself if the tree is unexpectedly shaped.
func findBody(root *html.Node) *html.Node {
	var body *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return root
	}
	return body
}

// walk visits n and its descendants top-down. fn returning false prunes the
// subtree below that node.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// hasClass reports whether an element node carries the given class token.
func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, token := range strings.Fields(attr.Val) {
			if token == class {
				return true
			}
		}
	}
	return false
}

// attrVal returns the value of the named attribute, or "".
func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// isQuoteSpan matches the nodes that make up a quoted span: the header and
// the quoted body.
func isQuoteSpan(n *html.Node) bool {
	return hasClass(n, "quoteheader") || hasClass(n, "quote")
}

// collectText flattens a subtree into normalized plain text. Subtrees matched
// by skip are omitted entirely; <br> becomes a space and block elements
// separate their text from surrounding siblings.
func collectText(n *html.Node, skip func(*html.Node) bool) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if skip != nil && skip(n) {
			return
		}
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteString(" ")
		case isBlock(n):
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
		if isBlock(n) {
			sb.WriteString(" ")
		}
	}
	visit(n)
	return normalizeSpace(sb.String())
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "div", "p", "li", "tr", "pre", "blockquote":
		return true
	}
	return false
}

// normalizeSpace collapses all whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
