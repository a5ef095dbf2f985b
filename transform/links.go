package transform

import (
	"net/url"

	"golang.org/x/net/html"
)

// extractLinks collects the de-duplicated set of outbound link targets, in
// document order, each bounded to the configured maximum length.
func (t *Transformer) extractLinks(body *html.Node) []string {
	var links []string
	seen := make(map[string]struct{})
	walk(body, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attrVal(n, "href")
			if href == "" || len(href) > t.maxURLLen {
				return true
			}
			if _, ok := seen[href]; ok {
				return true
			}
			seen[href] = struct{}{}
			links = append(links, href)
		}
		return true
	})
	return links
}

// extractImages collects the de-duplicated set of embedded image sources.
// Sources routed through an image proxy are decoded back to the original
// URL; when decoding fails the proxied form is kept.
func (t *Transformer) extractImages(body *html.Node) []string {
	var images []string
	seen := make(map[string]struct{})
	walk(body, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "img" {
			src := attrVal(n, "src")
			if src == "" {
				return true
			}
			src = decodeProxiedImage(src)
			if len(src) > t.maxURLLen {
				return true
			}
			if _, ok := seen[src]; ok {
				return true
			}
			seen[src] = struct{}{}
			images = append(images, src)
		}
		return true
	})
	return images
}

// decodeProxiedImage recovers the original source of an image served through
// a redirect/imaging proxy, which carries the original URL in a "u" or "url"
// query parameter. Non-proxied or undecodable sources pass through unchanged.
func decodeProxiedImage(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	q := u.Query()
	for _, param := range []string{"u", "url"} {
		original := q.Get(param)
		if original == "" {
			continue
		}
		if o, err := url.Parse(original); err == nil && (o.Scheme == "http" || o.Scheme == "https") && o.Host != "" {
			return original
		}
	}
	return src
}
