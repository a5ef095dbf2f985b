package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinks_DeduplicatedInOrder(t *testing.T) {
	raw := `<a href="https://a.example/1">one</a>` +
		`<a href="https://b.example/2">two</a>` +
		`<a href="https://a.example/1">one again</a>`

	result := NewTransformer().Transform(raw)

	assert.Equal(t, []string{"https://a.example/1", "https://b.example/2"}, result.URLs)
}

func TestExtractLinks_LengthBounded(t *testing.T) {
	long := "https://a.example/" + strings.Repeat("x", 300)
	raw := `<a href="` + long + `">too long</a><a href="https://ok.example/">ok</a>`

	result := NewTransformer().Transform(raw)

	assert.Equal(t, []string{"https://ok.example/"}, result.URLs)
}

func TestExtractImages_ProxyDecoded(t *testing.T) {
	raw := `<img src="https://imgproxy.example/index.php?u=https%3A%2F%2Fi.pics.example%2Fcat.png&t=abc">` +
		`<img src="https://direct.example/dog.jpg">`

	result := NewTransformer().Transform(raw)

	assert.Equal(t, []string{
		"https://i.pics.example/cat.png",
		"https://direct.example/dog.jpg",
	}, result.ImageURLs)
}

func TestExtractImages_ProxyDecodeFallsBack(t *testing.T) {
	// The proxy parameter does not hold an absolute URL; keep the proxied form.
	raw := `<img src="https://imgproxy.example/index.php?u=not-a-url">`

	result := NewTransformer().Transform(raw)

	assert.Equal(t, []string{"https://imgproxy.example/index.php?u=not-a-url"}, result.ImageURLs)
}

func TestExtractImages_DeduplicatesAfterDecoding(t *testing.T) {
	// Two different proxied forms of the same original collapse to one entry.
	raw := `<img src="https://imgproxy.example/?u=https%3A%2F%2Fi.pics.example%2Fcat.png&t=aaa">` +
		`<img src="https://imgproxy.example/?u=https%3A%2F%2Fi.pics.example%2Fcat.png&t=bbb">`

	result := NewTransformer().Transform(raw)

	assert.Equal(t, []string{"https://i.pics.example/cat.png"}, result.ImageURLs)
}

func TestDecodeProxiedImage(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "u parameter",
			src:  "https://proxy.example/?u=https%3A%2F%2Forigin.example%2Fa.png",
			want: "https://origin.example/a.png",
		},
		{
			name: "url parameter",
			src:  "https://proxy.example/fetch?url=http%3A%2F%2Forigin.example%2Fb.gif",
			want: "http://origin.example/b.gif",
		},
		{
			name: "no proxy parameter",
			src:  "https://origin.example/c.jpg",
			want: "https://origin.example/c.jpg",
		},
		{
			name: "relative value keeps proxied form",
			src:  "https://proxy.example/?u=%2Flocal%2Fpath.png",
			want: "https://proxy.example/?u=%2Flocal%2Fpath.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeProxiedImage(tt.src))
		})
	}
}
