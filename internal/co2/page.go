package co2

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

var ppmPattern = regexp.MustCompile(`(\d{3}\.\d{2})\s*ppm`)

// ParsePage extracts the first "DDD.DD ppm" figure from an HTML page's
// visible text. The trend is unknown and the reading is dated at now's month.
func ParsePage(body []byte, now time.Time) (*domain.CO2Reading, error) {
	text, err := pageText(body)
	if err != nil {
		return nil, err
	}

	m := ppmPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("%w: no ppm value on page", ErrMalformed)
	}
	ppm, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: ppm %q", ErrMalformed, m[1])
	}

	return &domain.CO2Reading{
		CO2Level: ppm,
		Date:     now.Format(monthDateLayout),
		Trend:    domain.TrendUnknown,
		Source:   SourcePage,
	}, nil
}

// pageText returns the visible text of an HTML document with whitespace collapsed.
func pageText(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", ErrMalformed, err)
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return strings.Join(strings.Fields(buf.String()), " "), nil
}

func extractText(n *html.Node, buf *strings.Builder) {
	block := false
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "head":
			return
		case "p", "div", "br", "li", "td", "th", "tr", "section", "h1", "h2", "h3", "h4", "h5", "h6":
			block = true
		}
	}
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	if block {
		buf.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
	if block {
		buf.WriteByte(' ')
	}
}

// PageSource fetches an HTML page and parses it with ParsePage.
func PageSource(url string, f *Fetcher, now func() time.Time) Source {
	return NewSource(SourcePage, func(ctx context.Context) (*domain.CO2Reading, error) {
		body, err := f.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		return ParsePage(body, now())
	})
}
