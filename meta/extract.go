// Package meta extracts the SEO-relevant surface of a page: title, meta
// tags, heading outline, and a compact markdown sample of the main content.
package meta

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/use-agent/pagepulse/fetch"
	"github.com/use-agent/pagepulse/models"
)

// maxContentSample caps the markdown content sample so the summarizer prompt
// stays compact.
const maxContentSample = 2000

// maxHeadings caps each heading level's list.
const maxHeadings = 10

// minContentLength is the minimum readability TextContent length (in
// characters) for the extraction to be considered valid. Below it we assume
// the algorithm failed to locate the main content and fall back to the
// page's visible text.
const minContentLength = 50

// Extractor turns fetched HTML into PageMeta. The converter and sanitizer
// are goroutine-safe, so one Extractor serves all requests.
type Extractor struct {
	converter *converter.Converter
	sanitizer *bluemonday.Policy
}

// NewExtractor creates a ready-to-use Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		// base plugin strips script/style/head/meta noise; commonmark renders
		// the rest as standard markdown.
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Extract parses the fetched document. It never fails: a page without the
// usual tags simply yields empty fields, and a content-sample pipeline error
// degrades to the page's visible text.
func (e *Extractor) Extract(body []byte, sourceURL string) *models.PageMeta {
	m := &models.PageMeta{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		slog.Warn("meta: markup not parseable, serving visible text only",
			"url", sourceURL, "error", err,
		)
		m.ContentSample = clip(fetch.VisibleText(body), maxContentSample)
		return m
	}

	m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	m.Description = metaContent(doc, "description")
	m.Keywords = metaContent(doc, "keywords")
	m.H1 = headings(doc, "h1")
	m.H2 = headings(doc, "h2")
	m.H3 = headings(doc, "h3")
	m.ContentSample = e.contentSample(body, sourceURL)

	return m
}

// contentSample isolates the main content with readability, sanitises it and
// renders markdown. Any stage failing falls back to plain visible text.
func (e *Extractor) contentSample(body []byte, sourceURL string) string {
	fallback := func() string { return clip(fetch.VisibleText(body), maxContentSample) }

	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		return fallback()
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		slog.Debug("meta: readability failed, using visible text",
			"url", sourceURL, "error", err,
		)
		return fallback()
	}
	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		return fallback()
	}

	clean := e.sanitizer.Sanitize(article.Content)

	markdown, err := e.converter.ConvertString(clean, converter.WithDomain(parsedURL.Host))
	if err != nil {
		slog.Debug("meta: markdown conversion failed, using visible text",
			"url", sourceURL, "error", err,
		)
		return fallback()
	}

	return clip(strings.TrimSpace(markdown), maxContentSample)
}

// metaContent reads <meta name=X content=...>.
func metaContent(doc *goquery.Document, name string) string {
	content, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

// headings collects non-empty heading texts for one level, capped.
func headings(doc *goquery.Document, tag string) []string {
	var out []string
	doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
		return len(out) < maxHeadings
	})
	return out
}

// clip truncates on a rune boundary.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
