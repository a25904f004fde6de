package meta

import (
	"strings"
	"testing"
)

var samplePage = `<html><head>
	<title> Acme Widgets </title>
	<meta name="description" content="The widget shop.">
	<meta name="keywords" content="widgets, acme">
</head><body>
	<h1>Widgets for everyone</h1>
	<h2>Bestsellers</h2>
	<h2>New arrivals</h2>
	<h3></h3>
	<article>
		<p>` + strings.Repeat("Widgets are small and useful things that everyone needs. ", 10) + `</p>
		<p>Our catalogue covers every widget imaginable, from tiny to huge.</p>
	</article>
	<script>trackEverything();</script>
</body></html>`

func TestExtract_MetadataAndHeadings(t *testing.T) {
	m := NewExtractor().Extract([]byte(samplePage), "https://acme.example.com/widgets")

	if m.Title != "Acme Widgets" {
		t.Errorf("title = %q", m.Title)
	}
	if m.Description != "The widget shop." {
		t.Errorf("description = %q", m.Description)
	}
	if m.Keywords != "widgets, acme" {
		t.Errorf("keywords = %q", m.Keywords)
	}
	if len(m.H1) != 1 || m.H1[0] != "Widgets for everyone" {
		t.Errorf("h1 = %v", m.H1)
	}
	if len(m.H2) != 2 {
		t.Errorf("h2 = %v", m.H2)
	}
	if len(m.H3) != 0 {
		t.Errorf("empty h3 collected: %v", m.H3)
	}
}

func TestExtract_ContentSample(t *testing.T) {
	m := NewExtractor().Extract([]byte(samplePage), "https://acme.example.com/widgets")

	if m.ContentSample == "" {
		t.Fatal("content sample is empty")
	}
	if !strings.Contains(m.ContentSample, "catalogue") {
		t.Errorf("content sample missing article text: %q", m.ContentSample)
	}
	if strings.Contains(m.ContentSample, "trackEverything") {
		t.Errorf("script content leaked into sample: %q", m.ContentSample)
	}
	if len(m.ContentSample) > maxContentSample {
		t.Errorf("content sample over cap: %d", len(m.ContentSample))
	}
}

func TestExtract_SparsePageFallsBackToVisibleText(t *testing.T) {
	page := `<html><body><p>tiny page</p></body></html>`
	m := NewExtractor().Extract([]byte(page), "https://example.com")

	if m.Title != "" || m.Description != "" {
		t.Errorf("sparse page produced metadata: %+v", m)
	}
	if !strings.Contains(m.ContentSample, "tiny page") {
		t.Errorf("fallback sample = %q", m.ContentSample)
	}
}

func TestClip(t *testing.T) {
	if got := clip("héllo wörld", 5); got != "héllo" {
		t.Errorf("clip = %q", got)
	}
	if got := clip("short", 100); got != "short" {
		t.Errorf("clip = %q", got)
	}
}
