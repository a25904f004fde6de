package models

// PageMeta holds the SEO-relevant fields extracted from fetched HTML. It is
// used only to build the narrative summarizer prompt and is echoed back to
// the client as the "extracted" object.
type PageMeta struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    string   `json:"keywords"`
	H1          []string `json:"h1,omitempty"`
	H2          []string `json:"h2,omitempty"`
	H3          []string `json:"h3,omitempty"`

	// ContentSample is a trimmed markdown rendition of the page's main
	// content, capped so the prompt stays compact.
	ContentSample string `json:"contentSample,omitempty"`
}
