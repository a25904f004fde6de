package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/use-agent/pagepulse/models"
)

// keywordsPrefix marks the summary's trailing keyword line. The prompt pins
// this exact prefix so parsing stays mechanical.
const keywordsPrefix = "Suggested keywords:"

// maxDigestBytes caps the audit digest embedded in the prompt.
const maxDigestBytes = 8000

const systemPrompt = `You are a web performance consultant. You receive a page audit
(performance scores, lab metrics, page structure counts) and optionally the
page's extracted metadata and content sample.

Write a short, plain-language assessment for the site owner:
- Lead with the two or three changes that matter most, concrete and actionable.
- Reference the numbers you were given; do not invent measurements.
- No markdown headings, no bullet numbering beyond simple dashes.
- End with exactly one final line of the form
  "Suggested keywords: keyword one, keyword two, keyword three"
  proposing 3 to 6 SEO keywords for the page. If you cannot propose any,
  omit the line entirely.`

// Summarizer builds the narrative summary for POST /api/recommendations.
type Summarizer struct {
	client *Client
}

// NewSummarizer wraps a chat client.
func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize produces the narrative recommendations plus the parsed keyword
// suggestions. The keyword line is stripped from the returned narrative.
func (s *Summarizer) Summarize(ctx context.Context, apiKey string, audit map[string]any, meta *models.PageMeta) (string, []string, error) {
	user, err := buildDigest(audit, meta)
	if err != nil {
		return "", nil, err
	}

	raw, err := s.client.complete(ctx, apiKey, systemPrompt, user)
	if err != nil {
		return "", nil, err
	}

	narrative, keywords := splitKeywords(raw)
	if narrative == "" {
		return "", nil, models.NewAuditError(models.ErrCodeLLMFailure, "LLM returned an empty summary", nil)
	}
	return narrative, keywords, nil
}

// buildDigest renders the prompt's user message: the audit JSON (capped) and
// the extracted page metadata when available.
func buildDigest(audit map[string]any, meta *models.PageMeta) (string, error) {
	auditJSON, err := json.MarshalIndent(audit, "", "  ")
	if err != nil {
		return "", models.NewAuditError(models.ErrCodeInvalidInput, "audit payload is not serialisable", err)
	}
	if len(auditJSON) > maxDigestBytes {
		auditJSON = auditJSON[:maxDigestBytes]
	}

	var b strings.Builder
	b.WriteString("Audit results:\n")
	b.Write(auditJSON)

	if meta != nil {
		b.WriteString("\n\nPage metadata:\n")
		if meta.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", meta.Title)
		}
		if meta.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", meta.Description)
		}
		if meta.Keywords != "" {
			fmt.Fprintf(&b, "Current keywords: %s\n", meta.Keywords)
		}
		if len(meta.H1) > 0 {
			fmt.Fprintf(&b, "H1: %s\n", strings.Join(meta.H1, " | "))
		}
		if len(meta.H2) > 0 {
			fmt.Fprintf(&b, "H2: %s\n", strings.Join(meta.H2, " | "))
		}
		if meta.ContentSample != "" {
			fmt.Fprintf(&b, "\nContent sample:\n%s\n", meta.ContentSample)
		}
	}

	return b.String(), nil
}

// splitKeywords separates the trailing keyword line from the narrative. The
// line may be missing; the narrative is then returned whole.
func splitKeywords(raw string) (string, []string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", nil
	}

	lines := strings.Split(text, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if !strings.HasPrefix(last, keywordsPrefix) {
		return text, nil
	}

	var keywords []string
	for _, part := range strings.Split(strings.TrimPrefix(last, keywordsPrefix), ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	narrative := strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
	return narrative, keywords
}
