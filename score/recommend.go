package score

import (
	"sort"

	"github.com/use-agent/pagepulse/models"
)

// actionTemplate is the fixed action text for one dimension key.
type actionTemplate struct {
	Title  string
	Action string
}

// actionTemplates maps each dimension key to its recommendation. Keys without
// an entry fall back to the finding's own label and message.
var actionTemplates = map[string]actionTemplate{
	"sections": {
		Title:  "Consolidate page sections",
		Action: "Merge related sections and cut low-value blocks to shorten the page and its DOM.",
	},
	"carousels": {
		Title:  "Reduce carousel count",
		Action: "Keep at most one carousel per page and replace the rest with static content.",
	},
	"carouselSlides": {
		Title:  "Trim carousel slides",
		Action: "Cut slide decks down to the strongest items; long loops are rarely browsed past the third slide.",
	},
	"testimonials": {
		Title:  "Slim down testimonials",
		Action: "Show a handful of strong quotes instead of large rotating testimonial blocks.",
	},
	"libraries": {
		Title:  "Simplify content libraries",
		Action: "Limit the page to a single library container and fewer content types.",
	},
	"images": {
		Title:  "Reduce image weight",
		Action: "Remove decorative images, serve responsive sizes and lazy-load everything below the fold.",
	},
	"videos": {
		Title:  "Limit embedded videos",
		Action: "Embed at most two videos and link out to the rest, or use click-to-load facades.",
	},
	"iframes": {
		Title:  "Remove third-party iframes",
		Action: "Each iframe ships a full nested page; replace embeds with links or lightweight facades.",
	},
	"adSlots": {
		Title:  "Reduce ad slots",
		Action: "Fewer skyscraper slots improve layout stability and cut third-party requests.",
	},
}

// buildRecommendations filters findings to non-good severities and orders
// them by ascending points, so the most impactful deduction comes first.
// Ties keep the dimension evaluation order (stable sort).
func buildRecommendations(findings []models.Finding) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(findings))

	for _, f := range findings {
		if f.Severity == models.SeverityGood {
			continue
		}

		tpl, ok := actionTemplates[f.Key]
		if !ok {
			tpl = actionTemplate{Title: f.Label, Action: f.Message}
		}

		recs = append(recs, models.Recommendation{
			Key:      f.Key,
			Title:    tpl.Title,
			Action:   tpl.Action,
			Points:   f.Points,
			Severity: f.Severity,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Points < recs[j].Points
	})

	return recs
}
