// Package score converts census counts into a weighted page health score with
// ranked, explainable findings. It is a pure computation: no I/O, no clock,
// no randomness — identical input always yields identical output.
package score

import (
	"fmt"

	"github.com/use-agent/pagepulse/models"
)

// tier is one evaluated rung of a dimension's ladder.
type tier struct {
	severity string
	points   int
	message  string
}

// dimension describes one scored aspect of the page. The table below is
// iterated uniformly: adding a dimension is a data change, not new control
// flow.
type dimension struct {
	key       string
	label     string
	value     func(models.CensusCounts) int
	eval      func(models.CensusCounts, Thresholds) tier
	threshold func(Thresholds) string
}

func good(msg string) tier { return tier{severity: models.SeverityGood, points: 0, message: msg} }

// evalAbove applies a StepAbove ladder with per-tier messages.
func evalAbove(v int, s StepAbove, goodMsg, warnMsg, badMsg string) tier {
	switch {
	case v > s.Bad:
		return tier{models.SeverityBad, s.BadPoints, badMsg}
	case v > s.Warn:
		return tier{models.SeverityWarn, s.WarnPoints, warnMsg}
	default:
		return good(goodMsg)
	}
}

// evalAtLeast applies a StepAtLeast ladder with per-tier messages.
func evalAtLeast(v int, s StepAtLeast, goodMsg, warnMsg, badMsg string) tier {
	switch {
	case v >= s.Bad:
		return tier{models.SeverityBad, s.BadPoints, badMsg}
	case v >= s.Warn:
		return tier{models.SeverityWarn, s.WarnPoints, warnMsg}
	default:
		return good(goodMsg)
	}
}

// dimensions is the fixed evaluation order. Exactly one finding is emitted
// per entry on every run.
var dimensions = []dimension{
	{
		key:   "sections",
		label: "Page sections",
		value: func(c models.CensusCounts) int { return c.Sections.Total },
		eval: func(c models.CensusCounts, t Thresholds) tier {
			v := c.Sections.Total
			return evalAbove(v, t.Sections,
				fmt.Sprintf("%d sections is a comfortable page length.", v),
				fmt.Sprintf("%d sections make a long page; consider consolidating related content.", v),
				fmt.Sprintf("%d sections is excessive and inflates DOM size and scroll depth.", v),
			)
		},
		threshold: func(t Thresholds) string {
			return fmt.Sprintf("warn >%d, bad >%d", t.Sections.Warn, t.Sections.Bad)
		},
	},
	{
		key:   "carousels",
		label: "Carousels",
		value: func(c models.CensusCounts) int { return c.Carousels.Count },
		eval: func(c models.CensusCounts, t Thresholds) tier {
			v := c.Carousels.Count
			return evalAtLeast(v, t.Carousels,
				"Carousel usage is moderate.",
				fmt.Sprintf("%d carousels compete for attention; one per page is usually enough.", v),
				fmt.Sprintf("%d carousels load heavy slider scripts and hurt interaction readiness.", v),
			)
		},
		threshold: func(t Thresholds) string {
			return fmt.Sprintf("warn >=%d, bad >=%d", t.Carousels.Warn, t.Carousels.Bad)
		},
	},
	{
		key:   "carouselSlides",
		label: "Carousel slides",
		value: func(c models.CensusCounts) int { return c.Carousels.SlidesTotal },
		eval: func(c models.CensusCounts, t Thresholds) tier {
			v := c.Carousels.SlidesTotal
			return evalAbove(v, t.CarouselSlides,
				"Slide decks are reasonably sized.",
				fmt.Sprintf("%d slides across carousels; few visitors browse past the first three.", v),
				fmt.Sprintf("%d slides is far too many; each slide still costs images and DOM nodes.", v),
			)
		},
		threshold: func(t Thresholds) string {
			return fmt.Sprintf("warn >%d, bad >%d", t.CarouselSlides.Warn, t.CarouselSlides.Bad)
		},
	},
	{
		key:   "testimonials",
		label: "Testimonials",
		value: func(c models.CensusCounts) int { return c.Testimonials.Count },
		eval: func(c models.CensusCounts, t Thresholds) tier {
			blocks := c.Testimonials.Count
			items := c.Testimonials.ItemsTotal
			if blocks >= t.Testimonials.MaxBlocks || items > t.Testimonials.MaxItems {
				return tier{models.SeverityWarn, t.Testimonials.Points,
					fmt.Sprintf("%d testimonial blocks with %d items; a few strong quotes beat a rotating wall.", blocks, items)}
			}
			return good("Testimonial usage is restrained.")
		},
		threshold: func(t Thresholds) string {
			return fmt.Sprintf("warn blocks >=%d or items >%d", t.Testimonials.MaxBlocks, t.Testimonials.MaxItems)
		},
	},
	{
		key:   "libraries",
		label: "Content libraries",
		value: func(c models.CensusCounts) int { return c.Libraries.TypesTotal },
		eval: func(c models.CensusCounts, t Thresholds) tier {
			containers := c.Libraries.Containers
			types := c.Libraries.TypesTotal
			switch {
			case types >= t.Libraries.BadTypes:
				return tier{models.SeverityBad, t.Libraries.Points,
					fmt.Sprintf("%d library content types on one page dilute its focus.", types)}
			case containers > t.Libraries.MaxContainers || types >= t.Libraries.WarnTypes:
				return tier{models.SeverityWarn, t.Libraries.Points,
					fmt.Sprintf("%d library containers with %d content types; consider a single focused library.", containers, types)}
			default:
				return good("Library usage is focused.")
			}
		},
		threshold: func(t Thresholds) string {
			return fmt.Sprintf("warn containers >%d or types >=%d, bad types >=%d",
				t.Libraries.MaxContainers, t.Libraries.WarnTypes, t.Libraries.BadTypes)
		},
	},
	{
		key:   "images",
		label: "Images",
		value: func(c models.CensusCounts) int { return c.Media.Images },
		eval: func(c models.CensusCounts, t Thresholds) tier {
			v := c.Media.Images
			return evalAbove(v, t.Images,
				fmt.Sprintf("%d images is a manageable amount.", v),
				fmt.Sprintf("%d images add noticeable transfer weight; audit for decorative ones.", v),
				fmt.Sprintf("%d images will dominate page weight even with lazy loading.", v),
			)
		},
		threshold: func(t Thresholds) string {
			return fmt.Sprintf("warn >%d, bad >%d", t.Images.Warn, t.Images.Bad)
		},
	},
	{
		key:   "videos",
		label: "Videos",
		value: func(c models.CensusCounts) int { return c.Media.Videos },
		eval: func(c models.CensusCounts, t Thresholds) tier {
			v := c.Media.Videos
			return evalAtLeast(v, t.Videos,
				"Video usage is light.",
				fmt.Sprintf("%d embedded videos; players are among the heaviest things a page can carry.", v),
				fmt.Sprintf("%d embedded videos make the page very heavy to load and render.", v),
			)
		},
		threshold: func(t Thresholds) string {
			return fmt.Sprintf("warn >=%d, bad >=%d", t.Videos.Warn, t.Videos.Bad)
		},
	},
	{
		key:   "iframes",
		label: "Iframes",
		value: func(c models.CensusCounts) int { return c.Media.Iframes },
		eval: func(c models.CensusCounts, t Thresholds) tier {
			v := c.Media.Iframes
			return evalAtLeast(v, t.Iframes,
				"Iframe usage is minimal.",
				fmt.Sprintf("%d iframes; each one loads a full nested document.", v),
				fmt.Sprintf("%d iframes multiply requests and block the main thread.", v),
			)
		},
		threshold: func(t Thresholds) string {
			return fmt.Sprintf("warn >=%d, bad >=%d", t.Iframes.Warn, t.Iframes.Bad)
		},
	},
	{
		key:   "adSlots",
		label: "Ad slots",
		value: func(c models.CensusCounts) int { return c.AdSpace.Total },
		eval: func(c models.CensusCounts, t Thresholds) tier {
			v := c.AdSpace.Total
			return evalAtLeast(v, t.AdSlots,
				"Ad slot usage is restrained.",
				fmt.Sprintf("%d ad slots cause layout shifts and third-party requests.", v),
				fmt.Sprintf("%d ad slots crowd the content and badly hurt layout stability.", v),
			)
		},
		threshold: func(t Thresholds) string {
			return fmt.Sprintf("warn >=%d, bad >=%d", t.AdSlots.Warn, t.AdSlots.Bad)
		},
	},
}

// Evaluate maps census counts to the score result. It starts at 100 points,
// applies each dimension's deduction independently, and clamps the running
// total to [0,100] once at the end — never mid-computation.
func Evaluate(c models.CensusCounts, t Thresholds) models.ScoreResult {
	total := 100
	findings := make([]models.Finding, 0, len(dimensions))

	for _, d := range dimensions {
		res := d.eval(c, t)
		total += res.points

		findings = append(findings, models.Finding{
			Key:       d.key,
			Label:     d.label,
			Value:     d.value(c),
			Severity:  res.severity,
			Points:    res.points,
			Message:   res.message,
			Threshold: d.threshold(t),
		})
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return models.ScoreResult{
		Overall:         overall(total, t.Overall),
		Findings:        findings,
		Recommendations: buildRecommendations(findings),
	}
}

// overall maps the clamped score to its severity band.
func overall(total int, bands OverallBands) models.Overall {
	switch {
	case total >= bands.Good:
		return models.Overall{Score: total, Severity: models.SeverityGood, Label: "Good"}
	case total >= bands.Warn:
		return models.Overall{Score: total, Severity: models.SeverityWarn, Label: "Needs attention"}
	default:
		return models.Overall{Score: total, Severity: models.SeverityBad, Label: "Heavy"}
	}
}
