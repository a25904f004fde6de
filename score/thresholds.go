package score

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StepAbove is a two-tier ladder triggered by strict "greater than"
// comparisons: value > Warn → warn, value > Bad → bad.
type StepAbove struct {
	Warn       int `yaml:"warn"`
	Bad        int `yaml:"bad"`
	WarnPoints int `yaml:"warnPoints"`
	BadPoints  int `yaml:"badPoints"`
}

// StepAtLeast is a two-tier ladder triggered by inclusive comparisons:
// value >= Warn → warn, value >= Bad → bad.
type StepAtLeast struct {
	Warn       int `yaml:"warn"`
	Bad        int `yaml:"bad"`
	WarnPoints int `yaml:"warnPoints"`
	BadPoints  int `yaml:"badPoints"`
}

// TestimonialRule is a single-tier rule: warn when the page has at least
// MaxBlocks testimonial blocks or more than MaxItems items in total.
type TestimonialRule struct {
	MaxBlocks int `yaml:"maxBlocks"`
	MaxItems  int `yaml:"maxItems"`
	Points    int `yaml:"points"`
}

// LibraryRule warns when the page has more than MaxContainers library
// containers or at least WarnTypes content types, and goes bad at BadTypes.
type LibraryRule struct {
	MaxContainers int `yaml:"maxContainers"`
	WarnTypes     int `yaml:"warnTypes"`
	BadTypes      int `yaml:"badTypes"`
	Points        int `yaml:"points"`
}

// OverallBands maps the final score to a severity label: score >= Good is
// good, score >= Warn is warn, anything below is bad.
type OverallBands struct {
	Good int `yaml:"good"`
	Warn int `yaml:"warn"`
}

// Thresholds is the full rule table for the scoring engine. The defaults
// were tuned for content-heavy marketing pages; sites with a different
// structural profile can override them with a YAML file.
type Thresholds struct {
	Sections       StepAbove       `yaml:"sections"`
	Carousels      StepAtLeast     `yaml:"carousels"`
	CarouselSlides StepAbove       `yaml:"carouselSlides"`
	Testimonials   TestimonialRule `yaml:"testimonials"`
	Libraries      LibraryRule     `yaml:"libraries"`
	Images         StepAbove       `yaml:"images"`
	Videos         StepAtLeast     `yaml:"videos"`
	Iframes        StepAtLeast     `yaml:"iframes"`
	AdSlots        StepAtLeast     `yaml:"adSlots"`
	Overall        OverallBands    `yaml:"overall"`
}

// Defaults returns the built-in threshold table.
func Defaults() Thresholds {
	return Thresholds{
		Sections:       StepAbove{Warn: 16, Bad: 24, WarnPoints: -10, BadPoints: -18},
		Carousels:      StepAtLeast{Warn: 2, Bad: 3, WarnPoints: -10, BadPoints: -15},
		CarouselSlides: StepAbove{Warn: 16, Bad: 24, WarnPoints: -8, BadPoints: -8},
		Testimonials:   TestimonialRule{MaxBlocks: 3, MaxItems: 18, Points: -10},
		Libraries:      LibraryRule{MaxContainers: 1, WarnTypes: 3, BadTypes: 4, Points: -10},
		Images:         StepAbove{Warn: 40, Bad: 60, WarnPoints: -7, BadPoints: -12},
		Videos:         StepAtLeast{Warn: 3, Bad: 5, WarnPoints: -10, BadPoints: -10},
		Iframes:        StepAtLeast{Warn: 2, Bad: 4, WarnPoints: -8, BadPoints: -15},
		AdSlots:        StepAtLeast{Warn: 3, Bad: 5, WarnPoints: -8, BadPoints: -15},
		Overall:        OverallBands{Good: 85, Warn: 65},
	}
}

// LoadFile reads a YAML threshold override. Missing keys keep their default
// values, so an override file only needs the rules it changes.
func LoadFile(path string) (Thresholds, error) {
	t := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("score: read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("score: parse thresholds file: %w", err)
	}
	return t, nil
}
