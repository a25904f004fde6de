package models

// Census modes reported in API responses.
const (
	ModeRenderedDOM = "rendered-dom"
	ModeStatic      = "static"
)

// CensusCounts is the structural snapshot of a page. It is produced either by
// the rendered-DOM engine (with per-section breakdown) or the static engine
// (scalar sections only) and is the sole input to the scoring engine.
type CensusCounts struct {
	Sections     Sections     `json:"sections"`
	Carousels    Carousels    `json:"carousels"`
	Testimonials Testimonials `json:"testimonials"`
	Libraries    Libraries    `json:"libraries"`
	Media        Media        `json:"media"`
	AdSpace      AdSpace      `json:"adSpace"`
}

// Sections counts structural <section> elements. Breakdown is only populated
// in rendered mode.
type Sections struct {
	Total     int                `json:"total"`
	Breakdown []SectionBreakdown `json:"breakdown,omitempty"`
}

// SectionBreakdown is the per-section census in rendered mode.
type SectionBreakdown struct {
	Index     int            `json:"index"`
	ID        string         `json:"id,omitempty"`
	Class     string         `json:"class,omitempty"`
	Images    int            `json:"images"`
	Videos    int            `json:"videos"`
	Iframes   int            `json:"iframes"`
	Carousels int            `json:"carousels"`
	Detail    []CarouselInfo `json:"carouselDetail,omitempty"`

	// ImageURLs holds unique image URLs found in the section, capped at
	// MaxSectionImageURLs to bound payload size.
	ImageURLs []string `json:"imageUrls,omitempty"`

	// TopImages is filled by the size prober after extraction: the largest
	// images of the section by byte size, at most three.
	TopImages []TopImage `json:"topImages,omitempty"`
}

// MaxSectionImageURLs caps the raw image URL list per section.
const MaxSectionImageURLs = 60

// CarouselInfo describes one detected carousel root.
type CarouselInfo struct {
	Type   string `json:"type"` // "swiper", "slick", "owl" or "component"
	Slides int    `json:"slides"`
}

// Carousels aggregates carousel roots across the page. Slide counts exclude
// clones injected by infinite-loop rendering.
type Carousels struct {
	Count             int    `json:"count"`
	SlidesPerCarousel []int  `json:"slidesPerCarousel"`
	SlidesTotal       int    `json:"slidesTotal"`
	Type              string `json:"type,omitempty"`
}

// Testimonials aggregates testimonial widgets, with the same clone
// de-duplication concern as carousels.
type Testimonials struct {
	Count         int   `json:"count"`
	ItemsPerBlock []int `json:"itemsPerBlock"`
	ItemsTotal    int   `json:"itemsTotal"`
}

// LibraryTypes counts content-library containers by flavour.
type LibraryTypes struct {
	News     int `json:"news"`
	Products int `json:"products"`
	Video    int `json:"video"`
	Sponsor  int `json:"sponsor"`
}

// Libraries aggregates content-library components.
type Libraries struct {
	Containers int          `json:"containers"`
	Types      LibraryTypes `json:"types"`
	TypesTotal int          `json:"typesTotal"`
}

// Media counts raw media elements.
type Media struct {
	Images  int `json:"images"`
	Videos  int `json:"videos"`
	Iframes int `json:"iframes"`
}

// AdSpace counts skyscraper ad slots by position. Total always equals the sum
// of the four positions.
type AdSpace struct {
	SkyscraperLeft   int `json:"skyscraperLeft"`
	SkyscraperRight  int `json:"skyscraperRight"`
	SkyscraperTop    int `json:"skyscraperTop"`
	SkyscraperBottom int `json:"skyscraperBottom"`
	Total            int `json:"total"`
}

// TopImage is a probed image, produced only for display.
type TopImage struct {
	URL   string  `json:"url"`
	Name  string  `json:"name"`
	Bytes int64   `json:"bytes"`
	KB    float64 `json:"kb"`
	MB    float64 `json:"mb"`
}

// CensusResult is the full census output for one audit.
type CensusResult struct {
	TargetURL string       `json:"targetUrl"`
	FinalURL  string       `json:"finalUrl"`
	Mode      string       `json:"mode"`
	Counts    CensusCounts `json:"counts"`
}
