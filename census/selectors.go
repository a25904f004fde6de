// Package census counts the structural elements of a page — sections,
// carousels, testimonials, content libraries, media and ad slots — from
// either a rendered DOM or raw markup, and de-duplicates the clone elements
// that slider libraries inject for infinite looping.
package census

import "github.com/andybalholm/cascadia"

// Carousel type names reported in CarouselInfo.
const (
	typeSwiper    = "swiper"
	typeSlick     = "slick"
	typeOwl       = "owl"
	typeComponent = "component"
)

// Selector vocabulary. The pp-* classes are the first-party CMS component
// wrappers; the rest are the DOM signatures of the common slider libraries.
const (
	selCarouselRoot = `.pp-carousel, [data-component="carousel"], .swiper, .slick-slider, .owl-carousel`

	selTestimonialRoot = `.pp-testimonials, [data-component="testimonials"]`

	selLibraryRoot = `.pp-library, [data-component="library"]`

	// Swiper: loop mode duplicates slides and marks the copies; originals
	// keep a stable index attribute.
	selSwiperSlide    = `.swiper-slide`
	selSwiperOriginal = `.swiper-slide:not(.swiper-slide-duplicate)`
	attrSwiperIndex   = `data-swiper-slide-index`

	// Slick: clones carry .slick-cloned; the track holds all slide nodes.
	selSlickOriginal = `.slick-slide:not(.slick-cloned)`
	selSlickTrack    = `.slick-track`
	selSlickClone    = `.slick-cloned`

	// Owl: clones carry .cloned inside the stage.
	selOwlOriginal = `.owl-item:not(.cloned)`
	selOwlStage    = `.owl-stage`
	selOwlClone    = `.cloned`

	// First-party component items; pre-cloned fixtures are flagged.
	selComponentItem  = `.pp-carousel__item`
	selComponentClone = `.is-clone`

	selTestimonialItem = `.pp-testimonials__item`
)

// Precompiled matchers for the static engine. cascadia selectors satisfy
// goquery.Matcher, so the selector strings are parsed exactly once.
var (
	matchSection          = cascadia.MustCompile("section")
	matchCarouselRoot     = cascadia.MustCompile(selCarouselRoot)
	matchTestimonialRoot  = cascadia.MustCompile(selTestimonialRoot)
	matchLibraryRoot      = cascadia.MustCompile(selLibraryRoot)
	matchImage            = cascadia.MustCompile("img")
	matchVideo            = cascadia.MustCompile("video")
	matchIframe           = cascadia.MustCompile("iframe")
	matchSwiperSlide      = cascadia.MustCompile(selSwiperSlide)
	matchSwiperOriginal   = cascadia.MustCompile(selSwiperOriginal)
	matchSwiperWrapper    = cascadia.MustCompile(".swiper-wrapper")
	matchSlickOriginal    = cascadia.MustCompile(selSlickOriginal)
	matchSlickTrack       = cascadia.MustCompile(selSlickTrack)
	matchOwlOriginal      = cascadia.MustCompile(selOwlOriginal)
	matchOwlStage         = cascadia.MustCompile(selOwlStage)
	matchComponentItem    = cascadia.MustCompile(selComponentItem)
	matchTestimonialItem  = cascadia.MustCompile(selTestimonialItem)
)

// adSlotSelectors maps each skyscraper position to its selector. Both the
// class and data-attribute forms of the slot markup are counted.
var adSlotSelectors = map[string]cascadia.Selector{
	"left":   cascadia.MustCompile(`.pp-ad-skyscraper--left, [data-ad-slot="skyscraper-left"]`),
	"right":  cascadia.MustCompile(`.pp-ad-skyscraper--right, [data-ad-slot="skyscraper-right"]`),
	"top":    cascadia.MustCompile(`.pp-ad-skyscraper--top, [data-ad-slot="skyscraper-top"]`),
	"bottom": cascadia.MustCompile(`.pp-ad-skyscraper--bottom, [data-ad-slot="skyscraper-bottom"]`),
}

// libraryTypeSelectors maps each content-library flavour to its selector.
var libraryTypeSelectors = map[string]cascadia.Selector{
	"news":     cascadia.MustCompile(`.pp-library--news, [data-library-type="news"]`),
	"products": cascadia.MustCompile(`.pp-library--products, [data-library-type="products"]`),
	"video":    cascadia.MustCompile(`.pp-library--video, [data-library-type="video"]`),
	"sponsor":  cascadia.MustCompile(`.pp-library--sponsor, [data-library-type="sponsor"]`),
}
