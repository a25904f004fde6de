package census

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/pagepulse/models"
)

// Static performs the structural census on raw markup, without executing
// scripts. Sections are reported in scalar mode (no per-section breakdown).
//
// Loop-duplication normally happens only after slider scripts run, but
// markup that embeds pre-cloned fixtures is still de-duplicated through the
// clone markers.
func Static(rawHTML string) (*models.CensusCounts, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeFetch, "markup is not parseable", err)
	}

	counts := &models.CensusCounts{}
	counts.Sections.Total = doc.FindMatcher(matchSection).Length()

	// Carousels.
	roots := carouselRoots(doc)
	perCarousel := make([]int, 0, len(roots))
	types := make([]string, 0, len(roots))
	for _, root := range roots {
		typ := detectType(root)
		perCarousel = append(perCarousel, countSlides(root, typ))
		types = append(types, typ)
	}
	counts.Carousels = models.Carousels{
		Count:             len(roots),
		SlidesPerCarousel: perCarousel,
		SlidesTotal:       sum(perCarousel),
		Type:              uniformType(types),
	}

	// Testimonials.
	tRoots := testimonialRoots(doc)
	perBlock := make([]int, 0, len(tRoots))
	for _, root := range tRoots {
		perBlock = append(perBlock, testimonialItems(root))
	}
	counts.Testimonials = models.Testimonials{
		Count:         len(tRoots),
		ItemsPerBlock: perBlock,
		ItemsTotal:    sum(perBlock),
	}

	// Content libraries.
	counts.Libraries = libraryCensus(doc)

	// Raw media.
	counts.Media = models.Media{
		Images:  doc.FindMatcher(matchImage).Length(),
		Videos:  doc.FindMatcher(matchVideo).Length(),
		Iframes: doc.FindMatcher(matchIframe).Length(),
	}

	// Ad slots.
	counts.AdSpace = adSpaceCensus(doc)

	return counts, nil
}

// carouselRoots returns the outermost carousel elements. A match nested in
// another carousel root, or owned by a testimonial widget, is not a root.
func carouselRoots(doc *goquery.Document) []*goquery.Selection {
	var roots []*goquery.Selection
	doc.FindMatcher(matchCarouselRoot).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsMatcher(matchCarouselRoot).Length() > 0 {
			return
		}
		if s.ParentsMatcher(matchTestimonialRoot).Length() > 0 {
			return
		}
		roots = append(roots, s)
	})
	return roots
}

// testimonialRoots returns the outermost testimonial widgets.
func testimonialRoots(doc *goquery.Document) []*goquery.Selection {
	var roots []*goquery.Selection
	doc.FindMatcher(matchTestimonialRoot).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsMatcher(matchTestimonialRoot).Length() > 0 {
			return
		}
		roots = append(roots, s)
	})
	return roots
}

// detectType identifies which slider library's DOM signature a root carries.
func detectType(root *goquery.Selection) string {
	switch {
	case root.HasClass("swiper") || root.FindMatcher(matchSwiperWrapper).Length() > 0:
		return typeSwiper
	case root.HasClass("slick-slider") || root.FindMatcher(matchSlickTrack).Length() > 0:
		return typeSlick
	case root.HasClass("owl-carousel") || root.FindMatcher(matchOwlStage).Length() > 0:
		return typeOwl
	default:
		return typeComponent
	}
}

// countSlides counts real, non-duplicated slides for one carousel root using
// the strategy matching the detected library signature.
func countSlides(root *goquery.Selection, typ string) int {
	switch typ {
	case typeSwiper:
		return swiperSlides(root)
	case typeSlick:
		if n := root.FindMatcher(matchSlickOriginal).Length(); n > 0 {
			return n
		}
		return root.FindMatcher(matchSlickTrack).Children().Not(selSlickClone).Length()
	case typeOwl:
		if n := root.FindMatcher(matchOwlOriginal).Length(); n > 0 {
			return n
		}
		return root.FindMatcher(matchOwlStage).Children().Not(selOwlClone).Length()
	default:
		if items := root.FindMatcher(matchComponentItem).Not(selComponentClone); items.Length() > 0 {
			return items.Length()
		}
		return root.Children().Not(selComponentClone).Length()
	}
}

// swiperSlides counts swiper slides. Loop mode duplicates head and tail
// slides, so distinct stable-index values are the exact original count;
// without the index attribute, duplicate-flagged slides are excluded.
func swiperSlides(root *goquery.Selection) int {
	seen := make(map[string]struct{})
	root.FindMatcher(matchSwiperSlide).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attrSwiperIndex); ok {
			seen[v] = struct{}{}
		}
	})
	if len(seen) > 0 {
		return len(seen)
	}
	return root.FindMatcher(matchSwiperOriginal).Length()
}

// testimonialItems counts real items in one testimonial widget.
func testimonialItems(root *goquery.Selection) int {
	if root.FindMatcher(matchSwiperSlide).Length() > 0 {
		return swiperSlides(root)
	}
	if items := root.FindMatcher(matchTestimonialItem).Not(selComponentClone); items.Length() > 0 {
		return items.Length()
	}
	return countSlides(root, detectType(root))
}

// libraryCensus counts library containers and their content types.
func libraryCensus(doc *goquery.Document) models.Libraries {
	containers := 0
	doc.FindMatcher(matchLibraryRoot).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsMatcher(matchLibraryRoot).Length() == 0 {
			containers++
		}
	})

	types := models.LibraryTypes{
		News:     doc.FindMatcher(libraryTypeSelectors["news"]).Length(),
		Products: doc.FindMatcher(libraryTypeSelectors["products"]).Length(),
		Video:    doc.FindMatcher(libraryTypeSelectors["video"]).Length(),
		Sponsor:  doc.FindMatcher(libraryTypeSelectors["sponsor"]).Length(),
	}

	return models.Libraries{
		Containers: containers,
		Types:      types,
		TypesTotal: types.News + types.Products + types.Video + types.Sponsor,
	}
}

// adSpaceCensus counts skyscraper ad slots per position. Total is derived
// from the four positions, never counted independently.
func adSpaceCensus(doc *goquery.Document) models.AdSpace {
	ad := models.AdSpace{
		SkyscraperLeft:   doc.FindMatcher(adSlotSelectors["left"]).Length(),
		SkyscraperRight:  doc.FindMatcher(adSlotSelectors["right"]).Length(),
		SkyscraperTop:    doc.FindMatcher(adSlotSelectors["top"]).Length(),
		SkyscraperBottom: doc.FindMatcher(adSlotSelectors["bottom"]).Length(),
	}
	ad.Total = ad.SkyscraperLeft + ad.SkyscraperRight + ad.SkyscraperTop + ad.SkyscraperBottom
	return ad
}

// uniformType reports the shared carousel type, or "mixed" when the page
// mixes libraries.
func uniformType(types []string) string {
	if len(types) == 0 {
		return ""
	}
	first := types[0]
	for _, t := range types[1:] {
		if t != first {
			return "mixed"
		}
	}
	return first
}

func sum(ns []int) int {
	total := 0
	for _, n := range ns {
		total += n
	}
	return total
}
