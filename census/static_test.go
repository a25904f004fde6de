package census

import (
	"fmt"
	"strings"
	"testing"
)

func TestStatic_SwiperLoopClonesExcluded(t *testing.T) {
	// 5 real slides plus head/tail clones, the post-init loop-mode DOM.
	var b strings.Builder
	b.WriteString(`<html><body><div class="swiper"><div class="swiper-wrapper">`)
	b.WriteString(`<div class="swiper-slide swiper-slide-duplicate" data-swiper-slide-index="4">E</div>`)
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, `<div class="swiper-slide" data-swiper-slide-index="%d">S</div>`, i)
	}
	b.WriteString(`<div class="swiper-slide swiper-slide-duplicate" data-swiper-slide-index="0">A</div>`)
	b.WriteString(`</div></div></body></html>`)

	counts, err := Static(b.String())
	if err != nil {
		t.Fatalf("Static: %v", err)
	}
	if counts.Carousels.Count != 1 {
		t.Fatalf("carousel count = %d, want 1", counts.Carousels.Count)
	}
	if counts.Carousels.SlidesTotal != 5 {
		t.Errorf("slides total = %d, want 5 (clones must not be counted)", counts.Carousels.SlidesTotal)
	}
	if counts.Carousels.Type != "swiper" {
		t.Errorf("type = %q, want swiper", counts.Carousels.Type)
	}
}

func TestStatic_SwiperWithoutIndexAttribute(t *testing.T) {
	html := `<html><body><div class="swiper"><div class="swiper-wrapper">
		<div class="swiper-slide swiper-slide-duplicate">X</div>
		<div class="swiper-slide">A</div>
		<div class="swiper-slide">B</div>
		<div class="swiper-slide">C</div>
		<div class="swiper-slide swiper-slide-duplicate">X</div>
	</div></div></body></html>`

	counts, err := Static(html)
	if err != nil {
		t.Fatalf("Static: %v", err)
	}
	if counts.Carousels.SlidesTotal != 3 {
		t.Errorf("slides total = %d, want 3", counts.Carousels.SlidesTotal)
	}
}

func TestStatic_SlickAndOwlClones(t *testing.T) {
	html := `<html><body>
		<div class="slick-slider"><div class="slick-track">
			<div class="slick-slide slick-cloned">D</div>
			<div class="slick-slide">A</div>
			<div class="slick-slide">B</div>
			<div class="slick-slide slick-cloned">A</div>
		</div></div>
		<div class="owl-carousel"><div class="owl-stage">
			<div class="owl-item cloned">C</div>
			<div class="owl-item">A</div>
			<div class="owl-item">B</div>
			<div class="owl-item">C</div>
			<div class="owl-item cloned">A</div>
		</div></div>
	</body></html>`

	counts, err := Static(html)
	if err != nil {
		t.Fatalf("Static: %v", err)
	}
	if counts.Carousels.Count != 2 {
		t.Fatalf("carousel count = %d, want 2", counts.Carousels.Count)
	}
	want := []int{2, 3}
	for i, n := range counts.Carousels.SlidesPerCarousel {
		if n != want[i] {
			t.Errorf("carousel %d slides = %d, want %d", i, n, want[i])
		}
	}
	if counts.Carousels.Type != "mixed" {
		t.Errorf("type = %q, want mixed", counts.Carousels.Type)
	}
}

func TestStatic_ComponentCarouselAndNestedRoots(t *testing.T) {
	// A first-party wrapper whose inner swiper must not count as a second
	// carousel root.
	html := `<html><body>
		<div class="pp-carousel">
			<div class="swiper"><div class="swiper-wrapper">
				<div class="swiper-slide">A</div>
				<div class="swiper-slide">B</div>
			</div></div>
		</div>
		<div class="pp-carousel">
			<div class="pp-carousel__item">A</div>
			<div class="pp-carousel__item">B</div>
			<div class="pp-carousel__item is-clone">A</div>
		</div>
	</body></html>`

	counts, err := Static(html)
	if err != nil {
		t.Fatalf("Static: %v", err)
	}
	if counts.Carousels.Count != 2 {
		t.Fatalf("carousel count = %d, want 2 (nested swiper must fold into its wrapper)", counts.Carousels.Count)
	}
	if counts.Carousels.SlidesTotal != 4 {
		t.Errorf("slides total = %d, want 4", counts.Carousels.SlidesTotal)
	}
}

func TestStatic_TestimonialSliderNotDoubleCounted(t *testing.T) {
	html := `<html><body>
		<div class="pp-testimonials">
			<div class="swiper"><div class="swiper-wrapper">
				<div class="swiper-slide swiper-slide-duplicate" data-swiper-slide-index="2">C</div>
				<div class="swiper-slide" data-swiper-slide-index="0">A</div>
				<div class="swiper-slide" data-swiper-slide-index="1">B</div>
				<div class="swiper-slide" data-swiper-slide-index="2">C</div>
				<div class="swiper-slide swiper-slide-duplicate" data-swiper-slide-index="0">A</div>
			</div></div>
		</div>
	</body></html>`

	counts, err := Static(html)
	if err != nil {
		t.Fatalf("Static: %v", err)
	}
	if counts.Carousels.Count != 0 {
		t.Errorf("carousel count = %d, want 0 (slider belongs to the testimonial widget)", counts.Carousels.Count)
	}
	if counts.Testimonials.Count != 1 {
		t.Fatalf("testimonial count = %d, want 1", counts.Testimonials.Count)
	}
	if counts.Testimonials.ItemsTotal != 3 {
		t.Errorf("testimonial items = %d, want 3", counts.Testimonials.ItemsTotal)
	}
}

func TestStatic_TestimonialPlainItems(t *testing.T) {
	html := `<html><body>
		<div class="pp-testimonials">
			<div class="pp-testimonials__item">A</div>
			<div class="pp-testimonials__item">B</div>
			<div class="pp-testimonials__item is-clone">A</div>
		</div>
	</body></html>`

	counts, err := Static(html)
	if err != nil {
		t.Fatalf("Static: %v", err)
	}
	if counts.Testimonials.ItemsTotal != 2 {
		t.Errorf("testimonial items = %d, want 2", counts.Testimonials.ItemsTotal)
	}
}

func TestStatic_SectionsMediaAndAdSlots(t *testing.T) {
	html := `<html><body>
		<section><img src="a.jpg"><img src="b.jpg"></section>
		<section><video src="v.mp4"></video><iframe src="//x"></iframe></section>
		<section></section>
		<aside class="pp-ad-skyscraper--left"></aside>
		<aside class="pp-ad-skyscraper--left"></aside>
		<aside data-ad-slot="skyscraper-right"></aside>
		<div class="pp-ad-skyscraper--bottom"></div>
	</body></html>`

	counts, err := Static(html)
	if err != nil {
		t.Fatalf("Static: %v", err)
	}
	if counts.Sections.Total != 3 {
		t.Errorf("sections = %d, want 3", counts.Sections.Total)
	}
	if counts.Media.Images != 2 || counts.Media.Videos != 1 || counts.Media.Iframes != 1 {
		t.Errorf("media = %+v, want 2 images / 1 video / 1 iframe", counts.Media)
	}
	ad := counts.AdSpace
	if ad.SkyscraperLeft != 2 || ad.SkyscraperRight != 1 || ad.SkyscraperTop != 0 || ad.SkyscraperBottom != 1 {
		t.Errorf("ad slots = %+v", ad)
	}
	if ad.Total != ad.SkyscraperLeft+ad.SkyscraperRight+ad.SkyscraperTop+ad.SkyscraperBottom {
		t.Errorf("ad total %d is not the sum of positions", ad.Total)
	}
}

func TestStatic_LibraryContainersAndTypes(t *testing.T) {
	html := `<html><body>
		<div class="pp-library pp-library--news"></div>
		<div class="pp-library" data-library-type="products"></div>
		<div class="pp-library pp-library--news"></div>
		<div data-component="library" data-library-type="sponsor"></div>
	</body></html>`

	counts, err := Static(html)
	if err != nil {
		t.Fatalf("Static: %v", err)
	}
	lib := counts.Libraries
	if lib.Containers != 4 {
		t.Errorf("containers = %d, want 4", lib.Containers)
	}
	if lib.Types.News != 2 || lib.Types.Products != 1 || lib.Types.Sponsor != 1 || lib.Types.Video != 0 {
		t.Errorf("types = %+v", lib.Types)
	}
	if lib.TypesTotal != 4 {
		t.Errorf("types total = %d, want 4", lib.TypesTotal)
	}
}

func TestStatic_EmptyPage(t *testing.T) {
	counts, err := Static(`<html><body><p>nothing here</p></body></html>`)
	if err != nil {
		t.Fatalf("Static: %v", err)
	}
	if counts.Sections.Total != 0 || counts.Carousels.Count != 0 ||
		counts.Testimonials.Count != 0 || counts.Libraries.Containers != 0 ||
		counts.Media.Images != 0 || counts.AdSpace.Total != 0 {
		t.Errorf("empty page produced nonzero counts: %+v", counts)
	}
}
