package census

import (
	"encoding/json"

	"github.com/use-agent/pagepulse/models"
)

// CensusJS is the in-page collector evaluated on the live DOM after
// render settle. It applies the same root detection and clone
// de-duplication rules as the static engine, and additionally produces the
// per-section breakdown with resolved image URLs. The expression returns a
// JSON string so the payload crosses the devtools protocol in one piece.
const CensusJS = `() => {
	const CAROUSEL_ROOT = '.pp-carousel, [data-component="carousel"], .swiper, .slick-slider, .owl-carousel';
	const TESTIMONIAL_ROOT = '.pp-testimonials, [data-component="testimonials"]';
	const LIBRARY_ROOT = '.pp-library, [data-component="library"]';
	const MAX_IMAGE_URLS = 60;

	const isInside = (el, sel) => el.parentElement !== null && el.parentElement.closest(sel) !== null;

	const carouselType = (root) => {
		if (root.classList.contains('swiper') || root.querySelector('.swiper-wrapper')) return 'swiper';
		if (root.classList.contains('slick-slider') || root.querySelector('.slick-track')) return 'slick';
		if (root.classList.contains('owl-carousel') || root.querySelector('.owl-stage')) return 'owl';
		return 'component';
	};

	const swiperSlides = (root) => {
		const idx = new Set();
		root.querySelectorAll('.swiper-slide').forEach((s) => {
			const v = s.getAttribute('data-swiper-slide-index');
			if (v !== null) idx.add(v);
		});
		if (idx.size > 0) return idx.size;
		return root.querySelectorAll('.swiper-slide:not(.swiper-slide-duplicate)').length;
	};

	const slideCount = (root, type) => {
		if (type === 'swiper') return swiperSlides(root);
		if (type === 'slick') {
			const n = root.querySelectorAll('.slick-slide:not(.slick-cloned)').length;
			if (n > 0) return n;
			const track = root.querySelector('.slick-track');
			return track ? [...track.children].filter((c) => !c.classList.contains('slick-cloned')).length : 0;
		}
		if (type === 'owl') {
			const n = root.querySelectorAll('.owl-item:not(.cloned)').length;
			if (n > 0) return n;
			const stage = root.querySelector('.owl-stage');
			return stage ? [...stage.children].filter((c) => !c.classList.contains('cloned')).length : 0;
		}
		const items = [...root.querySelectorAll('.pp-carousel__item')].filter((c) => !c.classList.contains('is-clone'));
		if (items.length > 0) return items.length;
		return [...root.children].filter((c) => !c.classList.contains('is-clone')).length;
	};

	const carouselRootsIn = (scope) =>
		[...scope.querySelectorAll(CAROUSEL_ROOT)].filter(
			(el) => !isInside(el, CAROUSEL_ROOT) && !el.closest(TESTIMONIAL_ROOT));

	const imageURL = (img) => {
		const raw = img.currentSrc || img.getAttribute('src') || '';
		if (raw === '' || raw.startsWith('data:')) return '';
		try { return new URL(raw, document.baseURI).href; } catch (e) { return ''; }
	};

	// Page-level carousels.
	const roots = carouselRootsIn(document);
	const perCarousel = [];
	const rootTypes = [];
	for (const root of roots) {
		const type = carouselType(root);
		rootTypes.push(type);
		perCarousel.push(slideCount(root, type));
	}
	const uniform = rootTypes.length === 0 ? '' : (rootTypes.every((t) => t === rootTypes[0]) ? rootTypes[0] : 'mixed');

	// Testimonials.
	const tRoots = [...document.querySelectorAll(TESTIMONIAL_ROOT)].filter((el) => !isInside(el, TESTIMONIAL_ROOT));
	const perBlock = tRoots.map((root) => {
		if (root.querySelector('.swiper-slide')) return swiperSlides(root);
		const items = [...root.querySelectorAll('.pp-testimonials__item')].filter((i) => !i.classList.contains('is-clone'));
		if (items.length > 0) return items.length;
		return slideCount(root, carouselType(root));
	});

	// Libraries.
	const libRoots = [...document.querySelectorAll(LIBRARY_ROOT)].filter((el) => !isInside(el, LIBRARY_ROOT));
	const libType = (name) =>
		document.querySelectorAll('.pp-library--' + name + ', [data-library-type="' + name + '"]').length;
	const types = { news: libType('news'), products: libType('products'), video: libType('video'), sponsor: libType('sponsor') };

	// Per-section breakdown.
	const breakdown = [...document.querySelectorAll('section')].map((section, index) => {
		const sectionRoots = carouselRootsIn(section);
		const detail = sectionRoots.map((root) => {
			const type = carouselType(root);
			return { type: type, slides: slideCount(root, type) };
		});
		const urls = [];
		const seen = new Set();
		for (const img of section.querySelectorAll('img')) {
			const u = imageURL(img);
			if (u === '' || seen.has(u)) continue;
			seen.add(u);
			urls.push(u);
			if (urls.length >= MAX_IMAGE_URLS) break;
		}
		return {
			index: index,
			id: section.id || '',
			class: section.getAttribute('class') || '',
			images: section.querySelectorAll('img').length,
			videos: section.querySelectorAll('video').length,
			iframes: section.querySelectorAll('iframe').length,
			carousels: sectionRoots.length,
			carouselDetail: detail,
			imageUrls: urls,
		};
	});

	const adSlot = (pos) =>
		document.querySelectorAll('.pp-ad-skyscraper--' + pos + ', [data-ad-slot="skyscraper-' + pos + '"]').length;
	const adLeft = adSlot('left'), adRight = adSlot('right'), adTop = adSlot('top'), adBottom = adSlot('bottom');

	return JSON.stringify({
		sections: { total: breakdown.length, breakdown: breakdown },
		carousels: {
			count: roots.length,
			slidesPerCarousel: perCarousel,
			slidesTotal: perCarousel.reduce((a, b) => a + b, 0),
			type: uniform,
		},
		testimonials: {
			count: tRoots.length,
			itemsPerBlock: perBlock,
			itemsTotal: perBlock.reduce((a, b) => a + b, 0),
		},
		libraries: {
			containers: libRoots.length,
			types: types,
			typesTotal: types.news + types.products + types.video + types.sponsor,
		},
		media: {
			images: document.querySelectorAll('img').length,
			videos: document.querySelectorAll('video').length,
			iframes: document.querySelectorAll('iframe').length,
		},
		adSpace: {
			skyscraperLeft: adLeft,
			skyscraperRight: adRight,
			skyscraperTop: adTop,
			skyscraperBottom: adBottom,
			total: adLeft + adRight + adTop + adBottom,
		},
	});
}`

// ParseDOMPayload decodes the collector's JSON string into counts. Derived
// totals are recomputed so a stale collector cannot ship inconsistent sums.
func ParseDOMPayload(raw []byte) (*models.CensusCounts, error) {
	var counts models.CensusCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, models.NewAuditError(models.ErrCodeInternal, "census payload is not valid JSON", err)
	}

	counts.Carousels.SlidesTotal = sum(counts.Carousels.SlidesPerCarousel)
	counts.Testimonials.ItemsTotal = sum(counts.Testimonials.ItemsPerBlock)
	t := counts.Libraries.Types
	counts.Libraries.TypesTotal = t.News + t.Products + t.Video + t.Sponsor
	ad := &counts.AdSpace
	ad.Total = ad.SkyscraperLeft + ad.SkyscraperRight + ad.SkyscraperTop + ad.SkyscraperBottom

	return &counts, nil
}
