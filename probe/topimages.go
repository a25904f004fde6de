package probe

import (
	"math"
	"net/url"
	"path"
	"sort"

	"github.com/use-agent/pagepulse/models"
)

// TopImages ranks successful probe results by descending byte size and
// returns at most limit entries as display-ready TopImage values.
func TopImages(results []Result, limit int) []models.TopImage {
	ok := make([]Result, 0, len(results))
	for _, r := range results {
		if r.OK {
			ok = append(ok, r)
		}
	}

	sort.SliceStable(ok, func(i, j int) bool {
		return ok[i].Bytes > ok[j].Bytes
	})

	if limit > 0 && len(ok) > limit {
		ok = ok[:limit]
	}

	top := make([]models.TopImage, 0, len(ok))
	for _, r := range ok {
		top = append(top, models.TopImage{
			URL:   r.URL,
			Name:  baseName(r.URL),
			Bytes: r.Bytes,
			KB:    round1(float64(r.Bytes) / 1024),
			MB:    round2(float64(r.Bytes) / (1024 * 1024)),
		})
	}
	return top
}

// baseName extracts the file name from a URL, ignoring query strings.
func baseName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return path.Base(raw)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return u.Host
	}
	return name
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
