// Package fetch is the production adapter behind the crawl execution
// boundary: a selector-driven, rate-limited, paginated crawl of one portal.
// The core pipeline only ever sees the RawListing stream it emits.
package fetch

import (
	"time"

	"github.com/gocolly/colly"

	appconfig "github.com/estiacrm/marketintel/config"
)

// newCollector builds a collector tuned for polite portal crawling. The
// per-domain delay is local politeness only; the shared cross-process budget
// is enforced by the ratelimit package before every page visit.
func newCollector(cfg appconfig.CrawlConfig) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.IgnoreRobotsTxt(),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(cfg.RequestTimeout)
	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       300 * time.Millisecond,
		RandomDelay: 200 * time.Millisecond,
	})
	return c
}
