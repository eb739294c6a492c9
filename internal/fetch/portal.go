package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"go.uber.org/zap"

	appconfig "github.com/estiacrm/marketintel/config"
	"github.com/estiacrm/marketintel/internal/platform"
	"github.com/estiacrm/marketintel/internal/ratelimit"
	"github.com/estiacrm/marketintel/models"
)

// Portal crawls one external listing source page by page, emitting raw
// listings as the crawl streams. It implements the runner's Crawler boundary.
type Portal struct {
	cfg     appconfig.CrawlConfig
	limiter ratelimit.Limiter
	log     *zap.Logger
}

func NewPortal(cfg appconfig.CrawlConfig, limiter ratelimit.Limiter, log *zap.Logger) *Portal {
	return &Portal{cfg: cfg, limiter: limiter, log: log}
}

// Crawl walks the portal's result pages up to the job's page bound. It
// returns the pages successfully scraped and the per-page errors of the ones
// that were not; err is non-nil only for whole-job failures (cancellation,
// or the very first page failing with nothing scraped).
func (p *Portal) Crawl(ctx context.Context, job models.ScrapeJobData, pc platform.Config, emit func(models.RawListing)) (int, []string, error) {
	maxPages := pc.Pagination.MaxPages
	if job.MaxPages > 0 && job.MaxPages < maxPages {
		maxPages = job.MaxPages
	}
	startPage := job.StartPage
	if startPage <= 0 {
		startPage = 1
	}

	c := newCollector(p.cfg)

	var (
		pageListings []models.RawListing
		visitErr     error
	)
	listSel := pc.Selectors[listKey]
	c.OnHTML("html", func(e *colly.HTMLElement) {
		resolve := func(ref string) string { return e.Request.AbsoluteURL(ref) }
		e.DOM.Find(listSel).Each(func(_ int, card *goquery.Selection) {
			pageListings = append(pageListings, extractListing(card, pc.Selectors, resolve))
		})
	})

	pagesScraped := 0
	var pageErrors []string

	for page := startPage; page < startPage+maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return pagesScraped, pageErrors, err
		}
		if err := p.limiter.Wait(ctx, pc.ID); err != nil {
			return pagesScraped, pageErrors, fmt.Errorf("waiting for %s rate budget: %w", pc.ID, err)
		}

		pageURL, err := buildPageURL(pc, job.Filters, page)
		if err != nil {
			return pagesScraped, pageErrors, fmt.Errorf("building page url: %w", err)
		}

		pageListings = pageListings[:0]
		visitErr = nil
		if err := c.Visit(pageURL); err != nil {
			visitErr = err
		}
		if visitErr != nil {
			p.log.Warn("page visit failed",
				zap.String("platform", pc.ID),
				zap.Int("page", page),
				zap.Error(visitErr))
			pageErrors = append(pageErrors, fmt.Sprintf("page %d: %v", page, visitErr))
			if pagesScraped == 0 {
				// nothing scraped and the portal's first page is already
				// failing: treat as a whole-job failure
				return 0, pageErrors, fmt.Errorf("platform %s unreachable from first page: %w", pc.ID, visitErr)
			}
			continue
		}

		pagesScraped++
		if len(pageListings) == 0 {
			// ran out of results before the page bound
			break
		}
		for _, raw := range pageListings {
			emit(raw)
		}
	}
	return pagesScraped, pageErrors, nil
}

func buildPageURL(pc platform.Config, filters models.ScrapeFilters, page int) (string, error) {
	u, err := url.Parse(pc.BaseURL + pc.SearchPath)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if pc.Pagination.Type == "query" && pc.Pagination.Param != "" {
		q.Set(pc.Pagination.Param, strconv.Itoa(page))
	}
	if len(filters.Areas) > 0 {
		q.Set("area", filters.Areas[0])
	}
	if filters.MinPrice > 0 {
		q.Set("min_price", strconv.FormatInt(filters.MinPrice, 10))
	}
	if filters.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatInt(filters.MaxPrice, 10))
	}
	u.RawQuery = q.Encode()
	if pc.Pagination.Type == "path" {
		u.Path = fmt.Sprintf("%s/%d", u.Path, page)
	}
	return u.String(), nil
}
