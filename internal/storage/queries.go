package storage

const (
	listOrgConfigs = `SELECT organization_id, platforms, filters, scrape_frequency,
				max_pages_per_platform, status, last_scrape_at, next_scrape_at,
				paused_at, last_error, consecutive_failures, updated_at
			FROM market_org_configs`

	getOrgConfig = listOrgConfigs + ` WHERE organization_id = $1`

	saveOrgConfig = `INSERT INTO market_org_configs (organization_id, platforms, filters,
				scrape_frequency, max_pages_per_platform, status, last_scrape_at,
				next_scrape_at, paused_at, last_error, consecutive_failures, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (organization_id) DO UPDATE SET
				platforms = EXCLUDED.platforms,
				filters = EXCLUDED.filters,
				scrape_frequency = EXCLUDED.scrape_frequency,
				max_pages_per_platform = EXCLUDED.max_pages_per_platform,
				status = EXCLUDED.status,
				last_scrape_at = EXCLUDED.last_scrape_at,
				next_scrape_at = EXCLUDED.next_scrape_at,
				paused_at = EXCLUDED.paused_at,
				last_error = EXCLUDED.last_error,
				consecutive_failures = EXCLUDED.consecutive_failures,
				updated_at = EXCLUDED.updated_at`

	// the partial unique index uq_scrape_logs_running makes a second running
	// row per (org, platform) a unique violation
	startScrapeLog = `INSERT INTO scrape_logs (run_id, organization_id, platform, status,
				started_at, metadata)
			VALUES ($1, $2, $3, 'running', $4, $5)`

	finalizeScrapeLog = `UPDATE scrape_logs SET
				status = $2,
				completed_at = $3,
				listings_found = $4,
				listings_new = $5,
				listings_updated = $6,
				listings_deactivated = $7,
				pages_scraped = $8,
				scrape_duration_ms = $9,
				error_message = $10
			WHERE run_id = $1 AND status = 'running'`

	hasRunningScrape = `SELECT EXISTS (
				SELECT 1 FROM scrape_logs
				WHERE organization_id = $1 AND platform = $2 AND status = 'running')`

	upsertListing = `INSERT INTO market_listings (organization_id, source_platform,
				source_listing_id, source_url, title, price, price_per_sqm,
				property_type, transaction_type, address, area, municipality,
				postal_code, size_sqm, bedrooms, bathrooms, floor, year_built,
				agency_name, agency_phone, images, listing_date, active,
				missed_runs, last_run_id, first_seen_at, last_seen_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
				$15, $16, $17, $18, $19, $20, $21, $22, TRUE, 0, $23, NOW(), NOW())
			ON CONFLICT (organization_id, source_platform, source_listing_id) DO UPDATE SET
				source_url = EXCLUDED.source_url,
				title = EXCLUDED.title,
				price = EXCLUDED.price,
				price_per_sqm = EXCLUDED.price_per_sqm,
				property_type = EXCLUDED.property_type,
				transaction_type = EXCLUDED.transaction_type,
				address = EXCLUDED.address,
				area = EXCLUDED.area,
				municipality = EXCLUDED.municipality,
				postal_code = EXCLUDED.postal_code,
				size_sqm = EXCLUDED.size_sqm,
				bedrooms = EXCLUDED.bedrooms,
				bathrooms = EXCLUDED.bathrooms,
				floor = EXCLUDED.floor,
				year_built = EXCLUDED.year_built,
				agency_name = EXCLUDED.agency_name,
				agency_phone = EXCLUDED.agency_phone,
				images = EXCLUDED.images,
				listing_date = EXCLUDED.listing_date,
				active = TRUE,
				missed_runs = 0,
				last_run_id = EXCLUDED.last_run_id,
				last_seen_at = NOW()
			RETURNING (xmax = 0) AS inserted`

	bumpMissedRuns = `UPDATE market_listings SET missed_runs = missed_runs + 1
			WHERE organization_id = $1 AND source_platform = $2
				AND active AND last_run_id <> $3`

	deactivateStale = `UPDATE market_listings SET active = FALSE
			WHERE organization_id = $1 AND source_platform = $2
				AND active AND missed_runs >= $3`
)
