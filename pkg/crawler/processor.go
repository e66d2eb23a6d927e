// Package crawler drives the crawl loop: pull a chunk from the frontier,
// fetch it concurrently, route responses by link type, and finish with the
// merge, filter, validation and flush passes.
package crawler

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/config"
	"feed-scraper/pkg/feed"
	"feed-scraper/pkg/fetch"
	"feed-scraper/pkg/frontier"
	"feed-scraper/pkg/storage"
	"feed-scraper/pkg/utils"
	"feed-scraper/pkg/vendors"
)

// Pause before retrying a frontier chunk whose fetch produced nothing.
// Deliberately retried without an attempt cap: a crawl must not silently
// advance past a chunk it could not fetch at all.
const batchRetryDelay = 1 * time.Second

// Processor runs one vendor crawl end to end.
type Processor struct {
	cfg       *config.AppConfig
	vcfg      config.VendorConfig
	info      vendors.DxInfo
	vendor    vendors.Vendor
	frontier  *frontier.Frontier
	dl        *fetch.Downloader
	store     storage.FeedStorage
	reports   *storage.ReportStore
	hashes    *storage.HashStore // nil when change tracking is off
	validator *feed.Validator
	log       *logrus.Entry

	pw          progress.Writer
	tracker     *progress.Tracker
	progressOut io.Writer

	accumulated []*feed.Item
	saved       []*feed.Item // direct-save mode: items actually persisted
	processed   int
}

// New assembles a processor from its collaborators.
func New(cfg *config.AppConfig, vcfg config.VendorConfig, info vendors.DxInfo, vendor vendors.Vendor,
	dl *fetch.Downloader, store storage.FeedStorage, reports *storage.ReportStore,
	hashes *storage.HashStore, log *logrus.Entry) *Processor {

	return &Processor{
		cfg:         cfg,
		vcfg:        vcfg,
		info:        info,
		vendor:      vendor,
		frontier:    frontier.New(),
		dl:          dl,
		store:       store,
		reports:     reports,
		hashes:      hashes,
		validator:   feed.NewValidator(info.FeedType, log),
		log:         log.WithFields(logrus.Fields{"component": "processor", "vendor": info.Key()}),
		progressOut: os.Stdout,
	}
}

// Frontier exposes the work queue, mostly for tests and vendor ProcessInit
// implementations that need to seed extra links.
func (p *Processor) Frontier() *frontier.Frontier {
	return p.frontier
}

// Run executes the crawl: seed, loop until the frontier is exhausted, then
// merge, filter, validate and flush.
func (p *Processor) Run(ctx context.Context) error {
	if err := p.vendor.ProcessInit(ctx); err != nil {
		return err
	}
	p.seed()
	p.startProgress()
	defer p.stopProgress()

	for {
		chunk := p.frontier.Next(frontier.AnyType, p.vcfg.ChunkSize)
		if len(chunk) == 0 {
			break
		}

		results := p.dl.Fetch(ctx, chunk)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if batchFailed(results) {
			p.log.Warnf("Batch fetch produced no responses, retrying chunk in %s", batchRetryDelay)
			select {
			case <-time.After(batchRetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, l := range chunk {
			resp := results[l.Key()]
			if resp != nil && resp.Err == nil {
				p.handleResponse(ctx, l, resp)
			} else if resp != nil {
				p.log.WithFields(logrus.Fields{
					"url":      l.URL,
					"category": utils.CategorizeError(resp.Err),
				}).Warn("Link failed permanently, skipping")
			}
			p.frontier.MarkVisited(l.Key())
		}

		p.refreshProgress()
		if p.applyDebugCutoff() {
			break
		}
	}

	return p.finish(ctx)
}

// seed loads start URLs, or the explicit debug product list in dev mode.
func (p *Processor) seed() {
	if p.cfg.IsDevMode() && len(p.vcfg.CustomProducts) > 0 {
		p.frontier.Clear()
		links := make([]fetch.Link, 0, len(p.vcfg.CustomProducts))
		for _, u := range p.vcfg.CustomProducts {
			links = append(links, fetch.NewLink(u, fetch.LinkProduct))
		}
		p.frontier.Add(links, fetch.LinkProduct)
		p.log.WithField("count", len(links)).Info("Seeded custom product list")
		return
	}

	links := make([]fetch.Link, 0, len(p.vcfg.StartURLs))
	for _, u := range p.vcfg.StartURLs {
		links = append(links, fetch.NewLink(u, fetch.LinkCategory))
	}
	p.frontier.Add(links, fetch.LinkCategory)
	p.log.WithField("count", len(links)).Info("Seeded start URLs")
}

// batchFailed reports whether not a single link in the batch got any
// response at all, which signals total network failure rather than
// individual bad pages.
func batchFailed(results map[string]*fetch.Response) bool {
	if len(results) == 0 {
		return true
	}
	for _, r := range results {
		if r != nil && (r.Err == nil || r.StatusCode != 0) {
			return false
		}
	}
	return true
}

// handleResponse routes one completed fetch by its declared link type.
func (p *Processor) handleResponse(ctx context.Context, l fetch.Link, resp *fetch.Response) {
	switch l.Type {
	case fetch.LinkCategory:
		p.handleCategory(resp)
	case fetch.LinkProduct:
		p.handleProduct(ctx, resp)
	}
}

// handleCategory extracts further links. Extraction failures skip the one
// page without aborting the batch.
func (p *Processor) handleCategory(resp *fetch.Response) {
	categories, products, err := p.vendor.ExtractLinks(resp)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"url":      resp.Link.URL,
			"category": utils.CategorizeError(err),
		}).Warnf("Link extraction failed, skipping page: %v", err)
		return
	}
	addedC := p.frontier.Add(categories, fetch.LinkCategory)
	addedP := p.frontier.Add(products, fetch.LinkProduct)
	if addedC+addedP > 0 {
		p.log.WithFields(logrus.Fields{
			"url":        resp.Link.URL,
			"categories": addedC,
			"products":   addedP,
		}).Debug("Discovered links")
	}
}

// handleProduct builds entities from one product page, merges them against
// the price list and persists or accumulates them.
func (p *Processor) handleProduct(ctx context.Context, resp *fetch.Response) {
	items, err := feed.BuildEntities(p.vendor, resp, p.log)
	if err != nil {
		p.log.WithField("url", resp.Link.URL).Warnf("Entity build failed, page dropped: %v", err)
		return
	}

	for _, item := range items {
		p.vendor.AfterProcessItem(item)
		feed.Merge([]*feed.Item{item}, p.vendor.PriceListSources(), p.vendor.AfterItemMerge)

		if p.skipUnchanged(item) {
			continue
		}

		if p.vcfg.AccumulateBeforeSave {
			p.accumulated = append(p.accumulated, item)
		} else {
			if !p.vendor.IsValidItem(item) {
				p.log.WithField("productcode", item.Identity()).Debug("Invalid item, not saved")
				continue
			}
			if err := p.store.SaveFeed(ctx, []*feed.Item{item}); err != nil {
				p.log.WithField("productcode", item.Identity()).Errorf("Save failed: %v", err)
				continue
			}
			p.saved = append(p.saved, item)
		}

		p.processed++
		p.stepProgress()
	}
}

// skipUnchanged consults the hash store when change tracking is on.
func (p *Processor) skipUnchanged(item *feed.Item) bool {
	if p.hashes == nil || !p.vcfg.SkipUnchangedProducts || item.Identity() == "" {
		return false
	}
	changed, err := p.hashes.Changed(item.Identity(), item.HashProduct)
	if err != nil {
		p.log.Debugf("Hash lookup failed, treating as changed: %v", err)
		return false
	}
	if changed {
		if err := p.hashes.Put(item.Identity(), item.HashProduct); err != nil {
			p.log.Debugf("Hash store failed: %v", err)
		}
		return false
	}
	p.log.WithField("productcode", item.Identity()).Debug("Unchanged, skipping")
	return true
}

// applyDebugCutoff enforces the dev-mode max-products limit between
// batches. Once enough product links are known, category discovery stops;
// once enough items are processed, the crawl ends.
func (p *Processor) applyDebugCutoff() bool {
	if !p.cfg.IsDevMode() || p.vcfg.MaxProducts <= 0 {
		return false
	}
	if p.frontier.CountByType(fetch.LinkProduct) >= p.vcfg.MaxProducts {
		p.frontier.MarkCategoriesVisited()
	}
	if p.processed >= p.vcfg.MaxProducts {
		p.log.WithField("max_products", p.vcfg.MaxProducts).Info("Debug cutoff reached")
		return true
	}
	return false
}

// finish runs the final merge, filter, validation and flush passes.
func (p *Processor) finish(ctx context.Context) error {
	items := p.vendor.BeforeProcess(p.accumulated)

	feed.Merge(items, p.vendor.PriceListSources(), p.vendor.AfterItemMerge)

	kept := items[:0]
	for _, item := range items {
		if p.vendor.IsValidItem(item) {
			kept = append(kept, item)
		}
	}
	dropped := len(items) - len(kept)
	if dropped > 0 {
		p.log.WithField("dropped", dropped).Info("Filtered invalid items")
	}

	kept = p.vendor.AfterProcess(kept)

	if p.cfg.ValidateFeeds {
		// Validate what actually reached storage: the filtered batch in
		// accumulate mode plus everything the direct-save path persisted.
		checked := make([]*feed.Item, 0, len(kept)+len(p.saved))
		checked = append(checked, kept...)
		checked = append(checked, p.saved...)
		report := p.validator.Validate(checked)
		path, err := p.reports.Save(p.info.Key(), report)
		if err != nil {
			return err
		}
		if path != "" {
			p.log.Warnf("Validation failures recorded, see %s", path)
		}
	}

	if len(kept) > 0 {
		if err := p.store.SaveFeed(ctx, kept); err != nil {
			return err
		}
	}
	p.log.WithFields(logrus.Fields{
		"processed": p.processed,
		"total":     p.frontier.Count(),
	}).Info("Crawl finished")
	return p.store.Shutdown()
}

// --- progress reporting ---

func (p *Processor) startProgress() {
	p.pw = progress.NewWriter()
	p.pw.SetOutputWriter(p.progressOut)
	p.pw.SetTrackerLength(30)
	p.pw.SetUpdateFrequency(250 * time.Millisecond)
	p.tracker = &progress.Tracker{
		Message: "Crawling " + p.info.Key(),
		Total:   int64(p.frontier.Count()),
		Units:   progress.UnitsDefault,
	}
	p.pw.AppendTracker(p.tracker)
	go p.pw.Render()
}

func (p *Processor) stepProgress() {
	p.tracker.Increment(1)
}

func (p *Processor) refreshProgress() {
	p.tracker.UpdateTotal(int64(p.frontier.CountByType(fetch.LinkProduct)))
	p.log.WithFields(logrus.Fields{
		"processed": p.processed,
		"total":     p.frontier.Count(),
	}).Info("Batch complete")
}

func (p *Processor) stopProgress() {
	p.tracker.MarkAsDone()
	p.pw.Stop()
}
