package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"inflatrack/config"
	"inflatrack/models"
	"inflatrack/scraper"
	"inflatrack/services"

	"github.com/robfig/cron/v3"
)

// ScrapeScheduler runs the periodic scrape cycle. Stores and variants are
// independent, so each (store, variant) pair becomes one task in a bounded
// worker pool; the cap keeps concurrent browser pages in check.
type ScrapeScheduler struct {
	cron     *cron.Cron
	fetcher  scraper.Fetcher
	recorder *services.Recorder
	cfg      *config.AppConfig

	// Optional filters restricting a cycle to specific stores/products.
	StoreFilter   []string
	ProductFilter []string

	mu        sync.Mutex
	cycleRuns bool
	lastStats models.RunStats
}

func NewScrapeScheduler(fetcher scraper.Fetcher, recorder *services.Recorder, cfg *config.AppConfig) *ScrapeScheduler {
	return &ScrapeScheduler{
		cron:     cron.New(cron.WithSeconds()),
		fetcher:  fetcher,
		recorder: recorder,
		cfg:      cfg,
	}
}

// Start schedules the scrape cycle and also runs one immediately.
func (s *ScrapeScheduler) Start() {
	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.RunCycle)
	if err != nil {
		log.Printf("Failed to schedule scrape cycle: %v", err)
		return
	}

	go s.RunCycle()

	s.cron.Start()
	log.Printf("Scrape cycle scheduled: %s", s.cfg.CronSchedule)
}

// Stop stops the scheduler.
func (s *ScrapeScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// LastStats returns the statistics of the most recent completed cycle.
func (s *ScrapeScheduler) LastStats() models.RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStats
}

// RunCycle loads the store configuration and fans out one task per
// (store, variant) pair. Overlapping cycles are skipped.
func (s *ScrapeScheduler) RunCycle() {
	s.mu.Lock()
	if s.cycleRuns {
		s.mu.Unlock()
		log.Println("Previous scrape cycle still running, skipping")
		return
	}
	s.cycleRuns = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cycleRuns = false
		s.mu.Unlock()
	}()

	log.Println("Starting scrape cycle")
	stats := models.RunStats{StartedAt: time.Now()}

	configs, err := config.ParseStoreConfigs(s.cfg.StoreConfigPath)
	if err != nil {
		log.Printf("Failed to load store configs: %v", err)
		return
	}
	if len(configs) == 0 {
		log.Println("No store configs to process")
		return
	}

	var statsMu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.MaxWorkers)

	for i := range configs {
		cfg := configs[i]
		if s.filtered(&cfg) {
			continue
		}
		for _, variant := range models.Variants {
			url, ok := cfg.URLFor(variant)
			if !ok {
				continue
			}
			wg.Add(1)
			go func(variant, url string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				outcome := s.processVariant(&cfg, variant, url)

				statsMu.Lock()
				stats.TotalProcessed++
				switch outcome {
				case cycleCreated:
					stats.Created++
				case cycleUpdated:
					stats.Updated++
				case cycleError:
					stats.Errors++
				}
				statsMu.Unlock()
			}(variant, url)
		}
	}
	wg.Wait()

	stats.FinishedAt = time.Now()
	s.mu.Lock()
	s.lastStats = stats
	s.mu.Unlock()

	log.Printf("Scrape cycle finished: processed %d, created %d, updated %d, errors %d",
		stats.TotalProcessed, stats.Created, stats.Updated, stats.Errors)
}

type cycleOutcome int

const (
	cycleError cycleOutcome = iota
	cycleCreated
	cycleUpdated
)

// processVariant fetches one (store, variant) page, extracts title and
// price, and records the observation. All failures are contained here.
func (s *ScrapeScheduler) processVariant(cfg *models.StoreConfig, variant, url string) cycleOutcome {
	log.Printf("Processing %s - %s (%s): %s", cfg.StoreName, cfg.ProductType, variant, url)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout)
	defer cancel()

	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Printf("Failed to fetch %s for %s (%s): %v", url, cfg.StoreName, variant, err)
		return cycleError
	}

	title := scraper.ExtractFromTemplate(cfg.TitleTemplate, doc)
	price := scraper.ExtractFromTemplate(cfg.PriceTemplate, doc)

	outcome, err := s.recorder.Save(&models.Observation{
		StoreName:       cfg.StoreName,
		Country:         cfg.Country,
		ProductType:     cfg.ProductType,
		Variant:         variant,
		FullName:        title,
		FullPriceString: price,
		CurrencyMap:     cfg.CurrencyMap,
	})
	if err != nil {
		log.Printf("Failed to save sample for %s - %s (%s): %v", cfg.StoreName, cfg.ProductType, variant, err)
		return cycleError
	}

	switch outcome {
	case services.OutcomeCreated:
		return cycleCreated
	case services.OutcomeUpdated:
		return cycleUpdated
	default:
		return cycleError
	}
}

// filtered reports whether the store/product filters exclude this config.
func (s *ScrapeScheduler) filtered(cfg *models.StoreConfig) bool {
	if len(s.StoreFilter) > 0 && !contains(s.StoreFilter, cfg.StoreName) {
		return true
	}
	if len(s.ProductFilter) > 0 && !contains(s.ProductFilter, cfg.ProductType) {
		return true
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
